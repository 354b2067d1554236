package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNotes(t *testing.T) {
	notes := "Intro line.\r\nSecond line.\n\n\n- first\n•  second\n* third\n\nClosing."

	got := ParseNotes(notes)

	assert.Equal(t, []Block{
		{Text: "Intro line."},
		{Text: "Second line."},
		{Bullet: true, Text: "first"},
		{Bullet: true, Text: "second"},
		{Bullet: true, Text: "third"},
		{Text: "Closing."},
	}, got)
}

func TestParseNotesEmpty(t *testing.T) {
	assert.Empty(t, ParseNotes("   \n\n  "))
}

func TestMetaLine(t *testing.T) {
	f := Form{ClientName: "Acme", Category: "Report", Date: "2024-03-05", PreparedBy: "Ana"}
	assert.Equal(t, "Client: Acme | Category: Report | Date: 2024-03-05 | Prepared by: Ana", f.MetaLine())
}
