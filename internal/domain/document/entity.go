package document

import (
	"regexp"
	"strings"
)

// Form is one submission of the document builder form, stored as a sheet row.
type Form struct {
	Row              int    `json:"row"`
	Timestamp        string `json:"timestamp"`
	DocumentTitle    string `json:"documentTitle"`
	Date             string `json:"date"`
	PreparedBy       string `json:"preparedBy"`
	ClientName       string `json:"clientName"`
	Category         string `json:"category"`
	DescriptionNotes string `json:"descriptionNotes"`
}

// MetaLine is the summary printed under the document title.
func (f Form) MetaLine() string {
	return "Client: " + f.ClientName +
		" | Category: " + f.Category +
		" | Date: " + f.Date +
		" | Prepared by: " + f.PreparedBy
}

// Block is a rendered unit of the notes body.
type Block struct {
	Bullet bool
	Text   string
}

var paragraphBreak = regexp.MustCompile(`\n{2,}`)

// ParseNotes splits notes into paragraphs on blank lines. Each non-empty line becomes its own block; lines
// starting with -, • or * become bullets with the marker removed.
func ParseNotes(notes string) []Block {
	notes = strings.ReplaceAll(notes, "\r\n", "\n")
	var out []Block
	for _, para := range paragraphBreak.Split(notes, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		for _, line := range strings.Split(para, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*") {
				text := strings.TrimLeft(line, "-•*")
				out = append(out, Block{Bullet: true, Text: strings.TrimSpace(text)})
				continue
			}
			out = append(out, Block{Text: line})
		}
	}
	return out
}
