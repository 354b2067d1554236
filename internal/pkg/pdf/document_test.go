package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogo(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDocumentRenders(t *testing.T) {
	pages := 0
	doc := New(Options{
		Title:  "Incident Report",
		Meta:   "Client: Acme | Category: HR",
		Logo:   testLogo(t),
		Footer: func(page int) []string { pages = page; return []string{"© Confidential", "Page 1 of 1"} },
	})
	doc.AddPage()
	doc.Heading("Details")
	doc.Fields([][2]string{{"Employee", "Ana Cruz"}, {"Number", "EMP1001"}, {"Department", "Ops"}})
	doc.Paragraph("First paragraph.")
	doc.Bullet("a bullet")
	doc.Box("boxed text", true)
	doc.Signatures("Employee", "Officer")

	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, 1, pages)
}

func TestDocumentIgnoresBrokenLogo(t *testing.T) {
	doc := New(Options{Title: "Doc", Logo: []byte("not a png")})
	doc.AddPage()
	doc.Paragraph("still renders")
	_, err := doc.Bytes()
	assert.NoError(t, err)
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "AnadelaCruz", SafeName("Ana dela-Cruz!"))
	assert.Equal(t, "", SafeName("  "))
}
