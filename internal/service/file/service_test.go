package file

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/bpo-ops/ops-backend-go/internal/domain/document"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileService(t *testing.T) FileService {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/files")
	require.NoError(t, err)
	return NewFileService(files)
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestUploadLogo_ShrinksWideImages(t *testing.T) {
	ctx := context.Background()
	svc := newFileService(t)

	stored, err := svc.UploadLogo(ctx, bytes.NewReader(pngOf(t, 1200, 300)), "Logo.PNG")
	require.NoError(t, err)
	assert.Equal(t, LogoKey, stored.Path)
	assert.Equal(t, "http://localhost/files/"+LogoKey, stored.URL)

	raw, err := svc.LogoPNG(ctx, LogoKey, 0)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, maxLogoWidth, cfg.Width)
	assert.Equal(t, 150, cfg.Height)
}

func TestUploadLogo_RejectsOtherTypes(t *testing.T) {
	svc := newFileService(t)

	_, err := svc.UploadLogo(context.Background(), bytes.NewReader(pngOf(t, 10, 10)), "logo.gif")
	assert.ErrorIs(t, err, document.ErrInvalidImageType)

	_, err = svc.UploadLogo(context.Background(), strings.NewReader("not an image"), "logo.png")
	assert.ErrorIs(t, err, document.ErrInvalidImageType)
}

func TestBrandingLogo(t *testing.T) {
	ctx := context.Background()
	svc := newFileService(t)

	assert.Nil(t, Branding{}.Logo(ctx, svc))
	assert.Nil(t, Branding{LogoPath: LogoKey}.Logo(ctx, svc), "missing logo is tolerated")

	_, err := svc.UploadLogo(ctx, bytes.NewReader(pngOf(t, 100, 50)), "logo.png")
	require.NoError(t, err)
	raw := Branding{LogoPath: LogoKey}.Logo(ctx, svc)
	require.NotNil(t, raw)
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, LogoPixels, cfg.Width)
}

func TestSaveDocument(t *testing.T) {
	svc := newFileService(t)
	stored, err := svc.SaveDocument(context.Background(), "nte", "IR-NTE Juan", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "IR-NTE Juan.pdf", stored.Name)
	assert.True(t, strings.HasPrefix(stored.Path, "documents/nte/IR-NTE Juan-"))
	assert.True(t, strings.HasSuffix(stored.URL, ".pdf"))
}
