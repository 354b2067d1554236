package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // Import for JPEG decoding support
	"image/png"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bpo-ops/ops-backend-go/internal/domain/document"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// StoredFile is a file written to storage together with its public URL.
type StoredFile struct {
	Name string `json:"fileName"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

type FileService interface {
	// SaveDocument stores a generated PDF under documents/<kind>/.
	SaveDocument(ctx context.Context, kind, name string, content []byte) (StoredFile, error)

	// UploadLogo replaces the company logo at LogoKey, stored as PNG at most maxLogoWidth pixels wide.
	UploadLogo(ctx context.Context, file io.Reader, filename string) (StoredFile, error)

	// LogoPNG loads a stored logo scaled to the given pixel width.
	LogoPNG(ctx context.Context, path string, width int) ([]byte, error)
}

const (
	maxLogoWidth = 600

	// LogoKey is where an uploaded company logo lives.
	LogoKey = "branding/logo.png"

	// LogoPixels is the logo width handed to PDFs, twice the printed width for sharpness.
	LogoPixels = 220
)

// Branding is the company identity printed on generated documents.
type Branding struct {
	CompanyName string
	LogoPath    string
}

// Logo returns the scaled logo, or nil when none is configured or it cannot be read.
func (b Branding) Logo(ctx context.Context, fs FileService) []byte {
	if b.LogoPath == "" {
		return nil
	}
	img, err := fs.LogoPNG(ctx, b.LogoPath, LogoPixels)
	if err != nil {
		slog.Warn("Company logo unavailable", "path", b.LogoPath, "error", err)
		return nil
	}
	return img
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

// SaveDocument implements FileService
func (s *fileServiceImpl) SaveDocument(ctx context.Context, kind, name string, content []byte) (StoredFile, error) {
	fileName := fmt.Sprintf("%s.pdf", name)
	path := filepath.Join("documents", kind, fmt.Sprintf("%s-%s.pdf", name, uuid.New().String()[:8]))

	uploadedPath, err := s.storage.Upload(ctx, bytes.NewReader(content), path, "application/pdf")
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to store document: %w", err)
	}
	url, err := s.storage.GetURL(ctx, uploadedPath, 0)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to build document url: %w", err)
	}
	return StoredFile{Name: fileName, Path: uploadedPath, URL: url}, nil
}

// UploadLogo implements FileService
func (s *fileServiceImpl) UploadLogo(ctx context.Context, file io.Reader, filename string) (StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return StoredFile{}, document.ErrInvalidImageType
	}

	img, _, err := image.Decode(file)
	if err != nil {
		slog.Warn("Logo decode failed", "filename", filename, "error", err)
		return StoredFile{}, document.ErrInvalidImageType
	}
	if img.Bounds().Dx() > maxLogoWidth {
		img = scaleToWidth(img, maxLogoWidth)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return StoredFile{}, fmt.Errorf("failed to encode logo: %w", err)
	}

	uploadedPath, err := s.storage.Upload(ctx, &buf, LogoKey, "image/png")
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to upload logo: %w", err)
	}
	url, err := s.storage.GetURL(ctx, uploadedPath, 0)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to build logo url: %w", err)
	}
	return StoredFile{Name: filepath.Base(uploadedPath), Path: uploadedPath, URL: url}, nil
}

// LogoPNG implements FileService
func (s *fileServiceImpl) LogoPNG(ctx context.Context, path string, width int) ([]byte, error) {
	rc, err := s.storage.Download(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode logo: %w", err)
	}
	if width > 0 && img.Bounds().Dx() != width {
		img = scaleToWidth(img, width)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode logo: %w", err)
	}
	return buf.Bytes(), nil
}

// ==================== HELPER FUNCTIONS ====================

// scaleToWidth resizes keeping the aspect ratio.
func scaleToWidth(src image.Image, width int) image.Image {
	b := src.Bounds()
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	return resizeImage(src, width, height)
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
