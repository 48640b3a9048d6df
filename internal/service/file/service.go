package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoding
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/storage"
)

const (
	// Images above maxImageSize are re-encoded and, if needed, downscaled.
	maxImageSize    = 400 * 1024
	targetImageSize = 250 * 1024
	minImageWidth   = 800
)

type FileService interface {
	// UploadCertificate stores a sickness certificate. PDFs are stored as-is, images are compressed to JPEG.
	UploadCertificate(ctx context.Context, userID string, file io.Reader, filename string) (string, error)
	DeleteFile(ctx context.Context, path string) error
	GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
	now     func() time.Time
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
		now:     time.Now,
	}
}

// UploadCertificate implements FileService.
func (s *fileServiceImpl) UploadCertificate(ctx context.Context, userID string, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	prefix := fmt.Sprintf("%s-%d", uuid.New().String(), s.now().Unix())
	dir := filepath.Join("certificates", userID)

	switch ext {
	case ".pdf":
		path := filepath.Join(dir, prefix+".pdf")
		uploaded, err := s.storage.Upload(ctx, file, path, "application/pdf")
		if err != nil {
			return "", fmt.Errorf("failed to upload certificate: %w", err)
		}
		return uploaded, nil

	case ".jpg", ".jpeg", ".png":
		buffer, err := io.ReadAll(file)
		if err != nil {
			return "", fmt.Errorf("failed to read image: %w", err)
		}

		compressed, err := compressImage(buffer, maxImageSize)
		if err != nil {
			return "", fmt.Errorf("failed to compress image: %w", err)
		}

		// Always stored as JPEG after compression
		path := filepath.Join(dir, prefix+".jpg")
		uploaded, err := s.storage.Upload(ctx, bytes.NewReader(compressed), path, "image/jpeg")
		if err != nil {
			return "", fmt.Errorf("failed to upload certificate: %w", err)
		}
		return uploaded, nil

	default:
		return "", fmt.Errorf("invalid file type: only pdf, jpg, jpeg, png allowed")
	}
}

func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

func (s *fileServiceImpl) GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, path, expiry)
}

// compressImage re-encodes an image as JPEG with decreasing quality, then downscales it
// if it is still larger than maxSize. JPEGs already under maxSize are returned unchanged.
func compressImage(buffer []byte, maxSize int) ([]byte, error) {
	if len(buffer) <= maxSize && isJPEG(buffer) {
		return buffer, nil
	}

	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var compressed []byte
	for quality := 85; quality >= 55; quality -= 10 {
		compressed, err = encodeJPEG(img, quality)
		if err != nil {
			return nil, err
		}
		if len(compressed) <= maxSize {
			return compressed, nil
		}
	}

	bounds := img.Bounds()
	ratio := math.Sqrt(float64(targetImageSize) / float64(len(compressed)))
	width := int(float64(bounds.Dx()) * ratio)
	if width < minImageWidth {
		width = min(minImageWidth, bounds.Dx())
	}
	height := bounds.Dy() * width / bounds.Dx()

	return encodeJPEG(resizeImage(img, width, height), 70)
}

func isJPEG(b []byte) bool {
	return len(b) > 2 && b[0] == 0xFF && b[1] == 0xD8
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
