package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decode support
	_ "image/jpeg" // JPEG decode support
	_ "image/png"  // PNG decode support
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	_ "golang.org/x/image/bmp"  // BMP decode support
	_ "golang.org/x/image/tiff" // TIFF decode support
	_ "golang.org/x/image/webp" // WebP decode support

	"github.com/ignite/coreapp/internal/domain"
	"github.com/ignite/coreapp/internal/pkg/logger"
)

var (
	// ErrTooLarge is returned when an upload exceeds the configured limit.
	ErrTooLarge = errors.New("upload too large")
	// ErrNotImage is returned when an image upload cannot be decoded.
	ErrNotImage = errors.New("upload a valid image; the file was either not an image or a corrupted image")
	// ErrEmptyUpload is returned for zero-byte uploads.
	ErrEmptyUpload = errors.New("the submitted file is empty")
)

// Uploader stores file and image uploads for sample records under the
// files/ and images/ prefixes. Keys never exceed domain.PathMaxLength.
type Uploader struct {
	store    Store
	maxBytes int64
}

// NewUploader returns an uploader writing to store. A non-positive maxBytes
// defaults to 10 MB.
func NewUploader(store Store, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	return &Uploader{store: store, maxBytes: maxBytes}
}

// SaveFile stores an arbitrary file and returns its key.
func (u *Uploader) SaveFile(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, err := readLimited(r, u.maxBytes)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmptyUpload
	}
	return u.save(ctx, domain.FileUploadDir, filename, data, http.DetectContentType(data))
}

// SaveImage verifies that the upload decodes as an image and stores it.
func (u *Uploader) SaveImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, err := readLimited(r, u.maxBytes)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmptyUpload
	}
	format, err := VerifyImage(data)
	if err != nil {
		return "", err
	}
	logger.Debug("image verified", "format", format, "size", len(data))
	return u.save(ctx, domain.ImageUploadDir, filename, data, detectContentType(data))
}

// Open returns the bytes stored under key and their content type.
func (u *Uploader) Open(ctx context.Context, key string) ([]byte, string, error) {
	data, err := u.store.Get(ctx, key)
	if err != nil {
		return nil, "", err
	}
	contentType := detectContentType(data)
	if contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// Discard removes an upload that no record refers to.
func (u *Uploader) Discard(ctx context.Context, key string) error {
	if err := u.store.Delete(ctx, key); err != nil {
		return err
	}
	logger.Info("upload discarded", "key", key)
	return nil
}

func (u *Uploader) save(ctx context.Context, dir, filename string, data []byte, contentType string) (string, error) {
	key, err := u.availableKey(ctx, dir, sanitizeFilename(filename))
	if err != nil {
		return "", err
	}
	if err := u.store.Put(ctx, key, data, contentType); err != nil {
		return "", err
	}
	logger.Info("upload stored", "key", key, "content_type", contentType, "size", len(data))
	return key, nil
}

// availableKey returns dir+name, adding a random suffix before the
// extension when the key is taken. The stem is shortened so the key fits
// in domain.PathMaxLength.
func (u *Uploader) availableKey(ctx context.Context, dir, name string) (string, error) {
	ext := path.Ext(name)
	if len(ext) > 16 {
		ext = ""
	}
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem = "upload"
	}

	room := domain.PathMaxLength - len(dir) - len(ext)
	candidate := dir + truncate(stem, room) + ext
	for attempt := 0; attempt < 10; attempt++ {
		exists, err := u.store.Exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking key %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		suffix, err := randomSuffix(7)
		if err != nil {
			return "", err
		}
		candidate = dir + truncate(stem, room-len(suffix)-1) + "_" + suffix + ext
	}
	return "", fmt.Errorf("no free key for %s%s", dir, name)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if n < 1 {
		n = 1
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

const suffixChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomSuffix(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating key suffix: %w", err)
	}
	for i := range buf {
		buf[i] = suffixChars[int(buf[i])%len(suffixChars)]
	}
	return string(buf), nil
}

// VerifyImage decodes data and returns the detected format. Supported
// formats are gif, jpeg, png, bmp, tiff and webp.
func VerifyImage(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return format, nil
}

func detectContentType(data []byte) string {
	// Check magic bytes
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8 {
		return "image/jpeg"
	}
	if len(data) >= 8 && data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G' {
		return "image/png"
	}
	if len(data) >= 6 && data[0] == 'G' && data[1] == 'I' && data[2] == 'F' {
		return "image/gif"
	}
	if len(data) >= 12 && data[0] == 'R' && data[1] == 'I' && data[2] == 'F' && data[3] == 'F' &&
		data[8] == 'W' && data[9] == 'E' && data[10] == 'B' && data[11] == 'P' {
		return "image/webp"
	}
	if len(data) >= 2 && data[0] == 'B' && data[1] == 'M' {
		return "image/bmp"
	}
	if len(data) >= 4 && (bytes.Equal(data[:4], []byte("II*\x00")) || bytes.Equal(data[:4], []byte("MM\x00*"))) {
		return "image/tiff"
	}
	return "application/octet-stream"
}

func sanitizeFilename(filename string) string {
	// Browsers on Windows may send the full client path.
	filename = filename[strings.LastIndexAny(filename, `/\`)+1:]
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "..", "")
	filename = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, strings.TrimSpace(filename))
	if filename == "." || filename == "/" {
		return ""
	}
	return filename
}
