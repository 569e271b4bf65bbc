package internal

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// MaxAttachmentSize bounds inline image uploads
const MaxAttachmentSize = 20 << 20

// LoadAttachment reads an image file and base64-encodes it. Non-image files are rejected.
func LoadAttachment(path string) (Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to read attachment: %w", err)
	}
	if info.Size() > MaxAttachmentSize {
		return Attachment{}, &ValidationError{Field: "attachment", Reason: fmt.Sprintf("%s is larger than %d MB", filepath.Base(path), MaxAttachmentSize>>20)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to read attachment: %w", err)
	}
	return NewAttachment(data, filepath.Base(path))
}

// NewAttachment wraps raw image bytes. name is only used in error messages.
func NewAttachment(data []byte, name string) (Attachment, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Attachment{}, &ValidationError{Field: "attachment", Reason: fmt.Sprintf("%s is %s, only images are supported", name, mt.String())}
	}
	return Attachment{
		MimeType: mt.String(),
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

// DataURL renders the attachment as a data: URL
func (a Attachment) DataURL() string {
	return "data:" + a.MimeType + ";base64," + a.Data
}

// Bytes decodes the base64 payload
func (a Attachment) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(a.Data)
}

// ParseDataURL splits a base64 data URL into mime type and bytes
func ParseDataURL(url string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URL")
	}
	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode data URL: %w", err)
	}
	return mimeType, data, nil
}

// ImageExtension maps an image mime type to a file extension, defaulting to png
func ImageExtension(mimeType string) string {
	_, sub, ok := strings.Cut(mimeType, "/")
	if !ok || sub == "" {
		return "png"
	}
	return sub
}

// SaveImage decodes a generated image data URL into dir and returns the file path
func SaveImage(imageURL, dir string, now time.Time) (string, error) {
	mimeType, data, err := ParseDataURL(imageURL)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := fmt.Sprintf("gujjar-gpt-image-%d.%s", now.UnixMilli(), ImageExtension(mimeType))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}
