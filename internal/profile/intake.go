package profile

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StoredFile is an upload written to the intake directory.
type StoredFile struct {
	OriginalName string
	Path         string
}

// Intake writes uploaded profile images to a local directory.
type Intake struct {
	dir string
}

func NewIntake(dir string) (*Intake, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Intake{dir: dir}, nil
}

// Save stores the upload under a unique name. Content that does not sniff
// as an image is rejected with ErrInvalidImage.
func (in *Intake) Save(file multipart.File, header *multipart.FileHeader) (*StoredFile, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return nil, ErrInvalidImage
	}

	original := filepath.Base(header.Filename)
	path := filepath.Join(in.dir, uuid.NewString()+"-"+sanitizeName(original))

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), file)); err != nil {
		dst.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to close upload: %w", err)
	}

	return &StoredFile{OriginalName: original, Path: path}, nil
}

// Discard removes a stored upload that will not be referenced.
func (in *Intake) Discard(f *StoredFile) error {
	return os.Remove(f.Path)
}

// sanitizeName keeps letters, digits, dot, dash and underscore.
func sanitizeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "upload"
	}
	return cleaned
}
