package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxPhotoSize bounds a clock-in photo upload.
const MaxPhotoSize = 10 << 20

var errUnsupportedPhoto = errors.New("photo must be a .jpg, .jpeg or .png file")

// readPhoto loads an uploaded photo and gives it a unique name with the
// original extension.
func readPhoto(file *multipart.FileHeader) ([]byte, string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return nil, "", errUnsupportedPhoto
	}
	if file.Size > MaxPhotoSize {
		return nil, "", fmt.Errorf("photo exceeds %d MB", MaxPhotoSize>>20)
	}

	f, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open photo: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxPhotoSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read photo: %w", err)
	}
	if len(data) > MaxPhotoSize {
		return nil, "", fmt.Errorf("photo exceeds %d MB", MaxPhotoSize>>20)
	}
	return data, uuid.NewString() + ext, nil
}
