package qr

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
)

// WritePNG serializes img as PNG to w.
func WritePNG(w io.Writer, img image.Image) error {
	if img == nil {
		return errors.New("no image to write")
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG writes img to path, replacing any existing file. A partially
// written file is removed on failure.
func SavePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	return WritePNG(f, img)
}
