// Package qr renders text as QR code rasters, reads QR codes back out of
// image files and writes rasters as PNG.
package qr

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/mdp/qrterminal/v3"
	qrcode "github.com/skip2/go-qrcode"
)

// ErrEmptyText is returned when there is nothing to encode.
var ErrEmptyText = errors.New("empty text")

// Options are the fixed parameters applied to every generated code. The
// symbol version is always chosen by the library to fit the text.
type Options struct {
	Level   string // low, medium, high or highest
	BoxSize int    // pixels per module
	Border  int    // quiet zone width in modules
}

// DefaultOptions matches the configuration defaults.
func DefaultOptions() Options {
	return Options{Level: "low", BoxSize: 10, Border: 4}
}

var recoveryLevels = map[string]qrcode.RecoveryLevel{
	"low":     qrcode.Low,
	"medium":  qrcode.Medium,
	"high":    qrcode.High,
	"highest": qrcode.Highest,
}

// ValidLevel reports whether name is a known error correction level.
func ValidLevel(name string) bool {
	_, ok := recoveryLevels[name]
	return ok
}

// Encoder turns text into black-on-white QR rasters.
type Encoder struct {
	opts  Options
	level qrcode.RecoveryLevel
}

// NewEncoder validates opts and returns an Encoder.
func NewEncoder(opts Options) (*Encoder, error) {
	level, ok := recoveryLevels[opts.Level]
	if !ok {
		return nil, fmt.Errorf("unknown error correction level %q", opts.Level)
	}
	if opts.BoxSize < 1 {
		return nil, fmt.Errorf("box size must be positive, got %d", opts.BoxSize)
	}
	if opts.Border < 0 {
		return nil, fmt.Errorf("border must not be negative, got %d", opts.Border)
	}
	return &Encoder{opts: opts, level: level}, nil
}

// Options returns the parameters the encoder was built with.
func (e *Encoder) Options() Options {
	return e.opts
}

// Encode builds the QR symbol for text and rasterizes it with the
// configured module size and border.
func (e *Encoder) Encode(text string) (*image.Gray, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	q, err := qrcode.New(text, e.level)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	q.DisableBorder = true

	return rasterize(q.Bitmap(), e.opts.BoxSize, e.opts.Border), nil
}

// rasterize paints each set module as a box x box black square inside a
// white quiet zone of border modules.
func rasterize(bitmap [][]bool, box, border int) *image.Gray {
	modules := len(bitmap)
	side := (modules + 2*border) * box

	img := image.NewGray(image.Rect(0, 0, side, side))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	black := image.NewUniform(color.Black)
	for y, row := range bitmap {
		for x, set := range row {
			if !set {
				continue
			}
			px := (x + border) * box
			py := (y + border) * box
			draw.Draw(img, image.Rect(px, py, px+box, py+box), black, image.Point{}, draw.Src)
		}
	}
	return img
}

// Displayable converts any raster into the 32-bit RGBA bitmap used by the
// window and the exporter.
func Displayable(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Terminal prints text as a half-block QR code to w.
func (e *Encoder) Terminal(text string, w io.Writer) error {
	if text == "" {
		return ErrEmptyText
	}
	level := qrterminal.L
	switch e.opts.Level {
	case "medium":
		level = qrterminal.M
	case "high", "highest":
		level = qrterminal.H
	}
	qrterminal.GenerateHalfBlock(text, level, w)
	return nil
}
