package qr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	tuotoo "github.com/tuotoo/qrcode"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotFound is returned when an image decodes fine but holds no readable
// QR code.
var ErrNotFound = errors.New("no QR code found in the image")

// Backend is one QR detection-and-decode implementation. It returns
// ErrNotFound when the image holds no readable code.
type Backend interface {
	Name() string
	Decode(img image.Image) (string, error)
}

// DecoderOptions selects the detection backends.
type DecoderOptions struct {
	TryHarder bool
	Fallback  bool
}

// Decoder reads QR codes from raster images by trying each backend in turn.
type Decoder struct {
	backends []Backend
	log      *slog.Logger
}

// NewDecoder returns a Decoder backed by gozxing and, when opts.Fallback is
// set, tuotoo/qrcode.
func NewDecoder(opts DecoderOptions, log *slog.Logger) *Decoder {
	backends := []Backend{&zxingBackend{tryHarder: opts.TryHarder}}
	if opts.Fallback {
		backends = append(backends, tuotooBackend{})
	}
	return NewDecoderWith(log, backends...)
}

// NewDecoderWith returns a Decoder using exactly the given backends.
func NewDecoderWith(log *slog.Logger, backends ...Backend) *Decoder {
	if log == nil {
		log = slog.Default()
	}
	return &Decoder{backends: backends, log: log}
}

// DecodeFile loads the image at path and decodes the QR code in it.
func (d *Decoder) DecodeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	return d.DecodeReader(f)
}

// DecodeReader decodes a raster image from r, converts it to grayscale and
// runs QR detection on it.
func (d *Decoder) DecodeReader(r io.Reader) (string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	d.log.Debug("image loaded", "format", format, "bounds", img.Bounds().String())

	return d.DecodeImage(Grayscale(img))
}

// DecodeImage runs the backends over img and returns the first non-empty
// result.
func (d *Decoder) DecodeImage(img image.Image) (string, error) {
	for _, b := range d.backends {
		text, err := safeDecode(b, img)
		if err == nil && text != "" {
			d.log.Debug("qr decoded", "backend", b.Name(), "len", len(text))
			return text, nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			d.log.Debug("qr backend failed", "backend", b.Name(), "error", err)
		}
	}
	return "", ErrNotFound
}

func safeDecode(b Backend, img image.Image) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", b.Name(), r)
		}
	}()
	return b.Decode(img)
}

// Grayscale converts img to 8-bit luminance.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	draw.Draw(gray, b, img, b.Min, draw.Src)
	return gray
}

type zxingBackend struct {
	tryHarder bool
}

func (z *zxingBackend) Name() string { return "gozxing" }

func (z *zxingBackend) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("creating bitmap: %w", err)
	}

	var hints map[gozxing.DecodeHintType]interface{}
	if z.tryHarder {
		hints = map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		}
	}

	result, err := zxqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		var (
			notFound gozxing.NotFoundException
			checksum gozxing.ChecksumException
			format   gozxing.FormatException
		)
		if errors.As(err, &notFound) || errors.As(err, &checksum) || errors.As(err, &format) {
			return "", ErrNotFound
		}
		return "", err
	}
	return result.GetText(), nil
}

// tuotooBackend reads its input as an encoded image, so the grayscale
// raster is round-tripped through PNG.
type tuotooBackend struct{}

func (tuotooBackend) Name() string { return "tuotoo" }

func (tuotooBackend) Decode(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	m, err := tuotoo.Decode(&buf)
	if err != nil || m == nil || m.Content == "" {
		return "", ErrNotFound
	}
	return m.Content, nil
}
