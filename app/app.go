// Package app holds the QR pad window model. It owns the text and the
// displayed bitmap and wires UI events to the qr package without depending
// on any particular toolkit.
package app

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/openclaw/qrpad/qr"
)

// NotFoundMessage is shown when an image holds no QR code.
const NotFoundMessage = "No QR Code found in the image"

// ErrNothingToExport is returned by Export when no code has been generated.
var ErrNothingToExport = errors.New("nothing to export: generate a QR code first")

// Display renders the model. ShowImage(nil) clears the image area.
type Display interface {
	ShowText(text string)
	ShowImage(img image.Image)
}

// Dialogs shows modal dialogs. The callbacks run only when the user
// confirms a file.
type Dialogs interface {
	OpenImage(onChosen func(path string))
	SaveImage(onChosen func(path string))
	ShowError(message string)
}

// Encoder is satisfied by *qr.Encoder.
type Encoder interface {
	Encode(text string) (*image.Gray, error)
}

// Decoder is satisfied by *qr.Decoder.
type Decoder interface {
	DecodeFile(path string) (string, error)
}

// Event identifies a user action.
type Event int

const (
	EventGenerate Event = iota
	EventDecode
	EventExport
	EventClipboard
)

func (e Event) String() string {
	switch e {
	case EventGenerate:
		return "generate"
	case EventDecode:
		return "decode"
	case EventExport:
		return "export"
	case EventClipboard:
		return "clipboard"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Deps bundles the collaborators of an App.
type Deps struct {
	Encoder   Encoder
	Decoder   Decoder
	Clipboard Clipboard
	Log       *slog.Logger
}

// App is the window model. It is not safe for concurrent use; every method
// is expected to run on the UI event loop.
type App struct {
	text  string
	image *image.NRGBA

	display   Display
	dialogs   Dialogs
	encoder   Encoder
	decoder   Decoder
	clipboard Clipboard
	log       *slog.Logger

	handlers map[Event]func()
}

// New returns an App bound to display and dialogs.
func New(display Display, dialogs Dialogs, deps Deps) *App {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	a := &App{
		display:   display,
		dialogs:   dialogs,
		encoder:   deps.Encoder,
		decoder:   deps.Decoder,
		clipboard: deps.Clipboard,
		log:       log,
	}
	a.handlers = map[Event]func(){
		EventGenerate:  a.Generate,
		EventDecode:    a.Decode,
		EventExport:    a.Export,
		EventClipboard: a.EncodeClipboard,
	}
	return a
}

// Dispatch runs the handler registered for ev.
func (a *App) Dispatch(ev Event) {
	h, ok := a.handlers[ev]
	if !ok {
		a.log.Warn("unhandled event", "event", ev.String())
		return
	}
	a.log.Debug("dispatch", "event", ev.String())
	h()
}

// Text returns the current text content.
func (a *App) Text() string { return a.text }

// Image returns the displayed bitmap, or nil when nothing is shown.
func (a *App) Image() image.Image {
	if a.image == nil {
		return nil
	}
	return a.image
}

// SetText records a user edit of the text field.
func (a *App) SetText(text string) {
	a.text = text
}

func (a *App) setText(text string) {
	a.text = text
	a.display.ShowText(text)
}

func (a *App) setImage(img *image.NRGBA) {
	a.image = img
	if img == nil {
		a.display.ShowImage(nil)
		return
	}
	a.display.ShowImage(img)
}

// Generate encodes the current text and displays the result. Empty text
// clears the image.
func (a *App) Generate() {
	if a.text == "" {
		a.setImage(nil)
		return
	}

	raster, err := a.encoder.Encode(a.text)
	if err != nil {
		a.log.Error("encode failed", "len", len(a.text), "error", err)
		a.dialogs.ShowError(err.Error())
		return
	}
	a.setImage(qr.Displayable(raster))
	a.log.Debug("qr generated", "len", len(a.text), "size", raster.Bounds().Dx())
}

// Decode asks for an image file and decodes it.
func (a *App) Decode() {
	a.dialogs.OpenImage(func(path string) {
		a.DecodeFile(path)
	})
}

// DecodeFile decodes the QR code in the image at path into the text field.
// Failures are reported through an error dialog and leave the text
// unchanged.
func (a *App) DecodeFile(path string) error {
	text, err := a.decoder.DecodeFile(path)
	if err == nil && text == "" {
		err = qr.ErrNotFound
	}
	if err != nil {
		a.log.Warn("decode failed", "path", path, "error", err)
		if errors.Is(err, qr.ErrNotFound) {
			a.dialogs.ShowError(NotFoundMessage)
		} else {
			a.dialogs.ShowError(err.Error())
		}
		return err
	}

	a.log.Info("qr decoded", "path", path, "len", len(text))
	a.setText(text)
	return nil
}

// Drop decodes the first of the dropped URIs. The rest are ignored.
func (a *App) Drop(uris []string) {
	if len(uris) == 0 {
		return
	}
	if len(uris) > 1 {
		a.log.Info("ignoring extra dropped files", "count", len(uris)-1)
	}

	path, err := PathFromURI(uris[0])
	if err != nil {
		a.log.Warn("unsupported drop", "uri", uris[0], "error", err)
		a.dialogs.ShowError(err.Error())
		return
	}
	a.DecodeFile(path)
}

// Export asks for a destination and writes the displayed bitmap as PNG.
func (a *App) Export() {
	if a.image == nil {
		a.dialogs.ShowError(ErrNothingToExport.Error())
		return
	}
	img := a.image
	a.dialogs.SaveImage(func(path string) {
		if err := qr.SavePNG(path, img); err != nil {
			a.log.Error("export failed", "path", path, "error", err)
			a.dialogs.ShowError(err.Error())
			return
		}
		a.log.Info("qr exported", "path", path)
	})
}

// EncodeClipboard copies the clipboard text into the text field and
// generates its code. An empty or unreadable clipboard is a no-op.
func (a *App) EncodeClipboard() {
	if a.clipboard == nil {
		return
	}
	text, err := a.clipboard.ReadText()
	if err != nil {
		a.log.Warn("read clipboard", "error", err)
		return
	}
	if text == "" {
		return
	}
	a.setText(text)
	a.Generate()
}

// PathFromURI turns a dropped file URI (or a bare path) into a filesystem
// path.
func PathFromURI(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("empty uri")
	}
	if !strings.Contains(raw, "://") && !strings.HasPrefix(raw, "file:") {
		return raw, nil
	}

	// URI lists separate entries with CRLF.
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse uri %q: %w", raw, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported uri scheme %q", u.Scheme)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("remote file uri %q", raw)
	}

	path := u.Path
	if runtime.GOOS == "windows" {
		path = strings.TrimPrefix(path, "/")
	}
	return filepath.FromSlash(path), nil
}
