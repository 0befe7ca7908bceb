// Package ui binds the app model to a Fyne window.
package ui

import (
	"errors"
	"image"
	"log/slog"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/openclaw/qrpad/app"
	"github.com/openclaw/qrpad/config"
)

const appID = "com.openclaw.qrpad"

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Window is the main QR pad window. It implements app.Display and
// app.Dialogs on top of Fyne widgets.
type Window struct {
	win     fyne.Window
	entry   *widget.Entry
	image   *canvas.Image
	buttons map[app.Event]*widget.Button
	model   *app.App
	log     *slog.Logger
}

// NewWindow builds the window layout and wires its events to a new model.
func NewWindow(fa fyne.App, cfg config.Window, deps app.Deps) *Window {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	w := &Window{
		win:     fa.NewWindow(cfg.Title),
		buttons: make(map[app.Event]*widget.Button),
		log:     deps.Log,
	}
	w.model = app.New(w, w, deps)

	w.entry = widget.NewEntry()
	w.entry.SetPlaceHolder("Text to encode")
	w.entry.OnChanged = w.model.SetText
	w.entry.OnSubmitted = func(string) { w.model.Dispatch(app.EventGenerate) }

	w.image = canvas.NewImageFromImage(nil)
	w.image.FillMode = canvas.ImageFillContain
	w.image.SetMinSize(fyne.NewSize(160, 160))

	controls := container.NewVBox(
		w.entry,
		w.button("Generate QR Code", app.EventGenerate),
		w.button("Decode QR Image", app.EventDecode),
		w.button("Export Image", app.EventExport),
		w.button("Encode from Clipboard", app.EventClipboard),
	)
	w.win.SetContent(container.NewPadded(container.NewBorder(controls, nil, nil, nil, w.image)))
	w.win.Resize(fyne.NewSize(cfg.Width, cfg.Height))
	w.win.SetOnDropped(w.dropped)

	return w
}

func (w *Window) button(label string, ev app.Event) *widget.Button {
	b := widget.NewButton(label, func() { w.model.Dispatch(ev) })
	w.buttons[ev] = b
	return b
}

func (w *Window) dropped(_ fyne.Position, uris []fyne.URI) {
	raw := make([]string, 0, len(uris))
	for _, u := range uris {
		if u.Scheme() == "file" {
			raw = append(raw, u.Path())
			continue
		}
		raw = append(raw, u.String())
	}
	w.model.Drop(raw)
}

// ShowAndRun displays the window and blocks until it is closed.
func (w *Window) ShowAndRun() {
	w.win.ShowAndRun()
}

// ShowText implements app.Display.
func (w *Window) ShowText(text string) {
	w.entry.SetText(text)
}

// ShowImage implements app.Display.
func (w *Window) ShowImage(img image.Image) {
	w.image.Image = img
	w.image.Refresh()
}

// OpenImage implements app.Dialogs.
func (w *Window) OpenImage(onChosen func(path string)) {
	d := dialog.NewFileOpen(w.opened(onChosen), w.win)
	d.SetFilter(storage.NewExtensionFileFilter(imageExtensions))
	d.Show()
}

// SaveImage implements app.Dialogs.
func (w *Window) SaveImage(onChosen func(path string)) {
	d := dialog.NewFileSave(w.saved(onChosen), w.win)
	d.SetFileName("qrcode.png")
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	d.Show()
}

// opened handles the open dialog result. A nil reader means cancelled.
func (w *Window) opened(onChosen func(string)) func(fyne.URIReadCloser, error) {
	return func(r fyne.URIReadCloser, err error) {
		if err != nil {
			w.ShowError(err.Error())
			return
		}
		if r == nil {
			return
		}
		uri := r.URI()
		r.Close()
		w.chosen(uri, onChosen)
	}
}

// saved handles the save dialog result. A nil writer means cancelled.
func (w *Window) saved(onChosen func(string)) func(fyne.URIWriteCloser, error) {
	return func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			w.ShowError(err.Error())
			return
		}
		if wc == nil {
			return
		}
		uri := wc.URI()
		wc.Close()
		w.chosen(uri, onChosen)
	}
}

func (w *Window) chosen(uri fyne.URI, onChosen func(string)) {
	if uri.Scheme() != "file" {
		w.ShowError("unsupported location " + uri.String())
		return
	}
	onChosen(uri.Path())
}

// ShowError implements app.Dialogs.
func (w *Window) ShowError(message string) {
	dialog.ShowError(errors.New(message), w.win)
}

// Run starts the desktop application and blocks until the window closes.
func Run(cfg *config.Config, deps app.Deps) {
	fa := fyneapp.NewWithID(appID)
	w := NewWindow(fa, cfg.Window, deps)
	w.log.Info("window opened", "title", cfg.Window.Title)
	w.ShowAndRun()
}
