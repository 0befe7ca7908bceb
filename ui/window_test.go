package ui

import (
	"errors"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/qrpad/app"
	"github.com/openclaw/qrpad/config"
	"github.com/openclaw/qrpad/qr"
)

type stubClipboard string

func (s stubClipboard) ReadText() (string, error) { return string(s), nil }

func newTestWindow(t *testing.T, cb app.Clipboard) *Window {
	t.Helper()
	enc, err := qr.NewEncoder(qr.DefaultOptions())
	require.NoError(t, err)

	fa := test.NewTempApp(t)
	return NewWindow(fa, config.Window{Title: "QR Code App", Width: 400, Height: 300}, app.Deps{
		Encoder:   enc,
		Decoder:   qr.NewDecoder(qr.DecoderOptions{TryHarder: true}, nil),
		Clipboard: cb,
	})
}

func TestWindowLayout(t *testing.T) {
	w := newTestWindow(t, nil)

	assert.Equal(t, "QR Code App", w.win.Title())
	assert.Len(t, w.buttons, 4)
	assert.Equal(t, "Generate QR Code", w.buttons[app.EventGenerate].Text)
	assert.Equal(t, "Encode from Clipboard", w.buttons[app.EventClipboard].Text)
	assert.Nil(t, w.image.Image)
}

func TestWindowGenerate(t *testing.T) {
	w := newTestWindow(t, nil)

	w.entry.SetText("HELLO")
	test.Tap(w.buttons[app.EventGenerate])

	assert.Equal(t, "HELLO", w.model.Text())
	require.NotNil(t, w.image.Image)
	assert.Equal(t, w.model.Image(), w.image.Image)

	w.entry.SetText("")
	test.Tap(w.buttons[app.EventGenerate])
	assert.Nil(t, w.image.Image)
}

func TestWindowClipboard(t *testing.T) {
	w := newTestWindow(t, stubClipboard("https://example.com"))

	test.Tap(w.buttons[app.EventClipboard])

	assert.Equal(t, "https://example.com", w.entry.Text)
	assert.NotNil(t, w.image.Image)
}

func TestWindowDrop(t *testing.T) {
	w := newTestWindow(t, nil)

	enc, err := qr.NewEncoder(qr.DefaultOptions())
	require.NoError(t, err)
	img, err := enc.Encode("dropped text")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "drop.png")
	require.NoError(t, qr.SavePNG(path, img))

	w.dropped(fyne.NewPos(10, 10), []fyne.URI{storage.NewFileURI(path)})

	assert.Equal(t, "dropped text", w.entry.Text)
	assert.Equal(t, "dropped text", w.model.Text())
}

func TestWindowChosenRejectsNonFileURI(t *testing.T) {
	w := newTestWindow(t, nil)
	uri, err := storage.ParseURI("mem://x")
	require.NoError(t, err)

	called := false
	w.chosen(uri, func(string) { called = true })

	assert.False(t, called)
	assert.NotNil(t, w.win.Canvas().Overlays().Top())
}

func TestWindowChosenFileURI(t *testing.T) {
	w := newTestWindow(t, nil)
	path := filepath.Join(t.TempDir(), "code.png")

	var got string
	w.chosen(storage.NewFileURI(path), func(p string) { got = p })

	assert.Equal(t, path, got)
	assert.Nil(t, w.win.Canvas().Overlays().Top())
}

func TestWindowDialogCancel(t *testing.T) {
	w := newTestWindow(t, nil)
	called := false
	onChosen := func(string) { called = true }

	w.opened(onChosen)(nil, nil)
	w.saved(onChosen)(nil, nil)

	assert.False(t, called)
	assert.Nil(t, w.win.Canvas().Overlays().Top())
}

func TestWindowDialogError(t *testing.T) {
	w := newTestWindow(t, nil)
	called := false

	w.opened(func(string) { called = true })(nil, errors.New("permission denied"))

	assert.False(t, called)
	assert.NotNil(t, w.win.Canvas().Overlays().Top())
}
