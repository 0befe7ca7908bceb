package main

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclaw/qrpad/app"
	"github.com/openclaw/qrpad/qr"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func testConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: error\ndecode:\n  fallback: false\n"), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "qrpad "+version+"\n", out)
}

func TestEncodeDecode(t *testing.T) {
	cfg := testConfig(t)
	png := filepath.Join(t.TempDir(), "hello.png")

	_, err := execute(t, "--config", cfg, "encode", "HELLO", "-o", png)
	require.NoError(t, err)
	assert.FileExists(t, png)

	out, err := execute(t, "--config", cfg, "decode", png)
	require.NoError(t, err)
	assert.Equal(t, "HELLO\n", out)
}

func TestEncodeTerminalOnly(t *testing.T) {
	out, err := execute(t, "--config", testConfig(t), "encode", "HELLO", "-o", "", "--terminal")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestDecodeNotFound(t *testing.T) {
	blank := image.NewGray(image.Rect(0, 0, 100, 100))
	for i := range blank.Pix {
		blank.Pix[i] = 0xff
	}
	path := filepath.Join(t.TempDir(), "blank.png")
	require.NoError(t, qr.SavePNG(path, blank))

	_, err := execute(t, "--config", testConfig(t), "decode", path)
	require.Error(t, err)
	assert.Equal(t, app.NotFoundMessage, err.Error())
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("qr:\n  level: nope\n"), 0o644))

	_, err := execute(t, "--config", path, "decode", "x.png")
	assert.ErrorContains(t, err, "load config")
}

func TestRootRejectsArgs(t *testing.T) {
	_, err := execute(t, "unexpected")
	assert.Error(t, err)
}
