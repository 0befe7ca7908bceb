package app

import "github.com/atotto/clipboard"

// Clipboard reads text from a clipboard.
type Clipboard interface {
	ReadText() (string, error)
}

// SystemClipboard reads the desktop clipboard.
type SystemClipboard struct{}

func (SystemClipboard) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", nil
	}
	return clipboard.ReadAll()
}
