package app

import (
	"bytes"

	"github.com/atotto/clipboard"
)

// writeClipboard is replaced in tests; the system clipboard may be missing.
var writeClipboard = clipboard.WriteAll

// copySelection puts the selected cells on the system clipboard as RLE.
func (a *App) copySelection() error {
	var buf bytes.Buffer
	if err := a.editor.Document().WriteSelection(&buf); err != nil {
		return err
	}
	return writeClipboard(buf.String())
}
