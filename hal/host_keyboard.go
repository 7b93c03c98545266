//go:build cgo && !gl

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// pollEbiten forwards this frame's key presses. Must run inside Update.
func (k *hostKeyboard) pollEbiten() {
	for _, r := range ebiten.AppendInputChars(nil) {
		k.emit(KeyEvent{Press: true, Rune: r})
	}

	edge := func(key ebiten.Key, code KeyCode) {
		if inpututil.IsKeyJustPressed(key) {
			k.emit(KeyEvent{Code: code, Press: true})
		}
		if inpututil.IsKeyJustReleased(key) {
			k.emit(KeyEvent{Code: code, Press: false})
		}
	}
	edge(ebiten.KeyEscape, KeyEscape)
	edge(ebiten.KeyEnter, KeyEnter)
}
