//go:build !cgo || gl

package hal

import "errors"

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	Width  int
	Height int
	Title  string
	Hz     int
}

func RunWindow(_ AppFunc, _ WindowConfig) error {
	return errors.New("window mode requires cgo and a build without the gl tag")
}
