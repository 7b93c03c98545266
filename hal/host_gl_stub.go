//go:build !gl || !cgo

package hal

import "errors"

func RunGL(_ AppFunc, _ WindowConfig) error {
	return errors.New("gl mode requires the gl build tag and cgo (go build -tags gl)")
}
