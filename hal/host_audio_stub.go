//go:build !cgo || gl

package hal

// No audio device without cgo, and none in gl builds.
func newHostAudio() Audio { return nil }
