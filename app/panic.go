package app

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// panicked logs a recovered step panic with its stack and turns it into an
// error so the runner can shut down cleanly.
func (a *App) panicked(v any) error {
	if a.log != nil {
		a.log.WriteLineString(fmt.Sprintf("SharpEngine panic: %v", v))
		for _, line := range strings.Split(string(debug.Stack()), "\n") {
			if line == "" {
				continue
			}
			a.log.WriteLineString(line)
		}
	}
	return fmt.Errorf("app: panic: %v", v)
}
