package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// ErrUnavailable is returned by Write when Init did not succeed.
var ErrUnavailable = errors.New("clipboard unavailable")

var (
	writeMu sync.Mutex
	ready   bool
	initErr error
)

// Init prepares the OS clipboard. A failure is remembered and reported by
// every later Write instead of stopping the program.
func Init() error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := clipboard.Init(); err != nil {
		initErr = err
		ready = false
		return fmt.Errorf("clipboard init: %w", err)
	}
	initErr = nil
	ready = true
	return nil
}

// Write performs a mutex-guarded clipboard write to prevent corruption under parallel writes.
func Write(text string) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if !ready {
		if initErr != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, initErr)
		}
		return ErrUnavailable
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
