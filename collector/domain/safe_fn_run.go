package domain

import (
	"fmt"
)

// SafeFunctionRun executes fn and converts a panic into an error, so a
// faulty writer or subscriber cannot take the sampling worker down.
func SafeFunctionRun(fn func() error, logger Logger) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
			logger.Error("recovered panic: %v", rec)
		}
	}()
	err = fn()
	return
}
