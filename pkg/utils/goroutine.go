package utils

import (
	"fmt"
	"runtime/debug"

	"market-khabri/pkg/logger"
)

// GoSafe runs fn in a goroutine. A panic raised by fn is recovered and logged
// at error level with its stack.
func GoSafe(log *logger.Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil && log != nil {
				log.Error("Recovered from panic in goroutine",
					logger.StringField("panic", fmt.Sprint(r)),
					logger.Field("stack", string(debug.Stack())),
				)
			}
		}()
		fn()
	}()
}

// ToPointer returns a pointer to v.
func ToPointer[T any](v T) *T {
	return &v
}
