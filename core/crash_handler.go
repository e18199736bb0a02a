package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"
)

var crashReset atomic.Pointer[func()]

// SetCrashReset registers cleanup run before a crash report, the sandbox restores its screen here
func SetCrashReset(fn func()) {
	if fn == nil {
		crashReset.Store(nil)
		return
	}
	crashReset.Store(&fn)
}

// HandleCrash runs the reset hook, prints r with its stack and exits
// A nil r is ignored so it can be fed recover() directly
func HandleCrash(r any) {
	if r == nil {
		return
	}
	if fn := crashReset.Load(); fn != nil {
		(*fn)()
	}

	_ = os.Stdout.Sync()
	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mpanic: %v\x1b[0m\r\n%s\r\n", r, debug.Stack())
	_ = os.Stderr.Sync()
	os.Exit(2)
}

// Go starts fn on a new goroutine whose panics go through HandleCrash
func Go(fn func()) {
	go func() {
		defer func() { HandleCrash(recover()) }()
		fn()
	}()
}
