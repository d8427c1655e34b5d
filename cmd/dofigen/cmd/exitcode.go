package cmd

import (
	"errors"

	"github.com/dofigen/dofigen-go/internal/dofigenerr"
)

// Exit codes per spec: 0 success, 1 generic error, 2 invalid input
// (parse/validation), 3 lock mismatch, 4 network/IO error in Locked mode.
const (
	exitOK             = 0
	exitGeneric        = 1
	exitInvalidInput   = 2
	exitLockMismatch   = 3
	exitNetworkOrIO    = 4
)

func exitCodeFor(err error) int {
	if err == nil {
		return exitOK
	}
	var derr *dofigenerr.Error
	if !errors.As(err, &derr) {
		return exitGeneric
	}
	switch derr.Kind {
	case dofigenerr.KindParse, dofigenerr.KindInvalidShortcut, dofigenerr.KindSchemaViolation,
		dofigenerr.KindExtendCycle, dofigenerr.KindStageCycle, dofigenerr.KindUnknownReference:
		return exitInvalidInput
	case dofigenerr.KindLockMismatch, dofigenerr.KindLockMissing:
		return exitLockMismatch
	case dofigenerr.KindResource:
		return exitNetworkOrIO
	default:
		return exitGeneric
	}
}
