package store

import (
	"fmt"
	"strings"
)

// RecoveryPolicy decides what hydration does with a corrupted blob.
type RecoveryPolicy int

const (
	// RecoverReset logs a warning and starts from an empty collection. The
	// corrupted blob is replaced by the next write.
	RecoverReset RecoveryPolicy = iota
	// RecoverFail returns the CorruptedStateError to the caller. The
	// collection stays empty and Clear overwrites the blob.
	RecoverFail
)

func (p RecoveryPolicy) String() string {
	switch p {
	case RecoverReset:
		return "reset"
	case RecoverFail:
		return "fail"
	default:
		return fmt.Sprintf("RecoveryPolicy(%d)", int(p))
	}
}

// ParseRecoveryPolicy parses "reset" or "fail".
func ParseRecoveryPolicy(s string) (RecoveryPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reset":
		return RecoverReset, nil
	case "fail":
		return RecoverFail, nil
	default:
		return 0, fmt.Errorf("unknown recovery policy %q (want reset or fail)", s)
	}
}
