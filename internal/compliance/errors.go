package compliance

import (
	"errors"
	"fmt"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("compliance: invalid draft")

// ValidationError rejects a draft before anything is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Warning codes. Warnings are advisory and never block a write.
const (
	WarnTargetWrongSide = "target_wrong_side"
	WarnStopWrongSide   = "stop_wrong_side"
	WarnExitAtTarget    = "exit_at_target"
)

type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func codes(ws []Warning) []string {
	if len(ws) == 0 {
		return nil
	}
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}
