// Package claim turns a tagged photo selection into a renamed copy.
package claim

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNoFile          = errors.New("no image selected")
	ErrNoDevice        = errors.New("no device selected")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidName     = errors.New("device or remark cannot be used in a file name")

	// ErrDestinationExists is returned by Commit when the target exists and
	// overwriting was not confirmed.
	ErrDestinationExists = errors.New("destination already exists")
)

// ValidationError means the claim was rejected before anything touched disk.
type ValidationError struct {
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IOError means a file operation failed; earlier steps may already have
// written to disk.
type IOError struct {
	Op   string // "copy", "log", "ledger", "snapshot"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Selection is the pending form state for one claim.
type Selection struct {
	Device   string
	File     string // absolute path of the source image
	Remark   string
	Quantity string // as typed
}

// Validate checks the selection and returns the parsed quantity.
func Validate(sel Selection) (int, error) {
	if strings.TrimSpace(sel.File) == "" {
		return 0, &ValidationError{Err: ErrNoFile}
	}
	device := strings.TrimSpace(sel.Device)
	if device == "" {
		return 0, &ValidationError{Err: ErrNoDevice}
	}
	qty, err := ParseQuantity(sel.Quantity)
	if err != nil {
		return 0, err
	}
	if reason := invalidSegmentReason(device); reason != "" {
		return 0, &ValidationError{Err: ErrInvalidName, Detail: "device " + reason}
	}
	if remark := strings.TrimSpace(sel.Remark); remark != "" {
		if reason := invalidSegmentReason(remark); reason != "" {
			return 0, &ValidationError{Err: ErrInvalidName, Detail: "remark " + reason}
		}
	}
	return qty, nil
}

// ParseQuantity accepts a string of ASCII digits with a value above zero.
func ParseQuantity(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Err: ErrInvalidQuantity, Detail: "empty"}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, &ValidationError{Err: ErrInvalidQuantity, Detail: strconv.Quote(s)}
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, &ValidationError{Err: ErrInvalidQuantity, Detail: strconv.Quote(s)}
	}
	return n, nil
}

func invalidSegmentReason(seg string) string {
	if strings.ContainsAny(seg, `<>:"/\|?*`) {
		return "has invalid characters"
	}
	for _, r := range seg {
		if r < 0x20 || r == 0x7f {
			return "has control characters"
		}
	}
	return ""
}
