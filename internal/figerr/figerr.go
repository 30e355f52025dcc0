// Package figerr defines the error taxonomy of the figure pipeline.
// Every failure that aborts a run is one of four kinds, and each kind maps to
// a distinct process exit code.
package figerr

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// KindConfig indicates a missing or invalid parameter.
	KindConfig Kind = iota + 1

	// KindDataLoad indicates missing or malformed input data.
	KindDataLoad

	// KindRendering indicates a plotting backend failure, including an
	// unavailable LaTeX toolchain.
	KindRendering

	// KindWrite indicates an output path that could not be written.
	KindWrite
)

// Sentinels for errors.Is matching against a Kind.
var (
	ErrConfig    = errors.New("config error")
	ErrDataLoad  = errors.New("data load error")
	ErrRendering = errors.New("rendering error")
	ErrWrite     = errors.New("write error")
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "ConfigError"
	case KindDataLoad:
		return "DataLoadError"
	case KindRendering:
		return "RenderingError"
	case KindWrite:
		return "WriteError"
	}
	return "Error"
}

// Prefix returns the display prefix for this kind.
func (k Kind) Prefix() string {
	switch k {
	case KindConfig:
		return "[CONFIG]"
	case KindDataLoad:
		return "[DATA]"
	case KindRendering:
		return "[RENDER]"
	case KindWrite:
		return "[FS]"
	}
	return "[ERROR]"
}

func (k Kind) sentinel() error {
	switch k {
	case KindConfig:
		return ErrConfig
	case KindDataLoad:
		return ErrDataLoad
	case KindRendering:
		return ErrRendering
	case KindWrite:
		return ErrWrite
	}
	return nil
}

// Error wraps a cause with its kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s %v", e.Kind.Prefix(), e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind.Prefix(), e.Op, e.Err)
}

// Unwrap returns the cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func newf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Config builds a ConfigError.
func Config(op, format string, args ...any) error {
	return newf(KindConfig, op, format, args...)
}

// DataLoad builds a DataLoadError.
func DataLoad(op, format string, args ...any) error {
	return newf(KindDataLoad, op, format, args...)
}

// Rendering builds a RenderingError.
func Rendering(op, format string, args ...any) error {
	return newf(KindRendering, op, format, args...)
}

// Write builds a WriteError.
func Write(op, format string, args ...any) error {
	return newf(KindWrite, op, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindConfig:
		return 2
	case KindDataLoad:
		return 3
	case KindRendering:
		return 4
	case KindWrite:
		return 5
	}
	return 1
}
