package ports

import (
	"errors"
	"fmt"
	"io/fs"
)

// Error kinds. Every error returned by a Store, Ledger or Provider matches
// exactly one of these with errors.Is.
var (
	ErrInvalidPath          = errors.New("invalid path")
	ErrUnsupportedExtension = errors.New("unsupported extension")
	ErrStoreNotFound        = errors.New("no ledger for directory")
	ErrNotFound             = errors.New("not found")
	ErrPermission           = errors.New("permission denied")
	ErrEncoding             = errors.New("ledger is not valid UTF-8 text")
	ErrLockTimeout          = errors.New("timed out waiting for ledger lock")
	ErrIO                   = errors.New("i/o failure")
)

// OpError describes a failed operation on a path. Kind is one of the Err*
// sentinels above; Err is the underlying cause, if any.
type OpError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", msg, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", msg, e.Kind)
}

// Is matches the error kind, so errors.Is(err, ErrPermission) works for
// any OpError of that kind.
func (e *OpError) Is(target error) bool {
	return e.Kind == target
}

func (e *OpError) Unwrap() error { return e.Err }

// Classify wraps an OS error with the matching kind. A nil err stays nil and
// an error that is already an *OpError is returned unchanged.
func Classify(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var oe *OpError
	if errors.As(err, &oe) {
		return err
	}
	kind := ErrIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = ErrPermission
	}
	return &OpError{Op: op, Path: path, Kind: kind, Err: err}
}

// KindOf returns the sentinel kind of err, or nil if err carries none.
func KindOf(err error) error {
	for _, k := range []error{
		ErrInvalidPath, ErrUnsupportedExtension, ErrStoreNotFound, ErrNotFound,
		ErrPermission, ErrEncoding, ErrLockTimeout, ErrIO,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
