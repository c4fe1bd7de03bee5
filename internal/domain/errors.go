package domain

import (
	"errors"
	"fmt"
)

// Adapter errors - 儲存適配器層錯誤
var (
	// ErrNotFound indicates the requested path does not exist
	ErrNotFound = errors.New("path not found")

	// ErrPermissionDenied indicates insufficient permissions
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotDirectory indicates expected a directory but got a file
	ErrNotDirectory = errors.New("not a directory")

	// ErrUnsupportedScheme indicates no adapter handles the URI scheme
	ErrUnsupportedScheme = errors.New("unsupported scheme")

	// ErrBackend marks any failure reported by a filesystem adapter during a query
	ErrBackend = errors.New("backend error")
)

// Query errors - 查詢參數錯誤
var (
	// ErrInvalidDate indicates a malformed --before/--after value
	ErrInvalidDate = errors.New("invalid date representation")

	// ErrInvalidSpec indicates a malformed size, replication or age value
	ErrInvalidSpec = errors.New("invalid spec")

	// ErrInvalidPattern indicates the name pattern is not a valid regular expression
	ErrInvalidPattern = errors.New("invalid name pattern")

	// ErrInvalidType indicates a type filter other than f or d
	ErrInvalidType = errors.New("invalid type filter")
)

// Config errors - 設定檔錯誤
var (
	// ErrConfigNotFound indicates config file not found
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates config file is malformed
	ErrConfigInvalid = errors.New("invalid config")
)

// BackendError wraps an adapter failure with the operation and path that caused it.
// errors.Is(err, ErrBackend) is true for every BackendError.
type BackendError struct {
	Op   string
	Path string
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying adapter error
func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrBackend
func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}
