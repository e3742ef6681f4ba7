// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField matches any *MissingFieldError.
	ErrMissingField = errors.New("missing mandatory field")

	// ErrPagination matches any *PaginationError.
	ErrPagination = errors.New("offset out of range")

	// ErrParse marks a file whose contents are not a valid article.
	ErrParse = errors.New("malformed article")
)

// MissingFieldError reports a Section Entry that lacks a mandatory field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing mandatory field %q", e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// PaginationError reports an offset or limit that does not fit the path list.
type PaginationError struct {
	Offset int
	Limit  int
	Total  int
}

func (e *PaginationError) Error() string {
	if e.Limit < 0 {
		return fmt.Sprintf("negative limit %d", e.Limit)
	}
	return fmt.Sprintf("offset %d out of range for %d paths", e.Offset, e.Total)
}

func (e *PaginationError) Is(target error) bool { return target == ErrPagination }

// FileError records an article file that could not be opened, read, or parsed.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
