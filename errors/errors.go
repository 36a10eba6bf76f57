// Package errors provides error handling for libref.
//
// It re-exports github.com/cockroachdb/errors so every package wraps with
// stack traces and can attach user hints:
//
//	if err := nav.Update(path, out); err != nil {
//	    return errors.Wrap(err, "failed to update manifest")
//	}
//
//	return errors.WithHint(err, "run 'libref' to regenerate the reference")
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	"io/fs"

	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Sentinel errors shared across packages. Wrap them to add context;
// check them with errors.Is.
var (
	// ErrClassNotFound means the requested class is not defined in the source.
	ErrClassNotFound = New("class not found")

	// ErrParse means the Python source could not be parsed.
	ErrParse = New("parse failed")

	// ErrGroupNotFound means the manifest has no group to replace.
	ErrGroupNotFound = New("manifest group not found")

	// ErrOutOfDate means generated documents differ from what is on disk.
	ErrOutOfDate = New("reference is out of date")

	// ErrUnsupportedSource means a library source could not be resolved to a directory.
	ErrUnsupportedSource = New("unsupported library source")
)

// IsSkippable reports whether err only affects a single class, so a run
// can log it and move on: the class is gone, its file is gone or the file
// does not parse.
func IsSkippable(err error) bool {
	return err != nil && IsAny(err, ErrClassNotFound, ErrParse, fs.ErrNotExist)
}
