package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/birbnest/jsonregistry/internal/pool"
)

// Kind categorizes a registry error for callers that need to branch on
// failure mode rather than parse error text.
type Kind int

const (
	// KindUnknown is an unclassified error.
	KindUnknown Kind = iota
	// KindInvalidJSON means the input could not be parsed or canonicalised.
	KindInvalidJSON
	// KindInvalidIdentifier means a table/column name failed validation.
	KindInvalidIdentifier
	// KindPoolTimeout means acquire_timeout_secs elapsed with no free connection.
	KindPoolTimeout
	// KindPoolClosed means the operation was attempted on a drained pool.
	KindPoolClosed
	// KindDatabase means a round-trip to the database failed.
	KindDatabase
	// KindCancelled means the caller's operation was cancelled before completion.
	KindCancelled
)

// String renders the kind the way it will appear in error text and logs.
func (k Kind) String() string {
	switch k {
	case KindInvalidJSON:
		return "invalid_json"
	case KindInvalidIdentifier:
		return "invalid_identifier"
	case KindPoolTimeout:
		return "pool_timeout"
	case KindPoolClosed:
		return "pool_closed"
	case KindDatabase:
		return "database"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Sub further classifies a KindDatabase error.
type Sub int

const (
	SubNone Sub = iota
	SubConnection
	SubQuery
	SubConstraint
	SubOther
)

func (s Sub) String() string {
	switch s {
	case SubConnection:
		return "connection"
	case SubQuery:
		return "query"
	case SubConstraint:
		return "constraint"
	case SubOther:
		return "other"
	default:
		return ""
	}
}

// Error is the enhanced error type the core surfaces to every caller.
// It carries a Kind for errors.Is/errors.As-based branching and wraps
// the underlying cause for diagnostics, modeled on the teacher SDK's
// Type/Message/wrapped Error shape.
type Error struct {
	Kind    Kind
	Sub     Sub
	Message string
	wrapped error
}

func (e *Error) Error() string {
	if e.Kind == KindDatabase && e.Sub != SubNone {
		return fmt.Sprintf("registry: %s(%s): %s", e.Kind, e.Sub, e.Message)
	}
	return fmt.Sprintf("registry: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

// Is lets errors.Is(err, registry.ErrPoolTimeout) style sentinels match
// against a Kind, the way the teacher SDK's Error.Is matches ErrorType.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindPoolTimeout:
		return errors.Is(target, ErrPoolTimeout)
	case KindPoolClosed:
		return errors.Is(target, ErrPoolClosed)
	case KindInvalidJSON:
		return errors.Is(target, ErrInvalidJSON)
	case KindInvalidIdentifier:
		return errors.Is(target, ErrInvalidIdentifier)
	case KindCancelled:
		return errors.Is(target, ErrCancelled)
	}
	return false
}

// Sentinel errors usable with errors.Is without pulling in the Kind
// enum, matching the style of the teacher SDK's package-level Err* vars.
var (
	ErrInvalidJSON       = errors.New("invalid json")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrPoolTimeout       = errors.New("pool acquire timeout")
	ErrPoolClosed        = errors.New("pool closed")
	ErrCancelled         = errors.New("operation cancelled")
)

func newError(kind Kind, message string, wrapped error) *Error {
	return &Error{Kind: kind, Message: message, wrapped: wrapped}
}

func newDatabaseError(sub Sub, message string, wrapped error) *Error {
	return &Error{Kind: KindDatabase, Sub: sub, Message: message, wrapped: wrapped}
}

// classifyPoolError turns a pool.Acquire failure into a registry Error,
// reclassifying pool.ErrAcquireTimeout/pool.ErrClosed since internal/pool
// cannot import internal/registry (registry.Core depends on pool.Pool).
func classifyPoolError(err error) *Error {
	switch {
	case errors.Is(err, pool.ErrAcquireTimeout):
		return newError(KindPoolTimeout, "no connection became available in time", err)
	case errors.Is(err, pool.ErrClosed):
		return newError(KindPoolClosed, "pool has been closed", err)
	default:
		return newDatabaseError(SubConnection, "failed to acquire connection", err)
	}
}

// scrubConnString redacts a connection string's password so it is safe
// to embed in an error message: the substring between "://" and "@" has
// its ":password" segment replaced with ":***".
func scrubConnString(connString string) string {
	schemeSep := strings.Index(connString, "://")
	if schemeSep < 0 {
		return connString
	}
	at := strings.Index(connString[schemeSep+3:], "@")
	if at < 0 {
		return connString
	}
	at += schemeSep + 3

	userinfo := connString[schemeSep+3 : at]
	colon := strings.Index(userinfo, ":")
	if colon < 0 {
		return connString
	}

	return connString[:schemeSep+3] + userinfo[:colon] + ":***" + connString[at:]
}
