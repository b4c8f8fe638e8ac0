package core

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

var (
	// ErrConflict means the remote rejected a write on its unique key
	// (or the object already exists). Counted as skipped, never as failed.
	ErrConflict = errors.New("unique key conflict")

	// ErrNotFound means an update matched no remote record.
	ErrNotFound = errors.New("record not found")

	// ErrRelationMissing means the target table does not exist.
	// Every remaining write would fail the same way, so the run aborts.
	ErrRelationMissing = errors.New("target relation does not exist")
)

// ConfigError is a fatal configuration problem: missing credentials,
// missing input file, missing target relation. It aborts the run before
// (or instead of) further uploads.
type ConfigError struct {
	Field       string // Setting or resource at fault: "SUPABASE_URL", "input"
	Problem     string
	Remediation string
	Err         error
}

func (e *ConfigError) Error() string {
	if e.Remediation == "" {
		return fmt.Sprintf("configuration error: %s", e.Problem)
	}
	return fmt.Sprintf("configuration error: %s (%s)", e.Problem, e.Remediation)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is (or wraps) a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// RemoteError is a non-success response from the backend.
type RemoteError struct {
	Status int    // HTTP status, or 0 for non-HTTP drivers
	Code   string // Backend error code (PostgREST/SQLSTATE), if known
	Body   string // Response body or driver message
	Kind   error  // ErrConflict, ErrNotFound, ErrRelationMissing or nil
}

func (e *RemoteError) Error() string {
	body := Truncate(e.Body, 200)
	switch {
	case e.Status > 0 && e.Code != "":
		return fmt.Sprintf("remote status %d (%s): %s", e.Status, e.Code, body)
	case e.Status > 0:
		return fmt.Sprintf("remote status %d: %s", e.Status, body)
	case e.Code != "":
		return fmt.Sprintf("remote error %s: %s", e.Code, body)
	default:
		return "remote error: " + body
	}
}

func (e *RemoteError) Unwrap() error {
	return e.Kind
}

// relationMissingPattern matches the backend's "table does not exist" signature,
// e.g. `relation "public.priority_leads" does not exist`.
var relationMissingPattern = regexp.MustCompile(`(?i)relation\s+\S+\s+does not exist`)

// columnMissingPattern matches `column "x" of relation "t" does not exist`,
// which names a relation that does exist.
var columnMissingPattern = regexp.MustCompile(`(?i)column\s+\S+\s+of\s+relation\s+\S+\s+does not exist`)

// Relation-missing and conflict codes from PostgreSQL and PostgREST.
const (
	CodeUndefinedTable  = "42P01"
	CodeSchemaCacheMiss = "PGRST205"
	CodeUniqueViolation = "23505"
)

// ClassifyRemote turns a non-success status and body into a *RemoteError.
// code is the backend error code when the caller already parsed one.
func ClassifyRemote(status int, code, body string) *RemoteError {
	re := &RemoteError{Status: status, Code: code, Body: body}

	switch {
	case IsRelationMissing(code, body):
		re.Kind = ErrRelationMissing
	case status == http.StatusConflict || code == CodeUniqueViolation:
		re.Kind = ErrConflict
	case isStorageConflict(body):
		re.Kind = ErrConflict
	case isBucketMissing(body):
		re.Kind = ErrRelationMissing
	}
	return re
}

// IsRelationMissing detects the distinguished "target table does not exist" error.
// A backend code is authoritative; the text is only consulted without one.
func IsRelationMissing(code, text string) bool {
	if code != "" {
		return code == CodeUndefinedTable || code == CodeSchemaCacheMiss
	}
	if columnMissingPattern.MatchString(text) {
		return false
	}
	if relationMissingPattern.MatchString(text) {
		return true
	}
	lower := strings.ToLower(text)
	return strings.Contains(lower, "could not find the table")
}

// Storage reports an existing object as a 400 with an embedded 409.
func isStorageConflict(body string) bool {
	lower := strings.ToLower(body)
	if strings.Contains(lower, `"statuscode":"409"`) {
		return true
	}
	return strings.Contains(lower, "the resource already exists")
}

// Storage reports a missing bucket as a 400 with an embedded 404.
func isBucketMissing(body string) bool {
	return strings.Contains(strings.ToLower(body), "bucket not found")
}

// Truncate shortens s to at most n runes for reporting.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
