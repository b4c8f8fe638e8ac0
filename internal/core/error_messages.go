// Package core provides the reconciliation and batch upload logic for lead data.
//
// # Error Codes Reference
//
// Failure details in run summaries are annotated with a code so an operator
// can tell a schema problem from a flaky network at a glance.
//
// # Remote Errors (REL, DUP, AUTH)
//
//	REL001 - Target table missing: The remote relation does not exist
//	         Action: Create the table or check LEADS_TABLE
//	         Patterns: "relation" + "does not exist", "could not find the table"
//
//	REL002 - Bucket missing: The storage bucket does not exist
//	         Action: Create the bucket or check STORAGE_BUCKET
//	         Patterns: "bucket not found"
//
//	DUP001 - Duplicate key: A record with this key already exists
//	         Action: None required, reruns skip existing records
//	         Patterns: "duplicate key", "unique key conflict", "already exists"
//
//	AUTH001 - Permission denied: The credential cannot perform this write
//	          Action: Use the service key (SUPABASE_SERVICE_KEY) for updates
//	          Patterns: "row-level security", "permission denied", "status 401", "status 403"
//
// # Network Errors (NET)
//
//	NET001 - Connection failed: The backend could not be reached
//	         Action: Check SUPABASE_URL and your network connection
//	         Patterns: "connection refused", "no such host", "connection reset"
//
//	NET002 - Timeout: The backend did not answer in time
//	         Action: Retry the run, or raise BACKEND_TIMEOUT
//	         Patterns: "context deadline exceeded", "timeout"
//
// # Validation Errors (VAL)
//
//	VAL001 - Type mismatch: The backend rejected a field value
//	         Action: Check the column type against the mapping profile
//	         Patterns: "invalid input syntax", "out of range"
//
//	VAL002 - Unknown column: A mapped field is not a column of the table
//	         Action: Add the column or drop the field from the mapping profile
//	         Patterns: "column" + "does not exist", "could not find the" + "column"
//
// # File Errors (FILE)
//
//	FILE001 - File too large: File exceeds maximum size limit (100MB)
//	          Action: Split the file into smaller chunks
//	          Patterns: "file too large"
//
//	FILE002 - Invalid CSV: File is not a valid CSV
//	          Action: Ensure file is comma-separated with consistent columns
//	          Patterns: "invalid csv"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Check the log output for the raw error
//
// # Pattern Matching
//
// Patterns are matched case-insensitively using strings.Contains. A pattern
// with a second substring matches only when both are present. The first
// matching pattern wins, so more specific patterns come first.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for reference
}

// errorPattern defines a pattern to match and its corresponding user message.
// When also is set it must appear in the detail too.
type errorPattern struct {
	pattern string
	also    string
	msg     UserMessage
}

var (
	msgRelationMissing = UserMessage{
		Message: "Target table does not exist",
		Action:  "Create the table or check LEADS_TABLE",
		Code:    "REL001",
	}
	msgBucketMissing = UserMessage{
		Message: "Storage bucket does not exist",
		Action:  "Create the bucket or check STORAGE_BUCKET",
		Code:    "REL002",
	}
	msgDuplicate = UserMessage{
		Message: "A record with this key already exists",
		Action:  "None required, reruns skip existing records",
		Code:    "DUP001",
	}
	msgPermission = UserMessage{
		Message: "The credential cannot perform this write",
		Action:  "Use the service key (SUPABASE_SERVICE_KEY) for updates",
		Code:    "AUTH001",
	}
	msgConnection = UserMessage{
		Message: "The backend could not be reached",
		Action:  "Check SUPABASE_URL and your network connection",
		Code:    "NET001",
	}
	msgTimeout = UserMessage{
		Message: "The backend did not answer in time",
		Action:  "Retry the run, or raise BACKEND_TIMEOUT",
		Code:    "NET002",
	}
	msgTypeMismatch = UserMessage{
		Message: "The backend rejected a field value",
		Action:  "Check the column type against the mapping profile",
		Code:    "VAL001",
	}
	msgColumnMissing = UserMessage{
		Message: "A mapped field is not a column of the target table",
		Action:  "Add the column or drop the field from the mapping profile",
		Code:    "VAL002",
	}
)

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Order matters: a missing column names its relation, so it must be tested
// before the missing relation patterns.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Remote Errors
	// =========================================================================
	{pattern: "column", also: "does not exist", msg: msgColumnMissing},
	{pattern: "could not find the", also: "column", msg: msgColumnMissing},
	{pattern: "relation", also: "does not exist", msg: msgRelationMissing},
	{pattern: "could not find the table", msg: msgRelationMissing},
	{pattern: "bucket not found", msg: msgBucketMissing},
	{pattern: "duplicate key", msg: msgDuplicate},
	{pattern: "unique key conflict", msg: msgDuplicate},
	{pattern: "already exists", msg: msgDuplicate},
	{pattern: "row-level security", msg: msgPermission},
	{pattern: "permission denied", msg: msgPermission},
	{pattern: "status 401", msg: msgPermission},
	{pattern: "status 403", msg: msgPermission},

	// =========================================================================
	// Network Errors
	// =========================================================================
	{pattern: "connection refused", msg: msgConnection},
	{pattern: "no such host", msg: msgConnection},
	{pattern: "connection reset", msg: msgConnection},
	{pattern: "context deadline exceeded", msg: msgTimeout},
	{pattern: "timeout", msg: msgTimeout},

	// =========================================================================
	// Validation Errors
	// =========================================================================
	{pattern: "invalid input syntax", msg: msgTypeMismatch},
	{pattern: "out of range", msg: msgTypeMismatch},

	// =========================================================================
	// File Errors
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit (100MB)",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with consistent columns",
			Code:    "FILE002",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the log output for the raw error",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	return MapDetail(err.Error())
}

// MapDetail is MapError for an already-rendered error detail.
func MapDetail(detail string) UserMessage {
	if detail == "" {
		return UserMessage{}
	}

	lower := strings.ToLower(detail)
	for _, ep := range errorPatterns {
		if !strings.Contains(lower, ep.pattern) {
			continue
		}
		if ep.also != "" && !strings.Contains(lower, ep.also) {
			continue
		}
		return ep.msg
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether an error matches a known pattern
// rather than the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
