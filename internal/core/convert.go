package core

// convert.go provides type coercion for free-text CSV cells.
//
// These functions handle the messy reality of exported spreadsheets:
//   - Currency symbols and thousand separators in numbers
//   - Accounting negatives: (1,234.56)
//   - Various boolean representations (yes/no, true/false, 1/0)
//   - Excel formula prefixes (="value")
//   - Float renderings of integers ("1962.0")
//
// All To* functions return nil for empty or unparsable input. A bad cell
// never fails the whole record.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Coerce converts v to the declared field type.
// Already-typed values pass through unchanged so coercion is idempotent.
func Coerce(v any, t FieldType) any {
	switch t {
	case FieldInteger:
		return ToInteger(v)
	case FieldDecimal:
		return ToDecimal(v)
	case FieldBool:
		return ToBool(v)
	default:
		return ToText(v)
	}
}

// ToText converts a value to a cleaned string.
// Returns nil if the value is empty or only whitespace.
func ToText(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		s := CleanCell(x)
		if s == "" {
			return nil
		}
		return s
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return nil
	}
}

// ToInteger converts a value to int64.
// Fractional values are truncated toward zero.
func ToInteger(v any) any {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x >= math.MaxInt64 || x < math.MinInt64 {
			return nil
		}
		return int64(x)
	case bool:
		return nil
	case string:
		text, ok := numericText(x)
		if !ok {
			return nil
		}
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil
		}
		// float64(MaxInt64) rounds up to 2^63, which does not fit.
		if f >= math.MaxInt64 || f < math.MinInt64 {
			return nil
		}
		return int64(f)
	default:
		return nil
	}
}

// ToDecimal converts a value to float64.
func ToDecimal(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return x
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case string:
		f, ok := parseNumber(x)
		if !ok {
			return nil
		}
		return f
	default:
		return nil
	}
}

// ToBool converts a value to bool.
// Accepts various representations: true/false, yes/no, t/f, y/n, 1/0.
func ToBool(v any) any {
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return boolFromInt(x)
	case int:
		return boolFromInt(int64(x))
	case float64:
		if x == 0 || x == 1 {
			return x == 1
		}
		return nil
	case string:
		switch strings.TrimSpace(strings.ToLower(CleanCell(x))) {
		case "true", "t", "yes", "y", "1", "1.0":
			return true
		case "false", "f", "no", "n", "0", "0.0":
			return false
		}
		return nil
	default:
		return nil
	}
}

func boolFromInt(i int64) any {
	switch i {
	case 0:
		return false
	case 1:
		return true
	}
	return nil
}

// parseNumber handles currency symbols, thousands separators, and
// accounting format (parentheses for negative).
func parseNumber(s string) (float64, bool) {
	s, ok := numericText(s)
	if !ok {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// numericText strips spreadsheet formatting and reports whether what is left
// is a plain number.
func numericText(s string) (string, bool) {
	s = strings.TrimSpace(CleanCell(s))
	if s == "" {
		return "", false
	}

	switch strings.ToLower(s) {
	case "nan", "null", "none", "n/a", "inf", "-inf":
		return "", false
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "\u20ac", "") // Euro
	s = strings.ReplaceAll(s, "\u00a3", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return "", false
	}
	return s, true
}

// NormalizeKey derives the matching key from a raw identifier.
// Hyphens collapse to underscores so "29-22-28-0000-00-010" and
// "29_22_28_0000_00_010" compare equal. Normalizing twice is a no-op.
func NormalizeKey(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "-", "_")
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}

// IsEmpty reports whether a remote or local value counts as a gap:
// null, blank text, numeric zero or false.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case int64:
		return x == 0
	case int:
		return x == 0
	case float64:
		return x == 0
	case bool:
		return !x
	default:
		return false
	}
}
