// Package value provides value-building, -deriving, and -cleaning helpers
// shared by dataset procedures and the run-results store.
package value

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// CleanWhitespace returns value with surrounding whitespace stripped and
// internal whitespace runs collapsed to a single space.
func CleanWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// Concatenate joins the string forms of values with separator, skipping nils.
// Returns "" when nothing remains to join.
func Concatenate(separator string, values ...any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		parts = append(parts, fmt.Sprint(v))
	}
	return strings.Join(parts, separator)
}

// FeatureKey returns the key string defining a unique feature from its
// ordered ID values. Nil IDs participate as empty strings so positions stay
// stable.
func FeatureKey(idValues ...any) string {
	parts := make([]string, len(idValues))
	for i, v := range idValues {
		if v != nil {
			parts[i] = fmt.Sprint(v)
		}
	}
	return CleanWhitespace(strings.Join(parts, " | "))
}

// FeatureKeyHash returns the hex SHA-256 of the feature key, or "" when the
// key itself is empty.
func FeatureKeyHash(idValues ...any) string {
	key := FeatureKey(idValues...)
	if key == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// EnforceYN returns value if it is a valid "Y"/"N" representation, otherwise
// the given default.
func EnforceYN(value, defaultValue string) string {
	switch value {
	case "y", "Y", "n", "N":
		return value
	}
	return defaultValue
}

// Slugify returns text in slug form: punctuation and whitespace replaced by
// separator, runs collapsed, ends trimmed.
func Slugify(text, separator string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r) {
			b.WriteString(separator)
		} else {
			b.WriteRune(r)
		}
	}
	slug := b.String()
	if separator != "" {
		for strings.Contains(slug, separator+separator) {
			slug = strings.ReplaceAll(slug, separator+separator, separator)
		}
		slug = strings.TrimPrefix(slug, separator)
		slug = strings.TrimSuffix(slug, separator)
	}
	return slug
}

// LeadingNumberSortKey returns a sort key for strings that may start with
// digits, ordering numerically by the head and lexically by the tail. Empty
// strings sort first; strings without a numeric head sort after all numbered
// ones.
func LeadingNumberSortKey(value string) (int64, string) {
	if value == "" {
		return math.MinInt64, ""
	}
	tail := strings.TrimLeft(value, "0123456789")
	switch {
	case tail == value:
		return math.MaxInt64, tail
	case tail == "":
		n, _ := strconv.ParseInt(value, 10, 64)
		return n, ""
	default:
		n, _ := strconv.ParseInt(value[:len(value)-len(tail)], 10, 64)
		return n, tail
	}
}

// IsNumeric reports whether the string parses as a finite number.
func IsNumeric(value string) bool {
	f, err := strconv.ParseFloat(value, 64)
	return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MakeTitleCase returns value converted to title case, whitespace-collapsed.
// partCorrection maps a title-cased word to a specific output correction
// (e.g. "Po" -> "PO"); corrections apply around surrounding punctuation.
func MakeTitleCase(value string, partCorrection map[string]string) string {
	if value == "" {
		return value
	}
	// Casers are stateful, so build one per call.
	parts := strings.Fields(cases.Title(language.English).String(value))
	for i, part := range parts {
		core := strings.TrimFunc(part, unicode.IsPunct)
		if core == "" {
			continue
		}
		corrected, ok := partCorrection[core]
		if !ok {
			continue
		}
		start := strings.Index(part, core)
		parts[i] = part[:start] + corrected + part[start+len(core):]
	}
	return strings.Join(parts, " ")
}

// MakeZeroFilled returns value left-padded with zeros to width. A leading
// sign stays ahead of the padding.
func MakeZeroFilled(value string, width int) string {
	if len(value) >= width {
		return value
	}
	sign := ""
	if strings.HasPrefix(value, "-") || strings.HasPrefix(value, "+") {
		sign, value = value[:1], value[1:]
	}
	return sign + strings.Repeat("0", width-len(sign)-len(value)) + value
}

// Parity returns the parity description for a collection of integers:
// "Even", "Odd", or "Mixed". No values yields "".
func Parity(values ...int) string {
	if len(values) == 0 {
		return ""
	}
	seen := map[int]bool{}
	for _, n := range values {
		seen[n&1] = true
	}
	switch {
	case len(seen) > 1:
		return "Mixed"
	case seen[0]:
		return "Even"
	default:
		return "Odd"
	}
}

// RemoveDiacritics returns value with combining marks stripped after
// compatibility decomposition, e.g. "Sévère" -> "Severe".
func RemoveDiacritics(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range norm.NFKD.String(value) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
