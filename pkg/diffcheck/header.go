package diffcheck

import (
	"strconv"
	"strings"
)

// HunkHeader holds the line ranges declared by a unified-diff hunk header,
// the `@@ -N[,M] +P[,Q] @@` line that opens each hunk.
type HunkHeader struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int

	// OldCountDefaulted and NewCountDefaulted are set when a count group was
	// present but not numeric and 1 was substituted in its place. Callers that
	// want strict parsing can reject headers with either flag set.
	OldCountDefaulted bool
	NewCountDefaulted bool
}

// ParseHunkHeader matches line against the hunk-header grammar. The second
// return value reports whether the line is a hunk header at all; a non-header
// line is not an error. Omitted counts default to 1 per the unified-diff
// convention, and trailing context after the closing `@@` is ignored.
func ParseHunkHeader(line string) (HunkHeader, bool) {
	rest, ok := strings.CutPrefix(line, "@@ -")
	if !ok {
		return HunkHeader{}, false
	}

	var header HunkHeader
	header.OldStart, rest, ok = scanInt(rest)
	if !ok {
		return HunkHeader{}, false
	}
	header.OldCount, header.OldCountDefaulted, rest = scanCount(rest)

	rest, ok = strings.CutPrefix(rest, " +")
	if !ok {
		return HunkHeader{}, false
	}
	header.NewStart, rest, ok = scanInt(rest)
	if !ok {
		return HunkHeader{}, false
	}
	header.NewCount, header.NewCountDefaulted, rest = scanCount(rest)

	if !strings.HasPrefix(rest, " @@") {
		return HunkHeader{}, false
	}
	return header, true
}

// scanInt consumes a leading run of digits.
func scanInt(s string) (int, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	value, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, s, false
	}
	return value, s[i:], true
}

// scanCount consumes an optional `,<count>` group. An absent group means a
// count of exactly one. A group whose payload is not numeric also yields one,
// with defaulted=true so callers can surface the substitution; the malformed
// payload is skipped up to the next space so the range separator is still
// recognized.
func scanCount(s string) (count int, defaulted bool, rest string) {
	after, ok := strings.CutPrefix(s, ",")
	if !ok {
		return 1, false, s
	}
	if value, r, ok := scanInt(after); ok {
		return value, false, r
	}
	i := strings.IndexByte(after, ' ')
	if i < 0 {
		i = len(after)
	}
	return 1, true, after[i:]
}
