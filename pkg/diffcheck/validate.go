package diffcheck

import (
	"fmt"
	"strings"
)

// Result reports the outcome of validating one patch payload. Reason is "ok"
// when Valid is true, otherwise a diagnostic naming the first violation.
// Warnings records every lenient count substitution made while parsing hunk
// headers; a patch with warnings can still be valid.
type Result struct {
	Valid    bool
	Reason   string
	Warnings []string
}

// accumulator tracks the live line counts for the hunk currently being
// scanned. A zero expected count disables the comparison for that side.
type accumulator struct {
	expectedOld int
	expectedNew int
	seenOld     int
	seenNew     int
}

func (a accumulator) mismatch() (string, bool) {
	if a.expectedOld > 0 && a.seenOld != a.expectedOld {
		return fmt.Sprintf("Old-side hunk line count mismatch: expected %d, got %d", a.expectedOld, a.seenOld), true
	}
	if a.expectedNew > 0 && a.seenNew != a.expectedNew {
		return fmt.Sprintf("New-side hunk line count mismatch: expected %d, got %d", a.expectedNew, a.seenNew), true
	}
	return "", false
}

// Validate scans patch line by line and checks that each hunk's declared line
// ranges match the context/added/removed lines that follow. It is a total
// function: every failure mode is reported through the Result, never panicked.
func Validate(patch string) Result {
	if strings.TrimSpace(patch) == "" {
		return Result{Reason: "Patch is empty"}
	}

	var (
		sawHunk  bool
		inHunk   bool
		counts   accumulator
		warnings []string
	)

	for number, line := range splitLines(patch) {
		if header, ok := ParseHunkHeader(line); ok {
			if inHunk {
				if reason, bad := counts.mismatch(); bad {
					return Result{Reason: reason, Warnings: warnings}
				}
			}
			if header.OldCountDefaulted {
				warnings = append(warnings, fmt.Sprintf("line %d: old-side count is not numeric, assuming 1", number+1))
			}
			if header.NewCountDefaulted {
				warnings = append(warnings, fmt.Sprintf("line %d: new-side count is not numeric, assuming 1", number+1))
			}
			sawHunk = true
			inHunk = true
			counts = accumulator{expectedOld: header.OldCount, expectedNew: header.NewCount}
			continue
		}

		if !inHunk {
			// File-header metadata and any other pre-hunk preamble are skipped.
			continue
		}

		switch {
		case strings.HasPrefix(line, " "):
			counts.seenOld++
			counts.seenNew++
		case strings.HasPrefix(line, "-"):
			counts.seenOld++
		case strings.HasPrefix(line, "+"):
			counts.seenNew++
		case strings.HasPrefix(line, "\\ No newline"):
			// marker, carries no line
		case strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "+++ "):
			// some diff emitters interleave file headers between hunks
		default:
			return Result{Reason: fmt.Sprintf("Unsupported patch line in hunk: %s", line), Warnings: warnings}
		}
	}

	if !sawHunk {
		return Result{Reason: "Patch must contain at least one unified diff hunk (@@ ...).", Warnings: warnings}
	}
	if reason, bad := counts.mismatch(); bad {
		return Result{Reason: reason, Warnings: warnings}
	}
	return Result{Valid: true, Reason: "ok", Warnings: warnings}
}

// splitLines normalizes line endings and drops the empty trailer produced by
// a final newline so it is not miscounted as hunk content.
func splitLines(input string) []string {
	normalized := strings.ReplaceAll(input, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	lines := strings.Split(normalized, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
