// Package diffcheck validates the structure of unified-diff patches.
//
// The package checks that every hunk header's declared line ranges agree with
// the context, added, and removed lines that follow it. It does not apply
// patches; it exists so that callers can reject a malformed patch before
// handing it to whatever performs the mutation. Validation is a pure function
// over the patch text which makes it straightforward to embed in editors and
// testing utilities.
package diffcheck
