package testutil

import "testing"

// step renames a subtest with a narrative prefix so `go test -v` output reads
// as a scenario instead of a flat list of names.
func step(t *testing.T, prefix, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run(prefix+" "+desc, fn)
}

// Given names the fixture a scenario starts from.
func Given(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Given", desc, fn)
}

// When names the action under test.
func When(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "When", desc, fn)
}

// Then names the observable outcome.
func Then(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Then", desc, fn)
}
