//go:build !robinhood_checks

package opt

// Checks_ enables verification of the probe invariant after every mutation.
// Use: go test -tags=robinhood_checks
const Checks_ = false
