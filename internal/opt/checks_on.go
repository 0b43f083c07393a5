//go:build robinhood_checks

package opt

// Checks_ enables verification of the probe invariant after every mutation.
// Enabled via the robinhood_checks build tag.
const Checks_ = true
