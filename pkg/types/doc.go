// Package types defines the shared value objects of the simulation worker:
// the Simulation descriptor received from the dispatcher and the enums used
// across packages (recovery policy, worker state).
//
// The package has no dependencies and may be imported from anywhere.
package types
