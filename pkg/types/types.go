package types

import "fmt"

// Simulation describes one unit of work assigned by the dispatcher.
// Instances are immutable once received: the control loop owns a simulation
// exclusively from assignment until its outcome is reported.
type Simulation struct {
	ID          string `json:"id"`
	Topology    string `json:"topology"`
	Destination int    `json:"destination"`
	Repetitions int    `json:"repetitions"`
	MinDelay    int    `json:"min_delay"`
	MaxDelay    int    `json:"max_delay"`
	Threshold   int    `json:"threshold"`
	StubsFile   string `json:"stubs_file"`
	Seed        int64  `json:"seed"`
	ReportNodes bool   `json:"report_nodes"`
}

// String returns a compact one-line description used in logs.
func (s *Simulation) String() string {
	return fmt.Sprintf("simulation %s (topology=%s destination=%d repetitions=%d "+
		"delay=[%d,%d] threshold=%d stubs=%s seed=%d reportnodes=%t)",
		s.ID, s.Topology, s.Destination, s.Repetitions,
		s.MinDelay, s.MaxDelay, s.Threshold, s.StubsFile, s.Seed, s.ReportNodes)
}

// RecoveryPolicy selects how leftovers in the running area are resolved when
// the worker starts after an unclean shutdown.
type RecoveryPolicy string

const (
	// RecoveryArchive moves leftovers to a Fail- prefixed entry in the
	// failed area before continuing. This is the default: no data is lost.
	RecoveryArchive RecoveryPolicy = "archive"

	// RecoveryWipe deletes leftovers and continues.
	RecoveryWipe RecoveryPolicy = "wipe"
)

// Valid reports whether p is a known recovery policy.
func (p RecoveryPolicy) Valid() bool {
	return p == RecoveryArchive || p == RecoveryWipe
}

// WorkerState represents the current phase of the worker control loop.
type WorkerState string

const (
	WorkerStateBootstrap WorkerState = "bootstrap"
	WorkerStatePolling   WorkerState = "polling"
	WorkerStateExecuting WorkerState = "executing"
	WorkerStateStopped   WorkerState = "stopped"
)
