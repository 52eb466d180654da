package reports

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/ssbgp/dss-simulator/pkg/metrics"
	"github.com/ssbgp/dss-simulator/pkg/types"
)

// failedEntryFormat timestamps failed-area entries. Nanosecond resolution
// guarantees that repeated failures of one simulation never collide.
const failedEntryFormat = "2006-01-02-15-04-05.000000000"

// recoveredPrefix marks failed-area entries created by startup recovery,
// where the simulation id of the leftovers is unknown.
const recoveredPrefix = "Fail-"

// Store manages the on-disk lifecycle of simulation data. Data from the
// simulation currently executing lives in the running area; on success it
// moves to complete/<id>, on failure to failed/<id>/<timestamp>. All
// transitions are directory renames, never copies, so a crash leaves a state
// that Recover can resolve.
//
// The running area is shared, not per-simulation: exactly one simulation
// executes at a time, so anything found there at startup belongs to an
// interrupted attempt.
type Store struct {
	runningDir  string
	completeDir string
	failedDir   string
	policy      types.RecoveryPolicy
	logger      zerolog.Logger

	// now is swapped out by tests for deterministic timestamps
	now func() time.Time
}

// NewStore creates a store rooted at reportsDir. Call EnsureLayout before
// first use.
func NewStore(reportsDir string, policy types.RecoveryPolicy, logger zerolog.Logger) *Store {
	return &Store{
		runningDir:  filepath.Join(reportsDir, "running"),
		completeDir: filepath.Join(reportsDir, "complete"),
		failedDir:   filepath.Join(reportsDir, "failed"),
		policy:      policy,
		logger:      logger,
		now:         time.Now,
	}
}

// RunningDir returns the directory the engine writes its output to.
func (s *Store) RunningDir() string {
	return s.runningDir
}

// EnsureLayout creates the running, complete and failed areas if missing.
// It is safe to call repeatedly.
func (s *Store) EnsureLayout() error {
	for _, dir := range []string{s.runningDir, s.completeDir, s.failedDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create reports directory %s: %w", dir, err)
		}
	}
	return nil
}

// Recover resolves leftovers from an unclean shutdown. A non-empty running
// area means the previous process died mid-simulation; depending on the
// configured policy the leftovers are archived under failed/Fail-<timestamp>
// or deleted. Either way the running area is empty when Recover returns.
//
// Recover is called exactly once, before the first poll.
func (s *Store) Recover() error {
	empty, err := isEmptyDir(s.runningDir)
	if err != nil {
		return err
	}
	if empty {
		return nil
	}

	s.logger.Warn().Msg("running area is not empty: previous execution must have been interrupted")

	switch s.policy {
	case types.RecoveryWipe:
		if err := clearDir(s.runningDir); err != nil {
			return fmt.Errorf("failed to wipe running area: %w", err)
		}
		s.logger.Info().Msg("discarded data from interrupted simulation")

	default: // archive
		entry := filepath.Join(s.failedDir, recoveredPrefix+s.now().Format(failedEntryFormat))
		if err := os.MkdirAll(entry, 0755); err != nil {
			return fmt.Errorf("failed to create recovery entry: %w", err)
		}
		if err := moveContents(s.runningDir, entry); err != nil {
			return fmt.Errorf("failed to archive interrupted simulation: %w", err)
		}
		s.logger.Info().Str("path", entry).Msg("archived data from interrupted simulation")
	}

	metrics.SimulationsRecovered.Inc()
	return nil
}

// AlreadyCompleted reports whether simulation id has an entry in the
// complete area. A completed simulation is durably finished regardless of
// whether the dispatcher heard about it, so the engine must not run again.
func (s *Store) AlreadyCompleted(id string) bool {
	info, err := os.Stat(filepath.Join(s.completeDir, id))
	return err == nil && info.IsDir()
}

// CompleteSuccess moves the running area contents to complete/<id>.
func (s *Store) CompleteSuccess(id string) error {
	dest := filepath.Join(s.completeDir, id)
	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("failed to create complete entry for %s: %w", id, err)
	}
	if err := moveContents(s.runningDir, dest); err != nil {
		return fmt.Errorf("failed to store data for %s: %w", id, err)
	}
	s.logger.Info().Str("simulation_id", id).Str("path", dest).Msg("simulation data stored")
	return nil
}

// ArchiveFailure moves the running area contents and the execution log to a
// fresh failed/<id>/<timestamp> entry. Each failure of the same simulation
// gets its own entry; nothing is overwritten. The entry path is returned for
// logging. A missing log file is tolerated: the engine may have failed before
// producing one.
func (s *Store) ArchiveFailure(id, logFile string) (string, error) {
	entry := filepath.Join(s.failedDir, id, s.now().Format(failedEntryFormat))
	if err := os.MkdirAll(entry, 0755); err != nil {
		return "", fmt.Errorf("failed to create failed entry for %s: %w", id, err)
	}

	if logFile != "" {
		if _, err := os.Stat(logFile); err == nil {
			dest := filepath.Join(entry, filepath.Base(logFile))
			if err := os.Rename(logFile, dest); err != nil {
				return "", fmt.Errorf("failed to move log for %s: %w", id, err)
			}
		}
	}

	if err := moveContents(s.runningDir, entry); err != nil {
		return "", fmt.Errorf("failed to archive data for %s: %w", id, err)
	}

	s.logger.Info().Str("simulation_id", id).Str("path", entry).Msg("incomplete data and log archived")
	return entry, nil
}

// moveContents renames every entry of src into dst.
func moveContents(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())
		if err := os.Rename(from, to); err != nil {
			return err
		}
	}
	return nil
}

// clearDir removes every entry of dir, leaving the directory itself in place.
func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// isEmptyDir reports whether dir exists and has no entries.
func isEmptyDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	return len(entries) == 0, nil
}
