package engine

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ssbgp/dss-simulator/pkg/types"
)

// defaultLauncher starts the engine jar.
const defaultLauncher = "java"

// Runner invokes the external simulation engine as a child process. The call
// blocks until the engine exits; there is deliberately no execution timeout
// and no way to abort a run, matching the worker's cooperative shutdown
// model: an in-flight simulation always runs to completion.
type Runner struct {
	jarPath       string
	topologiesDir string
	logsDir       string
	logger        zerolog.Logger

	// launcher is replaced by tests with a stub executable
	launcher string
}

// NewRunner creates a runner for the engine jar at jarPath. Topology and
// stubs file references in a simulation resolve relative to topologiesDir;
// engine output is logged to logsDir.
func NewRunner(jarPath, topologiesDir, logsDir string, logger zerolog.Logger) *Runner {
	return &Runner{
		jarPath:       jarPath,
		topologiesDir: topologiesDir,
		logsDir:       logsDir,
		logger:        logger,
		launcher:      defaultLauncher,
	}
}

// Installed reports whether the engine jar exists.
func (r *Runner) Installed() bool {
	info, err := os.Stat(r.jarPath)
	return err == nil && !info.IsDir()
}

// LogFile returns the path of the log file for a simulation id.
func (r *Runner) LogFile(id string) string {
	return filepath.Join(r.logsDir, id+".log")
}

// Run executes a simulation, writing engine output into outputDir and all of
// the engine's stdout and stderr to LogFile(sim.ID). A non-zero exit status
// or a failure to launch is returned as an error.
func (r *Runner) Run(sim *types.Simulation, outputDir string) error {
	args := []string{
		"-jar", r.jarPath,
		"-t", filepath.Join(r.topologiesDir, sim.Topology),
		"-o", outputDir,
		"-d", strconv.Itoa(sim.Destination),
		"-c", strconv.Itoa(sim.Repetitions),
		"-mindelay", strconv.Itoa(sim.MinDelay),
		"-maxdelay", strconv.Itoa(sim.MaxDelay),
		"-th", strconv.Itoa(sim.Threshold),
		"-stubs", filepath.Join(r.topologiesDir, sim.StubsFile),
	}
	if sim.ReportNodes {
		args = append(args, "-rn")
	}

	logFile, err := os.Create(r.LogFile(sim.ID))
	if err != nil {
		return fmt.Errorf("failed to create engine log file: %w", err)
	}
	defer logFile.Close()

	cmd := exec.Command(r.launcher, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	r.logger.Debug().
		Str("simulation_id", sim.ID).
		Strs("args", args).
		Msg("launching engine")

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("engine execution failed: %w", err)
	}
	return nil
}
