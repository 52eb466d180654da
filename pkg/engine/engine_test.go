package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ssbgp/dss-simulator/pkg/types"
)

// writeStub writes an executable shell script standing in for the java
// launcher. It echoes its arguments (captured to the engine log) and exits
// with the given status.
func writeStub(t *testing.T, dir string, exitCode string) string {
	t.Helper()
	path := filepath.Join(dir, "stub-engine.sh")
	script := "#!/bin/sh\necho \"$@\"\necho \"engine output\" >&2\nexit " + exitCode + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func testSimulation() *types.Simulation {
	return &types.Simulation{
		ID:          "J1",
		Topology:    "topoA.nf",
		Destination: 5,
		Repetitions: 10,
		MinDelay:    10,
		MaxDelay:    1000,
		Threshold:   2000000,
		StubsFile:   "topoA.stubs",
		Seed:        1234,
	}
}

func newTestRunner(t *testing.T, exitCode string) (*Runner, string) {
	t.Helper()
	dir := t.TempDir()
	logsDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	jar := filepath.Join(dir, "ssbgp-simulator.jar")
	if err := os.WriteFile(jar, []byte("jar"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	runner := NewRunner(jar, filepath.Join(dir, "topologies"), logsDir, zerolog.Nop())
	runner.launcher = writeStub(t, dir, exitCode)
	return runner, filepath.Join(dir, "out")
}

func TestRunner_Installed(t *testing.T) {
	runner, _ := newTestRunner(t, "0")
	if !runner.Installed() {
		t.Error("Installed() = false with jar present")
	}

	missing := NewRunner(filepath.Join(t.TempDir(), "absent.jar"), "", "", zerolog.Nop())
	if missing.Installed() {
		t.Error("Installed() = true with jar absent")
	}
}

func TestRunner_Run_Success(t *testing.T) {
	runner, outDir := newTestRunner(t, "0")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	sim := testSimulation()
	if err := runner.Run(sim, outDir); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// The stub echoes its arguments, so the log doubles as an argument check
	logData, err := os.ReadFile(runner.LogFile(sim.ID))
	if err != nil {
		t.Fatalf("engine log was not written: %v", err)
	}
	logged := string(logData)

	for _, want := range []string{
		"-jar", "-t", "topoA.nf", "-o", outDir,
		"-d 5", "-c 10", "-mindelay 10", "-maxdelay 1000",
		"-th 2000000", "-stubs", "topoA.stubs",
		"engine output", // stderr is captured too
	} {
		if !strings.Contains(logged, want) {
			t.Errorf("engine log missing %q:\n%s", want, logged)
		}
	}
	if strings.Contains(logged, "-rn") {
		t.Error("reportnodes flag passed for a simulation that did not ask for it")
	}
}

func TestRunner_Run_ReportNodesFlag(t *testing.T) {
	runner, outDir := newTestRunner(t, "0")
	sim := testSimulation()
	sim.ReportNodes = true

	if err := runner.Run(sim, outDir); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	logData, _ := os.ReadFile(runner.LogFile(sim.ID))
	if !strings.Contains(string(logData), "-rn") {
		t.Error("reportnodes flag was not passed")
	}
}

func TestRunner_Run_NonZeroExit(t *testing.T) {
	runner, outDir := newTestRunner(t, "1")

	err := runner.Run(testSimulation(), outDir)
	if err == nil {
		t.Fatal("Run() error = nil for engine exiting 1")
	}

	// Output up to the crash is still captured
	if _, statErr := os.Stat(runner.LogFile("J1")); statErr != nil {
		t.Errorf("engine log missing after failure: %v", statErr)
	}
}

func TestRunner_Run_LaunchFailure(t *testing.T) {
	runner, outDir := newTestRunner(t, "0")
	runner.launcher = filepath.Join(t.TempDir(), "no-such-binary")

	if err := runner.Run(testSimulation(), outDir); err == nil {
		t.Fatal("Run() error = nil for a launcher that does not exist")
	}
}
