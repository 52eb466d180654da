package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssbgp/dss-simulator/pkg/api"
	"github.com/ssbgp/dss-simulator/pkg/config"
	"github.com/ssbgp/dss-simulator/pkg/dispatcher"
	"github.com/ssbgp/dss-simulator/pkg/engine"
	"github.com/ssbgp/dss-simulator/pkg/log"
	"github.com/ssbgp/dss-simulator/pkg/reports"
	"github.com/ssbgp/dss-simulator/pkg/simulator"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Exit codes. The two startup preconditions get distinct codes so wrapper
// scripts can tell them apart without parsing logs.
const (
	exitFailure           = 1
	exitInstallDirMissing = 2
	exitEngineMissing     = 3
)

var (
	errInstallDirMissing = errors.New("install directory does not exist")
	errEngineMissing     = errors.New("engine is not installed")
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		switch {
		case errors.Is(err, errInstallDirMissing):
			os.Exit(exitInstallDirMissing)
		case errors.Is(err, errEngineMissing):
			os.Exit(exitEngineMissing)
		default:
			os.Exit(exitFailure)
		}
	}
}

var rootCmd = &cobra.Command{
	Use:   "dss-simulator INSTALL_DIR",
	Short: "SS-BGP distributed simulation worker",
	Long: `dss-simulator executes SS-BGP simulations assigned by a remote dispatcher.

The worker polls the dispatcher for simulations, runs each through the
simulation engine installed in INSTALL_DIR, and reports completions back.
It survives being killed at any point without losing or double-reporting
work, and tolerates dispatcher outages of any length.

Exit codes: 0 normal or interrupted shutdown, 2 install directory missing,
3 engine not installed.`,
	Version:       Version,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"dss-simulator version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.Flags().String("addr", config.DefaultDispatcherAddr, "Dispatcher address or domain")
	rootCmd.Flags().Int("port", config.DefaultDispatcherPort, "Dispatcher listening port")
	rootCmd.Flags().String("status-addr", "", "Serve /health, /status and /metrics on this address")
	rootCmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Flags().Bool("log-json", false, "Log in JSON instead of console format")
}

func run(cmd *cobra.Command, args []string) error {
	installDir := args[0]
	if info, err := os.Stat(installDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", errInstallDirMissing, installDir)
	}

	cfg, err := config.Load(installDir)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
	})

	layout := config.NewLayout(installDir)
	if err := layout.Ensure(); err != nil {
		return err
	}

	runner := engine.NewRunner(layout.EngineJar, layout.TopologiesDir, layout.LogsDir,
		log.WithComponent("engine"))
	if !runner.Installed() {
		return fmt.Errorf("%w: %s", errEngineMissing, layout.EngineJar)
	}

	dispatcherLogger := log.WithComponent("dispatcher").With().
		Str("dispatcher", fmt.Sprintf("%s:%d", cfg.DispatcherAddr, cfg.DispatcherPort)).
		Logger()
	client := dispatcher.NewHTTPClient(cfg.DispatcherURL(), dispatcherLogger)
	policy := dispatcher.NewRetryPolicy(cfg.RetryBackoff.Std(), dispatcherLogger)
	resilient := dispatcher.NewResilient(client, policy)

	store := reports.NewStore(layout.ReportsDir, cfg.RecoveryPolicy, log.WithComponent("reports"))

	sim := simulator.New(resilient, store, runner, simulator.Config{
		IdentityFile: layout.IdentityFile,
		PollInterval: cfg.PollInterval.Std(),
	}, log.WithComponent("simulator"))

	var statusServer *api.StatusServer
	if cfg.StatusAddr != "" {
		statusServer = api.NewStatusServer(sim, log.WithComponent("api"))
		go func() {
			if err := statusServer.Start(cfg.StatusAddr); err != nil {
				log.Errorf("status server failed", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Logger.Info().
		Str("addr", cfg.DispatcherAddr).
		Int("port", cfg.DispatcherPort).
		Msg("connecting to dispatcher")
	log.Info("running...")

	err = sim.Run(ctx)

	if statusServer != nil {
		if stopErr := statusServer.Stop(); stopErr != nil {
			log.Errorf("failed to stop status server", stopErr)
		}
	}
	if err != nil {
		return err
	}

	log.Info("shutdown successful")
	return nil
}

// applyFlags overrides config file values with any flags set on the command
// line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("addr") {
		cfg.DispatcherAddr, _ = cmd.Flags().GetString("addr")
	}
	if cmd.Flags().Changed("port") {
		cfg.DispatcherPort, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("status-addr") {
		cfg.StatusAddr, _ = cmd.Flags().GetString("status-addr")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-json") {
		cfg.LogJSON, _ = cmd.Flags().GetBool("log-json")
	}
}
