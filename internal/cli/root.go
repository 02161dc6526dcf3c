// Package cli wires the cobra command tree: the bare binary runs the daemon
// in the foreground, subcommands talk to a running daemon over the unix
// socket.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/berrythewa/clipdeck/internal/config"
	"github.com/berrythewa/clipdeck/internal/daemon"
	"github.com/berrythewa/clipdeck/internal/ipc"
	"github.com/berrythewa/clipdeck/pkg/utils"
)

var (
	// Flags that apply to all commands
	logLevel  string
	cfgFile   string
	noFileLog bool

	// The loaded configuration
	cfg *config.Config

	// Logger instance
	logger *utils.Logger

	// Version information - set by main
	Version   = "dev"
	BuildTime = "unknown"
	Commit    = "none"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "clipdeck",
	Short: "Clipdeck is a clipboard history daemon",
	Long: `Clipdeck monitors the clipboard, keeps a searchable bounded history
with pinning, and pastes entries back into the previously focused window.

Running clipdeck without any commands starts the daemon in the foreground.
The other commands talk to an already-running daemon.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		cfg, err = config.Load(cfgFile)
		if err != nil {
			// The config layer always hands back something usable.
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}

		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		loggerOptions := utils.LoggerOptions{
			Level:  cfg.LogLevel,
			Output: os.Stdout,
		}
		if cfg.Log.EnableFileLogging && !noFileLog {
			loggerOptions.LogDir = cfg.SystemPaths.LogDir
		}
		logger = utils.NewLogger(loggerOptions)

		logger.Debug("Configuration loaded",
			"log_level", cfg.LogLevel,
			"device_id", cfg.DeviceID,
			"data_dir", cfg.SystemPaths.DataDir)

		return nil
	},
	SilenceUsage: true,
}

// runDaemon starts the background process in the foreground. A second launch
// finds the instance lock held and turns into a show-window signal to the
// running daemon.
func runDaemon() error {
	logger.Info("Starting clipdeck daemon",
		"version", Version,
		"device_id", cfg.DeviceID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := daemon.New(cfg, logger)
	err := d.Run(ctx)
	if errors.Is(err, daemon.ErrAlreadyRunning) {
		logger.Info("Daemon already running, asking it to show the picker")
		if _, sendErr := ipc.SendRequest(cfg.SystemPaths.SocketFile,
			&ipc.Request{Command: ipc.CmdShowWindow}); sendErr != nil {
			return fmt.Errorf("daemon is running but unreachable: %w", sendErr)
		}
		return nil
	}
	return err
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().BoolVar(&noFileLog, "no-file-log", false, "disable logging to file")
}

// SetVersionInfo allows setting version info from main
func SetVersionInfo(v, bt, c string) {
	Version = v
	BuildTime = bt
	Commit = c
}

// AddCommand registers a subcommand on the root command
func AddCommand(cmd *cobra.Command) {
	RootCmd.AddCommand(cmd)
}

// Execute runs the root command and exits non-zero on error
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
