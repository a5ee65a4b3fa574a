package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "oerpctl: %v\n", err)
		os.Exit(1)
	}
}

// appState carries the resolved configuration and logger into subcommands.
type appState struct {
	cfg clientConfig
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	state := &appState{cfg: defaultClientConfig()}

	var (
		configPath string
		logLevel   string

		flagServer   string
		flagPort     string
		flagProtocol string
		flagDatabase string
		flagUID      int64
		flagPassword string
	)

	root := &cobra.Command{
		Use:           "oerpctl",
		Short:         "command-line client for business-application servers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(logLevel)
		if err != nil {
			return err
		}
		state.log = logger

		if configPath != "" {
			cfg, err := loadClientConfig(configPath)
			if err != nil {
				return err
			}
			state.cfg = cfg
		}

		// Flags win over the config file.
		pf := root.PersistentFlags()
		if pf.Changed("server") {
			state.cfg.Server = flagServer
		}
		if pf.Changed("port") {
			state.cfg.Port = flagPort
		}
		if pf.Changed("protocol") {
			state.cfg.Protocol = flagProtocol
		}
		if pf.Changed("database") {
			state.cfg.Database = flagDatabase
		}
		if pf.Changed("uid") {
			state.cfg.UID = flagUID
		}
		if pf.Changed("password") {
			state.cfg.Password = flagPassword
		}
		return nil
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to a TOML config file")
	pf.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&flagServer, "server", "", "server host")
	pf.StringVar(&flagPort, "port", "", "server port")
	pf.StringVar(&flagProtocol, "protocol", "", "wire protocol (http-rpc or socket-rpc)")
	pf.StringVar(&flagDatabase, "database", "", "database name")
	pf.Int64Var(&flagUID, "uid", 0, "user id returned by login")
	pf.StringVar(&flagPassword, "password", "", "user password")

	root.AddCommand(
		newLoginCmd(state),
		newCallCmd(state),
		newWorkflowCmd(state),
		newReportCmd(state),
	)
	return root
}

func newLogger(level string) (zerolog.Logger, error) {
	raw := strings.TrimSpace(level)
	if raw == "" {
		raw = "warn"
	}
	lvl, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level %q: %w", level, err)
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Str("app", "oerpctl").Logger().Level(lvl), nil
}
