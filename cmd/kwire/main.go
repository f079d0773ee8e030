package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pior/kwire"
)

// app holds what the subcommands share once flags and config are resolved.
type app struct {
	configPath string
	brokers    []string
	clientID   string
	handshake  int16
	timeout    time.Duration
	logLevel   string

	cfg    cliConfig
	logger zerolog.Logger
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "kwire",
		Short: "Query Kafka brokers over the wire protocol",
		Long: `kwire talks to Kafka brokers directly over the binary protocol.

It negotiates api versions with every broker it connects to and prints
what the brokers answer.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.resolve,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "TOML config file")
	flags.StringSliceVarP(&a.brokers, "brokers", "b", nil, "bootstrap brokers, host:port")
	flags.StringVar(&a.clientID, "client-id", "", "client id sent in request headers")
	flags.Int16Var(&a.handshake, "handshake-version", 0, "ApiVersions version used to open connections")
	flags.DurationVar(&a.timeout, "timeout", 0, "timeout of the whole command")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (also KWIRE_LOG_LEVEL)")

	rootCmd.AddCommand(
		apiVersionsCmd(a),
		metadataCmd(a),
		findCoordinatorCmd(a),
		listGroupsCmd(a),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// resolve applies, in order: defaults, the config file, KWIRE_LOG_LEVEL, flags.
func (a *app) resolve(cmd *cobra.Command, args []string) error {
	cfg := defaultCLIConfig()

	if a.configPath != "" {
		var err error
		if cfg, err = loadConfigFile(a.configPath, cfg); err != nil {
			return err
		}
	}

	if level := os.Getenv("KWIRE_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	flags := cmd.Flags()
	if flags.Changed("brokers") {
		cfg.Brokers = a.brokers
	}
	if flags.Changed("client-id") {
		cfg.ClientID = a.clientID
	}
	if flags.Changed("handshake-version") {
		cfg.HandshakeVersion = a.handshake
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}

	if err := cfg.validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// run creates a client for the configured brokers and calls fn with it.
func (a *app) run(fn func(ctx context.Context, client *kwire.Client) error) error {
	client, err := kwire.NewClient(kwire.NewStaticBrokers(a.cfg.Brokers...), a.cfg.clientConfig(&a.logger))
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Timeout)
	defer cancel()

	a.logger.Debug().Strs("brokers", a.cfg.Brokers).Msg("client ready")
	return fn(ctx, client)
}

// firstBroker is the default target of commands addressed to one broker.
func (a *app) firstBroker(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.Brokers[0]
}
