package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/semlayer/semgov/pkg/server"
)

//nolint:gochecknoglobals // Cobra commands are typically global
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the semgov server",
	Long:  `The server exposes the metric catalog over HTTP and runs periodic rescoring sweeps.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	config, err := loadConfigFromFile(cfgFile)
	if err != nil {
		return err
	}

	// Setup logger
	level, err := logrus.ParseLevel(config.LoggingLevel)
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetLevel(level)

	log.Info("Configuration loaded")

	ctx := context.Background()

	srv, err := server.NewServer(ctx, log, config)
	if err != nil {
		return err
	}

	// Blocks until SIGINT/SIGTERM, then shuts down gracefully
	return srv.Start(ctx)
}
