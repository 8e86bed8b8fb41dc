package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/semlayer/semgov/pkg/export"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	exportFormat     string
	exportView       string
	exportExplore    string
	exportConnection string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var exportCmd = &cobra.Command{
	Use:   "export <metric-id>",
	Short: "Export a metric definition to a BI tool format",
	Long: `Renders a metric definition as LookML, a Tableau datasource, or a
dbt metrics file and prints it to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "lookml", "output format (lookml, tds, dbt)")
	exportCmd.Flags().StringVar(&exportView, "view", "", "LookML view name (defaults to the metric id)")
	exportCmd.Flags().StringVar(&exportExplore, "explore", "", "LookML explore to reference")
	exportCmd.Flags().StringVar(&exportConnection, "connection", "", "Tableau connection name")
}

func runExport(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	ctx := context.Background()
	id := args[0]

	reg, closer, err := openRegistry(ctx)
	if err != nil {
		return err
	}
	defer closer()

	m, err := reg.Get(ctx, id)
	if err != nil {
		return err
	}

	result, err := reg.Score(ctx, id, false)
	if err != nil {
		return err
	}

	exporter, err := export.NewExporter()
	if err != nil {
		return err
	}

	out, err := exporter.Export(m, result.Score, format, export.Options{
		View:       exportView,
		Explore:    exportExplore,
		Connection: exportConnection,
	})
	if err != nil {
		return err
	}

	fmt.Println(out)

	return nil
}
