package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	lineageDepth      int
	lineageDOT        bool
	lineageDownstream bool
)

//nolint:gochecknoglobals // Cobra commands are typically global
var lineageCmd = &cobra.Command{
	Use:   "lineage <metric-id>",
	Short: "Show the dependency lineage of a metric",
	Long: `Prints the upstream dependency tree of a metric as JSON, flagging
circular dependencies. With --downstream it lists the metrics that
depend on it instead, and with --dot it renders the whole graph in
Graphviz DOT format.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLineage,
}

func init() {
	rootCmd.AddCommand(lineageCmd)
	lineageCmd.Flags().IntVar(&lineageDepth, "depth", 3, "how many dependency levels to walk")
	lineageCmd.Flags().BoolVar(&lineageDOT, "dot", false, "render the full graph in Graphviz DOT format")
	lineageCmd.Flags().BoolVar(&lineageDownstream, "downstream", false, "list dependents instead of dependencies")
}

func runLineage(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	ctx := context.Background()

	reg, closer, err := openRegistry(ctx)
	if err != nil {
		return err
	}
	defer closer()

	if lineageDOT {
		fmt.Println(reg.LineageDOT())

		return nil
	}

	if len(args) == 0 {
		return cmd.Usage()
	}

	id := args[0]

	if _, err := reg.Get(ctx, id); err != nil {
		return err
	}

	if lineageDownstream {
		dependents, err := reg.Downstream(ctx, id)
		if err != nil {
			return err
		}

		return printJSON(map[string]any{
			"metric_id":  id,
			"dependents": dependents,
		})
	}

	return printJSON(map[string]any{
		"tree":  reg.UpstreamTree(id, lineageDepth),
		"cycle": reg.DetectCycle(id),
	})
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}
