package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/semlayer/semgov/pkg/trust"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var scorePersist bool

//nolint:gochecknoglobals // Cobra commands are typically global
var scoreCmd = &cobra.Command{
	Use:   "score <metric-id>",
	Short: "Compute the trust score for a metric",
	Long: `Computes the composite trust score for a metric and prints the full
report as JSON: score, breakdown, trend, recommendations, and sparkline.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().BoolVar(&scorePersist, "persist", false, "record the score as a history snapshot")
}

type scoreReport struct {
	*trust.Result

	MetricID  string `json:"metric_id"`
	Sparkline string `json:"sparkline,omitempty"`
}

func runScore(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	ctx := context.Background()
	id := args[0]

	reg, closer, err := openRegistry(ctx)
	if err != nil {
		return err
	}
	defer closer()

	result, err := reg.Score(ctx, id, scorePersist)
	if err != nil {
		return err
	}

	report := scoreReport{Result: result, MetricID: id}

	if snapshots, err := reg.ScoreHistory(ctx, id, 90); err == nil && len(snapshots) > 0 {
		// Oldest first for drawing
		scores := make([]float64, len(snapshots))
		for i, snap := range snapshots {
			scores[len(snapshots)-1-i] = snap.Score
		}

		report.Sparkline = trust.Sparkline(scores)
	}

	return printJSON(report)
}
