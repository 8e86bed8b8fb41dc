package export

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/semlayer/semgov/pkg/metric"
)

// dbt semantic layer metric definition, marshaled as YAML.
type dbtFile struct {
	Version int         `yaml:"version"`
	Metrics []dbtMetric `yaml:"metrics"`
}

type dbtMetric struct {
	Name              string   `yaml:"name"`
	Label             string   `yaml:"label"`
	Description       string   `yaml:"description"`
	CalculationMethod string   `yaml:"calculation_method"`
	Expression        string   `yaml:"expression"`
	Timestamp         string   `yaml:"timestamp"`
	TimeGrains        []string `yaml:"time_grains"`
	Dimensions        []string `yaml:"dimensions,omitempty"`
	Meta              dbtMeta  `yaml:"meta"`
}

type dbtMeta struct {
	Owner      string   `yaml:"owner"`
	Tags       []string `yaml:"tags"`
	CreatedAt  string   `yaml:"created_at"`
	TrustScore float64  `yaml:"trust_score"`
}

func renderDBT(m *metric.Metric, score float64) (string, error) {
	doc := dbtFile{
		Version: 2,
		Metrics: []dbtMetric{{
			Name:              m.ID,
			Label:             m.Name,
			Description:       m.Description,
			CalculationMethod: "derived",
			Expression:        m.Calculation,
			Timestamp:         "updated_at",
			TimeGrains:        []string{"day", "week", "month", "quarter", "year"},
			Meta: dbtMeta{
				Owner:      m.Owner,
				Tags:       m.Tags,
				CreatedAt:  m.CreatedAt.UTC().Format(time.RFC3339),
				TrustScore: score,
			},
		}},
	}

	if m.DataSource != "" {
		doc.Metrics[0].Dimensions = []string{m.DataSource}
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal dbt metric: %w", err)
	}

	return string(out), nil
}
