package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/semlayer/semgov/pkg/metric"
)

func exportMetric() *metric.Metric {
	return &metric.Metric{
		ID:           "daily_revenue",
		Name:         "Daily Revenue",
		Description:  "Total revenue recognized per calendar day",
		Calculation:  "SELECT SUM(transactions.amount) FROM transactions",
		Owner:        "@revenue-team",
		Tags:         []string{"revenue", "finance"},
		DataSource:   "billing.transactions",
		Dependencies: []string{"billing.transactions"},
		CreatedAt:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestMeasureType(t *testing.T) {
	tests := []struct {
		calculation string
		expected    string
	}{
		{calculation: "SUM(amount)", expected: MeasureSum},
		{calculation: "AVG(latency_ms)", expected: MeasureAverage},
		{calculation: "COUNT(DISTINCT user_id)", expected: MeasureCountDistinct},
		{calculation: "COUNT(*)", expected: MeasureCount},
		{calculation: "MAX(score)", expected: MeasureMax},
		{calculation: "MIN(score)", expected: MeasureMin},
		{calculation: "a / b", expected: MeasureNumber},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, MeasureType(tt.calculation), tt.calculation)
	}
}

func TestTableauDatatype(t *testing.T) {
	assert.Equal(t, DatatypeInteger, TableauDatatype("COUNT(*)"))
	assert.Equal(t, DatatypeReal, TableauDatatype("SUM(amount)"))
	assert.Equal(t, DatatypeReal, TableauDatatype("MIN(amount)"))
	assert.Equal(t, DatatypeString, TableauDatatype("status"))
}

func TestLookerSQL(t *testing.T) {
	sql := LookerSQL("SELECT SUM(transactions.amount) FROM transactions")
	assert.Equal(t, "SELECT SUM(${amount})", sql)

	withFilter := LookerSQL("SUM(orders.total) WHERE orders.status = 'paid'")
	assert.Contains(t, withFilter, "SUM(${total})")
	assert.Contains(t, withFilter, "# Filter:")
}

func TestTableauFormula(t *testing.T) {
	formula := TableauFormula("SUM(transactions.amount) FROM transactions WHERE region = 'EU'")
	assert.Equal(t, "SUM([amount])", formula)
}

func TestExport_LookML(t *testing.T) {
	e, err := NewExporter()
	require.NoError(t, err)

	out, err := e.Export(exportMetric(), 87.5, FormatLookML, Options{View: "revenue", Explore: "finance"})
	require.NoError(t, err)

	assert.Contains(t, out, "view: revenue {")
	assert.Contains(t, out, "measure: daily_revenue {")
	assert.Contains(t, out, `label: "Daily Revenue"`)
	assert.Contains(t, out, "type: sum")
	assert.Contains(t, out, "sql: SELECT SUM(${amount}) ;;")
	assert.Contains(t, out, `tags: ["revenue", "finance"]`)
	assert.Contains(t, out, "# Owner: @revenue-team")
	assert.Contains(t, out, "# Trust Score: 87.5%")
	assert.Contains(t, out, "# Use in explore: finance")
}

func TestExport_LookML_DefaultsViewToID(t *testing.T) {
	e, err := NewExporter()
	require.NoError(t, err)

	out, err := e.Export(exportMetric(), 50, FormatLookML, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "view: daily_revenue {")
}

func TestExport_LookML_HidesUnassignedOwner(t *testing.T) {
	e, err := NewExporter()
	require.NoError(t, err)

	m := exportMetric()
	m.Owner = metric.OwnerUnassigned

	out, err := e.Export(m, 50, FormatLookML, Options{})
	require.NoError(t, err)
	assert.NotContains(t, out, "# Owner:")
}

func TestExport_TDS(t *testing.T) {
	e, err := NewExporter()
	require.NoError(t, err)

	out, err := e.Export(exportMetric(), 87.5, FormatTDS, Options{Connection: "warehouse"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<?xml version='1.0' encoding='utf-8' ?>"))
	assert.Contains(t, out, "<named-connection name='warehouse' />")
	assert.Contains(t, out, "<column name='daily_revenue' datatype='real' role='measure'>")
	assert.Contains(t, out, "formula='SUM([amount])'")
	assert.Contains(t, out, "<alias key='Daily Revenue' value='daily_revenue' />")
	assert.Contains(t, out, "<!-- Trust Score: 87.5% -->")
}

func TestExport_TDS_EscapesXML(t *testing.T) {
	e, err := NewExporter()
	require.NoError(t, err)

	m := exportMetric()
	m.Description = `has 'quotes' & <angles>`

	out, err := e.Export(m, 50, FormatTDS, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "has &apos;quotes&apos; &amp; &lt;angles&gt;")
}

func TestExport_DBT(t *testing.T) {
	e, err := NewExporter()
	require.NoError(t, err)

	out, err := e.Export(exportMetric(), 87.5, FormatDBT, Options{})
	require.NoError(t, err)

	var doc struct {
		Version int `yaml:"version"`
		Metrics []struct {
			Name              string   `yaml:"name"`
			Label             string   `yaml:"label"`
			CalculationMethod string   `yaml:"calculation_method"`
			TimeGrains        []string `yaml:"time_grains"`
			Dimensions        []string `yaml:"dimensions"`
			Meta              struct {
				Owner      string  `yaml:"owner"`
				TrustScore float64 `yaml:"trust_score"`
			} `yaml:"meta"`
		} `yaml:"metrics"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))

	assert.Equal(t, 2, doc.Version)
	require.Len(t, doc.Metrics, 1)
	assert.Equal(t, "daily_revenue", doc.Metrics[0].Name)
	assert.Equal(t, "Daily Revenue", doc.Metrics[0].Label)
	assert.Equal(t, "derived", doc.Metrics[0].CalculationMethod)
	assert.Equal(t, []string{"day", "week", "month", "quarter", "year"}, doc.Metrics[0].TimeGrains)
	assert.Equal(t, []string{"billing.transactions"}, doc.Metrics[0].Dimensions)
	assert.Equal(t, "@revenue-team", doc.Metrics[0].Meta.Owner)
	assert.Equal(t, 87.5, doc.Metrics[0].Meta.TrustScore)
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"lookml", "tds", "dbt"} {
		f, err := ParseFormat(valid)
		require.NoError(t, err)
		assert.Equal(t, Format(valid), f)
	}

	_, err := ParseFormat("powerbi")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
