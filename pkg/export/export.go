// Package export generates BI tool definitions from metric records:
// LookML measures, Tableau TDS columns, and dbt metric YAML.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/semlayer/semgov/pkg/metric"
)

// Define static errors
var (
	ErrUnknownFormat = errors.New("unknown export format")
)

// Format selects the export target.
type Format string

const (
	// FormatLookML generates a Looker view with one measure.
	FormatLookML Format = "lookml"
	// FormatTDS generates a Tableau datasource column.
	FormatTDS Format = "tds"
	// FormatDBT generates dbt semantic layer metric YAML.
	FormatDBT Format = "dbt"
)

// ParseFormat validates a format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatLookML, FormatTDS, FormatDBT:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Options carry target-specific settings.
type Options struct {
	// View is the Looker view name the measure attaches to. Defaults to
	// the metric id.
	View string
	// Explore optionally names the Looker explore for context.
	Explore string
	// Connection is the Tableau named connection. Defaults to "default".
	Connection string
}

// Exporter renders metric definitions for BI tools.
type Exporter struct {
	templates *template.Template
}

// NewExporter creates an exporter with all formats parsed.
func NewExporter() (*Exporter, error) {
	templates := template.New("export").Funcs(sprig.TxtFuncMap())

	for name, body := range map[string]string{
		"lookml": lookmlTemplate,
		"tds":    tdsTemplate,
	} {
		if _, err := templates.New(name).Parse(body); err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
	}

	return &Exporter{templates: templates}, nil
}

// Export renders the metric in the requested format. score is the
// current trust score, embedded as documentation in the output.
func (e *Exporter) Export(m *metric.Metric, score float64, format Format, opts Options) (string, error) {
	switch format {
	case FormatLookML:
		return e.renderLookML(m, score, opts)
	case FormatTDS:
		return e.renderTDS(m, score, opts)
	case FormatDBT:
		return renderDBT(m, score)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func (e *Exporter) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}

	return buf.String(), nil
}
