package export

import (
	"github.com/semlayer/semgov/pkg/metric"
)

// lookmlTemplate mirrors hand-written LookML: a single-measure view
// with governance metadata carried as comments.
const lookmlTemplate = `view: {{ .View }} {
  measure: {{ .ID }} {
    label: "{{ .Name }}"
    description: "{{ .Description }}"
    type: {{ .Type }}
    sql: {{ .SQL }} ;;
{{- if .Tags }}
    tags: [{{ range $i, $t := .Tags }}{{ if $i }}, {{ end }}"{{ $t }}"{{ end }}]
{{- end }}
{{- if .Owner }}
    # Owner: {{ .Owner }}
{{- end }}
    # Trust Score: {{ printf "%.1f" .TrustScore }}%
{{- if .Dependencies }}
    # Dependencies: {{ join ", " .Dependencies }}
{{- end }}
  }
}
{{- if .Explore }}

# Use in explore: {{ .Explore }}
{{- end }}
`

type lookmlData struct {
	View         string
	Explore      string
	ID           string
	Name         string
	Description  string
	Type         string
	SQL          string
	Tags         []string
	Owner        string
	TrustScore   float64
	Dependencies []string
}

func (e *Exporter) renderLookML(m *metric.Metric, score float64, opts Options) (string, error) {
	view := opts.View
	if view == "" {
		view = m.ID
	}

	return e.render("lookml", lookmlData{
		View:         view,
		Explore:      opts.Explore,
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Type:         MeasureType(m.Calculation),
		SQL:          LookerSQL(m.Calculation),
		Tags:         m.Tags,
		Owner:        ownerOrEmpty(m),
		TrustScore:   score,
		Dependencies: m.Dependencies,
	})
}

// ownerOrEmpty hides the sentinel owner from exported artifacts.
func ownerOrEmpty(m *metric.Metric) string {
	if !m.HasOwner() {
		return ""
	}

	return m.Owner
}
