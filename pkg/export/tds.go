package export

import (
	"strings"

	"github.com/semlayer/semgov/pkg/metric"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

func xmlEscape(s string) string {
	return xmlEscaper.Replace(s)
}

// tdsTemplate is a minimal Tableau datasource with one measure column.
// Formula and text fields are XML-escaped by the data builder.
const tdsTemplate = `<?xml version='1.0' encoding='utf-8' ?>
<datasource>
  <connection class='federated'>
    <named-connections>
      <named-connection name='{{ .Connection }}' />
    </named-connections>
  </connection>

  <column name='{{ .ID }}' datatype='{{ .Datatype }}' role='measure'>
    <calculation class='tableau' formula='{{ .Formula }}' />
    <desc>{{ .Description }}</desc>
    <aliases>
      <alias key='{{ .Name }}' value='{{ .ID }}' />
    </aliases>
{{- if .Tags }}
    <!-- Tags: {{ join ", " .Tags }} -->
{{- end }}
{{- if .Owner }}
    <!-- Owner: {{ .Owner }} -->
{{- end }}
    <!-- Trust Score: {{ printf "%.1f" .TrustScore }}% -->
{{- if .Dependencies }}
    <!-- Dependencies: {{ join ", " .Dependencies }} -->
{{- end }}
  </column>
</datasource>
`

type tdsData struct {
	Connection   string
	ID           string
	Name         string
	Description  string
	Datatype     string
	Formula      string
	Tags         []string
	Owner        string
	TrustScore   float64
	Dependencies []string
}

func (e *Exporter) renderTDS(m *metric.Metric, score float64, opts Options) (string, error) {
	connection := opts.Connection
	if connection == "" {
		connection = "default"
	}

	return e.render("tds", tdsData{
		Connection:   xmlEscape(connection),
		ID:           xmlEscape(m.ID),
		Name:         xmlEscape(m.Name),
		Description:  xmlEscape(m.Description),
		Datatype:     TableauDatatype(m.Calculation),
		Formula:      xmlEscape(TableauFormula(m.Calculation)),
		Tags:         m.Tags,
		Owner:        ownerOrEmpty(m),
		TrustScore:   score,
		Dependencies: m.Dependencies,
	})
}
