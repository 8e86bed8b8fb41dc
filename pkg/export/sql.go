package export

import (
	"regexp"
	"strings"
)

// Measure types inferred from a calculation's aggregate function.
const (
	MeasureSum           = "sum"
	MeasureAverage       = "average"
	MeasureCount         = "count"
	MeasureCountDistinct = "count_distinct"
	MeasureMax           = "max"
	MeasureMin           = "min"
	MeasureNumber        = "number"
)

// Tableau column datatypes.
const (
	DatatypeInteger = "integer"
	DatatypeReal    = "real"
	DatatypeString  = "string"
)

var (
	fieldRefPattern = regexp.MustCompile(`\b\w+\.(\w+)\b`)
	fromPattern     = regexp.MustCompile(`(?i)\s+FROM\s+\w+`)
	wherePattern    = regexp.MustCompile(`(?is)WHERE\s+(.+)`)
)

// MeasureType infers the BI measure type from the calculation's
// outermost aggregate.
func MeasureType(calculation string) string {
	calc := strings.ToUpper(calculation)

	switch {
	case strings.Contains(calc, "SUM("):
		return MeasureSum
	case strings.Contains(calc, "AVG("), strings.Contains(calc, "AVERAGE("):
		return MeasureAverage
	case strings.Contains(calc, "COUNT(DISTINCT"):
		return MeasureCountDistinct
	case strings.Contains(calc, "COUNT("):
		return MeasureCount
	case strings.Contains(calc, "MAX("):
		return MeasureMax
	case strings.Contains(calc, "MIN("):
		return MeasureMin
	default:
		return MeasureNumber
	}
}

// TableauDatatype infers the column datatype from the calculation.
func TableauDatatype(calculation string) string {
	calc := strings.ToUpper(calculation)

	switch {
	case strings.Contains(calc, "COUNT("):
		return DatatypeInteger
	case strings.Contains(calc, "SUM("),
		strings.Contains(calc, "AVG("),
		strings.Contains(calc, "AVERAGE("),
		strings.Contains(calc, "MAX("),
		strings.Contains(calc, "MIN("):
		return DatatypeReal
	default:
		return DatatypeString
	}
}

// LookerSQL rewrites a calculation for a LookML measure: table.column
// references become ${column}, the FROM clause is dropped, and any
// WHERE clause is surfaced as a comment since Looker models filters
// separately. Lexical rewriting only, not SQL parsing.
func LookerSQL(calculation string) string {
	sql := fieldRefPattern.ReplaceAllString(calculation, `${$1}`)
	sql = fromPattern.ReplaceAllString(sql, "")
	sql = wherePattern.ReplaceAllString(sql, "\n    # Filter: $1")

	return strings.TrimSpace(sql)
}

// TableauFormula rewrites a calculation for a Tableau calculated field:
// table.column references become [column], FROM and WHERE clauses are
// dropped.
func TableauFormula(calculation string) string {
	formula := fieldRefPattern.ReplaceAllString(calculation, `[$1]`)
	formula = fromPattern.ReplaceAllString(formula, "")
	formula = wherePattern.ReplaceAllString(formula, "")

	return strings.TrimSpace(formula)
}
