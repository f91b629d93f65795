package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_AllPresent(t *testing.T) {
	problems := Validate(true, true, RequiredColumns())
	assert.Empty(t, problems)
	assert.NotNil(t, problems)
}

func TestValidate_TrimsDestinationColumns(t *testing.T) {
	columns := RequiredColumns()
	for i := range columns {
		columns[i] = "  " + columns[i] + "\t"
	}
	assert.Empty(t, Validate(true, true, columns))
}

func TestValidate_ExtraColumnsAreFine(t *testing.T) {
	columns := append(RequiredColumns(), "FECHA.FRA", "NUM.FRA", "DIARIO_CONTB")
	assert.Empty(t, Validate(true, true, columns))
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	columns := withoutColumns(RequiredColumns(), "TOTAL", "ETAPA")

	problems := Validate(false, false, columns)

	assert.Len(t, problems, 3)
	assert.Equal(t, MissingTabularMessage, problems[0])
	assert.Equal(t, MissingDocumentsMessage, problems[1])
	assert.Contains(t, problems[2], "TOTAL")
	assert.Contains(t, problems[2], "ETAPA")
}

func TestValidate_IndependentChecks(t *testing.T) {
	assert.Equal(t, []string{MissingTabularMessage}, Validate(false, true, RequiredColumns()))
	assert.Equal(t, []string{MissingDocumentsMessage}, Validate(true, false, RequiredColumns()))
}

func TestValidate_CaseSensitive(t *testing.T) {
	columns := withoutColumns(RequiredColumns(), "RUTA")
	columns = append(columns, "ruta")

	problems := Validate(true, true, columns)
	assert.Len(t, problems, 1)
	assert.Contains(t, problems[0], "RUTA")
}

func TestMissingColumns_RequiredOrder(t *testing.T) {
	assert.Equal(t, []string{"SOCIEDAD"}, MissingColumns(withoutColumns(RequiredColumns(), "SOCIEDAD")))
	assert.Len(t, MissingColumns(nil), 19)
	assert.Equal(t, "SOCIEDAD", MissingColumns(nil)[0])
	assert.Equal(t, "ETAPA", MissingColumns(nil)[18])
}

func TestRequiredColumns_ReturnsCopy(t *testing.T) {
	cols := RequiredColumns()
	cols[0] = "changed"
	assert.Equal(t, "SOCIEDAD", RequiredColumns()[0])
}

func TestFailure_Error(t *testing.T) {
	single := &Failure{Problems: []string{"one"}}
	assert.Equal(t, "validation failed: one", single.Error())

	multi := &Failure{Problems: []string{"one", "two"}}
	assert.True(t, strings.HasPrefix(multi.Error(), "validation failed with 2 problems"))
}

func TestFormatProblems(t *testing.T) {
	assert.Equal(t, "No validation problems.", FormatProblems(nil))

	out := FormatProblems([]string{"a", "b"})
	assert.Contains(t, out, "2 problem(s)")
	assert.Contains(t, out, "  1. a\n")
	assert.Contains(t, out, "  2. b\n")
}

func withoutColumns(columns []string, drop ...string) []string {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	var kept []string
	for _, c := range columns {
		if !skip[c] {
			kept = append(kept, c)
		}
	}
	return kept
}
