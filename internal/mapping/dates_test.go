package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDate(t *testing.T) {
	cases := map[string]string{
		"2024-03-15":           "15/03/2024",
		" 2024-03-15 ":         "15/03/2024",
		"2024-03-15 10:30:00":  "15/03/2024",
		"2024-03-15T10:30:00Z": "15/03/2024",
		"15/03/2024":           "15/03/2024",
		"3/4/2024":             "03/04/2024",
		"15-03-2024":           "15/03/2024",
		"15.03.2024":           "15/03/2024",
		"2024/03/15":           "15/03/2024",
		"15 Mar 2024":          "15/03/2024",
		"Mar 15, 2024":         "15/03/2024",
		"20240315":             "15/03/2024",
		"":                     "",
		"soon":                 "",
		"2024-02-30":           "",
	}

	for in, want := range cases {
		assert.Equal(t, want, FormatDate(in, OutputDateLayout), "input %q", in)
	}
}

func TestFormatDate_DayFirst(t *testing.T) {
	assert.Equal(t, "03/04/2024", FormatDate("03/04/2024", OutputDateLayout))
}

func TestFormatDate_CustomLayout(t *testing.T) {
	assert.Equal(t, "2024-03-15", FormatDate("15/03/2024", "2006-01-02"))
	assert.Equal(t, "15/03/2024", FormatDate("15/03/2024", ""))
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2024-12-31")
	assert.True(t, ok)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, 31, d.Day())

	_, ok = ParseDate("31/31/2024")
	assert.False(t, ok)
}
