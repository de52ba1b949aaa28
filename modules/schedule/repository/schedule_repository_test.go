package repository

import (
	"strings"
	"testing"
)

// Both column lists are spliced between SQL keywords; a missing separator
// would glue the last column onto FROM and break GetByID/GetException.
func TestColumnListsSpliceCleanly(t *testing.T) {
	cases := []struct {
		name    string
		columns string
		query   string
	}{
		{
			"schedules",
			scheduleColumns,
			`SELECT` + scheduleColumns + ` FROM recurring_schedules WHERE id = $1`,
		},
		{
			"exceptions",
			exceptionColumns,
			`SELECT` + exceptionColumns + ` FROM schedule_exceptions WHERE schedule_id = $1 AND date = $2`,
		},
	}

	for _, tc := range cases {
		if !strings.Contains(tc.query, " FROM ") {
			t.Fatalf("%s: column list does not separate from FROM: %q", tc.name, tc.query)
		}
		if strings.Contains(tc.query, "updated_atFROM") {
			t.Fatalf("%s: column list glued onto FROM: %q", tc.name, tc.query)
		}
		if !strings.HasPrefix(tc.columns, "\n") {
			t.Fatalf("%s: column list must start with whitespace to separate from SELECT", tc.name)
		}
	}
}
