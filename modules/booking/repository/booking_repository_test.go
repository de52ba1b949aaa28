package repository

import (
	"strings"
	"testing"
)

// The shared column list is spliced between SQL keywords; a missing
// separator would glue the last column onto FROM and break every read.
func TestBookingColumnsSpliceCleanly(t *testing.T) {
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE id = $1`

	if !strings.Contains(query, "updated_at FROM") {
		t.Fatalf("column list does not separate from FROM: %q", query)
	}
	if !strings.HasPrefix(bookingColumns, "\n") {
		t.Fatalf("column list must start with whitespace to separate from SELECT")
	}
	for _, col := range []string{"id", "participant_id", "schedule_id", "class_date", "status", "booking_date", "cancel_reason"} {
		if !strings.Contains(bookingColumns, col) {
			t.Fatalf("column list missing %s", col)
		}
	}
}
