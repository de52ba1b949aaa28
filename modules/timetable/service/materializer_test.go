package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	coreEntity "studio-api/core/entity"
	scheduleEntity "studio-api/modules/schedule/entity"
)

func testSchedule(id string, weekdays ...int64) scheduleEntity.RecurringSchedule {
	return scheduleEntity.RecurringSchedule{
		LocationID:        uuid.New(),
		ClassDefinitionID: "yoga-flow",
		CoachID:           uuid.New(),
		Weekdays:          pq.Int64Array(weekdays),
		StartTime:         "18:00",
		DurationMinutes:   60,
		MaxParticipants:   10,
		StartDate:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:           time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		HasWaitlist:       true,
		BaseEntity:        coreEntity.BaseEntity{ID: id},
	}
}

// 2026-03-02 is a Monday.
var windowStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func TestExpand_WeekdayExpansion(t *testing.T) {
	m := NewMaterializer(time.UTC)
	schedules := []scheduleEntity.RecurringSchedule{testSchedule("s1", 1, 3)} // Mon, Wed

	instances := m.Expand(schedules, nil, windowStart, 7)

	if len(instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(instances))
	}
	if got := instances[0].Date; !got.Equal(windowStart) {
		t.Fatalf("expected first instance on Monday %v, got %v", windowStart, got)
	}
	wed := windowStart.AddDate(0, 0, 2)
	if got := instances[1].Date; !got.Equal(wed) {
		t.Fatalf("expected second instance on Wednesday %v, got %v", wed, got)
	}
	if instances[0].InstanceID != "s1-2026-03-02" {
		t.Fatalf("unexpected instance id %q", instances[0].InstanceID)
	}
	wantStart := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	if !instances[0].StartDateTime.Equal(wantStart) {
		t.Fatalf("expected start %v, got %v", wantStart, instances[0].StartDateTime)
	}
	if !instances[0].EndDateTime.Equal(wantStart.Add(time.Hour)) {
		t.Fatalf("expected 60 minute duration, got end %v", instances[0].EndDateTime)
	}
}

func TestExpand_ValidityWindow(t *testing.T) {
	m := NewMaterializer(time.UTC)
	s := testSchedule("s1", 1) // Mondays
	s.EndDate = windowStart.AddDate(0, 0, 6)

	instances := m.Expand([]scheduleEntity.RecurringSchedule{s}, nil, windowStart, 28)

	// Only the Mondays inside [StartDate, EndDate] materialize.
	if len(instances) != 1 {
		t.Fatalf("expected 1 instance inside validity window, got %d", len(instances))
	}
}

func TestExpand_OverridePrecedence(t *testing.T) {
	m := NewMaterializer(time.UTC)
	s := testSchedule("s1", 1)
	newStart := "07:30"
	newMax := 5
	exceptions := IndexExceptions([]scheduleEntity.ScheduleException{{
		ID:                 "e1",
		ScheduleID:         "s1",
		Date:               windowStart,
		NewStartTime:       &newStart,
		NewMaxParticipants: &newMax,
	}})

	instances := m.Expand([]scheduleEntity.RecurringSchedule{s}, exceptions, windowStart, 7)

	if len(instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(instances))
	}
	inst := instances[0]
	wantStart := time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)
	if !inst.StartDateTime.Equal(wantStart) {
		t.Fatalf("expected overridden start %v, got %v", wantStart, inst.StartDateTime)
	}
	if inst.MaxParticipants != 5 {
		t.Fatalf("expected overridden capacity 5, got %d", inst.MaxParticipants)
	}
	// Fields without an override keep base values.
	if inst.CoachID != s.CoachID {
		t.Fatalf("coach should come from the template")
	}
	if !inst.EndDateTime.Equal(wantStart.Add(time.Hour)) {
		t.Fatalf("duration should come from the template")
	}
}

func TestExpand_DeletedSkippedCancelledFlagged(t *testing.T) {
	m := NewMaterializer(time.UTC)
	s := testSchedule("s1", 1, 3)
	deleted := scheduleEntity.ExceptionStatusDeleted
	cancelled := scheduleEntity.ExceptionStatusCancelled
	exceptions := IndexExceptions([]scheduleEntity.ScheduleException{
		{ID: "e1", ScheduleID: "s1", Date: windowStart, Status: &deleted},
		{ID: "e2", ScheduleID: "s1", Date: windowStart.AddDate(0, 0, 2), Status: &cancelled},
	})

	instances := m.Expand([]scheduleEntity.RecurringSchedule{s}, exceptions, windowStart, 7)

	// Monday is deleted: absent. Wednesday is cancelled: present, flagged.
	if len(instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(instances))
	}
	if !instances[0].Cancelled {
		t.Fatalf("expected cancelled flag on the remaining instance")
	}
	if !instances[0].Date.Equal(windowStart.AddDate(0, 0, 2)) {
		t.Fatalf("wrong surviving instance: %v", instances[0].Date)
	}
}

func TestExpand_DeterministicOrder(t *testing.T) {
	m := NewMaterializer(time.UTC)
	a := testSchedule("b-later", 1)
	b := testSchedule("a-first", 1)
	c := testSchedule("c-early", 1)
	c.StartTime = "06:00"
	schedules := []scheduleEntity.RecurringSchedule{a, b, c}

	first := m.Expand(schedules, nil, windowStart, 1)
	second := m.Expand(schedules, nil, windowStart, 1)

	if len(first) != 3 {
		t.Fatalf("expected 3 instances, got %d", len(first))
	}
	// Earliest start first; same start ordered by schedule id.
	if first[0].ScheduleID != "c-early" || first[1].ScheduleID != "a-first" || first[2].ScheduleID != "b-later" {
		t.Fatalf("wrong order: %s, %s, %s", first[0].ScheduleID, first[1].ScheduleID, first[2].ScheduleID)
	}
	for i := range first {
		if first[i].InstanceID != second[i].InstanceID {
			t.Fatalf("expansion is not idempotent at index %d", i)
		}
	}
}

func TestEffectiveOccurrence_MalformedStartTime(t *testing.T) {
	m := NewMaterializer(time.UTC)
	s := testSchedule("s1", 1)
	s.StartTime = "25:99"

	if _, ok := m.EffectiveOccurrence(&s, nil, windowStart); ok {
		t.Fatalf("expected malformed start time to produce no occurrence")
	}
}
