package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"studio-api/core/constants"
	scheduleEntity "studio-api/modules/schedule/entity"
	"studio-api/modules/timetable/entity"
)

// Materializer expands recurring schedules plus per-date exceptions into
// concrete class instances over a bounded window. It performs no I/O:
// given identical inputs it always produces the identical instance list.
type Materializer struct {
	Location *time.Location
}

func NewMaterializer(loc *time.Location) *Materializer {
	if loc == nil {
		loc = time.UTC
	}
	return &Materializer{Location: loc}
}

// ExceptionKey identifies the one exception allowed per (schedule, date).
func ExceptionKey(scheduleID string, date time.Time) string {
	return scheduleID + "|" + date.Format(constants.DateLayout)
}

// IndexExceptions builds the overlay lookup used during expansion.
func IndexExceptions(exceptions []scheduleEntity.ScheduleException) map[string]*scheduleEntity.ScheduleException {
	index := make(map[string]*scheduleEntity.ScheduleException, len(exceptions))
	for i := range exceptions {
		e := &exceptions[i]
		index[ExceptionKey(e.ScheduleID, e.Date)] = e
	}
	return index
}

// Expand walks each day of [from, from+days) and materializes every schedule
// occurrence, applying the exception overlay. DELETED occurrences are
// skipped entirely; CANCELLED ones are emitted flagged so callers can show
// them struck through. Result is sorted by start time, then schedule id.
func (m *Materializer) Expand(
	schedules []scheduleEntity.RecurringSchedule,
	exceptions map[string]*scheduleEntity.ScheduleException,
	from time.Time,
	days int,
) []entity.ClassInstance {

	instances := []entity.ClassInstance{}
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, m.Location)

	for d := 0; d < days; d++ {
		day := start.AddDate(0, 0, d)

		for i := range schedules {
			s := &schedules[i]
			if !s.RunsOn(day) {
				continue
			}

			exception := exceptions[ExceptionKey(s.ID, day)]
			instance, ok := m.EffectiveOccurrence(s, exception, day)
			if !ok {
				continue
			}
			instances = append(instances, *instance)
		}
	}

	sort.Slice(instances, func(i, j int) bool {
		if !instances[i].StartDateTime.Equal(instances[j].StartDateTime) {
			return instances[i].StartDateTime.Before(instances[j].StartDateTime)
		}
		return instances[i].ScheduleID < instances[j].ScheduleID
	})

	return instances
}

// EffectiveOccurrence merges a schedule's base values with its per-date
// exception. Override precedence is a single rule: exception field present
// wins, otherwise the base value applies. ok is false for DELETED dates.
func (m *Materializer) EffectiveOccurrence(
	s *scheduleEntity.RecurringSchedule,
	exception *scheduleEntity.ScheduleException,
	date time.Time,
) (*entity.ClassInstance, bool) {

	if exception.IsDeleted() {
		return nil, false
	}

	startTime := s.StartTime
	durationMinutes := s.DurationMinutes
	coachID := s.CoachID
	maxParticipants := s.MaxParticipants

	if exception != nil {
		if exception.NewStartTime != nil {
			startTime = *exception.NewStartTime
		}
		if exception.NewDurationMinutes != nil {
			durationMinutes = *exception.NewDurationMinutes
		}
		if exception.NewCoachID != nil {
			coachID = *exception.NewCoachID
		}
		if exception.NewMaxParticipants != nil {
			maxParticipants = *exception.NewMaxParticipants
		}
	}

	startDateTime, err := m.combine(date, startTime)
	if err != nil {
		// A malformed start time on a stored record; surface nothing
		// rather than an instance at a bogus hour.
		return nil, false
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, m.Location)

	return &entity.ClassInstance{
		InstanceID:        InstanceID(s.ID, day),
		ScheduleID:        s.ID,
		Date:              day,
		StartDateTime:     startDateTime,
		EndDateTime:       startDateTime.Add(time.Duration(durationMinutes) * time.Minute),
		LocationID:        s.LocationID,
		ClassDefinitionID: s.ClassDefinitionID,
		CoachID:           coachID,
		MaxParticipants:   maxParticipants,
		HasWaitlist:       s.HasWaitlist,
		Cancelled:         exception.IsCancelled(),
		SpecialLabel:      s.SpecialLabel,
	}, true
}

// InstanceID derives the composite identifier of a class instance.
func InstanceID(scheduleID string, date time.Time) string {
	return scheduleID + "-" + date.Format(constants.DateLayout)
}

// combine merges a calendar day with an HH:MM time of day in the
// materializer's location.
func (m *Materializer) combine(date time.Time, timeOfDay string) (time.Time, error) {
	parts := strings.SplitN(timeOfDay, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid time of day %q", timeOfDay)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("invalid hour in %q", timeOfDay)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("invalid minute in %q", timeOfDay)
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, m.Location), nil
}
