package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	coreEntity "studio-api/core/entity"
	"studio-api/core/errors"
	bookingEntity "studio-api/modules/booking/entity"
	classdefEntity "studio-api/modules/classdef/entity"
	notificationDto "studio-api/modules/notification/dto"
	"studio-api/modules/schedule/dto"
	"studio-api/modules/schedule/entity"
)

// ===================== In-memory fakes =====================

type fakeScheduleRepo struct {
	schedules  map[string]*entity.RecurringSchedule
	exceptions map[string]*entity.ScheduleException
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{
		schedules:  map[string]*entity.RecurringSchedule{},
		exceptions: map[string]*entity.ScheduleException{},
	}
}

func exceptionKey(scheduleID string, date time.Time) string {
	return scheduleID + "|" + date.Format("2006-01-02")
}

func (r *fakeScheduleRepo) Create(_ context.Context, s *entity.RecurringSchedule) error {
	r.schedules[s.ID] = s
	return nil
}

func (r *fakeScheduleRepo) GetByID(_ context.Context, id string) (*entity.RecurringSchedule, error) {
	return r.schedules[id], nil
}

func (r *fakeScheduleRepo) ListByLocation(_ context.Context, locationID uuid.UUID) ([]entity.RecurringSchedule, error) {
	var out []entity.RecurringSchedule
	for _, s := range r.schedules {
		if s.LocationID == locationID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) ListActiveInWindow(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]entity.RecurringSchedule, error) {
	return nil, nil
}

func (r *fakeScheduleRepo) Update(_ context.Context, s *entity.RecurringSchedule) error {
	r.schedules[s.ID] = s
	return nil
}

func (r *fakeScheduleRepo) Delete(_ context.Context, id string) error {
	delete(r.schedules, id)
	return nil
}

func (r *fakeScheduleRepo) GetException(_ context.Context, scheduleID string, date time.Time) (*entity.ScheduleException, error) {
	return r.exceptions[exceptionKey(scheduleID, date)], nil
}

func (r *fakeScheduleRepo) ListExceptionsForSchedules(_ context.Context, _ []string, _, _ time.Time) ([]entity.ScheduleException, error) {
	return nil, nil
}

func (r *fakeScheduleRepo) UpsertException(_ context.Context, e *entity.ScheduleException) error {
	r.exceptions[exceptionKey(e.ScheduleID, e.Date)] = e
	return nil
}

func (r *fakeScheduleRepo) UpsertExceptionTx(_ *sqlx.Tx, e *entity.ScheduleException) error {
	return r.UpsertException(context.Background(), e)
}

type fakeBookingRepo struct {
	bookings map[string]*bookingEntity.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[string]*bookingEntity.Booking{}}
}

func (r *fakeBookingRepo) Create(_ context.Context, b *bookingEntity.Booking) error {
	r.bookings[b.ID] = b
	return nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id string) (*bookingEntity.Booking, error) {
	return r.bookings[id], nil
}

func (r *fakeBookingRepo) GetActiveByParticipantAndInstance(_ context.Context, _ uuid.UUID, _ string, _ time.Time) (*bookingEntity.Booking, error) {
	return nil, nil
}

func (r *fakeBookingRepo) ListActiveByInstance(_ context.Context, scheduleID string, classDate time.Time) ([]bookingEntity.Booking, error) {
	var out []bookingEntity.Booking
	for _, b := range r.bookings {
		if b.ScheduleID == scheduleID && b.ClassDate.Equal(classDate) && b.IsActive() {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListActiveForSchedulesWindow(_ context.Context, _ []string, _, _ time.Time) ([]bookingEntity.Booking, error) {
	return nil, nil
}

func (r *fakeBookingRepo) ListByParticipant(_ context.Context, _ uuid.UUID, _ time.Time) ([]bookingEntity.Booking, error) {
	return nil, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id string, status bookingEntity.BookingStatus, cancelReason *string) error {
	b := r.bookings[id]
	b.Status = status
	b.CancelReason = cancelReason
	return nil
}

func (r *fakeBookingRepo) UpdateStatusTx(_ *sqlx.Tx, id string, status bookingEntity.BookingStatus, cancelReason *string) error {
	return r.UpdateStatus(context.Background(), id, status, cancelReason)
}

func (r *fakeBookingRepo) CancelAllActiveForInstanceTx(_ *sqlx.Tx, scheduleID string, classDate time.Time, reason string) ([]bookingEntity.Booking, error) {
	var affected []bookingEntity.Booking
	for _, b := range r.bookings {
		if b.ScheduleID == scheduleID && b.ClassDate.Equal(classDate) && b.IsActive() {
			b.Status = bookingEntity.BookingStatusCancelled
			b.CancelReason = &reason
			affected = append(affected, *b)
		}
	}
	return affected, nil
}

type fakeClassDefRepo struct {
	defs map[string]*classdefEntity.ClassDefinition
}

func (r *fakeClassDefRepo) Create(_ context.Context, _ *classdefEntity.ClassDefinition) error {
	return nil
}
func (r *fakeClassDefRepo) GetByID(_ context.Context, id string) (*classdefEntity.ClassDefinition, error) {
	return r.defs[id], nil
}
func (r *fakeClassDefRepo) GetBySlug(_ context.Context, slug string) (*classdefEntity.ClassDefinition, error) {
	for _, def := range r.defs {
		if def.Slug == slug {
			return def, nil
		}
	}
	return nil, nil
}
func (r *fakeClassDefRepo) List(_ context.Context) ([]classdefEntity.ClassDefinition, error) {
	return nil, nil
}
func (r *fakeClassDefRepo) Update(_ context.Context, _ *classdefEntity.ClassDefinition) error {
	return nil
}
func (r *fakeClassDefRepo) Delete(_ context.Context, _ string) error { return nil }
func (r *fakeClassDefRepo) CountReferencingSchedules(_ context.Context, _ string) (int, error) {
	return 0, nil
}

type recordingDispatcher struct {
	intents []notificationDto.Intent
}

func (d *recordingDispatcher) Dispatch(_ context.Context, intents ...notificationDto.Intent) {
	d.intents = append(d.intents, intents...)
}

type fakeDB struct{}

func (fakeDB) ExecContext(_ context.Context, _ string, _ ...any) error       { return nil }
func (fakeDB) GetContext(_ context.Context, _ any, _ string, _ ...any) error { return nil }
func (fakeDB) SelectContext(_ context.Context, _ any, _ string, _ ...any) error {
	return nil
}
func (fakeDB) QueryRowContext(_ context.Context, _ string, _ ...any) *sql.Row { return nil }
func (fakeDB) QueryContext(_ context.Context, _ string, _ ...any) (*sql.Rows, error) {
	return nil, nil
}
func (fakeDB) NamedQueryContext(_ context.Context, _ string, _ any) (*sqlx.Rows, error) {
	return nil, nil
}
func (fakeDB) NamedExecContext(_ context.Context, _ string, _ any) (sql.Result, error) {
	return nil, nil
}
func (fakeDB) WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}
func (fakeDB) SQLx() *sqlx.DB { return nil }

// ===================== Fixture =====================

type scheduleFixture struct {
	service    ScheduleServiceInterface
	schedules  *fakeScheduleRepo
	bookings   *fakeBookingRepo
	dispatcher *recordingDispatcher
	classDate  time.Time
}

func newScheduleFixture(t *testing.T) *scheduleFixture {
	t.Helper()

	schedules := newFakeScheduleRepo()
	schedules.schedules["s1"] = &entity.RecurringSchedule{
		LocationID:        uuid.New(),
		ClassDefinitionID: "yoga-flow",
		CoachID:           uuid.New(),
		Weekdays:          pq.Int64Array{1}, // Mondays
		StartTime:         "18:00",
		DurationMinutes:   60,
		MaxParticipants:   10,
		StartDate:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:           time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		HasWaitlist:       true,
		BaseEntity:        coreEntity.BaseEntity{ID: "s1"},
	}

	bookings := newFakeBookingRepo()
	dispatcher := &recordingDispatcher{}
	classDefs := &fakeClassDefRepo{defs: map[string]*classdefEntity.ClassDefinition{
		"yoga-flow": {
			Name:                   "Yoga Flow",
			Category:               "yoga",
			DefaultDurationMinutes: 60,
			HasWaitlist:            true,
			BaseEntity:             coreEntity.BaseEntity{ID: "yoga-flow"},
		},
	}}

	svc := NewScheduleService(schedules, bookings, classDefs, dispatcher, fakeDB{})

	return &scheduleFixture{
		service:    svc,
		schedules:  schedules,
		bookings:   bookings,
		dispatcher: dispatcher,
		classDate:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), // a Monday
	}
}

func (f *scheduleFixture) addBooking(id string, status bookingEntity.BookingStatus) uuid.UUID {
	participantID := uuid.New()
	f.bookings.bookings[id] = &bookingEntity.Booking{
		ParticipantID: participantID,
		ScheduleID:    "s1",
		ClassDate:     f.classDate,
		Status:        status,
		BookingDate:   f.classDate.Add(-48 * time.Hour),
		BaseEntity:    coreEntity.BaseEntity{ID: id},
	}
	return participantID
}

func expectCode(t *testing.T, appErr *errors.AppError, code errors.ErrorCode) {
	t.Helper()
	if appErr == nil {
		t.Fatalf("expected error %s, got nil", code)
	}
	if appErr.Code != code {
		t.Fatalf("expected error %s, got %s", code, appErr.Code)
	}
}

// ===================== Tests =====================

func TestCancelInstance_CascadesAndNotifies(t *testing.T) {
	f := newScheduleFixture(t)
	f.addBooking("b1", bookingEntity.BookingStatusBooked)
	f.addBooking("b2", bookingEntity.BookingStatusCheckedIn)
	f.addBooking("b3", bookingEntity.BookingStatusWaitlisted)

	resp, appErr := f.service.CancelInstance(context.Background(), "s1", f.classDate)
	if appErr != nil {
		t.Fatalf("cancel instance failed: %v", appErr)
	}
	if resp.Status != string(entity.ExceptionStatusCancelled) {
		t.Fatalf("expected CANCELLED exception, got %q", resp.Status)
	}

	for _, id := range []string{"b1", "b2", "b3"} {
		b := f.bookings.bookings[id]
		if b.Status != bookingEntity.BookingStatusCancelled {
			t.Fatalf("expected %s cancelled, got %s", id, b.Status)
		}
		if b.CancelReason == nil || *b.CancelReason != bookingEntity.CancelReasonCoach {
			t.Fatalf("expected coach_cancelled reason on %s", id)
		}
	}

	if len(f.dispatcher.intents) != 3 {
		t.Fatalf("expected 3 intents, got %d", len(f.dispatcher.intents))
	}
	for _, intent := range f.dispatcher.intents {
		if intent.Kind != notificationDto.IntentKindClassCancelled {
			t.Fatalf("expected class_cancelled intent, got %s", intent.Kind)
		}
		if intent.Payload["class_name"] != "Yoga Flow" {
			t.Fatalf("expected class name in payload")
		}
	}
}

func TestCancelInstance_TerminalIsFinal(t *testing.T) {
	f := newScheduleFixture(t)

	if _, appErr := f.service.CancelInstance(context.Background(), "s1", f.classDate); appErr != nil {
		t.Fatalf("first cancel failed: %v", appErr)
	}

	_, appErr := f.service.CancelInstance(context.Background(), "s1", f.classDate)
	expectCode(t, appErr, errors.ErrAlreadyExists)

	req := &dto.EditInstanceRequest{}
	_, appErr = f.service.EditInstance(context.Background(), "s1", f.classDate, req)
	expectCode(t, appErr, errors.ErrAlreadyExists)
}

func TestDeleteInstance_SilentNoCascade(t *testing.T) {
	f := newScheduleFixture(t)
	f.addBooking("b1", bookingEntity.BookingStatusBooked)

	if appErr := f.service.DeleteInstance(context.Background(), "s1", f.classDate); appErr != nil {
		t.Fatalf("delete instance failed: %v", appErr)
	}

	stored := f.schedules.exceptions[exceptionKey("s1", f.classDate)]
	if !stored.IsDeleted() {
		t.Fatalf("expected DELETED exception")
	}
	// Deliberately no cascade and no notification.
	if f.bookings.bookings["b1"].Status != bookingEntity.BookingStatusBooked {
		t.Fatalf("delete must not touch existing bookings")
	}
	if len(f.dispatcher.intents) != 0 {
		t.Fatalf("delete must not dispatch intents, got %d", len(f.dispatcher.intents))
	}
}

func TestEditInstance_MergesOverrides(t *testing.T) {
	f := newScheduleFixture(t)

	newStart := "07:30"
	if _, appErr := f.service.EditInstance(context.Background(), "s1", f.classDate, &dto.EditInstanceRequest{
		NewStartTime: &newStart,
	}); appErr != nil {
		t.Fatalf("first edit failed: %v", appErr)
	}

	newMax := 5
	resp, appErr := f.service.EditInstance(context.Background(), "s1", f.classDate, &dto.EditInstanceRequest{
		NewMaxParticipants: &newMax,
	})
	if appErr != nil {
		t.Fatalf("second edit failed: %v", appErr)
	}

	// The second edit keeps the earlier start time override.
	if resp.NewStartTime == nil || *resp.NewStartTime != "07:30" {
		t.Fatalf("expected start override preserved, got %v", resp.NewStartTime)
	}
	if resp.NewMaxParticipants == nil || *resp.NewMaxParticipants != 5 {
		t.Fatalf("expected capacity override, got %v", resp.NewMaxParticipants)
	}
}

func TestEditInstance_NotifyOptIn(t *testing.T) {
	f := newScheduleFixture(t)
	f.addBooking("b1", bookingEntity.BookingStatusBooked)
	f.addBooking("b2", bookingEntity.BookingStatusWaitlisted)

	newStart := "19:00"
	if _, appErr := f.service.EditInstance(context.Background(), "s1", f.classDate, &dto.EditInstanceRequest{
		NewStartTime: &newStart,
	}); appErr != nil {
		t.Fatalf("edit failed: %v", appErr)
	}
	if len(f.dispatcher.intents) != 0 {
		t.Fatalf("edit without notify must stay silent")
	}

	newMax := 12
	if _, appErr := f.service.EditInstance(context.Background(), "s1", f.classDate, &dto.EditInstanceRequest{
		NewMaxParticipants: &newMax,
		Notify:             true,
	}); appErr != nil {
		t.Fatalf("edit failed: %v", appErr)
	}
	if len(f.dispatcher.intents) != 2 {
		t.Fatalf("expected 2 intents, got %d", len(f.dispatcher.intents))
	}
	for _, intent := range f.dispatcher.intents {
		if intent.Kind != notificationDto.IntentKindInstanceModified {
			t.Fatalf("expected instance_modified intent, got %s", intent.Kind)
		}
	}
}

func TestEditInstance_NoOccurrence(t *testing.T) {
	f := newScheduleFixture(t)
	tuesday := f.classDate.AddDate(0, 0, 1)

	newStart := "19:00"
	_, appErr := f.service.EditInstance(context.Background(), "s1", tuesday, &dto.EditInstanceRequest{
		NewStartTime: &newStart,
	})
	expectCode(t, appErr, errors.ErrNotFound)
}

func TestEditInstance_RejectsBadValues(t *testing.T) {
	f := newScheduleFixture(t)

	bad := "25:99"
	_, appErr := f.service.EditInstance(context.Background(), "s1", f.classDate, &dto.EditInstanceRequest{
		NewStartTime: &bad,
	})
	expectCode(t, appErr, errors.ErrInvalidInput)

	zero := 0
	_, appErr = f.service.EditInstance(context.Background(), "s1", f.classDate, &dto.EditInstanceRequest{
		NewMaxParticipants: &zero,
	})
	expectCode(t, appErr, errors.ErrInvalidInput)
}

func TestCreate_Validation(t *testing.T) {
	f := newScheduleFixture(t)
	base := dto.CreateScheduleRequest{
		LocationID:        uuid.NewString(),
		ClassDefinitionID: "yoga-flow",
		CoachID:           uuid.NewString(),
		Weekdays:          []int{1, 3},
		StartTime:         "18:00",
		MaxParticipants:   10,
		StartDate:         "2026-03-01",
		EndDate:           "2026-06-01",
	}

	resp, appErr := f.service.Create(context.Background(), &base)
	if appErr != nil {
		t.Fatalf("create failed: %v", appErr)
	}
	// Defaults flow from the class definition.
	if resp.DurationMinutes != 60 {
		t.Fatalf("expected default duration 60, got %d", resp.DurationMinutes)
	}
	if !resp.HasWaitlist {
		t.Fatalf("expected waitlist default from class definition")
	}

	badWeekday := base
	badWeekday.Weekdays = []int{0, 8}
	_, appErr = f.service.Create(context.Background(), &badWeekday)
	expectCode(t, appErr, errors.ErrInvalidInput)

	badTime := base
	badTime.StartTime = "6pm"
	_, appErr = f.service.Create(context.Background(), &badTime)
	expectCode(t, appErr, errors.ErrInvalidInput)

	badRange := base
	badRange.StartDate = "2026-06-01"
	badRange.EndDate = "2026-03-01"
	_, appErr = f.service.Create(context.Background(), &badRange)
	expectCode(t, appErr, errors.ErrInvalidInput)
}
