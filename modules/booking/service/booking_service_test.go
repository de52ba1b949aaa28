package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"studio-api/core/clock"
	coreEntity "studio-api/core/entity"
	"studio-api/core/errors"
	"studio-api/modules/booking/entity"
	classdefEntity "studio-api/modules/classdef/entity"
	notificationDto "studio-api/modules/notification/dto"
	scheduleEntity "studio-api/modules/schedule/entity"
	timetableService "studio-api/modules/timetable/service"
)

// ===================== In-memory fakes =====================

type fakeBookingRepo struct {
	bookings map[string]*entity.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[string]*entity.Booking{}}
}

func (r *fakeBookingRepo) Create(_ context.Context, b *entity.Booking) error {
	copied := *b
	r.bookings[b.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id string) (*entity.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) GetActiveByParticipantAndInstance(_ context.Context, participantID uuid.UUID, scheduleID string, classDate time.Time) (*entity.Booking, error) {
	for _, b := range r.bookings {
		if b.ParticipantID == participantID && b.ScheduleID == scheduleID && b.ClassDate.Equal(classDate) && b.IsActive() {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) ListActiveByInstance(_ context.Context, scheduleID string, classDate time.Time) ([]entity.Booking, error) {
	var out []entity.Booking
	for _, b := range r.bookings {
		if b.ScheduleID == scheduleID && b.ClassDate.Equal(classDate) && b.IsActive() {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BookingDate.Equal(out[j].BookingDate) {
			return out[i].BookingDate.Before(out[j].BookingDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeBookingRepo) ListActiveForSchedulesWindow(_ context.Context, _ []string, _, _ time.Time) ([]entity.Booking, error) {
	return nil, nil
}

func (r *fakeBookingRepo) ListByParticipant(_ context.Context, participantID uuid.UUID, _ time.Time) ([]entity.Booking, error) {
	var out []entity.Booking
	for _, b := range r.bookings {
		if b.ParticipantID == participantID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id string, status entity.BookingStatus, cancelReason *string) error {
	b := r.bookings[id]
	b.Status = status
	b.CancelReason = cancelReason
	return nil
}

func (r *fakeBookingRepo) UpdateStatusTx(_ *sqlx.Tx, id string, status entity.BookingStatus, cancelReason *string) error {
	return r.UpdateStatus(context.Background(), id, status, cancelReason)
}

func (r *fakeBookingRepo) CancelAllActiveForInstanceTx(_ *sqlx.Tx, scheduleID string, classDate time.Time, reason string) ([]entity.Booking, error) {
	var affected []entity.Booking
	for _, b := range r.bookings {
		if b.ScheduleID == scheduleID && b.ClassDate.Equal(classDate) && b.IsActive() {
			b.Status = entity.BookingStatusCancelled
			b.CancelReason = &reason
			affected = append(affected, *b)
		}
	}
	return affected, nil
}

type fakeScheduleRepo struct {
	schedules  map[string]*scheduleEntity.RecurringSchedule
	exceptions map[string]*scheduleEntity.ScheduleException
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{
		schedules:  map[string]*scheduleEntity.RecurringSchedule{},
		exceptions: map[string]*scheduleEntity.ScheduleException{},
	}
}

func (r *fakeScheduleRepo) Create(_ context.Context, s *scheduleEntity.RecurringSchedule) error {
	r.schedules[s.ID] = s
	return nil
}

func (r *fakeScheduleRepo) GetByID(_ context.Context, id string) (*scheduleEntity.RecurringSchedule, error) {
	return r.schedules[id], nil
}

func (r *fakeScheduleRepo) ListByLocation(_ context.Context, _ uuid.UUID) ([]scheduleEntity.RecurringSchedule, error) {
	return nil, nil
}

func (r *fakeScheduleRepo) ListActiveInWindow(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]scheduleEntity.RecurringSchedule, error) {
	return nil, nil
}

func (r *fakeScheduleRepo) Update(_ context.Context, s *scheduleEntity.RecurringSchedule) error {
	r.schedules[s.ID] = s
	return nil
}

func (r *fakeScheduleRepo) Delete(_ context.Context, id string) error {
	delete(r.schedules, id)
	return nil
}

func (r *fakeScheduleRepo) GetException(_ context.Context, scheduleID string, date time.Time) (*scheduleEntity.ScheduleException, error) {
	return r.exceptions[timetableService.ExceptionKey(scheduleID, date)], nil
}

func (r *fakeScheduleRepo) ListExceptionsForSchedules(_ context.Context, _ []string, _, _ time.Time) ([]scheduleEntity.ScheduleException, error) {
	return nil, nil
}

func (r *fakeScheduleRepo) UpsertException(_ context.Context, e *scheduleEntity.ScheduleException) error {
	r.exceptions[timetableService.ExceptionKey(e.ScheduleID, e.Date)] = e
	return nil
}

func (r *fakeScheduleRepo) UpsertExceptionTx(_ *sqlx.Tx, e *scheduleEntity.ScheduleException) error {
	return r.UpsertException(context.Background(), e)
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

// fakeDB satisfies database.IDatabase for services that only need
// WithTransaction; the fakes ignore the nil tx handle.
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

type bookingFixture struct {
	service    BookingServiceInterface
	bookings   *fakeBookingRepo
	schedules  *fakeScheduleRepo
	dispatcher *recordingDispatcher
	clock      *clock.Fixed
	classDate  time.Time
}

// newBookingFixture wires the service around a Monday 18:00 class with the
// given capacity, frozen at 08:00 the same day.
func newBookingFixture(t *testing.T, maxParticipants int, hasWaitlist bool) *bookingFixture {
	t.Helper()

	classDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday
	schedules := newFakeScheduleRepo()
	schedules.schedules["s1"] = &scheduleEntity.RecurringSchedule{
		LocationID:        uuid.New(),
		ClassDefinitionID: "yoga-flow",
		CoachID:           uuid.New(),
		Weekdays:          pq.Int64Array{1},
		StartTime:         "18:00",
		DurationMinutes:   60,
		MaxParticipants:   maxParticipants,
		StartDate:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:           time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		HasWaitlist:       hasWaitlist,
		BaseEntity:        coreEntity.BaseEntity{ID: "s1"},
	}

	bookings := newFakeBookingRepo()
	dispatcher := &recordingDispatcher{}
	clk := clock.NewFixed(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))

	svc := NewBookingService(
		bookings,
		schedules,
		&fakeClassDefRepo{defs: map[string]*classdefEntity.ClassDefinition{
			"yoga-flow": {Name: "Yoga Flow", Category: "yoga"},
		}},
		dispatcher,
		timetableService.NewMaterializer(time.UTC),
		fakeDB{},
		clk,
		2,
	)

	return &bookingFixture{
		service:    svc,
		bookings:   bookings,
		schedules:  schedules,
		dispatcher: dispatcher,
		clock:      clk,
		classDate:  classDate,
	}
}

func (f *bookingFixture) book(t *testing.T, participantID uuid.UUID) string {
	t.Helper()
	resp, appErr := f.service.Book(context.Background(), participantID, "s1", f.classDate)
	if appErr != nil {
		t.Fatalf("book failed: %v", appErr)
	}
	// Later bookings must sort after earlier ones even within the test's
	// frozen clock.
	f.clock.T = f.clock.T.Add(time.Minute)
	return resp.ID
}

// ===================== Tests =====================

func TestBook_FillsThenWaitlists(t *testing.T) {
	f := newBookingFixture(t, 2, true)
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

	respA, appErr := f.service.Book(context.Background(), alice, "s1", f.classDate)
	if appErr != nil {
		t.Fatalf("book failed: %v", appErr)
	}
	if respA.Status != string(entity.BookingStatusBooked) {
		t.Fatalf("expected BOOKED, got %s", respA.Status)
	}
	f.clock.T = f.clock.T.Add(time.Minute)

	f.book(t, bob)

	respC, appErr := f.service.Book(context.Background(), carol, "s1", f.classDate)
	if appErr != nil {
		t.Fatalf("book failed: %v", appErr)
	}
	if respC.Status != string(entity.BookingStatusWaitlisted) {
		t.Fatalf("expected WAITLISTED, got %s", respC.Status)
	}
	if respC.WaitlistPosition != 1 {
		t.Fatalf("expected waitlist position 1, got %d", respC.WaitlistPosition)
	}
}

func TestBook_DuplicateRejected(t *testing.T) {
	f := newBookingFixture(t, 5, true)
	alice := uuid.New()
	f.book(t, alice)

	_, appErr := f.service.Book(context.Background(), alice, "s1", f.classDate)
	expectCode(t, appErr, errors.ErrAlreadyBooked)
}

func TestBook_FullWithoutWaitlist(t *testing.T) {
	f := newBookingFixture(t, 1, false)
	f.book(t, uuid.New())

	_, appErr := f.service.Book(context.Background(), uuid.New(), "s1", f.classDate)
	expectCode(t, appErr, errors.ErrClassFull)
}

func TestBook_LoweredCapacityAdmitsNobody(t *testing.T) {
	f := newBookingFixture(t, 2, true)
	alice, bob := uuid.New(), uuid.New()
	aliceID := f.book(t, alice)
	bobID := f.book(t, bob)

	// Staff lower this date's capacity below the roster; nobody is
	// evicted, and new bookings fail outright despite the waitlist.
	newMax := 1
	f.schedules.exceptions[timetableService.ExceptionKey("s1", f.classDate)] = &scheduleEntity.ScheduleException{
		ID: "e1", ScheduleID: "s1", Date: f.classDate, NewMaxParticipants: &newMax,
	}

	_, appErr := f.service.Book(context.Background(), uuid.New(), "s1", f.classDate)
	expectCode(t, appErr, errors.ErrClassFull)

	for _, id := range []string{aliceID, bobID} {
		b, _ := f.bookings.GetByID(context.Background(), id)
		if b.Status != entity.BookingStatusBooked {
			t.Fatalf("expected %s still BOOKED, got %s", id, b.Status)
		}
	}
}

func TestBook_CancelledInstanceRejected(t *testing.T) {
	f := newBookingFixture(t, 5, true)
	status := scheduleEntity.ExceptionStatusCancelled
	f.schedules.exceptions[timetableService.ExceptionKey("s1", f.classDate)] = &scheduleEntity.ScheduleException{
		ID: "e1", ScheduleID: "s1", Date: f.classDate, Status: &status,
	}

	_, appErr := f.service.Book(context.Background(), uuid.New(), "s1", f.classDate)
	expectCode(t, appErr, errors.ErrInstanceGone)
}

func TestBook_NoOccurrenceOnDate(t *testing.T) {
	f := newBookingFixture(t, 5, true)
	tuesday := f.classDate.AddDate(0, 0, 1)

	_, appErr := f.service.Book(context.Background(), uuid.New(), "s1", tuesday)
	expectCode(t, appErr, errors.ErrNotFound)
}

func TestCancel_PromotesEarliestWaitlisted(t *testing.T) {
	f := newBookingFixture(t, 2, true)
	alice, bob, carol, dave := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	aliceID := f.book(t, alice)
	f.book(t, bob)
	carolID := f.book(t, carol)
	daveID := f.book(t, dave)

	resp, appErr := f.service.CancelBooking(context.Background(), aliceID, alice, false)
	if appErr != nil {
		t.Fatalf("cancel failed: %v", appErr)
	}
	if resp.Status != string(entity.BookingStatusCancelled) {
		t.Fatalf("expected CANCELLED, got %s", resp.Status)
	}
	if resp.CancelReason != entity.CancelReasonParticipant {
		t.Fatalf("expected participant reason, got %q", resp.CancelReason)
	}

	// Carol waited longest: she takes the freed spot, Dave keeps waiting.
	promoted, _ := f.bookings.GetByID(context.Background(), carolID)
	if promoted.Status != entity.BookingStatusBooked {
		t.Fatalf("expected carol promoted to BOOKED, got %s", promoted.Status)
	}
	waiting, _ := f.bookings.GetByID(context.Background(), daveID)
	if waiting.Status != entity.BookingStatusWaitlisted {
		t.Fatalf("expected dave still WAITLISTED, got %s", waiting.Status)
	}

	if len(f.dispatcher.intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(f.dispatcher.intents))
	}
	intent := f.dispatcher.intents[0]
	if intent.Kind != notificationDto.IntentKindWaitlistPromoted {
		t.Fatalf("expected waitlist_promoted intent, got %s", intent.Kind)
	}
	if intent.ParticipantID != carol {
		t.Fatalf("intent addressed to the wrong participant")
	}
	if intent.Payload["class_name"] != "Yoga Flow" {
		t.Fatalf("expected class name in payload, got %v", intent.Payload["class_name"])
	}
}

func TestCancel_PastCutoffRejected(t *testing.T) {
	f := newBookingFixture(t, 5, true)
	alice := uuid.New()
	bookingID := f.book(t, alice)

	// 17:00 is inside the two hour window before the 18:00 start.
	f.clock.T = time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	_, appErr := f.service.CancelBooking(context.Background(), bookingID, alice, false)
	expectCode(t, appErr, errors.ErrPastCutoff)

	// Staff may still cancel.
	resp, appErr := f.service.CancelBooking(context.Background(), bookingID, uuid.New(), true)
	if appErr != nil {
		t.Fatalf("staff cancel failed: %v", appErr)
	}
	if resp.CancelReason != entity.CancelReasonCoach {
		t.Fatalf("expected coach reason, got %q", resp.CancelReason)
	}
}

func TestCancel_OtherMembersBookingForbidden(t *testing.T) {
	f := newBookingFixture(t, 5, true)
	bookingID := f.book(t, uuid.New())

	_, appErr := f.service.CancelBooking(context.Background(), bookingID, uuid.New(), false)
	expectCode(t, appErr, errors.ErrForbidden)
}

func TestPromoteFromWaitlist(t *testing.T) {
	f := newBookingFixture(t, 1, true)
	f.book(t, uuid.New())
	waitingID := f.book(t, uuid.New())

	// Class still full: explicit promotion must fail.
	_, appErr := f.service.PromoteFromWaitlist(context.Background(), waitingID)
	expectCode(t, appErr, errors.ErrNoCapacity)

	// Raise the capacity override for the date and retry.
	newMax := 2
	f.schedules.exceptions[timetableService.ExceptionKey("s1", f.classDate)] = &scheduleEntity.ScheduleException{
		ID: "e1", ScheduleID: "s1", Date: f.classDate, NewMaxParticipants: &newMax,
	}
	resp, appErr := f.service.PromoteFromWaitlist(context.Background(), waitingID)
	if appErr != nil {
		t.Fatalf("promote failed: %v", appErr)
	}
	if resp.Status != string(entity.BookingStatusBooked) {
		t.Fatalf("expected BOOKED, got %s", resp.Status)
	}
	if len(f.dispatcher.intents) != 1 || f.dispatcher.intents[0].Kind != notificationDto.IntentKindWaitlistPromoted {
		t.Fatalf("expected a waitlist_promoted intent")
	}
}

func TestCheckInRoundTrip(t *testing.T) {
	f := newBookingFixture(t, 5, true)
	bookingID := f.book(t, uuid.New())

	resp, appErr := f.service.CheckIn(context.Background(), bookingID)
	if appErr != nil {
		t.Fatalf("check-in failed: %v", appErr)
	}
	if resp.Status != string(entity.BookingStatusCheckedIn) {
		t.Fatalf("expected CHECKED_IN, got %s", resp.Status)
	}

	// Double check-in is rejected.
	_, appErr = f.service.CheckIn(context.Background(), bookingID)
	expectCode(t, appErr, errors.ErrInvalidInput)

	resp, appErr = f.service.UndoCheckIn(context.Background(), bookingID)
	if appErr != nil {
		t.Fatalf("undo check-in failed: %v", appErr)
	}
	if resp.Status != string(entity.BookingStatusBooked) {
		t.Fatalf("expected BOOKED after undo, got %s", resp.Status)
	}
}

func TestRebookAfterCancel(t *testing.T) {
	f := newBookingFixture(t, 5, true)
	alice := uuid.New()
	first := f.book(t, alice)

	if _, appErr := f.service.CancelBooking(context.Background(), first, alice, false); appErr != nil {
		t.Fatalf("cancel failed: %v", appErr)
	}

	// A fresh row, not a resurrection of the cancelled one.
	second := f.book(t, alice)
	if second == first {
		t.Fatalf("expected a new booking id on re-book")
	}
	cancelled, _ := f.bookings.GetByID(context.Background(), first)
	if cancelled.Status != entity.BookingStatusCancelled {
		t.Fatalf("original booking must stay cancelled")
	}
}
