package reschedule_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WashService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-WashService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-WashService/internal/service/availability"
	"github.com/m04kA/SMC-WashService/internal/service/reservation"
	"github.com/m04kA/SMC-WashService/pkg/ptr"
	"github.com/m04kA/SMC-WashService/pkg/types"
)

var (
	rsNow = time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	rsOld = time.Date(2026, 9, 16, 10, 0, 0, 0, time.UTC)
	rsNew = time.Date(2026, 9, 17, 11, 0, 0, 0, time.UTC)
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakeBookingRepo struct {
	booking         *domain.Booking
	existing        []*domain.Booking
	updatedTo       *time.Time
	updatedResource int64
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	b := *f.booking
	return &b, nil
}

func (f *fakeBookingRepo) GetActiveByResources(_ context.Context, _ []int64, _, _ time.Time) ([]*domain.Booking, error) {
	return f.existing, nil
}

func (f *fakeBookingRepo) CountActiveOnDate(_ context.Context, _ int64, _, _ time.Time) (int, error) {
	return 0, nil
}

func (f *fakeBookingRepo) UpdateSchedule(_ context.Context, _ int64, resourceID int64, scheduledAt time.Time, _ int) error {
	f.updatedTo = &scheduledAt
	f.updatedResource = resourceID
	return nil
}

type fakeResourceRepo struct {
	resources []domain.Resource
}

func (f *fakeResourceRepo) ListActive(_ context.Context, _ *domain.ResourceType) ([]domain.Resource, error) {
	return f.resources, nil
}

type fakeScheduleRepo struct {
	config *domain.ScheduleConfig
}

func (f *fakeScheduleRepo) GetConfig(_ context.Context, _ *int64) (*domain.ScheduleConfig, error) {
	return f.config, nil
}

type fakeReserver struct {
	err       error
	committed *availability.Candidate
}

func (f *fakeReserver) Reserve(ctx context.Context, candidates []availability.Candidate, _ *int64, commit func(ctx context.Context, cand availability.Candidate) error) (*availability.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(candidates) == 0 {
		return nil, reservation.ErrResourceUnavailable
	}
	cand := candidates[0]
	if err := commit(ctx, cand); err != nil {
		return nil, err
	}
	f.committed = &cand
	return &cand, nil
}

type spyPublisher struct {
	events []string
}

func (s *spyPublisher) Publish(_ context.Context, name string, _ int64, _ any) error {
	s.events = append(s.events, name)
	return nil
}

type spyNotifier struct {
	kinds []notifyservice.NotificationKind
}

func (s *spyNotifier) Notify(_ context.Context, n notifyservice.Notification) error {
	s.kinds = append(s.kinds, n.Kind)
	return nil
}

type spyCache struct {
	invalidated []string
}

func (s *spyCache) Invalidate(scopeKey string) {
	s.invalidated = append(s.invalidated, scopeKey)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func weekOpen(open, close string) domain.WeekSchedule {
	day := domain.DaySchedule{IsOpen: true, OpenTime: types.TimeString(open), CloseTime: types.TimeString(close)}
	return domain.WeekSchedule{
		Monday: day, Tuesday: day, Wednesday: day,
		Thursday: day, Friday: day, Saturday: day, Sunday: day,
	}
}

type testEnv struct {
	uc       *UseCase
	bookings *fakeBookingRepo
	reserver *fakeReserver
	events   *spyPublisher
	notifier *spyNotifier
	cache    *spyCache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	booking := &domain.Booking{
		ID:         42,
		CustomerID: 100,
		Status:     domain.StatusConfirmed,
		ResourceID: ptr.Ptr(int64(1)),
		Items: []domain.ServiceLineItem{
			{ID: 11, ServiceID: 1, Name: "Мойка", UnitPrice: 800, UnitDurationMinutes: 60, Quantity: 1},
		},
		ScheduledAt:     rsOld,
		DurationMinutes: 60,
		EstimatedPrice:  800,
		VehicleSize:     domain.SizeSedan,
	}

	env := &testEnv{
		bookings: &fakeBookingRepo{booking: booking},
		reserver: &fakeReserver{},
		events:   &spyPublisher{},
		notifier: &spyNotifier{},
		cache:    &spyCache{},
	}

	uc := NewUseCase(
		env.bookings,
		&fakeResourceRepo{resources: []domain.Resource{
			&domain.FixedBay{ID: 1, MaxVehicleSize: domain.SizeTruck, Status: domain.ResourceActive},
		}},
		&fakeScheduleRepo{config: &domain.ScheduleConfig{Week: weekOpen("08:00", "20:00")}},
		env.reserver,
		env.events,
		env.notifier,
		env.cache,
		Config{
			MinLeadTimeMinutes:     120,
			HorizonDays:            90,
			SlotGranularityMinutes: 30,
			BufferMinutes:          15,
		},
		nopLogger{},
	)
	uc.timeProvider = fixedClock{now: rsNow}
	env.uc = uc
	return env
}

func TestExecute_MovesBooking(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.uc.Execute(context.Background(), &Request{BookingID: 42, ActorID: 100, NewScheduledAt: rsNew})
	require.NoError(t, err)

	assert.Equal(t, rsNew, resp.ScheduledAt)
	require.NotNil(t, env.bookings.updatedTo)
	assert.Equal(t, rsNew, *env.bookings.updatedTo)
	assert.Equal(t, int64(1), env.bookings.updatedResource)

	assert.Equal(t, []string{"booking.rescheduled"}, env.events.events)
	assert.Equal(t, []notifyservice.NotificationKind{notifyservice.KindBookingRescheduled}, env.notifier.kinds)
	// инвалидируются и старая, и новая даты
	assert.Equal(t, []string{"2026-09-16", "2026-09-17"}, env.cache.invalidated)
}

func TestExecute_BookingNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 99, ActorID: 100, NewScheduledAt: rsNew})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_AccessDenied(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 42, ActorID: 200, NewScheduledAt: rsNew})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_StateConflict(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.booking.Status = domain.StatusCompleted

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 42, ActorID: 100, NewScheduledAt: rsNew})
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestExecute_SchedulingWindow(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 42, ActorID: 100, NewScheduledAt: rsNow.Add(time.Hour)})
	assert.ErrorIs(t, err, ErrTooLateToBook)

	_, err = env.uc.Execute(context.Background(), &Request{BookingID: 42, ActorID: 100, NewScheduledAt: rsNow.AddDate(0, 0, 120)})
	assert.ErrorIs(t, err, ErrDateTooFarInFuture)
}

func TestExecute_NoSlotAtRequestedTime(t *testing.T) {
	env := newTestEnv(t)
	// чужое бронирование уже занимает новое окно
	env.bookings.existing = []*domain.Booking{
		{
			ID:              7,
			ResourceID:      ptr.Ptr(int64(1)),
			Status:          domain.StatusConfirmed,
			ScheduledAt:     rsNew,
			DurationMinutes: 60,
		},
	}

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 42, ActorID: 100, NewScheduledAt: rsNew})
	assert.ErrorIs(t, err, ErrResourceUnavailable)
}

func TestExecute_OwnBookingDoesNotConflict(t *testing.T) {
	env := newTestEnv(t)
	// на новую дату уже записано само переносимое бронирование
	env.bookings.existing = []*domain.Booking{
		{
			ID:              42,
			ResourceID:      ptr.Ptr(int64(1)),
			Status:          domain.StatusConfirmed,
			ScheduledAt:     rsNew,
			DurationMinutes: 60,
		},
	}

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 42, ActorID: 100, NewScheduledAt: rsNew})
	require.NoError(t, err)
}

func TestExecute_AllCandidatesTaken(t *testing.T) {
	env := newTestEnv(t)
	env.reserver.err = reservation.ErrResourceUnavailable

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 42, ActorID: 100, NewScheduledAt: rsNew})
	assert.ErrorIs(t, err, ErrResourceUnavailable)
}

func TestExecute_CommitRevalidatesStatus(t *testing.T) {
	env := newTestEnv(t)
	// статус меняется между первой проверкой и фиксацией под блокировкой
	orig := env.bookings.booking
	env.uc.reserver = reserverFunc(func(ctx context.Context, candidates []availability.Candidate, exclude *int64, commit func(ctx context.Context, cand availability.Candidate) error) (*availability.Candidate, error) {
		orig.Status = domain.StatusCancelled
		if err := commit(ctx, candidates[0]); err != nil {
			return nil, err
		}
		return &candidates[0], nil
	})

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 42, ActorID: 100, NewScheduledAt: rsNew})
	assert.ErrorIs(t, err, domain.ErrStateConflict)
	assert.Nil(t, env.bookings.updatedTo)
}

type reserverFunc func(ctx context.Context, candidates []availability.Candidate, excludeBookingID *int64, commit func(ctx context.Context, cand availability.Candidate) error) (*availability.Candidate, error)

func (f reserverFunc) Reserve(ctx context.Context, candidates []availability.Candidate, excludeBookingID *int64, commit func(ctx context.Context, cand availability.Candidate) error) (*availability.Candidate, error) {
	return f(ctx, candidates, excludeBookingID, commit)
}
