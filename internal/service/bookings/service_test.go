package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WashService/internal/domain"
	"github.com/m04kA/SMC-WashService/internal/infra/events"
	bookingRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/booking"
	feeLedgerRepo "github.com/m04kA/SMC-WashService/internal/infra/storage/feeledger"
	"github.com/m04kA/SMC-WashService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-WashService/internal/integrations/payservice"
	"github.com/m04kA/SMC-WashService/internal/service/bookings/models"
	"github.com/m04kA/SMC-WashService/internal/service/pricing"
	"github.com/m04kA/SMC-WashService/pkg/ptr"
)

// Фиксированные часы и заглушки зависимостей

var testNow = time.Date(2026, 9, 16, 9, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type stubTxManager struct{}

func (stubTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
func (stubTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
func (stubTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubBookingRepo struct {
	booking    *domain.Booking
	neighbours []*domain.Booking
}

func (r *stubBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if r.booking == nil || r.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	clone := *r.booking
	items := make([]domain.ServiceLineItem, len(r.booking.Items))
	copy(items, r.booking.Items)
	clone.Items = items
	return &clone, nil
}

func (r *stubBookingRepo) GetByCustomer(_ context.Context, customerID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	if r.booking == nil || r.booking.CustomerID != customerID {
		return nil, nil
	}
	if status != nil && r.booking.Status != *status {
		return nil, nil
	}
	return []*domain.Booking{r.booking}, nil
}

func (r *stubBookingRepo) GetActiveByResources(_ context.Context, _ []int64, _, _ time.Time) ([]*domain.Booking, error) {
	return r.neighbours, nil
}

func (r *stubBookingRepo) Confirm(_ context.Context, _ int64, _ int64, _ time.Time) error { return nil }
func (r *stubBookingRepo) Start(_ context.Context, _ int64, _ int64, _ time.Time) error   { return nil }
func (r *stubBookingRepo) Complete(_ context.Context, _ int64, _ time.Time) error         { return nil }
func (r *stubBookingRepo) Cancel(_ context.Context, _ int64, _ int64, _ string, _ time.Time) error {
	return nil
}
func (r *stubBookingRepo) MarkNoShow(_ context.Context, _ int64, _ int64, _ *string, _ time.Time) error {
	return nil
}
func (r *stubBookingRepo) SetRating(_ context.Context, _ int64, _ int, _ *string) error { return nil }
func (r *stubBookingRepo) ReplaceLineItems(_ context.Context, _ int64, _ []domain.ServiceLineItem, _ int, _ float64) error {
	return nil
}

type stubFeeRepo struct {
	entries   []*domain.FeeLedgerEntry
	duplicate bool
}

func (r *stubFeeRepo) Insert(_ context.Context, entry *domain.FeeLedgerEntry) (*domain.FeeLedgerEntry, error) {
	if r.duplicate {
		return nil, feeLedgerRepo.ErrDuplicateFee
	}
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *stubFeeRepo) ListByBooking(_ context.Context, bookingID int64) ([]*domain.FeeLedgerEntry, error) {
	var out []*domain.FeeLedgerEntry
	for _, e := range r.entries {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

type stubCatalogRepo struct {
	services []*domain.WashService
	err      error
}

func (r *stubCatalogRepo) GetByIDs(_ context.Context, _ []int64) ([]*domain.WashService, error) {
	return r.services, r.err
}

type spyNotifier struct {
	sent []notifyservice.Notification
	err  error
}

func (n *spyNotifier) Notify(_ context.Context, notification notifyservice.Notification) error {
	n.sent = append(n.sent, notification)
	return n.err
}

type spyPayments struct {
	charges []payservice.ChargeRequest
	err     error
}

func (p *spyPayments) Charge(_ context.Context, req payservice.ChargeRequest) (*payservice.ChargeResponse, error) {
	p.charges = append(p.charges, req)
	if p.err != nil {
		return nil, p.err
	}
	return &payservice.ChargeResponse{TransactionID: "tx-1", Status: "captured"}, nil
}

type spyPublisher struct {
	published []string
	payloads  []any
}

func (p *spyPublisher) Publish(_ context.Context, name string, _ int64, payload any) error {
	p.published = append(p.published, name)
	p.payloads = append(p.payloads, payload)
	return nil
}

type spyCache struct {
	invalidated []string
}

func (c *spyCache) Invalidate(scopeKey string) {
	c.invalidated = append(c.invalidated, scopeKey)
}

type testLogger struct{}

func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

type serviceEnv struct {
	svc       *Service
	bookings  *stubBookingRepo
	fees      *stubFeeRepo
	catalog   *stubCatalogRepo
	notifier  *spyNotifier
	payments  *spyPayments
	publisher *spyPublisher
	cache     *spyCache
}

func newServiceEnv(booking *domain.Booking) *serviceEnv {
	env := &serviceEnv{
		bookings:  &stubBookingRepo{booking: booking},
		fees:      &stubFeeRepo{},
		catalog:   &stubCatalogRepo{},
		notifier:  &spyNotifier{},
		payments:  &spyPayments{},
		publisher: &spyPublisher{},
		cache:     &spyCache{},
	}
	env.svc = NewService(
		env.bookings,
		env.fees,
		env.catalog,
		pricing.NewCalculator(pricing.Config{
			OvertimeRatePerMinute: 5.0,
			FreeCancelHours:       24,
			LateCancelHours:       2,
		}),
		stubTxManager{},
		env.notifier,
		env.payments,
		env.publisher,
		env.cache,
		fixedClock{now: testNow},
		Config{NoShowGraceMinutes: 30, BufferMinutes: 15},
		testLogger{},
	)
	return env
}

func testBooking(status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:         1,
		CustomerID: 100,
		ResourceID: ptr.Ptr(int64(5)),
		Items: []domain.ServiceLineItem{
			{ID: 11, ServiceID: 1, Name: "Стандартная мойка", UnitPrice: 800, UnitDurationMinutes: 45, Quantity: 1},
			{ID: 12, ServiceID: 2, Name: "Полировка", UnitPrice: 1200, UnitDurationMinutes: 30, Quantity: 1},
		},
		ScheduledAt:      testNow.Add(48 * time.Hour),
		DurationMinutes:  75,
		EstimatedPrice:   2000,
		Status:           status,
		VehicleSize:      domain.SizeSedan,
		PaymentReference: ptr.Ptr("pm_123"),
		CreatedBy:        100,
	}
}

func TestService_GetByID(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusConfirmed))

	resp, err := env.svc.GetByID(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	require.NotNil(t, resp.ResourceID)
	assert.Equal(t, int64(5), *resp.ResourceID)

	_, err = env.svc.GetByID(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = env.svc.GetByID(context.Background(), 2, 100)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_GetByID_HidesResourceWhilePending(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusPending))

	resp, err := env.svc.GetByID(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Nil(t, resp.ResourceID)
}

func TestService_Confirm(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusPending))

	resp, err := env.svc.Confirm(context.Background(), 1, &models.ConfirmBookingRequest{ActorID: 200})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)

	assert.Equal(t, []string{events.EventBookingConfirmed}, env.publisher.published)
	require.Len(t, env.notifier.sent, 1)
	assert.Equal(t, notifyservice.KindBookingConfirmed, env.notifier.sent[0].Kind)
}

func TestService_Confirm_StateConflict(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusCompleted))

	_, err := env.svc.Confirm(context.Background(), 1, &models.ConfirmBookingRequest{ActorID: 200})
	assert.ErrorIs(t, err, domain.ErrStateConflict)
	assert.Empty(t, env.publisher.published)
}

func TestService_Start(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusConfirmed))

	resp, err := env.svc.Start(context.Background(), 1, &models.StartBookingRequest{ActorID: 200})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusInProgress), resp.Status)
	assert.Equal(t, []string{events.EventBookingStarted}, env.publisher.published)

	_, err = env.svc.Start(context.Background(), 1, &models.StartBookingRequest{ActorID: 200})
	require.NoError(t, err) // заглушка не меняет состояние, повтор допустим

	env = newServiceEnv(testBooking(domain.StatusPending))
	_, err = env.svc.Start(context.Background(), 1, &models.StartBookingRequest{ActorID: 200})
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestService_Complete_WithOvertime(t *testing.T) {
	booking := testBooking(domain.StatusInProgress)
	start := testNow.Add(-100 * time.Minute)
	booking.ActualStartAt = &start

	env := newServiceEnv(booking)

	resp, err := env.svc.Complete(context.Background(), 1, &models.CompleteBookingRequest{ActorID: 200})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)

	// фактически 100 минут против расчётных 75: доплата 25 * 5
	require.Len(t, env.fees.entries, 1)
	assert.Equal(t, domain.FeeOvertime, env.fees.entries[0].Kind)
	assert.Equal(t, 125.0, env.fees.entries[0].Amount)

	require.Len(t, env.payments.charges, 1)
	assert.Equal(t, payservice.ChargeOvertimeFee, env.payments.charges[0].Kind)
	assert.Equal(t, 125.0, env.payments.charges[0].Amount)
}

func TestService_Complete_NoOvertime(t *testing.T) {
	booking := testBooking(domain.StatusInProgress)
	start := testNow.Add(-60 * time.Minute)
	booking.ActualStartAt = &start

	env := newServiceEnv(booking)

	_, err := env.svc.Complete(context.Background(), 1, &models.CompleteBookingRequest{ActorID: 200})
	require.NoError(t, err)

	assert.Empty(t, env.fees.entries)
	assert.Empty(t, env.payments.charges)
}

func TestService_Complete_ExplicitEndTime(t *testing.T) {
	booking := testBooking(domain.StatusInProgress)
	start := testNow.Add(-120 * time.Minute)
	booking.ActualStartAt = &start

	env := newServiceEnv(booking)

	// явное время завершения: 85 минут против расчётных 75, доплата 10 * 5
	endAt := start.Add(85 * time.Minute)
	resp, err := env.svc.Complete(context.Background(), 1, &models.CompleteBookingRequest{
		ActorID:     200,
		ActualEndAt: &endAt,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)

	require.Len(t, env.fees.entries, 1)
	assert.Equal(t, domain.FeeOvertime, env.fees.entries[0].Kind)
	assert.Equal(t, 50.0, env.fees.entries[0].Amount)
}

func TestService_Complete_EndBeforeStart(t *testing.T) {
	booking := testBooking(domain.StatusInProgress)
	start := testNow.Add(-60 * time.Minute)
	booking.ActualStartAt = &start

	env := newServiceEnv(booking)

	endAt := start.Add(-time.Minute)
	_, err := env.svc.Complete(context.Background(), 1, &models.CompleteBookingRequest{
		ActorID:     200,
		ActualEndAt: &endAt,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, env.fees.entries)
}

func TestService_Cancel_FeeTiers(t *testing.T) {
	tests := []struct {
		name        string
		scheduledAt time.Time
		wantFee     float64
	}{
		{"free cancellation", testNow.Add(48 * time.Hour), 0},
		{"late cancellation is half", testNow.Add(12 * time.Hour), 1000},
		{"last minute is full", testNow.Add(time.Hour), 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := testBooking(domain.StatusConfirmed)
			booking.ScheduledAt = tt.scheduledAt
			env := newServiceEnv(booking)

			resp, err := env.svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{
				ActorID:            100,
				CancellationReason: "планы изменились",
			})
			require.NoError(t, err)
			assert.Equal(t, string(domain.StatusCancelled), resp.Status)

			if tt.wantFee > 0 {
				require.Len(t, env.fees.entries, 1)
				assert.Equal(t, domain.FeeCancellation, env.fees.entries[0].Kind)
				assert.Equal(t, tt.wantFee, env.fees.entries[0].Amount)
				require.Len(t, env.payments.charges, 1)
				assert.Equal(t, tt.wantFee, env.payments.charges[0].Amount)
			} else {
				assert.Empty(t, env.fees.entries)
				assert.Empty(t, env.payments.charges)
			}

			// кеш доступности на дату слота сброшен
			assert.Equal(t, []string{tt.scheduledAt.Format(domain.DateFormat)}, env.cache.invalidated)
		})
	}
}

func TestService_Cancel_OnlyOwner(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusPending))

	_, err := env.svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{ActorID: 999, CancellationReason: "x"})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestService_Cancel_TerminalState(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusInProgress))

	_, err := env.svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{ActorID: 100, CancellationReason: "x"})
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestService_MarkNoShow(t *testing.T) {
	booking := testBooking(domain.StatusConfirmed)
	booking.ScheduledAt = testNow.Add(-45 * time.Minute)
	env := newServiceEnv(booking)

	resp, err := env.svc.MarkNoShow(context.Background(), 1, &models.MarkNoShowRequest{ActorID: 200})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusNoShow), resp.Status)

	// штраф за неявку равен полной расчётной стоимости
	require.Len(t, env.fees.entries, 1)
	assert.Equal(t, domain.FeeNoShow, env.fees.entries[0].Kind)
	assert.Equal(t, 2000.0, env.fees.entries[0].Amount)
}

func TestService_MarkNoShow_GraceNotElapsed(t *testing.T) {
	booking := testBooking(domain.StatusConfirmed)
	booking.ScheduledAt = testNow.Add(-20 * time.Minute)
	env := newServiceEnv(booking)

	_, err := env.svc.MarkNoShow(context.Background(), 1, &models.MarkNoShowRequest{ActorID: 200})
	assert.ErrorIs(t, err, ErrGraceNotElapsed)
	assert.Empty(t, env.fees.entries)
}

func TestService_MarkNoShow_RequiresConfirmed(t *testing.T) {
	booking := testBooking(domain.StatusPending)
	booking.ScheduledAt = testNow.Add(-2 * time.Hour)
	env := newServiceEnv(booking)

	_, err := env.svc.MarkNoShow(context.Background(), 1, &models.MarkNoShowRequest{ActorID: 200})
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestService_Rate(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusCompleted))

	resp, err := env.svc.Rate(context.Background(), 1, &models.RateBookingRequest{
		ActorID:  100,
		Rating:   5,
		Feedback: ptr.Ptr("отлично"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Rating)
	assert.Equal(t, 5, *resp.Rating)

	assert.Equal(t, []string{events.EventBookingRated}, env.publisher.published)
	assert.Empty(t, env.notifier.sent)
}

func TestService_Rate_LowRatingAlert(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusCompleted))

	_, err := env.svc.Rate(context.Background(), 1, &models.RateBookingRequest{ActorID: 100, Rating: 2})
	require.NoError(t, err)

	require.Len(t, env.notifier.sent, 1)
	assert.Equal(t, notifyservice.KindLowRatingAlert, env.notifier.sent[0].Kind)
	assert.Equal(t, int64(0), env.notifier.sent[0].RecipientID)

	// помимо уведомления публикуется отдельное событие для менеджмента,
	// а в событии оценки присутствует её значение
	assert.Equal(t, []string{events.EventBookingRated, events.EventLowRatingAlert}, env.publisher.published)
	require.Len(t, env.publisher.payloads, 2)
	payload, ok := env.publisher.payloads[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, payload["rating"])
}

func TestService_Rate_Validation(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusCompleted))

	_, err := env.svc.Rate(context.Background(), 1, &models.RateBookingRequest{ActorID: 100, Rating: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.svc.Rate(context.Background(), 1, &models.RateBookingRequest{ActorID: 100, Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Rate_OnlyOnce(t *testing.T) {
	booking := testBooking(domain.StatusCompleted)
	booking.Rating = ptr.Ptr(4)
	env := newServiceEnv(booking)

	_, err := env.svc.Rate(context.Background(), 1, &models.RateBookingRequest{ActorID: 100, Rating: 5})
	assert.ErrorIs(t, err, ErrAlreadyRated)
}

func TestService_Rate_RequiresCompleted(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusConfirmed))

	_, err := env.svc.Rate(context.Background(), 1, &models.RateBookingRequest{ActorID: 100, Rating: 5})
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestService_AddServices(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusPending))
	env.catalog.services = []*domain.WashService{
		{ID: 3, Name: "Чернение шин", Price: 400, DurationMinutes: 15},
	}

	resp, err := env.svc.AddServices(context.Background(), 1, &models.AddServicesRequest{
		ActorID:    100,
		ServiceIDs: []int64{3},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 3)
	assert.Equal(t, 90, resp.DurationMinutes)
	assert.Equal(t, 2400.0, resp.EstimatedPrice)
}

func TestService_AddServices_IncrementsQuantity(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusPending))
	// услуга уже есть в заказе: количество растёт вместо новой позиции
	env.catalog.services = []*domain.WashService{
		{ID: 1, Name: "Стандартная мойка", Price: 800, DurationMinutes: 45},
	}

	resp, err := env.svc.AddServices(context.Background(), 1, &models.AddServicesRequest{
		ActorID:    100,
		ServiceIDs: []int64{1},
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 2, resp.Items[0].Quantity)
}

func TestService_AddServices_WindowConflict(t *testing.T) {
	booking := testBooking(domain.StatusPending)
	env := newServiceEnv(booking)
	env.catalog.services = []*domain.WashService{
		{ID: 3, Name: "Химчистка салона", Price: 3000, DurationMinutes: 120},
	}
	// соседнее бронирование сразу после окна с учётом буфера
	env.bookings.neighbours = []*domain.Booking{{
		ID:              2,
		ResourceID:      booking.ResourceID,
		ScheduledAt:     booking.ScheduledAt.Add(90 * time.Minute),
		DurationMinutes: 60,
		Status:          domain.StatusConfirmed,
	}}

	_, err := env.svc.AddServices(context.Background(), 1, &models.AddServicesRequest{
		ActorID:    100,
		ServiceIDs: []int64{3},
	})
	assert.ErrorIs(t, err, ErrWindowConflict)
}

func TestService_AddServices_OnlyPending(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusConfirmed))
	env.catalog.services = []*domain.WashService{{ID: 3, Name: "x", Price: 100, DurationMinutes: 15}}

	_, err := env.svc.AddServices(context.Background(), 1, &models.AddServicesRequest{ActorID: 100, ServiceIDs: []int64{3}})
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestService_RemoveService(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusPending))

	resp, err := env.svc.RemoveService(context.Background(), 1, &models.RemoveServiceRequest{
		ActorID:    100,
		LineItemID: 12,
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(11), resp.Items[0].ID)
	// длительность пересчитана и ограничена минимумом
	assert.Equal(t, 45, resp.DurationMinutes)
	assert.Equal(t, 800.0, resp.EstimatedPrice)
}

func TestService_RemoveService_LastItem(t *testing.T) {
	booking := testBooking(domain.StatusPending)
	booking.Items = booking.Items[:1]
	env := newServiceEnv(booking)

	_, err := env.svc.RemoveService(context.Background(), 1, &models.RemoveServiceRequest{ActorID: 100, LineItemID: 11})
	assert.ErrorIs(t, err, ErrLastLineItem)
}

func TestService_RemoveService_NotFound(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusPending))

	_, err := env.svc.RemoveService(context.Background(), 1, &models.RemoveServiceRequest{ActorID: 100, LineItemID: 999})
	assert.ErrorIs(t, err, ErrLineItemNotFound)
}

func TestService_SideEffectFailuresDoNotRollBack(t *testing.T) {
	booking := testBooking(domain.StatusConfirmed)
	booking.ScheduledAt = testNow.Add(time.Hour)
	env := newServiceEnv(booking)
	env.notifier.err = assert.AnError
	env.payments.err = assert.AnError

	resp, err := env.svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{
		ActorID:            100,
		CancellationReason: "не успеваю",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)

	// неудачный платёж публикует отдельное событие, переход не откатывается
	assert.Contains(t, env.publisher.published, events.EventPaymentFailed)
	assert.Contains(t, env.publisher.published, events.EventBookingCancelled)
}

func TestService_DuplicateFeeIsIgnored(t *testing.T) {
	booking := testBooking(domain.StatusConfirmed)
	booking.ScheduledAt = testNow.Add(-45 * time.Minute)
	env := newServiceEnv(booking)
	env.fees.duplicate = true

	_, err := env.svc.MarkNoShow(context.Background(), 1, &models.MarkNoShowRequest{ActorID: 200})
	require.NoError(t, err)
}

func TestService_GetFees(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusCancelled))
	env.fees.entries = []*domain.FeeLedgerEntry{
		{ID: 1, BookingID: 1, Kind: domain.FeeCancellation, Amount: 1000, ChargedAt: testNow},
	}

	fees, err := env.svc.GetFees(context.Background(), 1, 100)
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, string(domain.FeeCancellation), fees[0].Kind)

	_, err = env.svc.GetFees(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestService_GetCustomerBookings_InvalidStatus(t *testing.T) {
	env := newServiceEnv(testBooking(domain.StatusPending))

	_, err := env.svc.GetCustomerBookings(context.Background(), &models.GetCustomerBookingsRequest{
		CustomerID: 100,
		Status:     ptr.Ptr("unknown"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
