package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WashService/internal/domain"
	"github.com/m04kA/SMC-WashService/internal/infra/cache"
	"github.com/m04kA/SMC-WashService/pkg/ptr"
	"github.com/m04kA/SMC-WashService/pkg/types"
)

var (
	slotsNow  = time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	slotsDate = time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC)
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakeBookingRepo struct {
	existing []*domain.Booking
	counts   map[int64]int
}

func (f *fakeBookingRepo) GetActiveByResources(_ context.Context, _ []int64, _, _ time.Time) ([]*domain.Booking, error) {
	return f.existing, nil
}

func (f *fakeBookingRepo) CountActiveOnDate(_ context.Context, resourceID int64, _, _ time.Time) (int, error) {
	return f.counts[resourceID], nil
}

type fakeResourceRepo struct {
	resources []domain.Resource
	calls     int
}

func (f *fakeResourceRepo) ListActive(_ context.Context, _ *domain.ResourceType) ([]domain.Resource, error) {
	f.calls++
	return f.resources, nil
}

type fakeScheduleRepo struct {
	config *domain.ScheduleConfig
}

func (f *fakeScheduleRepo) GetConfig(_ context.Context, _ *int64) (*domain.ScheduleConfig, error) {
	return f.config, nil
}

type fakeCatalogRepo struct {
	services []*domain.WashService
}

func (f *fakeCatalogRepo) GetByIDs(_ context.Context, _ []int64) ([]*domain.WashService, error) {
	return f.services, nil
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

func newTestUseCase(resources *fakeResourceRepo) *UseCase {
	uc := NewUseCase(
		&fakeBookingRepo{},
		resources,
		&fakeScheduleRepo{config: &domain.ScheduleConfig{Week: weekOpen("09:00", "12:00")}},
		&fakeCatalogRepo{services: []*domain.WashService{
			{ID: 1, Name: "Мойка", Price: 800, DurationMinutes: 45, Active: true},
		}},
		cache.New(time.Minute),
		Config{
			MinLeadTimeMinutes:     120,
			HorizonDays:            90,
			SlotGranularityMinutes: 30,
			BufferMinutes:          15,
		},
		nopLogger{},
	)
	uc.timeProvider = fixedClock{now: slotsNow}
	return uc
}

func TestExecute_ReturnsSlots(t *testing.T) {
	resources := &fakeResourceRepo{resources: []domain.Resource{
		&domain.FixedBay{ID: 1, MaxVehicleSize: domain.SizeTruck, Status: domain.ResourceActive},
	}}
	uc := newTestUseCase(resources)

	resp, err := uc.Execute(context.Background(), &Request{Date: slotsDate, DurationMinutes: 60})
	require.NoError(t, err)

	assert.Equal(t, slotsDate, resp.Date)
	assert.Equal(t, 60, resp.DurationMinutes)
	// окна 09:00..11:00 с шагом 30 минут
	require.Len(t, resp.Slots, 5)
	assert.Equal(t, slotsDate.Add(9*time.Hour), resp.Slots[0].StartTime)
	assert.Equal(t, []int64{1}, resp.Slots[0].ResourceIDs)
}

func TestExecute_DurationFromCatalog(t *testing.T) {
	resources := &fakeResourceRepo{resources: []domain.Resource{
		&domain.FixedBay{ID: 1, MaxVehicleSize: domain.SizeTruck, Status: domain.ResourceActive},
	}}
	uc := newTestUseCase(resources)

	resp, err := uc.Execute(context.Background(), &Request{Date: slotsDate, ServiceIDs: []int64{1}})
	require.NoError(t, err)
	assert.Equal(t, 45, resp.DurationMinutes)
}

func TestExecute_CachesResult(t *testing.T) {
	resources := &fakeResourceRepo{resources: []domain.Resource{
		&domain.FixedBay{ID: 1, MaxVehicleSize: domain.SizeTruck, Status: domain.ResourceActive},
	}}
	uc := newTestUseCase(resources)

	req := &Request{Date: slotsDate, DurationMinutes: 60}

	first, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, resources.calls)

	// другая длительность - другой ключ кеша
	_, err = uc.Execute(context.Background(), &Request{Date: slotsDate, DurationMinutes: 90})
	require.NoError(t, err)
	assert.Equal(t, 2, resources.calls)
}

func TestExecute_VehicleSizeFilter(t *testing.T) {
	resources := &fakeResourceRepo{resources: []domain.Resource{
		&domain.FixedBay{ID: 1, MaxVehicleSize: domain.SizeSedan, Status: domain.ResourceActive},
		&domain.FixedBay{ID: 2, MaxVehicleSize: domain.SizeTruck, Status: domain.ResourceActive},
	}}
	uc := newTestUseCase(resources)

	resp, err := uc.Execute(context.Background(), &Request{
		Date:            slotsDate,
		DurationMinutes: 60,
		VehicleSize:     ptr.Ptr("van"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Slots)
	for _, s := range resp.Slots {
		assert.Equal(t, []int64{2}, s.ResourceIDs)
	}
}

func TestExecute_PickupOnlyFilter(t *testing.T) {
	resources := &fakeResourceRepo{resources: []domain.Resource{
		&domain.FixedBay{ID: 1, MaxVehicleSize: domain.SizeTruck, Status: domain.ResourceActive},
		&domain.MobileCrew{ID: 2, BaseLat: 55.7558, BaseLng: 37.6173, ServiceRadiusKm: 10, Status: domain.ResourceActive},
	}}
	uc := newTestUseCase(resources)

	// точка подачи без класса автомобиля: остаются только мобильные бригады
	resp, err := uc.Execute(context.Background(), &Request{
		Date:            slotsDate,
		DurationMinutes: 60,
		PickupLat:       ptr.Ptr(55.76),
		PickupLng:       ptr.Ptr(37.62),
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Slots)
	for _, s := range resp.Slots {
		assert.Equal(t, []int64{2}, s.ResourceIDs)
	}
}

func TestExecute_Validation(t *testing.T) {
	uc := newTestUseCase(&fakeResourceRepo{})

	_, err := uc.Execute(context.Background(), &Request{Date: slotsDate})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{
		Date:            slotsDate,
		DurationMinutes: 60,
		ResourceType:    ptr.Ptr("drone"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{
		Date:            slotsDate,
		DurationMinutes: 60,
		PickupLat:       ptr.Ptr(55.75),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_HorizonCheck(t *testing.T) {
	uc := newTestUseCase(&fakeResourceRepo{})

	_, err := uc.Execute(context.Background(), &Request{
		Date:            slotsNow.AddDate(0, 0, 120),
		DurationMinutes: 60,
	})
	assert.ErrorIs(t, err, ErrDateTooFarInFuture)
}

func TestClampDuration(t *testing.T) {
	assert.Equal(t, domain.MinBookingDurationMinutes, clampDuration(10))
	assert.Equal(t, 60, clampDuration(60))
	assert.Equal(t, domain.MaxBookingDurationMinutes, clampDuration(600))
}
