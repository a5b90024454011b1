package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WashService/internal/domain"
	"github.com/m04kA/SMC-WashService/internal/service/availability"
	"github.com/m04kA/SMC-WashService/pkg/ptr"
)

type fakeLockStore struct {
	mu       sync.Mutex
	busy     map[string]int // ключ -> число отказов до успешного захвата
	acquired []string
	released []string
}

func lockKey(resourceID int64, windowKey string) string {
	return fmt.Sprintf("%d@%s", resourceID, windowKey)
}

func (f *fakeLockStore) Acquire(_ context.Context, resourceID int64, windowKey, _ string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := lockKey(resourceID, windowKey)
	if f.busy[key] > 0 {
		f.busy[key]--
		return errors.New("slot lock busy")
	}
	f.acquired = append(f.acquired, key)
	return nil
}

func (f *fakeLockStore) Release(_ context.Context, resourceID int64, windowKey, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, lockKey(resourceID, windowKey))
	return nil
}

type fakeBookingRepo struct {
	byResource map[int64][]*domain.Booking
}

func (f *fakeBookingRepo) GetActiveByResources(_ context.Context, resourceIDs []int64, _, _ time.Time) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, id := range resourceIDs {
		out = append(out, f.byResource[id]...)
	}
	return out, nil
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func testConfig() Config {
	return Config{
		LockTTL:         30 * time.Second,
		LockRetries:     2,
		LockBackoff:     time.Millisecond,
		PipelineTimeout: time.Second,
		Buffer:          15 * time.Minute,
	}
}

func testCandidates(resourceIDs ...int64) []availability.Candidate {
	start := time.Date(2026, 9, 16, 10, 0, 0, 0, time.UTC)
	out := make([]availability.Candidate, 0, len(resourceIDs))
	for _, id := range resourceIDs {
		out = append(out, availability.Candidate{
			Resource: &domain.FixedBay{ID: id, MaxVehicleSize: domain.SizeTruck, Status: domain.ResourceActive},
			Window:   domain.TimeWindow{Start: start, DurationMinutes: 60},
		})
	}
	return out
}

func TestReserve_CommitsFirstCandidate(t *testing.T) {
	locks := &fakeLockStore{}
	svc := NewService(locks, &fakeBookingRepo{}, fakeTxManager{}, testConfig(), nopLogger{})

	var committedResource int64
	cand, err := svc.Reserve(context.Background(), testCandidates(1, 2), nil, func(_ context.Context, c availability.Candidate) error {
		committedResource = c.Resource.ResourceID()
		return nil
	})

	require.NoError(t, err)
	require.NotNil(t, cand)
	assert.Equal(t, int64(1), cand.Resource.ResourceID())
	assert.Equal(t, int64(1), committedResource)

	// блокировка снята после фиксации
	require.Len(t, locks.acquired, 1)
	assert.Equal(t, locks.acquired, locks.released)
}

func TestReserve_RetriesLockThenSucceeds(t *testing.T) {
	candidates := testCandidates(1)
	key := lockKey(1, candidates[0].Window.Key())

	locks := &fakeLockStore{busy: map[string]int{key: 2}}
	svc := NewService(locks, &fakeBookingRepo{}, fakeTxManager{}, testConfig(), nopLogger{})

	cand, err := svc.Reserve(context.Background(), candidates, nil, func(context.Context, availability.Candidate) error {
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), cand.Resource.ResourceID())
}

func TestReserve_FallsBackToNextCandidateOnLockContention(t *testing.T) {
	candidates := testCandidates(1, 2)
	key := lockKey(1, candidates[0].Window.Key())

	// первый ресурс занят дольше, чем число повторов
	locks := &fakeLockStore{busy: map[string]int{key: 10}}
	svc := NewService(locks, &fakeBookingRepo{}, fakeTxManager{}, testConfig(), nopLogger{})

	cand, err := svc.Reserve(context.Background(), candidates, nil, func(context.Context, availability.Candidate) error {
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), cand.Resource.ResourceID())
}

func TestReserve_RevalidationConflictMovesOn(t *testing.T) {
	candidates := testCandidates(1, 2)

	// под блокировкой у первого ресурса обнаруживается конкурирующее бронирование
	conflict := &domain.Booking{
		ID:              99,
		ResourceID:      ptr.Ptr(int64(1)),
		ScheduledAt:     candidates[0].Window.Start,
		DurationMinutes: 60,
		Status:          domain.StatusConfirmed,
	}
	repo := &fakeBookingRepo{byResource: map[int64][]*domain.Booking{1: {conflict}}}

	locks := &fakeLockStore{}
	svc := NewService(locks, repo, fakeTxManager{}, testConfig(), nopLogger{})

	cand, err := svc.Reserve(context.Background(), candidates, nil, func(context.Context, availability.Candidate) error {
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), cand.Resource.ResourceID())

	// блокировки сняты и для отвергнутого, и для зафиксированного кандидата
	assert.Len(t, locks.released, 2)
}

func TestReserve_ExcludedBookingDoesNotConflict(t *testing.T) {
	candidates := testCandidates(1)

	own := &domain.Booking{
		ID:              42,
		ResourceID:      ptr.Ptr(int64(1)),
		ScheduledAt:     candidates[0].Window.Start,
		DurationMinutes: 60,
		Status:          domain.StatusConfirmed,
	}
	repo := &fakeBookingRepo{byResource: map[int64][]*domain.Booking{1: {own}}}
	svc := NewService(&fakeLockStore{}, repo, fakeTxManager{}, testConfig(), nopLogger{})

	cand, err := svc.Reserve(context.Background(), candidates, ptr.Ptr(int64(42)), func(context.Context, availability.Candidate) error {
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), cand.Resource.ResourceID())
}

func TestReserve_AllCandidatesTaken(t *testing.T) {
	candidates := testCandidates(1, 2)
	conflictAt := candidates[0].Window.Start

	repo := &fakeBookingRepo{byResource: map[int64][]*domain.Booking{
		1: {{ID: 1, ResourceID: ptr.Ptr(int64(1)), ScheduledAt: conflictAt, DurationMinutes: 60, Status: domain.StatusConfirmed}},
		2: {{ID: 2, ResourceID: ptr.Ptr(int64(2)), ScheduledAt: conflictAt, DurationMinutes: 60, Status: domain.StatusConfirmed}},
	}}
	locks := &fakeLockStore{}
	svc := NewService(locks, repo, fakeTxManager{}, testConfig(), nopLogger{})

	_, err := svc.Reserve(context.Background(), candidates, nil, func(context.Context, availability.Candidate) error {
		return nil
	})

	assert.ErrorIs(t, err, ErrResourceUnavailable)
	assert.Len(t, locks.released, 2)
}

func TestReserve_NoCandidates(t *testing.T) {
	svc := NewService(&fakeLockStore{}, &fakeBookingRepo{}, fakeTxManager{}, testConfig(), nopLogger{})

	_, err := svc.Reserve(context.Background(), nil, nil, func(context.Context, availability.Candidate) error {
		return nil
	})

	assert.ErrorIs(t, err, ErrResourceUnavailable)
}

func TestReserve_CommitErrorStopsPipeline(t *testing.T) {
	locks := &fakeLockStore{}
	svc := NewService(locks, &fakeBookingRepo{}, fakeTxManager{}, testConfig(), nopLogger{})

	commitErr := errors.New("insert failed")
	_, err := svc.Reserve(context.Background(), testCandidates(1, 2), nil, func(context.Context, availability.Candidate) error {
		return commitErr
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, commitErr)
	assert.NotErrorIs(t, err, ErrResourceUnavailable)

	// блокировка снята несмотря на ошибку фиксации
	assert.Len(t, locks.released, 1)
}

func TestReserve_PipelineTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.PipelineTimeout = time.Millisecond

	locks := &fakeLockStore{}
	svc := NewService(locks, &fakeBookingRepo{}, fakeTxManager{}, cfg, nopLogger{})

	_, err := svc.Reserve(context.Background(), testCandidates(1), nil, func(context.Context, availability.Candidate) error {
		time.Sleep(5 * time.Millisecond)
		return context.DeadlineExceeded
	})

	require.Error(t, err)
	assert.Len(t, locks.released, len(locks.acquired))
}
