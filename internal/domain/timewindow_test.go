package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return parsed
}

func TestTimeWindow_Overlaps(t *testing.T) {
	base := mustTime(t, "2026-09-15T10:00:00Z")
	w := TimeWindow{Start: base, DurationMinutes: 60}

	tests := []struct {
		name     string
		other    TimeWindow
		overlaps bool
	}{
		{"identical", TimeWindow{Start: base, DurationMinutes: 60}, true},
		{"contained", TimeWindow{Start: base.Add(15 * time.Minute), DurationMinutes: 30}, true},
		{"partial tail", TimeWindow{Start: base.Add(30 * time.Minute), DurationMinutes: 60}, true},
		{"touching end", TimeWindow{Start: base.Add(60 * time.Minute), DurationMinutes: 30}, false},
		{"touching start", TimeWindow{Start: base.Add(-30 * time.Minute), DurationMinutes: 30}, false},
		{"disjoint", TimeWindow{Start: base.Add(3 * time.Hour), DurationMinutes: 30}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, w.Overlaps(tt.other))
			assert.Equal(t, tt.overlaps, tt.other.Overlaps(w))
		})
	}
}

func TestTimeWindow_ConflictsWithBuffer(t *testing.T) {
	base := mustTime(t, "2026-09-15T10:00:00Z")
	w := TimeWindow{Start: base, DurationMinutes: 60}
	buffer := 15 * time.Minute

	// соседнее окно с зазором меньше буфера конфликтует
	near := TimeWindow{Start: base.Add(70 * time.Minute), DurationMinutes: 30}
	assert.True(t, w.ConflictsWithBuffer(near, buffer))

	// зазор ровно в буфер не конфликтует
	exact := TimeWindow{Start: base.Add(75 * time.Minute), DurationMinutes: 30}
	assert.False(t, w.ConflictsWithBuffer(exact, buffer))

	// без буфера достаточно отсутствия пересечения
	assert.False(t, w.ConflictsWithBuffer(near, 0))

	before := TimeWindow{Start: base.Add(-40 * time.Minute), DurationMinutes: 30}
	assert.True(t, w.ConflictsWithBuffer(before, buffer))
}

func TestTimeWindow_Key(t *testing.T) {
	base := mustTime(t, "2026-09-15T10:00:00Z")
	w1 := TimeWindow{Start: base, DurationMinutes: 60}
	w2 := TimeWindow{Start: base.In(time.FixedZone("MSK", 3*3600)), DurationMinutes: 60}

	// одинаковые окна в разных локациях дают одинаковый ключ
	assert.Equal(t, w1.Key(), w2.Key())

	w3 := TimeWindow{Start: base, DurationMinutes: 90}
	assert.NotEqual(t, w1.Key(), w3.Key())
}

func TestTimeWindow_End(t *testing.T) {
	base := mustTime(t, "2026-09-15T10:00:00Z")
	w := TimeWindow{Start: base, DurationMinutes: 90}
	assert.Equal(t, base.Add(90*time.Minute), w.End())
}
