package animals_test

import (
	"testing"
	"time"

	"pedigree-tracker/internal/domain/animals"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestAge(t *testing.T) {
	today := time.Date(2026, 3, 15, 17, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		dob  *time.Time
		want int
	}{
		{"no date of birth", nil, 0},
		{"born today", date(2026, 3, 15), 0},
		{"exactly five years", date(2021, 3, 15), 5},
		{"birthday tomorrow", date(2021, 3, 16), 4},
		{"birthday yesterday", date(2021, 3, 14), 5},
		{"earlier month", date(2020, 1, 31), 6},
		{"later month", date(2020, 12, 1), 5},
		{"born tomorrow", date(2026, 3, 16), 0},
		{"far future", date(2030, 1, 1), 0},
		{"leap day", date(2024, 2, 29), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, animals.Age(tt.dob, today))
		})
	}
}

func TestAge_IgnoresTimeOfDay(t *testing.T) {
	dob := time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC)
	today := time.Date(2026, 3, 15, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 2, animals.Age(&dob, today))
}

func TestIsAdult(t *testing.T) {
	assert.False(t, animals.IsAdult(0))
	assert.False(t, animals.IsAdult(1))
	assert.True(t, animals.IsAdult(2))
	assert.True(t, animals.IsAdult(10))
}
