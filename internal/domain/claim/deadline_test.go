package claim_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/internal/testutil"
)

func TestDeadlineEvaluator_CutoffBoundary(t *testing.T) {
	e := testutil.Evaluator()
	london := testutil.London

	cases := []struct {
		name    string
		date    claim.Date
		now     time.Time
		expired bool
	}{
		{"day before", claim.NewDate(2024, 3, 15), time.Date(2024, 3, 14, 23, 59, 0, 0, london), false},
		{"same day morning", claim.NewDate(2024, 3, 15), time.Date(2024, 3, 15, 9, 0, 0, 0, london), false},
		{"15:59 on the day", claim.NewDate(2024, 3, 15), time.Date(2024, 3, 15, 15, 59, 0, 0, london), false},
		{"16:00 exactly", claim.NewDate(2024, 3, 15), time.Date(2024, 3, 15, 16, 0, 0, 0, london), false},
		{"one nanosecond after 16:00", claim.NewDate(2024, 3, 15), time.Date(2024, 3, 15, 16, 0, 0, 1, london), true},
		{"16:01 on the day", claim.NewDate(2024, 3, 15), time.Date(2024, 3, 15, 16, 1, 0, 0, london), true},
		{"before midnight", claim.NewDate(2024, 3, 15), time.Date(2024, 3, 15, 23, 0, 0, 0, london), true},
		{"summer time 15:59", claim.NewDate(2024, 7, 1), time.Date(2024, 7, 1, 15, 59, 0, 0, london), false},
		{"summer time 16:01", claim.NewDate(2024, 7, 1), time.Date(2024, 7, 1, 16, 1, 0, 0, london), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expired, e.HasExpired(tc.date, tc.now))
		})
	}
}

func TestDeadlineEvaluator_NowInAnotherZone(t *testing.T) {
	e := testutil.Evaluator()
	d := claim.NewDate(2024, 7, 1)

	// 16:00 BST is 15:00 UTC.
	assert.False(t, e.HasExpired(d, time.Date(2024, 7, 1, 14, 59, 0, 0, time.UTC)))
	assert.True(t, e.HasExpired(d, time.Date(2024, 7, 1, 15, 1, 0, 0, time.UTC)))

	// 16:00 GMT is 16:00 UTC.
	d = claim.NewDate(2024, 1, 15)
	assert.False(t, e.HasExpired(d, time.Date(2024, 1, 15, 15, 59, 0, 0, time.UTC)))
	assert.True(t, e.HasExpired(d, time.Date(2024, 1, 15, 16, 1, 0, 0, time.UTC)))
}

func TestDeadlineEvaluator_CutoffOn(t *testing.T) {
	e := testutil.Evaluator()

	at := e.CutoffOn(claim.NewDate(2024, 3, 15))
	assert.Equal(t, 16, at.Hour())
	assert.Equal(t, testutil.London, at.Location())
	assert.Equal(t, claim.DefaultCutoffHour, e.CutoffHour())
}

func TestDeadlineEvaluator_Options(t *testing.T) {
	e := claim.NewDeadlineEvaluator(nil, claim.WithCutoffHour(12))

	assert.Equal(t, time.UTC, e.Location())
	d := claim.NewDate(2024, 3, 15)
	assert.True(t, e.HasExpired(d, time.Date(2024, 3, 15, 12, 0, 1, 0, time.UTC)))
}

func TestNewDeadlineEvaluatorForZone(t *testing.T) {
	e, err := claim.NewDeadlineEvaluatorForZone(claim.DefaultTimezone, claim.DefaultCutoffHour)
	require.NoError(t, err)
	assert.Equal(t, "Europe/London", e.Location().String())

	_, err = claim.NewDeadlineEvaluatorForZone("Mars/Olympus_Mons", 16)
	assert.Error(t, err)

	_, err = claim.NewDeadlineEvaluatorForZone(claim.DefaultTimezone, 24)
	assert.Error(t, err)
}
