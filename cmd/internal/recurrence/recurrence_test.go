package recurrence

import (
	"testing"
	"time"

	"atendimentos/cmd/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedID() string { return "3f0c2a8e-1d1b-4c39-9a57-0f5c3b1d8e11" }

func TestExpandWeeklyKeepsDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	tmpl := entity.Appointment{Title: "Consult", Start: start, End: &end, Paid: true}

	series, err := Expand(tmpl, Weekly, 3, fixedID)
	require.NoError(t, err)
	require.Len(t, series, 3)

	wantStarts := []time.Time{
		time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	for i, occ := range series {
		assert.Equal(t, wantStarts[i], occ.Start)
		require.NotNil(t, occ.End)
		assert.Equal(t, time.Hour, occ.End.Sub(occ.Start))
		assert.Equal(t, "Consult", occ.Title)
		assert.True(t, occ.Paid)
		require.NotNil(t, occ.RecurrenceID)
		assert.Equal(t, fixedID(), *occ.RecurrenceID)
	}
}

func TestExpandDailyWithoutEnd(t *testing.T) {
	start := time.Date(2024, 2, 27, 9, 30, 0, 0, time.UTC)
	series, err := Expand(entity.Appointment{Title: "Daily", Start: start}, Daily, 4, fixedID)
	require.NoError(t, err)
	require.Len(t, series, 4)

	for i, occ := range series {
		assert.Equal(t, start.Add(time.Duration(i)*24*time.Hour), occ.Start)
		assert.Nil(t, occ.End)
	}
	// crosses the leap day
	assert.Equal(t, 29, series[2].Start.Day())
}

func TestExpandCallsIDGeneratorOnce(t *testing.T) {
	calls := 0
	gen := func() string {
		calls++
		return "id"
	}
	_, err := Expand(entity.Appointment{Start: time.Now()}, Daily, 5, gen)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestExpandRejectsBadInput(t *testing.T) {
	tmpl := entity.Appointment{Title: "x", Start: time.Now()}

	_, err := Expand(tmpl, Daily, 1, fixedID)
	assert.ErrorIs(t, err, ErrTooFewTimes)

	_, err = Expand(tmpl, Daily, MaxOccurrences+1, fixedID)
	assert.ErrorIs(t, err, ErrTooManyTimes)

	_, err = Expand(tmpl, None, 3, fixedID)
	assert.ErrorIs(t, err, ErrPolicyDisabled)
}

func TestParsePolicy(t *testing.T) {
	for raw, want := range map[string]Policy{
		"":        None,
		"none":    None,
		"daily":   Daily,
		"Weekly ": Weekly,
	} {
		got, err := ParsePolicy(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParsePolicy("weekely")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
	assert.False(t, IsValidPolicy("monthly"))
}

func TestRepeats(t *testing.T) {
	assert.True(t, Repeats(Weekly, 2))
	assert.False(t, Repeats(Weekly, 1))
	assert.False(t, Repeats(None, 10))
}
