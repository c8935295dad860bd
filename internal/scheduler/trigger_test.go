package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrigger_Precedence(t *testing.T) {
	tests := []struct {
		name  string
		flags Flags
		want  Trigger
	}{
		{"once wins", Flags{Once: true, Test: true, Interval: 5, Daily: "10:00"}, Trigger{Kind: Once}},
		{"test over interval", Flags{Test: true, Interval: 5}, Trigger{Kind: Every, Interval: time.Minute}},
		{"interval over daily", Flags{Interval: 30, Daily: "10:00"}, Trigger{Kind: Every, Interval: 30 * time.Minute}},
		{"daily", Flags{Daily: "07:45"}, Trigger{Kind: Daily, Hour: 7, Minute: 45}},
		{"default", Flags{}, Trigger{Kind: Daily, Hour: 9, Minute: 0}},
		{"single digits", Flags{Daily: "9:5"}, Trigger{Kind: Daily, Hour: 9, Minute: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTrigger(tt.flags)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTrigger_InvalidDaily(t *testing.T) {
	for _, daily := range []string{"9", "aa:bb", "24:00", "12:60", "-1:00", "09:00:00", "09:"} {
		_, err := ParseTrigger(Flags{Daily: daily})
		assert.ErrorIs(t, err, ErrInvalidDaily, daily)
	}

	_, err := ParseTrigger(Flags{Interval: -5})
	assert.Error(t, err)
}

func TestTrigger_Schedule(t *testing.T) {
	daily := Trigger{Kind: Daily, Hour: 9, Minute: 30}
	sched, err := daily.Schedule()
	require.NoError(t, err)
	from := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2024, 3, 2, 9, 30, 0, 0, time.Local), sched.Next(from))
	assert.False(t, daily.Immediate())
	assert.Equal(t, "daily at 09:30", daily.String())

	every := Trigger{Kind: Every, Interval: 15 * time.Minute}
	sched, err = every.Schedule()
	require.NoError(t, err)
	assert.Equal(t, from.Add(15*time.Minute), sched.Next(from))
	assert.True(t, every.Immediate())

	_, err = Trigger{Kind: Once}.Schedule()
	assert.Error(t, err)
}
