package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// TriggerKind selects how jobs are fired.
type TriggerKind int

const (
	// Once runs a single job synchronously.
	Once TriggerKind = iota
	// Every runs a job immediately and then at a fixed interval.
	Every
	// Daily runs a job at a fixed local wall-clock time.
	Daily
)

// DefaultDaily is the daily time used when no trigger flag is given.
const DefaultDaily = "09:00"

// TestInterval is the interval of the --test trigger.
const TestInterval = time.Minute

// ErrInvalidDaily is returned for a --daily value that is not HH:MM.
var ErrInvalidDaily = errors.New("invalid daily time, expected HH:MM")

// Flags are the raw trigger flags of the schedule command.
type Flags struct {
	Once     bool
	Test     bool
	Interval int
	Daily    string
}

// Trigger is a resolved schedule.
type Trigger struct {
	Kind     TriggerKind
	Interval time.Duration
	Hour     int
	Minute   int
}

// ParseTrigger resolves flags with precedence once > test > interval > daily.
// An interval of zero is treated as unset.
func ParseTrigger(f Flags) (Trigger, error) {
	switch {
	case f.Once:
		return Trigger{Kind: Once}, nil
	case f.Test:
		return Trigger{Kind: Every, Interval: TestInterval}, nil
	case f.Interval < 0:
		return Trigger{}, fmt.Errorf("interval must be positive, got %d", f.Interval)
	case f.Interval > 0:
		return Trigger{Kind: Every, Interval: time.Duration(f.Interval) * time.Minute}, nil
	}

	daily := f.Daily
	if daily == "" {
		daily = DefaultDaily
	}
	h, m, err := parseClock(daily)
	if err != nil {
		return Trigger{}, err
	}
	return Trigger{Kind: Daily, Hour: h, Minute: m}, nil
}

func parseClock(s string) (int, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDaily, s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDaily, s)
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDaily, s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("%w: %q out of range", ErrInvalidDaily, s)
	}
	return h, m, nil
}

// Schedule returns the cron schedule of an Every or Daily trigger.
func (t Trigger) Schedule() (cron.Schedule, error) {
	switch t.Kind {
	case Every:
		return cron.Every(t.Interval), nil
	case Daily:
		return cron.ParseStandard(fmt.Sprintf("%d %d * * *", t.Minute, t.Hour))
	}
	return nil, fmt.Errorf("trigger %s has no schedule", t)
}

// Immediate reports whether the first job runs at startup.
func (t Trigger) Immediate() bool { return t.Kind == Every }

func (t Trigger) String() string {
	switch t.Kind {
	case Once:
		return "once"
	case Every:
		return "every " + t.Interval.String()
	default:
		return fmt.Sprintf("daily at %02d:%02d", t.Hour, t.Minute)
	}
}
