// Package recurrence materializes a recurring appointment request into its
// concrete occurrences.
package recurrence

import (
	"errors"
	"fmt"
	"strings"

	"atendimentos/cmd/internal/domain/entity"
)

type Policy string

const (
	None   Policy = "none"
	Daily  Policy = "daily"
	Weekly Policy = "weekly"
)

// MaxOccurrences bounds a single series.
const MaxOccurrences = 366

var (
	ErrUnknownPolicy  = errors.New("unknown repeat policy")
	ErrTooFewTimes    = errors.New("a series needs more than one occurrence")
	ErrTooManyTimes   = fmt.Errorf("a series cannot exceed %d occurrences", MaxOccurrences)
	ErrPolicyDisabled = errors.New("repeat policy does not advance")
)

// ParsePolicy maps the request value to a Policy. An empty value means None.
func ParsePolicy(raw string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(raw))); p {
	case "", None:
		return None, nil
	case Daily, Weekly:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, raw)
	}
}

func IsValidPolicy(raw string) bool {
	_, err := ParsePolicy(raw)
	return err == nil
}

// Repeats reports whether a request with this policy and count produces a
// series instead of a single appointment.
func Repeats(p Policy, times int) bool {
	return p != None && times > 1
}

func (p Policy) days() int {
	switch p {
	case Daily:
		return 1
	case Weekly:
		return 7
	default:
		return 0
	}
}

// Expand returns times occurrences of template. Occurrence 0 keeps the
// template's start and end; each following start moves one period forward
// and, when the template has an end, keeps the template's duration. All
// occurrences share the recurrence id produced by newID.
func Expand(template entity.Appointment, p Policy, times int, newID func() string) ([]entity.Appointment, error) {
	if times <= 1 {
		return nil, ErrTooFewTimes
	}
	if times > MaxOccurrences {
		return nil, ErrTooManyTimes
	}

	step := p.days()
	if step == 0 {
		return nil, ErrPolicyDisabled
	}

	id := newID()
	duration := template.Duration()
	hasEnd := template.End != nil

	series := make([]entity.Appointment, times)
	for i := range series {
		start := template.Start.AddDate(0, 0, i*step)

		occ := entity.Appointment{
			Title:        template.Title,
			Start:        start,
			Paid:         template.Paid,
			RecurrenceID: &id,
		}
		if hasEnd {
			end := start.Add(duration)
			occ.End = &end
		}
		series[i] = occ
	}
	return series, nil
}
