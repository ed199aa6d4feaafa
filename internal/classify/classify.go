package classify

import (
	"strings"

	"novareg/internal/dates"
)

// Category is the tagged display state derived from free-text status.
// Exactly one category applies per order; the status wire format stays
// free text and this package is the only place it is interpreted.
type Category string

const (
	Fulfilled  Category = "Fulfilled"
	InTransit  Category = "In Transit"
	Exceptions Category = "Exceptions"
	Pending    Category = "Pending"
)

// Tone is a presentation hint; actual styling belongs to the frontend.
type Tone string

const (
	ToneFulfilled Tone = "fulfilled"
	ToneLate      Tone = "late"
	ToneAttention Tone = "attention"
)

// IsFulfilled reports whether the status text marks the order as received.
func IsFulfilled(status string) bool {
	s := strings.ToLower(status)
	return strings.Contains(s, "received") || strings.Contains(s, "recv'd")
}

// IsLate reports whether an order is overdue. A fulfilled status is never
// late regardless of dates; an unparseable expected date is never late;
// otherwise late means the expected date is strictly before today.
func IsLate(status, expectedDateText string) bool {
	if IsFulfilled(status) {
		return false
	}
	expected, ok := dates.Parse(expectedDateText)
	if !ok {
		return false
	}
	return expected.Before(dates.Today())
}

// CategoryOf matches status keywords in priority order; the received check
// wins even when an exception keyword also appears.
func CategoryOf(status string) Category {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "received"), strings.Contains(s, "recv'd"):
		return Fulfilled
	case strings.Contains(s, "back"), strings.Contains(s, "delay"):
		return Exceptions
	case strings.Contains(s, "transit"), strings.Contains(s, "ship"):
		return InTransit
	default:
		return Pending
	}
}

// StatusTone derives the presentation tag for one order row.
func StatusTone(status, expectedDateText string) Tone {
	if IsFulfilled(status) {
		return ToneFulfilled
	}
	if IsLate(status, expectedDateText) {
		return ToneLate
	}
	return ToneAttention
}
