package patient

import (
	"cmp"
	"slices"
	"time"
)

// PriorityKey is the composite ordering key of a record relative to a
// given day.
type PriorityKey struct {
	Severity         int `json:"severity"`
	DaysUntilSurgery int `json:"days_until_surgery"`
	DaysSinceContact int `json:"days_since_contact"`
}

// KeyFor computes the key of r as seen on today. DaysUntilSurgery is
// negative once the surgery date has passed.
func KeyFor(r Record, today time.Time) PriorityKey {
	return PriorityKey{
		Severity:         r.SurgeryType.Severity(),
		DaysUntilSurgery: DaysBetween(today, r.SurgeryDate),
		DaysSinceContact: DaysBetween(r.LastContacted, today),
	}
}

// Compare orders a before b when a needs attention sooner: higher
// severity, then earlier surgery, then longer since last contact.
func (a PriorityKey) Compare(b PriorityKey) int {
	if c := cmp.Compare(b.Severity, a.Severity); c != 0 {
		return c
	}
	if c := cmp.Compare(a.DaysUntilSurgery, b.DaysUntilSurgery); c != 0 {
		return c
	}
	return cmp.Compare(b.DaysSinceContact, a.DaysSinceContact)
}

type keyed struct {
	key PriorityKey
	rec Record
}

// SortByPriority reorders records in place, most urgent first. Records
// with equal keys keep their relative order. Field values are untouched.
func SortByPriority(records []Record, today time.Time) {
	today = DateOf(today)
	items := make([]keyed, len(records))
	for i, r := range records {
		items[i] = keyed{key: KeyFor(r, today), rec: r}
	}
	slices.SortStableFunc(items, func(a, b keyed) int {
		return a.key.Compare(b.key)
	})
	for i := range items {
		records[i] = items[i].rec
	}
}
