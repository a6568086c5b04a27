package patient

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SurgeryType is the complexity class of the scheduled procedure.
type SurgeryType string

const (
	SurgerySimple  SurgeryType = "Simple"
	SurgeryMedium  SurgeryType = "Medium"
	SurgeryComplex SurgeryType = "Complex"
)

// SurgeryTypes lists the accepted values in display order.
var SurgeryTypes = []SurgeryType{SurgerySimple, SurgeryMedium, SurgeryComplex}

var severityTiers = map[SurgeryType]int{
	SurgerySimple:  1,
	SurgeryMedium:  2,
	SurgeryComplex: 3,
}

// Severity returns the ordinal tier of the surgery type, 0 if unknown.
func (s SurgeryType) Severity() int {
	return severityTiers[s]
}

func (s SurgeryType) Valid() bool {
	_, ok := severityTiers[s]
	return ok
}

// ParseSurgeryType accepts the three tier names case-insensitively.
func ParseSurgeryType(v string) (SurgeryType, error) {
	for _, st := range SurgeryTypes {
		if strings.EqualFold(strings.TrimSpace(v), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid surgery type: %q", v)
}

// DateLayout is the wire and display format of calendar dates.
const DateLayout = "2006-01-02"

// MinLastContacted is the earliest accepted last-contacted date.
var MinLastContacted = Date(2000, time.January, 1)

// MaxYearsAhead bounds how far past today an entered date may be.
const MaxYearsAhead = 10

// Date returns the civil date as midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf drops the time of day from t, keeping the calendar date t has in
// its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(v string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// DaysBetween returns the number of whole calendar days from a to b.
// Counted on Unix seconds since time.Duration overflows past ~292 years.
func DaysBetween(a, b time.Time) int {
	return int((DateOf(b).Unix() - DateOf(a).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// Record is one patient awaiting surgery.
type Record struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Age           int         `json:"age"`
	WeightKg      float64     `json:"weight_kg"`
	HeightCm      float64     `json:"height_cm"`
	Contact       string      `json:"contact"`
	SurgeryType   SurgeryType `json:"surgery_type"`
	SurgeryDate   time.Time   `json:"surgery_date"`
	LastContacted time.Time   `json:"last_contacted"`
	AddedAt       time.Time   `json:"added_at"`
}

// Summary is the one-line heading shown for a collapsed record.
func (r Record) Summary() string {
	return fmt.Sprintf("%s (%s) - Surgery on %s", r.Name, r.SurgeryType, r.SurgeryDate.Format(DateLayout))
}
