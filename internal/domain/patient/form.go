package patient

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	MinAge = 0
	MaxAge = 120
)

// Form is a raw add-patient submission as posted by the browser.
type Form struct {
	Name          string `form:"name"`
	Age           string `form:"age"`
	Weight        string `form:"weight"`
	Height        string `form:"height"`
	Contact       string `form:"contact"`
	SurgeryType   string `form:"surgery_type"`
	SurgeryDate   string `form:"surgery_date"`
	LastContacted string `form:"last_contacted"`
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors collects every problem found in a submission.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.Field + ": " + e.Message
	}
	return strings.Join(parts, "; ")
}

// For returns the message attached to field, if any.
func (fe FieldErrors) For(field string) string {
	for _, e := range fe {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

func (fe *FieldErrors) add(field, msg string) {
	*fe = append(*fe, FieldError{Field: field, Message: msg})
}

// Candidate is a typed submission that has not been validated yet.
type Candidate struct {
	Name          string
	Age           int
	WeightKg      float64
	HeightCm      float64
	Contact       string
	SurgeryType   SurgeryType
	SurgeryDate   time.Time
	LastContacted time.Time
}

// Parse converts the text fields of f. Fields that do not parse are
// reported and left zero in the returned candidate.
func (f Form) Parse() (Candidate, FieldErrors) {
	var errs FieldErrors
	c := Candidate{
		Name:    strings.TrimSpace(f.Name),
		Contact: strings.TrimSpace(f.Contact),
	}

	if age, err := parseWhole(f.Age); err != nil {
		errs.add("age", "must be a whole number")
	} else {
		c.Age = age
	}
	if w, err := parseDecimal(f.Weight); err != nil {
		errs.add("weight", "must be a number")
	} else {
		c.WeightKg = w
	}
	if h, err := parseDecimal(f.Height); err != nil {
		errs.add("height", "must be a number")
	} else {
		c.HeightCm = h
	}
	if st, err := ParseSurgeryType(f.SurgeryType); err != nil {
		errs.add("surgery_type", "must be Simple, Medium or Complex")
	} else {
		c.SurgeryType = st
	}
	if d, err := ParseDate(f.SurgeryDate); err != nil {
		errs.add("surgery_date", "must be a date (YYYY-MM-DD)")
	} else {
		c.SurgeryDate = d
	}
	if d, err := ParseDate(f.LastContacted); err != nil {
		errs.add("last_contacted", "must be a date (YYYY-MM-DD)")
	} else {
		c.LastContacted = d
	}
	return c, errs
}

// Blank numeric fields default to zero, matching the form's initial values.
func parseWhole(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func parseDecimal(v string) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

// Validate checks the entry constraints of a candidate as of today. The
// surgery date check only applies here; stored records may lapse into the
// past.
func (c Candidate) Validate(today time.Time) FieldErrors {
	var errs FieldErrors
	today = DateOf(today)
	latest := today.AddDate(MaxYearsAhead, 0, 0)

	if c.Name == "" {
		errs.add("name", "is required")
	}
	if c.Age < MinAge || c.Age > MaxAge {
		errs.add("age", "must be between 0 and 120")
	}
	if c.WeightKg < 0 || !finite(c.WeightKg) {
		errs.add("weight", "must not be negative")
	}
	if c.HeightCm < 0 || !finite(c.HeightCm) {
		errs.add("height", "must not be negative")
	}
	if !c.SurgeryType.Valid() {
		errs.add("surgery_type", "must be Simple, Medium or Complex")
	}
	switch {
	case c.SurgeryDate.Before(today):
		errs.add("surgery_date", "must not be in the past")
	case c.SurgeryDate.After(latest):
		errs.add("surgery_date", "must be within 10 years")
	}
	switch {
	case c.LastContacted.Before(MinLastContacted):
		errs.add("last_contacted", "must be on or after 2000-01-01")
	case c.LastContacted.After(latest):
		errs.add("last_contacted", "must be within 10 years")
	}
	return errs
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Record builds the stored record. Callers validate first.
func (c Candidate) Record() Record {
	return Record{
		Name:          c.Name,
		Age:           c.Age,
		WeightKg:      c.WeightKg,
		HeightCm:      c.HeightCm,
		Contact:       c.Contact,
		SurgeryType:   c.SurgeryType,
		SurgeryDate:   c.SurgeryDate,
		LastContacted: c.LastContacted,
	}
}
