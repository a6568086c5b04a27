package patient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() Form {
	return Form{
		Name:          "Jane Roe",
		Age:           "54",
		Weight:        "70.5",
		Height:        "165",
		Contact:       "555-0100",
		SurgeryType:   "Complex",
		SurgeryDate:   day(3).Format(DateLayout),
		LastContacted: day(-4).Format(DateLayout),
	}
}

func TestForm_Parse(t *testing.T) {
	c, errs := validForm().Parse()
	require.Empty(t, errs)
	assert.Equal(t, "Jane Roe", c.Name)
	assert.Equal(t, 54, c.Age)
	assert.Equal(t, 70.5, c.WeightKg)
	assert.Equal(t, 165.0, c.HeightCm)
	assert.Equal(t, SurgeryComplex, c.SurgeryType)
	assert.Equal(t, day(3), c.SurgeryDate)
	assert.Equal(t, day(-4), c.LastContacted)
}

func TestForm_Parse_BlankNumbersDefaultToZero(t *testing.T) {
	f := validForm()
	f.Age, f.Weight, f.Height = "", " ", ""
	c, errs := f.Parse()
	require.Empty(t, errs)
	assert.Zero(t, c.Age)
	assert.Zero(t, c.WeightKg)
	assert.Zero(t, c.HeightCm)
}

func TestForm_Parse_Errors(t *testing.T) {
	f := Form{
		Name:          "x",
		Age:           "forty",
		Weight:        "heavy",
		Height:        "tall",
		SurgeryType:   "Trivial",
		SurgeryDate:   "03/10/2025",
		LastContacted: "",
	}
	_, errs := f.Parse()
	for _, field := range []string{"age", "weight", "height", "surgery_type", "surgery_date", "last_contacted"} {
		assert.NotEmpty(t, errs.For(field), field)
	}
	assert.Contains(t, errs.Error(), "age: must be a whole number")
}

func TestCandidate_Validate(t *testing.T) {
	c, _ := validForm().Parse()
	assert.Empty(t, c.Validate(today))
}

func TestCandidate_Validate_Bounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Candidate)
		field  string
	}{
		{"empty name", func(c *Candidate) { c.Name = "" }, "name"},
		{"negative age", func(c *Candidate) { c.Age = -1 }, "age"},
		{"age over 120", func(c *Candidate) { c.Age = 121 }, "age"},
		{"negative weight", func(c *Candidate) { c.WeightKg = -0.1 }, "weight"},
		{"negative height", func(c *Candidate) { c.HeightCm = -5 }, "height"},
		{"unknown surgery type", func(c *Candidate) { c.SurgeryType = "Trivial" }, "surgery_type"},
		{"surgery in the past", func(c *Candidate) { c.SurgeryDate = day(-1) }, "surgery_date"},
		{"contact before 2000", func(c *Candidate) { c.LastContacted = Date(1999, time.December, 31) }, "last_contacted"},
		{"surgery over 10 years out", func(c *Candidate) { c.SurgeryDate = today.AddDate(MaxYearsAhead, 0, 1) }, "surgery_date"},
		{"surgery centuries out", func(c *Candidate) { c.SurgeryDate = Date(2500, time.January, 1) }, "surgery_date"},
		{"contact over 10 years out", func(c *Candidate) { c.LastContacted = today.AddDate(MaxYearsAhead, 0, 1) }, "last_contacted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := validForm().Parse()
			tt.mutate(&c)
			errs := c.Validate(today)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestCandidate_Validate_EdgesAccepted(t *testing.T) {
	c, _ := validForm().Parse()
	c.Age = 120
	c.SurgeryDate = today
	c.LastContacted = MinLastContacted
	assert.Empty(t, c.Validate(today))

	c.SurgeryDate = today.AddDate(MaxYearsAhead, 0, 0)
	assert.Empty(t, c.Validate(today))

	c.Age = 0
	c.WeightKg, c.HeightCm = 0, 0
	assert.Empty(t, c.Validate(today))
}

func TestParseSurgeryType(t *testing.T) {
	st, err := ParseSurgeryType(" complex ")
	require.NoError(t, err)
	assert.Equal(t, SurgeryComplex, st)

	_, err = ParseSurgeryType("")
	assert.Error(t, err)
}

func TestSurgeryType_Severity(t *testing.T) {
	assert.Equal(t, 1, SurgerySimple.Severity())
	assert.Equal(t, 2, SurgeryMedium.Severity())
	assert.Equal(t, 3, SurgeryComplex.Severity())
	assert.Equal(t, 0, SurgeryType("Other").Severity())
}

func TestRecord_Summary(t *testing.T) {
	r := Record{Name: "Jane Roe", SurgeryType: SurgeryMedium, SurgeryDate: Date(2025, time.April, 2)}
	assert.Equal(t, "Jane Roe (Medium) - Surgery on 2025-04-02", r.Summary())
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 1, DaysBetween(Date(2024, time.February, 28), Date(2024, time.February, 29)))
	assert.Equal(t, 366, DaysBetween(Date(2024, time.January, 1), Date(2025, time.January, 1)))
	assert.Equal(t, -1, DaysBetween(Date(2025, time.January, 2), Date(2025, time.January, 1)))
	assert.Equal(t, 136897, DaysBetween(today, Date(2400, time.January, 1)))
	assert.Equal(t, 3652058, DaysBetween(Date(1, time.January, 1), Date(9999, time.December, 31)))
}
