package patient

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Outcome tells callers what Submit did with a submission.
type Outcome string

const (
	OutcomeAdded             Outcome = "added"
	OutcomeRejectedEmptyName Outcome = "rejected_empty_name"
	OutcomeRejectedInvalid   Outcome = "rejected_invalid"
)

// SubmitResult is returned for every submission. Record is set only when
// Outcome is OutcomeAdded; Errors only when it is OutcomeRejectedInvalid.
type SubmitResult struct {
	Outcome Outcome     `json:"outcome"`
	Record  *Record     `json:"record,omitempty"`
	Errors  FieldErrors `json:"errors,omitempty"`
}

// Ranked pairs a record with the key it was ordered by.
type Ranked struct {
	Record
	Priority PriorityKey `json:"priority"`
}

// Recorder receives service events for metrics.
type Recorder interface {
	PatientSubmitted(outcome string)
	PrioritySorted(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) PatientSubmitted(string) {}
func (nopRecorder) PrioritySorted(time.Duration) {}

type Service struct {
	logger   zerolog.Logger
	recorder Recorder
	clock    func() time.Time
	loc      *time.Location
}

type Option func(*Service)

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithClock replaces time.Now as the source of "today".
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithLocation sets the time zone in which "today" is computed.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func NewService(logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		logger:   logger.With().Str("component", "patient").Logger(),
		recorder: nopRecorder{},
		clock:    time.Now,
		loc:      time.Local,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Today reads the clock once and returns the current calendar date.
func (s *Service) Today() time.Time {
	return DateOf(s.clock().In(s.loc))
}

// Submit validates f as of today and appends it to reg when valid. An
// empty name is rejected before any other check and carries no field
// errors.
func (s *Service) Submit(ctx context.Context, reg *Registry, f Form, today time.Time) SubmitResult {
	res := s.submit(reg, f, today)
	s.recorder.PatientSubmitted(string(res.Outcome))

	evt := s.logger.Debug().Str("outcome", string(res.Outcome))
	if res.Record != nil {
		evt = evt.Str("patient_id", res.Record.ID.String()).Str("surgery_type", string(res.Record.SurgeryType))
	}
	if len(res.Errors) > 0 {
		evt = evt.Int("field_errors", len(res.Errors))
	}
	evt.Msg("patient submission")
	return res
}

func (s *Service) submit(reg *Registry, f Form, today time.Time) SubmitResult {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return SubmitResult{Outcome: OutcomeRejectedEmptyName}
	}

	c, errs := f.Parse()
	if len(errs) == 0 {
		errs = c.Validate(today)
	}
	if len(errs) > 0 {
		return SubmitResult{Outcome: OutcomeRejectedInvalid, Errors: errs}
	}

	r := c.Record()
	r.ID = uuid.New()
	r.AddedAt = s.clock().UTC()
	reg.Add(r)
	return SubmitResult{Outcome: OutcomeAdded, Record: &r}
}

// List reorders reg by priority as of today and returns the records with
// their keys.
func (s *Service) List(ctx context.Context, reg *Registry, today time.Time) []Ranked {
	start := time.Now()
	records := reg.Prioritize(today)
	s.recorder.PrioritySorted(time.Since(start))

	today = DateOf(today)
	out := make([]Ranked, len(records))
	for i, r := range records {
		out[i] = Ranked{Record: r, Priority: KeyFor(r, today)}
	}
	return out
}
