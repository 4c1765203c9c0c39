package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Policy decides what the visitor sees when the transport fails.
type Policy string

const (
	// PolicyStrict reports transport and configuration failures.
	PolicyStrict Policy = "strict"
	// PolicyOptimistic reports success once validation passes; failures are
	// only logged and recorded.
	PolicyOptimistic Policy = "optimistic"
)

// ParsePolicy maps a config value to a Policy, defaulting to strict.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyStrict:
		return PolicyStrict, nil
	case PolicyOptimistic:
		return PolicyOptimistic, nil
	}
	return PolicyStrict, fmt.Errorf("unknown contact policy %q", s)
}

// Outcome classifies a submission.
type Outcome string

const (
	OutcomeSent        Outcome = "sent"
	OutcomeInvalid     Outcome = "invalid"
	OutcomeFailed      Outcome = "failed"
	OutcomeUnavailable Outcome = "unavailable"
)

// Result is what the handler renders.
type Result struct {
	Outcome Outcome
	Errors  FieldErrors
	// Err is the transport error, kept even when the policy masks it.
	Err error
	// Masked is set when an optimistic policy turned a failure into success.
	Masked bool
}

// Submission is the record kept for the site owner.
type Submission struct {
	Form      Form
	Outcome   Outcome
	Transport string
	At        time.Time
}

// Recorder stores submissions.
type Recorder interface {
	RecordSubmission(ctx context.Context, s Submission) error
}

// Service validates and dispatches contact form submissions.
type Service struct {
	sender   Sender
	policy   Policy
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithPolicy(p Policy) Option { return func(s *Service) { s.policy = p } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

func WithRecorder(r Recorder) Option { return func(s *Service) { s.recorder = r } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService returns a strict service sending through sender.
func NewService(sender Sender, opts ...Option) *Service {
	s := &Service{sender: sender, policy: PolicyStrict, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the failure policy in effect.
func (s *Service) Policy() Policy { return s.policy }

// Submit validates f and, when it is valid, sends it. Invalid forms never
// reach the transport.
func (s *Service) Submit(ctx context.Context, f Form) Result {
	f = f.Normalize()
	if errs := f.Validate(); !errs.Empty() {
		return Result{Outcome: OutcomeInvalid, Errors: errs}
	}

	err := s.sender.Send(ctx, f)
	res := Result{Outcome: OutcomeSent, Errors: FieldErrors{}, Err: err}
	switch {
	case err == nil:
	case errors.Is(err, ErrNotConfigured):
		res.Outcome = OutcomeUnavailable
		s.logger.Error("contact transport not configured", "transport", s.sender.Name(), "err", err)
	default:
		res.Outcome = OutcomeFailed
		s.logger.Warn("contact transport failed", "transport", s.sender.Name(), "err", err)
	}

	if s.recorder != nil {
		sub := Submission{Form: f, Outcome: res.Outcome, Transport: s.sender.Name(), At: s.now()}
		if rerr := s.recorder.RecordSubmission(ctx, sub); rerr != nil {
			s.logger.Error("record contact submission", "err", rerr)
		}
	}

	if res.Outcome == OutcomeSent {
		s.logger.Info("contact message sent", "transport", s.sender.Name())
	} else if s.policy == PolicyOptimistic {
		res.Outcome = OutcomeSent
		res.Masked = true
	}
	return res
}
