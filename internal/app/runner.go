package app

import (
	"context"
	"time"

	"trivia-quiz-service/internal/domain"

	"go.uber.org/zap"
)

const (
	// DefaultTickInterval is one countdown unit.
	DefaultTickInterval = time.Second
	// DefaultFeedbackHold is how long the answer outcome stays on screen.
	DefaultFeedbackHold = 1500 * time.Millisecond
)

// Listener receives what a render layer needs while a Runner drives a session.
type Listener interface {
	QuestionShown(index, total int, question domain.Question, remaining int)
	TimeRemaining(remaining int)
	AnswerRecorded(record domain.AnswerRecord)
	Completed(result domain.QuizResult)
}

type nopListener struct{}

func (nopListener) QuestionShown(int, int, domain.Question, int) {}
func (nopListener) TimeRemaining(int)                            {}
func (nopListener) AnswerRecorded(domain.AnswerRecord)           {}
func (nopListener) Completed(domain.QuizResult)                  {}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

func WithTickInterval(d time.Duration) RunnerOption {
	return func(r *Runner) { r.tick = d }
}

func WithFeedbackHold(d time.Duration) RunnerOption {
	return func(r *Runner) { r.hold = d }
}

func WithListener(l Listener) RunnerOption {
	return func(r *Runner) { r.listener = l }
}

func WithRunnerLogger(log *zap.Logger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// Runner drives a started Session on the wall clock: it ticks the countdown
// and advances after the feedback hold. The ticker and hold timer live only
// as long as Run.
type Runner struct {
	session  *Session
	tick     time.Duration
	hold     time.Duration
	listener Listener
	log      *zap.Logger
}

func NewRunner(session *Session, opts ...RunnerOption) *Runner {
	r := &Runner{
		session:  session,
		tick:     DefaultTickInterval,
		hold:     DefaultFeedbackHold,
		listener: nopListener{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run blocks until the session completes (returning its result), the
// session is reset, or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) (*domain.QuizResult, error) {
	if r.session.State() != domain.StateAwaitingAnswer {
		return nil, domain.ErrInvalidTransition
	}
	done := r.session.Done()
	feedback := r.session.Feedback()

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	var hold *time.Timer
	var holdC <-chan time.Time
	defer func() {
		if hold != nil {
			hold.Stop()
		}
	}()

	r.announce()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-done:
			r.log.Debug("quiz session reset while running", zap.String("session", r.session.ID()))
			return nil, domain.ErrInvalidTransition
		case <-ticker.C:
			if r.session.Tick() {
				continue
			}
			if r.session.State() == domain.StateAwaitingAnswer {
				r.listener.TimeRemaining(r.session.TimeRemaining())
			}
		case <-feedback:
			if record, ok := r.session.LastAnswer(); ok {
				r.listener.AnswerRecorded(record)
			}
			hold = time.NewTimer(r.hold)
			holdC = hold.C
		case <-holdC:
			holdC = nil
			result, err := r.session.Advance(ctx)
			if err != nil {
				return nil, err
			}
			if result != nil {
				r.listener.Completed(*result)
				return result, nil
			}
			ticker.Reset(r.tick)
			r.announce()
		}
	}
}

func (r *Runner) announce() {
	q, ok := r.session.CurrentQuestion()
	if !ok {
		return
	}
	index, total := r.session.Index()
	r.listener.QuestionShown(index, total, q, r.session.TimeRemaining())
}
