package app

import (
	"context"
	"math"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// ResultRecorder persists finished results. Persist is best-effort from the
// session's point of view.
type ResultRecorder interface {
	Persist(ctx context.Context, result domain.QuizResult) error
	List(ctx context.Context) ([]domain.LeaderboardEntry, error)
	Clear(ctx context.Context) error
}

// PlayerNameStore keeps the single remembered player name.
type PlayerNameStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, name string) error
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithClock replaces time.Now, for deterministic timestamps in tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

func WithRecorder(r ResultRecorder) SessionOption {
	return func(s *Session) { s.recorder = r }
}

func WithPlayerNames(p PlayerNameStore) SessionOption {
	return func(s *Session) { s.players = p }
}

func WithScoring(strategy ScoringStrategy) SessionOption {
	return func(s *Session) { s.scoring = strategy }
}

func WithLogger(log *zap.Logger) SessionOption {
	return func(s *Session) { s.log = log }
}

// WithResultIDs replaces the ULID generator used for result identity tokens.
func WithResultIDs(next func() string) SessionOption {
	return func(s *Session) { s.newID = next }
}

// WithOnComplete registers a callback invoked once per completed play-through.
func WithOnComplete(fn func(domain.QuizResult)) SessionOption {
	return func(s *Session) { s.onComplete = fn }
}

// Session is the single-player quiz state machine. It owns the progression
// state of one play-through; time only moves when Tick is called.
type Session struct {
	id         string
	now        func() time.Time
	newID      func() string
	recorder   ResultRecorder
	players    PlayerNameStore
	scoring    ScoringStrategy
	log        *zap.Logger
	onComplete func(domain.QuizResult)

	mu         sync.RWMutex
	state      domain.State
	questions  []domain.Question
	settings   domain.QuizSettings
	playerName string
	index      int
	remaining  int
	answers    []domain.AnswerRecord
	startedAt  time.Time
	result     *domain.QuizResult
	feedback   chan struct{}
	done       chan struct{}
	doneClosed bool
}

// NewSession returns an Idle session.
func NewSession(id string, opts ...SessionOption) *Session {
	s := &Session{
		id:      id,
		now:     time.Now,
		newID:   func() string { return ulid.Make().String() },
		scoring: PercentageScoring{},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.feedback = make(chan struct{}, 1)
	s.done = make(chan struct{})
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Start begins a play-through. It is accepted from Idle and Completed; a
// start after completion is a full reset.
func (s *Session) Start(ctx context.Context, questions []domain.Question, settings domain.QuizSettings) error {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()
	if state != domain.StateIdle && state != domain.StateCompleted {
		return domain.ErrInvalidTransition
	}
	if len(questions) == 0 {
		return domain.ErrNoQuestions
	}
	if settings.TimeLimit <= 0 {
		return domain.ErrInvalidTimeLimit
	}

	name := s.lookupPlayerName(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.StateIdle && s.state != domain.StateCompleted {
		return domain.ErrInvalidTransition
	}

	s.questions = append([]domain.Question(nil), questions...)
	s.settings = settings
	s.playerName = name
	s.index = 0
	s.remaining = settings.TimeLimit
	s.answers = make([]domain.AnswerRecord, 0, len(questions))
	s.startedAt = s.now()
	s.result = nil
	s.feedback = make(chan struct{}, 1)
	s.done = make(chan struct{})
	s.doneClosed = false
	s.state = domain.StateAwaitingAnswer

	s.log.Debug("quiz session started",
		zap.String("session", s.id),
		zap.Int("questions", len(questions)),
		zap.Int("time_limit", settings.TimeLimit))
	return nil
}

// SubmitAnswer locks in choice for the current question. The choice must be
// one of the displayed choices, compared by text.
func (s *Session) SubmitAnswer(choice string) (domain.AnswerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.answerableLocked(); err != nil {
		return domain.AnswerRecord{}, err
	}
	if !s.questions[s.index].HasChoice(choice) {
		return domain.AnswerRecord{}, domain.ErrUnknownChoice
	}
	return s.recordLocked(choice, true), nil
}

// Skip records the current question as unanswered, scored as incorrect.
func (s *Session) Skip() (domain.AnswerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.answerableLocked(); err != nil {
		return domain.AnswerRecord{}, err
	}
	return s.recordLocked("", false), nil
}

func (s *Session) answerableLocked() error {
	switch s.state {
	case domain.StateAwaitingAnswer:
		return nil
	case domain.StateFeedback:
		return domain.ErrAlreadyAnswered
	}
	return domain.ErrInvalidTransition
}

// Tick advances the countdown by one second. It only has an effect while
// awaiting an answer and reports whether the countdown expired, in which
// case the no-answer outcome has been recorded.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StateAwaitingAnswer {
		return false
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining > 0 {
		return false
	}
	s.recordLocked("", false)
	return true
}

// recordLocked appends the outcome of the current question and enters Feedback.
// answered is false for skips and timeouts.
func (s *Session) recordLocked(choice string, answered bool) domain.AnswerRecord {
	q := s.questions[s.index]
	limit := s.settings.TimeLimit

	elapsed := limit - s.remaining
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > limit {
		elapsed = limit
	}

	selected := choice
	if !answered {
		selected = domain.NoAnswer
	}
	record := domain.AnswerRecord{
		Question:       q.Text,
		SelectedAnswer: selected,
		CorrectAnswer:  q.CorrectAnswer,
		IsCorrect:      answered && choice == q.CorrectAnswer,
		Skipped:        !answered,
		TimeSpent:      elapsed,
	}
	s.answers = append(s.answers, record)
	s.state = domain.StateFeedback

	select {
	case s.feedback <- struct{}{}:
	default:
	}
	return record
}

// Advance leaves Feedback. It moves to the next question, or completes the
// session and returns the final result. The result is handed to the
// recorder exactly once; recorder failures are logged, never returned.
func (s *Session) Advance(ctx context.Context) (*domain.QuizResult, error) {
	s.mu.Lock()
	if s.state != domain.StateFeedback {
		s.mu.Unlock()
		return nil, domain.ErrInvalidTransition
	}

	if s.index+1 < len(s.questions) {
		s.index++
		s.remaining = s.settings.TimeLimit
		s.state = domain.StateAwaitingAnswer
		s.mu.Unlock()
		return nil, nil
	}

	result := s.buildResultLocked()
	s.result = &result
	s.state = domain.StateCompleted
	s.closeDoneLocked()
	recorder, onComplete := s.recorder, s.onComplete
	s.mu.Unlock()

	if recorder != nil {
		if err := recorder.Persist(ctx, result); err != nil {
			s.log.Warn("persist quiz result failed",
				zap.String("session", s.id),
				zap.String("result", result.ID),
				zap.Error(err))
		}
	}
	if onComplete != nil {
		onComplete(result)
	}

	s.log.Info("quiz session completed",
		zap.String("session", s.id),
		zap.Int("score", result.Score),
		zap.Int("total", result.TotalQuestions),
		zap.Int("percentage", result.Percentage))
	return &result, nil
}

func (s *Session) buildResultLocked() domain.QuizResult {
	score := 0
	for _, a := range s.answers {
		if a.IsCorrect {
			score++
		}
	}
	total := len(s.questions)
	now := s.now()

	category := domain.MixedCategory
	if s.settings.Category != domain.AnyCategory {
		category = s.questions[s.index].Category
	}

	answers := append([]domain.AnswerRecord(nil), s.answers...)
	return domain.QuizResult{
		ID:             s.newID(),
		PlayerName:     s.playerName,
		Score:          score,
		TotalQuestions: total,
		Percentage:     Percentage(score, total),
		Points:         s.scoring.Points(answers, s.settings.TimeLimit),
		TimeSpent:      int(math.Round(now.Sub(s.startedAt).Seconds())),
		Category:       category,
		Difficulty:     s.settings.Difficulty,
		CompletedAt:    now.UTC(),
		Answers:        answers,
	}
}

// Reset returns the session to Idle from any state and releases any runner
// driving it.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.StateIdle
	s.questions = nil
	s.answers = nil
	s.index = 0
	s.remaining = 0
	s.result = nil
	s.closeDoneLocked()
}

func (s *Session) closeDoneLocked() {
	if !s.doneClosed {
		close(s.done)
		s.doneClosed = true
	}
}

func (s *Session) lookupPlayerName(ctx context.Context) string {
	if s.players == nil {
		return ""
	}
	name, err := s.players.Get(ctx)
	if err != nil {
		s.log.Warn("load player name failed", zap.String("session", s.id), zap.Error(err))
		return ""
	}
	return name
}

// Feedback signals each entry into the Feedback state of the current play-through.
func (s *Session) Feedback() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.feedback
}

// Done is closed when the current play-through completes or is reset.
func (s *Session) Done() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.done
}

// State returns the current phase.
func (s *Session) State() domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentQuestion returns the question on display; false while Idle.
func (s *Session) CurrentQuestion() (domain.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == domain.StateIdle || len(s.questions) == 0 {
		return domain.Question{}, false
	}
	return s.questions[s.index], true
}

// TimeRemaining returns the countdown in seconds; 0 while Idle.
func (s *Session) TimeRemaining() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == domain.StateIdle {
		return 0
	}
	return s.remaining
}

// Progress returns (index+1)/total; 0 while Idle.
func (s *Session) Progress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == domain.StateIdle || len(s.questions) == 0 {
		return 0
	}
	return float64(s.index+1) / float64(len(s.questions))
}

// Index returns the zero-based position of the current question and the total.
func (s *Session) Index() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index, len(s.questions)
}

// Settings returns the settings of the current play-through.
func (s *Session) Settings() domain.QuizSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Answers returns a copy of the answers recorded so far.
func (s *Session) Answers() []domain.AnswerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AnswerRecord(nil), s.answers...)
}

// LastAnswer returns the most recent answer record, if any.
func (s *Session) LastAnswer() (domain.AnswerRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.answers) == 0 {
		return domain.AnswerRecord{}, false
	}
	return s.answers[len(s.answers)-1], true
}

// Result returns the final result once Completed.
func (s *Session) Result() (domain.QuizResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return domain.QuizResult{}, false
	}
	return *s.result, true
}
