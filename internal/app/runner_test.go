package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// answeringListener answers each question as soon as it is shown.
type answeringListener struct {
	session *app.Session
	answers map[string]string

	mu        sync.Mutex
	shown     []int
	recorded  []domain.AnswerRecord
	completed int
	ticks     int
}

func (l *answeringListener) QuestionShown(index, _ int, q domain.Question, _ int) {
	l.mu.Lock()
	l.shown = append(l.shown, index)
	l.mu.Unlock()
	if answer, ok := l.answers[q.Text]; ok {
		_, _ = l.session.SubmitAnswer(answer)
	}
}

func (l *answeringListener) TimeRemaining(int) {
	l.mu.Lock()
	l.ticks++
	l.mu.Unlock()
}

func (l *answeringListener) AnswerRecorded(rec domain.AnswerRecord) {
	l.mu.Lock()
	l.recorded = append(l.recorded, rec)
	l.mu.Unlock()
}

func (l *answeringListener) Completed(domain.QuizResult) {
	l.mu.Lock()
	l.completed++
	l.mu.Unlock()
}

func TestRunnerDrivesSessionToCompletion(t *testing.T) {
	s := app.NewSession("s1")
	require.NoError(t, s.Start(context.Background(), threeQuestions(), settings(3)))

	listener := &answeringListener{session: s, answers: map[string]string{
		"Capital of France?": "Paris",
		// Capital of Italy? is left to time out.
		"Capital of Spain?": "Seville",
	}}
	runner := app.NewRunner(s,
		app.WithTickInterval(2*time.Millisecond),
		app.WithFeedbackHold(5*time.Millisecond),
		app.WithListener(listener),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := runner.Run(ctx)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 33, result.Percentage)
	require.Len(t, result.Answers, 3)
	assert.Equal(t, domain.NoAnswer, result.Answers[1].SelectedAnswer)
	assert.Equal(t, 3, result.Answers[1].TimeSpent)

	listener.mu.Lock()
	defer listener.mu.Unlock()
	assert.Equal(t, []int{0, 1, 2}, listener.shown)
	assert.Len(t, listener.recorded, 3)
	assert.Equal(t, 1, listener.completed)
	assert.Positive(t, listener.ticks)
}

func TestRunnerStopsOnCancel(t *testing.T) {
	s := app.NewSession("s1")
	require.NoError(t, s.Start(context.Background(), threeQuestions(), settings(30)))
	runner := app.NewRunner(s, app.WithTickInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := runner.Run(ctx)
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}

	// No orphaned timer keeps mutating the session.
	remaining := s.TimeRemaining()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, remaining, s.TimeRemaining())
}

func TestRunnerStopsOnReset(t *testing.T) {
	s := app.NewSession("s1")
	require.NoError(t, s.Start(context.Background(), threeQuestions(), settings(30)))
	runner := app.NewRunner(s, app.WithTickInterval(time.Millisecond))

	errCh := make(chan error, 1)
	go func() {
		_, err := runner.Run(context.Background())
		errCh <- err
	}()

	time.Sleep(5 * time.Millisecond)
	s.Reset()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after reset")
	}
}

func TestRunnerRequiresStartedSession(t *testing.T) {
	_, err := app.NewRunner(app.NewSession("s1")).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
