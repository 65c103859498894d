package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/logger"

	"github.com/spf13/cobra"
)

// NewPlayCmd plays a quiz in the terminal; answers are choice numbers.
func NewPlayCmd(configPath *string) *cobra.Command {
	settings := domain.DefaultSettings()
	var difficulty, name string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Logger)
			defer log.Sync() //nolint:errcheck

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			d, err := buildDeps(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer d.Close()

			if name != "" {
				if err := d.service.SetPlayerName(ctx, name); err != nil {
					return err
				}
			}
			settings.Difficulty = domain.Difficulty(difficulty)
			_, err = runPlay(ctx, d, settings, cmd.InOrStdin(), cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().StringVar(&settings.Category, "category", settings.Category, `category id or "any"`)
	cmd.Flags().StringVar(&difficulty, "difficulty", string(settings.Difficulty), "easy, medium or hard")
	cmd.Flags().IntVar(&settings.Amount, "amount", settings.Amount, "number of questions (5-50)")
	cmd.Flags().IntVar(&settings.TimeLimit, "time-limit", settings.TimeLimit, "seconds per question (10-60)")
	cmd.Flags().StringVar(&name, "name", "", "player name to remember")
	return cmd
}

func runPlay(ctx context.Context, d *deps, settings domain.QuizSettings, in io.Reader, out io.Writer) (*domain.QuizResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session, err := d.service.NewGame(ctx, settings)
	if err != nil {
		return nil, err
	}
	defer d.service.EndGame(session.ID())

	term := &terminal{out: out, shown: make(chan struct{}, 1)}
	opts := append([]app.RunnerOption{}, d.runnerOpts...)
	runner := app.NewRunner(session, append(opts, app.WithListener(term))...)

	type outcome struct {
		result *domain.QuizResult
		err    error
	}
	runDone := make(chan outcome, 1)
	go func() {
		result, err := runner.Run(ctx)
		runDone <- outcome{result, err}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	// input is only read while a question is open
	var input <-chan string
	for {
		select {
		case o := <-runDone:
			return o.result, o.err
		case <-term.shown:
			input = lines
		case line, ok := <-input:
			if !ok {
				input, lines = nil, nil
				continue
			}
			var err error
			if line == "" {
				_, err = session.Skip()
			} else {
				choice, valid := pickChoice(session, line)
				if !valid {
					term.printf("enter a number between 1 and %d, or nothing to skip\n", len(currentChoices(session)))
					continue
				}
				_, err = session.SubmitAnswer(choice)
			}
			if errors.Is(err, domain.ErrAlreadyAnswered) {
				term.printf("too late\n")
			}
			input = nil
		}
	}
}

func currentChoices(session *app.Session) []string {
	q, ok := session.CurrentQuestion()
	if !ok {
		return nil
	}
	return q.Choices
}

// pickChoice maps "1".."n" to a displayed choice.
func pickChoice(session *app.Session, line string) (string, bool) {
	choices := currentChoices(session)
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(choices) {
		return "", false
	}
	return choices[n-1], true
}

// terminal renders runner events as text.
type terminal struct {
	mu    sync.Mutex
	out   io.Writer
	shown chan struct{}
}

func (t *terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

func (t *terminal) QuestionShown(index, total int, q domain.Question, remaining int) {
	var b strings.Builder
	fmt.Fprintf(&b, "\nQuestion %d/%d [%s, %s] %ds\n%s\n", index+1, total, q.Category, q.Difficulty, remaining, q.Text)
	for i, c := range q.Choices {
		fmt.Fprintf(&b, "  %d) %s\n", i+1, c)
	}
	t.printf("%s", b.String())
	select {
	case t.shown <- struct{}{}:
	default:
	}
}

func (t *terminal) TimeRemaining(remaining int) {
	if remaining == 10 || remaining <= 5 {
		t.printf("  %ds left\n", remaining)
	}
}

func (t *terminal) AnswerRecorded(record domain.AnswerRecord) {
	switch {
	case record.IsCorrect:
		t.printf("Correct!\n")
	case record.SelectedAnswer == domain.NoAnswer:
		t.printf("No answer. It was %s\n", record.CorrectAnswer)
	default:
		t.printf("Wrong. It was %s\n", record.CorrectAnswer)
	}
}

func (t *terminal) Completed(result domain.QuizResult) {
	t.printf("\nQuiz complete: %d/%d (%d%%) in %ds, category %s\n",
		result.Score, result.TotalQuestions, result.Percentage, result.TimeSpent, result.Category)
	if result.Points > 0 {
		t.printf("Points: %d\n", result.Points)
	}
}
