package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func offlineConfig() config.Config {
	var cfg config.Config
	cfg.Trivia.Offline = true
	cfg.Quiz.TickInterval = "1h"
	cfg.Quiz.FeedbackHold = "1ms"
	return cfg
}

func TestRunPlayAnswersByNumber(t *testing.T) {
	ctx := context.Background()
	d, err := buildDeps(ctx, offlineConfig(), zap.NewNop())
	require.NoError(t, err)
	defer d.Close()

	settings := domain.DefaultSettings()
	settings.Amount = 5
	in := strings.NewReader("1\n9\n2\n\n3\n4\n")
	var out bytes.Buffer

	result, err := runPlay(ctx, d, settings, in, &out)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 5, result.TotalQuestions)
	require.Len(t, result.Answers, 5)
	assert.Equal(t, domain.NoAnswer, result.Answers[2].SelectedAnswer)

	text := out.String()
	assert.Contains(t, text, "Question 1/5")
	assert.Contains(t, text, "enter a number between 1 and 4")
	assert.Contains(t, text, "Quiz complete")

	entries, err := d.service.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRunPlayRejectsInvalidSettings(t *testing.T) {
	ctx := context.Background()
	d, err := buildDeps(ctx, offlineConfig(), zap.NewNop())
	require.NoError(t, err)
	defer d.Close()

	settings := domain.DefaultSettings()
	settings.Amount = 1
	_, err = runPlay(ctx, d, settings, strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrInvalidSettings)
}

func TestBuildDepsRejectsUnknownScoring(t *testing.T) {
	cfg := offlineConfig()
	cfg.Quiz.Scoring = "elo"
	_, err := buildDeps(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestBuildDepsWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := offlineConfig()
	cfg.Redis.Addr = mr.Addr()

	ctx := context.Background()
	d, err := buildDeps(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.service.SetPlayerName(ctx, "Ada"))
	got, err := mr.Get("quiz_player_name")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got)
}

func TestPrintLeaderboard(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printLeaderboard(&out, nil))
	assert.Equal(t, "no results yet\n", out.String())

	out.Reset()
	entries := []domain.LeaderboardEntry{{
		PlayerName: "Ada", Score: 4, TotalQuestions: 5, Percentage: 80,
		Category: domain.MixedCategory, Difficulty: domain.DifficultyEasy,
		CompletedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, printLeaderboard(&out, entries))
	assert.Contains(t, out.String(), "Ada")
	assert.Contains(t, out.String(), "4/5")
	assert.Contains(t, out.String(), "80%")
	assert.Contains(t, out.String(), "2024-03-01")
}

func TestLeaderboardCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trivia:\n  offline: true\nlogger:\n  level: error\n"), 0o600))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"leaderboard", "--config", path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "no results yet")
}
