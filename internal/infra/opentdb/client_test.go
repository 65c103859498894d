package opentdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"trivia-quiz-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `{
  "response_code": 0,
  "results": [
    {
      "category": "Science &amp; Nature",
      "type": "multiple",
      "difficulty": "easy",
      "question": "What is the chemical symbol for &quot;gold&quot;?",
      "correct_answer": "Au",
      "incorrect_answers": ["Ag", "Gd", "Go"]
    }
  ]
}`

func TestFetchQuestionsBuildsQuery(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	settings := domain.QuizSettings{Category: "17", Difficulty: domain.DifficultyEasy, Amount: 5, TimeLimit: 30}

	qs, err := client.FetchQuestions(context.Background(), settings)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "Au", qs[0].CorrectAnswer)
	assert.Equal(t, []string{"Ag", "Gd", "Go"}, qs[0].IncorrectAnswers)
	assert.Equal(t, map[string]string{"amount": "5", "difficulty": "easy", "type": "multiple", "category": "17"}, got)
}

func TestFetchQuestionsOmitsAnyCategory(t *testing.T) {
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).FetchQuestions(context.Background(), domain.DefaultSettings())
	require.NoError(t, err)
	assert.NotContains(t, rawQuery, "category")
}

func TestFetchQuestionsMapsResponseCodes(t *testing.T) {
	cases := map[string]error{
		`{"response_code":1,"results":[]}`: domain.ErrNoResults,
		`{"response_code":2,"results":[]}`: domain.ErrInvalidParameter,
		`{"response_code":5,"results":[]}`: domain.ErrRateLimited,
		`{"response_code":9,"results":[]}`: domain.ErrUnknownResponse,
	}
	for body, want := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		_, err := NewClient(WithBaseURL(srv.URL)).FetchQuestions(context.Background(), domain.DefaultSettings())
		srv.Close()

		assert.ErrorIs(t, err, want)
		var fetchErr *domain.FetchError
		assert.True(t, errors.As(err, &fetchErr))
	}
}

func TestFetchQuestionsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).FetchQuestions(context.Background(), domain.DefaultSettings())
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
}

func TestCategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"trivia_categories":[{"id":9,"name":"General Knowledge"},{"id":22,"name":"Geography"}]}`))
	}))
	defer srv.Close()

	cats, err := NewClient(WithCategoriesURL(srv.URL)).Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{{ID: 9, Name: "General Knowledge"}, {ID: 22, Name: "Geography"}}, cats)
}
