// Package opentdb fetches question sets from the Open Trivia Database.
package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"trivia-quiz-service/internal/domain"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL       = "https://opentdb.com/api.php"
	DefaultCategoriesURL = "https://opentdb.com/api_category.php"
)

// Client implements app.QuestionSource over HTTP.
type Client struct {
	baseURL       string
	categoriesURL string
	http          *http.Client
	log           *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithCategoriesURL(u string) Option {
	return func(c *Client) { c.categoriesURL = u }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:       DefaultBaseURL,
		categoriesURL: DefaultCategoriesURL,
		http:          &http.Client{Timeout: 10 * time.Second},
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type questionsResponse struct {
	ResponseCode int                  `json:"response_code"`
	Results      []domain.RawQuestion `json:"results"`
}

type categoriesResponse struct {
	TriviaCategories []domain.Category `json:"trivia_categories"`
}

// FetchQuestions requests a multiple-choice set. A non-zero response code is
// returned as a *domain.FetchError with a descriptive cause.
func (c *Client) FetchQuestions(ctx context.Context, settings domain.QuizSettings) ([]domain.RawQuestion, error) {
	params := url.Values{}
	params.Set("amount", strconv.Itoa(settings.Amount))
	params.Set("difficulty", string(settings.Difficulty))
	params.Set("type", "multiple")
	if settings.Category != domain.AnyCategory {
		params.Set("category", settings.Category)
	}

	var body questionsResponse
	if err := c.getJSON(ctx, c.baseURL+"?"+params.Encode(), &body); err != nil {
		return nil, err
	}
	if err := domain.ResponseCodeError(body.ResponseCode); err != nil {
		c.log.Warn("trivia api rejected request",
			zap.Int("response_code", body.ResponseCode),
			zap.String("params", params.Encode()))
		return nil, err
	}
	return body.Results, nil
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var body categoriesResponse
	if err := c.getJSON(ctx, c.categoriesURL, &body); err != nil {
		return nil, err
	}
	if body.TriviaCategories == nil {
		return []domain.Category{}, nil
	}
	return body.TriviaCategories, nil
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", domain.ErrFetchFailed, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode body: %v", domain.ErrFetchFailed, err)
	}
	return nil
}
