package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

type WSHandler struct {
	service    *app.QuizService
	upgrader   websocket.Upgrader
	runnerOpts []app.RunnerOption
	log        *zap.Logger
}

// WSOption customizes a WSHandler.
type WSOption func(*WSHandler)

// WithRunnerOptions sets the tick and hold timing of every game.
func WithRunnerOptions(opts ...app.RunnerOption) WSOption {
	return func(h *WSHandler) { h.runnerOpts = append(h.runnerOpts, opts...) }
}

func WithLogger(log *zap.Logger) WSOption {
	return func(h *WSHandler) { h.log = log }
}

func NewWSHandler(service *app.QuizService, opts ...WSOption) *WSHandler {
	h := &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// questionPayload is what the player sees; the correct answer stays server side.
type questionPayload struct {
	Index         int               `json:"index"`
	Total         int               `json:"total"`
	Question      string            `json:"question"`
	Category      string            `json:"category"`
	Difficulty    domain.Difficulty `json:"difficulty"`
	Choices       []string          `json:"choices"`
	TimeRemaining int               `json:"timeRemaining"`
	Progress      float64           `json:"progress"`
}

type tickPayload struct {
	TimeRemaining int `json:"timeRemaining"`
}

// ServeWS plays one game per connection. Settings come from the query
// string; missing values fall back to the defaults.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	settings, err := settingsFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := settings.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session, err := h.service.NewGame(ctx, settings)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.EndGame(session.ID())

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	runnerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	emit := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-closeSignals:
		case <-writerDone:
		}
	}

	listener := &wsListener{session: session, emit: emit}
	runner := app.NewRunner(session, append([]app.RunnerOption{
		app.WithListener(listener),
		app.WithRunnerLogger(h.log),
	}, h.runnerOpts...)...)

	go func() {
		defer close(runnerDone)
		if _, err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			h.log.Debug("quiz runner stopped", zap.String("session", session.ID()), zap.Error(err))
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			if _, err := session.SubmitAnswer(payload.Answer); err != nil {
				emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
			}
		case "skip":
			if _, err := session.Skip(); err != nil {
				emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
			}
		default:
			emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	cancel()
	<-runnerDone
	close(closeSignals)
	close(send)
	<-writerDone
}

func settingsFromQuery(r *http.Request) (domain.QuizSettings, error) {
	settings := domain.DefaultSettings()
	q := r.URL.Query()
	if v := q.Get("category"); v != "" {
		settings.Category = v
	}
	if v := q.Get("difficulty"); v != "" {
		settings.Difficulty = domain.Difficulty(v)
	}
	if v := q.Get("amount"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return settings, errors.New("amount must be a number")
		}
		settings.Amount = n
	}
	if v := q.Get("timeLimit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return settings, errors.New("timeLimit must be a number")
		}
		settings.TimeLimit = n
	}
	return settings, nil
}

// wsListener turns runner callbacks into outbound messages.
type wsListener struct {
	session *app.Session
	emit    func(outboundMessage[any])
}

func (l *wsListener) QuestionShown(index, total int, q domain.Question, remaining int) {
	l.emit(outboundMessage[any]{Type: "question", Payload: questionPayload{
		Index:         index,
		Total:         total,
		Question:      q.Text,
		Category:      q.Category,
		Difficulty:    q.Difficulty,
		Choices:       q.Choices,
		TimeRemaining: remaining,
		Progress:      l.session.Progress(),
	}})
}

func (l *wsListener) TimeRemaining(remaining int) {
	l.emit(outboundMessage[any]{Type: "tick", Payload: tickPayload{TimeRemaining: remaining}})
}

func (l *wsListener) AnswerRecorded(record domain.AnswerRecord) {
	l.emit(outboundMessage[any]{Type: "feedback", Payload: record})
}

func (l *wsListener) Completed(result domain.QuizResult) {
	l.emit(outboundMessage[any]{Type: "completed", Payload: result})
}
