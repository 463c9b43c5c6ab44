package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizapp-client/internal/domain"
)

const maxErrorBody = 4 << 10

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s: %s", e.Op, e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.Status, http.StatusText(e.Status))
}

// ServerMessage is the message the server put in its error body, if any.
func (e *APIError) ServerMessage() string { return e.Message }

// Unwrap maps status classes onto domain sentinels.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return domain.ErrQuizNotFound
	case e.Status == http.StatusUnprocessableEntity:
		return domain.ErrInvalidQuizData
	case e.Status >= 500:
		return domain.ErrServer
	default:
		return nil
	}
}

// Client talks to the quiz backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func New(cfg Config) *Client {
	h := &http.Client{Timeout: cfg.Timeout}
	if cfg.Timeout <= 0 {
		h.Timeout = 15 * time.Second
	}
	return NewWithHTTPClient(cfg.BaseURL, h)
}

// NewWithHTTPClient lets callers supply a preconfigured client (tests, proxies).
func NewWithHTTPClient(baseURL string, h *http.Client) *Client {
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), http: h}
}

// CreateQuiz posts a draft and returns the created quiz id.
func (c *Client) CreateQuiz(ctx context.Context, draft domain.QuizDraft) (domain.CreatedQuiz, error) {
	var created domain.CreatedQuiz
	body, err := c.do(ctx, "create quiz", http.MethodPost, "/api/quizzes", draft)
	if err != nil {
		return created, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return created, domain.ErrEmptyResponse
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return created, fmt.Errorf("decode created quiz: %w", err)
	}
	if created.ID == "" {
		return created, domain.ErrMissingID
	}
	return created, nil
}

// GetQuiz fetches a quiz with its questions.
func (c *Client) GetQuiz(ctx context.Context, quizID domain.ID) (domain.Quiz, error) {
	var quiz domain.Quiz
	body, err := c.do(ctx, "get quiz", http.MethodGet, "/api/quizzes/"+url.PathEscape(quizID.String()), nil)
	if err != nil {
		return quiz, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return quiz, fmt.Errorf("get quiz %s: %w", quizID, domain.ErrInvalidQuizData)
	}
	if err := json.Unmarshal(body, &quiz); err != nil {
		return quiz, fmt.Errorf("decode quiz %s: %v: %w", quizID, err, domain.ErrInvalidQuizData)
	}
	if quiz.ID == "" {
		quiz.ID = quizID
	}
	return quiz, nil
}

// LoadQuiz lets the client act as the loader behind the quiz caches.
func (c *Client) LoadQuiz(ctx context.Context, quizID domain.ID) (domain.Quiz, error) {
	return c.GetQuiz(ctx, quizID)
}

// SubmitResponse posts one answer; any 2xx is success.
func (c *Client) SubmitResponse(ctx context.Context, response domain.ResponseSubmission) error {
	_, err := c.do(ctx, "submit response", http.MethodPost, "/api/responses", response)
	return err
}

// GetResults reads one scoreboard page.
func (c *Client) GetResults(ctx context.Context, quizID domain.ID, page, size int) (domain.ResultsPage, error) {
	var res domain.ResultsPage
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	path := "/api/responses/results/" + url.PathEscape(quizID.String()) + "?" + q.Encode()
	body, err := c.do(ctx, "get results", http.MethodGet, path, nil)
	if err != nil {
		return res, err
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return res, fmt.Errorf("decode results: %w", err)
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, &APIError{Op: op, Status: res.StatusCode, Message: errorMessage(raw)}
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}
	return body, nil
}

// errorMessage pulls a human message out of the common error body shapes.
func errorMessage(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		return body.Error
	}
	if raw[0] == '{' || raw[0] == '<' {
		return ""
	}
	return string(raw)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
