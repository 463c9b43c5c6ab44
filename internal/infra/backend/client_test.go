package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizapp-client/internal/domain"
)

func TestCreateQuizPostsDraftAndReturnsID(t *testing.T) {
	var posted map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/quizzes" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("expected request id header")
		}
		_ = json.NewDecoder(r.Body).Decode(&posted)
		w.Write([]byte(`{"id": 42, "title": "Geography"}`))
	}))
	defer server.Close()

	client := NewWithHTTPClient(server.URL+"/", server.Client())
	draft := domain.QuizDraft{
		Title:             "Geography",
		DurationInSeconds: 60,
		StartTime:         domain.StartTime(time.Date(2024, 5, 1, 12, 30, 15, 0, time.Local)),
		Questions: []domain.Question{{
			Text:    "Capital of France?",
			Options: []domain.Option{{Text: "Paris", Correct: true}, {Text: "Lyon"}},
		}},
		Participants: []domain.Participant{{PhoneNumber: "0612345678"}},
	}

	created, err := client.CreateQuiz(context.Background(), draft)
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if created.ID != "42" {
		t.Fatalf("expected id 42, got %q", created.ID)
	}
	if posted["startTime"] != "2024-05-01T12:30:15" {
		t.Fatalf("expected seconds-precision start time, got %v", posted["startTime"])
	}
	if posted["closed"] != false {
		t.Fatalf("expected closed=false, got %v", posted["closed"])
	}
	questions := posted["questions"].([]any)
	if _, hasID := questions[0].(map[string]any)["id"]; hasID {
		t.Fatalf("draft questions must not carry an id")
	}
}

func TestCreateQuizRejectsEmptyBodyAndMissingID(t *testing.T) {
	body := ""
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()
	client := NewWithHTTPClient(server.URL, server.Client())

	if _, err := client.CreateQuiz(context.Background(), domain.QuizDraft{}); !errors.Is(err, domain.ErrEmptyResponse) {
		t.Fatalf("expected empty response, got %v", err)
	}
	body = `{"title":"x"}`
	if _, err := client.CreateQuiz(context.Background(), domain.QuizDraft{}); !errors.Is(err, domain.ErrMissingID) {
		t.Fatalf("expected missing id, got %v", err)
	}
}

func TestErrorsCarryServerMessageAndSentinels(t *testing.T) {
	status := http.StatusBadRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(`{"message":"Duration must be at least 30 seconds"}`))
	}))
	defer server.Close()
	client := NewWithHTTPClient(server.URL, server.Client())

	_, err := client.CreateQuiz(context.Background(), domain.QuizDraft{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.ServerMessage() != "Duration must be at least 30 seconds" {
		t.Fatalf("expected api error with message, got %v", err)
	}

	status = http.StatusNotFound
	if _, err := client.GetQuiz(context.Background(), "9"); !errors.Is(err, domain.ErrQuizNotFound) || !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	status = http.StatusBadGateway
	if _, err := client.GetQuiz(context.Background(), "9"); !errors.Is(err, domain.ErrServer) {
		t.Fatalf("expected server error, got %v", err)
	}
}

func TestGetQuizDecodesQuestionsAndFlagsBadPayload(t *testing.T) {
	payload := `{"id":7,"title":"Geography","durationInSeconds":60,"startTime":"2024-05-01T12:00:00","closed":false,
		"questions":[{"id":11,"text":"Capital of France?","options":[{"text":"Paris"},{"text":"Lyon"}]}],
		"participants":[{"phoneNumber":"0612345678"}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/quizzes/7" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(payload))
	}))
	defer server.Close()
	client := NewWithHTTPClient(server.URL, server.Client())

	quiz, err := client.LoadQuiz(context.Background(), "7")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.ID != "7" || quiz.Questions[0].ID != "11" || len(quiz.Questions[0].Options) != 2 {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	if got := quiz.StartTime.Time().Format(domain.StartTimeLayout); got != "2024-05-01T12:00:00" {
		t.Fatalf("unexpected start time %s", got)
	}

	payload = `not json`
	if _, err := client.GetQuiz(context.Background(), "7"); !errors.Is(err, domain.ErrInvalidQuizData) {
		t.Fatalf("expected invalid data, got %v", err)
	}
}

func TestSubmitResponseAndGetResults(t *testing.T) {
	var response map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/responses":
			_ = json.NewDecoder(r.Body).Decode(&response)
			w.WriteHeader(http.StatusCreated)
		case "/api/responses/results/7":
			if r.URL.Query().Get("page") != "1" || r.URL.Query().Get("size") != "10" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{"page":1,"size":10,"totalPages":2,"totalResults":11,
				"results":[{"participantId":3,"username":"Alex","score":1,"quizId":7,"lastSubmittedAt":"2024-05-01T12:01:00","questionIds":[11]}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()
	client := NewWithHTTPClient(server.URL, server.Client())

	err := client.SubmitResponse(context.Background(), domain.ResponseSubmission{
		PhoneNumber: "0612345678", Username: "Alex", QuestionID: "11", SelectedAnswer: "Paris", QuizID: "7",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if response["questionId"] != float64(11) || response["quizId"] != float64(7) || response["selectedAnswer"] != "Paris" {
		t.Fatalf("unexpected response body %+v", response)
	}

	page, err := client.GetResults(context.Background(), "7", 1, 10)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if page.TotalPages != 2 || len(page.Results) != 1 || page.Results[0].QuizID != "7" || page.Results[0].QuestionIDs[0] != "11" {
		t.Fatalf("unexpected page %+v", page)
	}
}
