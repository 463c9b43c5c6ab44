package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"quizapp-client/internal/app"
	"quizapp-client/internal/domain"
)

// ResultsHandler streams scoreboard pages to websocket clients. Every connection gets its own
// poller so page selection stays per viewer.
type ResultsHandler struct {
	source   app.ResultsSource
	pageSize int
	interval time.Duration
	upgrader websocket.Upgrader
}

func NewResultsHandler(source app.ResultsSource, pageSize int, interval time.Duration) *ResultsHandler {
	return &ResultsHandler{
		source:   source,
		pageSize: pageSize,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type pagePayload struct {
	Page *int   `json:"page"`
	Move string `json:"move"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// Routes mounts the feed and a health probe.
func (h *ResultsHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws/results", h.ServeWS)
	return mux
}

// ServeWS upgrades the request and pushes a "results" message for every fetched page.
// Clients change pages with {"type":"page","payload":{"page":n}} or {"payload":{"move":"next"}}.
func (h *ResultsHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := domain.ID(r.URL.Query().Get("quizId"))
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}
	wantPage := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "page must be a non-negative integer", http.StatusBadRequest)
			return
		}
		wantPage = n
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	poller := app.NewResultsPoller(h.source, quizID, h.pageSize, h.interval)
	views, unsubscribe := poller.Subscribe()
	defer unsubscribe()
	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		_ = poller.Run(ctx)
	}()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	viewsDone := make(chan struct{})

	// one writer goroutine; gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// unblocks the read loop below
				conn.Close()
				return
			}
		}
	}()

	go func() {
		defer close(viewsDone)
		pending := wantPage
		for {
			select {
			case view, ok := <-views:
				if !ok {
					return
				}
				// the requested page can only be selected once the page count is known
				if pending > 0 {
					poller.SetPage(pending)
					pending = 0
				}
				select {
				case send <- outboundMessage[any]{Type: "results", Payload: view}:
				case <-writerDone:
					return
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if inbound.Type != "page" {
			enqueue(send, writerDone, errorMessage("unsupported message type"))
			continue
		}
		var payload pagePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			enqueue(send, writerDone, errorMessage("invalid page payload"))
			continue
		}
		switch {
		case payload.Page != nil:
			poller.SetPage(*payload.Page)
		case payload.Move == "next":
			poller.NextPage()
		case payload.Move == "prev":
			poller.PrevPage()
		default:
			enqueue(send, writerDone, errorMessage("page or move required"))
		}
	}

	cancel()
	<-pollDone
	close(closeSignals)
	<-viewsDone
	close(send)
	<-writerDone
}

func errorMessage(text string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: text}}
}

// enqueue hands msg to the writer and reports false once the writer has stopped.
func enqueue(send chan<- outboundMessage[any], writerDone <-chan struct{}, msg outboundMessage[any]) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}
