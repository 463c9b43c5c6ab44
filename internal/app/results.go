package app

import (
	"context"
	"log"
	"sync"
	"time"

	"quizapp-client/internal/domain"
)

const (
	DefaultPageSize     = 10
	DefaultPollInterval = 5 * time.Second
)

// ResultsSource reads scoreboard pages.
type ResultsSource interface {
	GetResults(ctx context.Context, quizID domain.ID, page, size int) (domain.ResultsPage, error)
}

// ResultsView is what a results screen renders for one fetch.
type ResultsView struct {
	QuizID    domain.ID          `json:"quizId"`
	Page      domain.ResultsPage `json:"page"`
	Error     string             `json:"error,omitempty"`
	FetchedAt time.Time          `json:"fetchedAt"`
}

// ResultsPoller re-reads the selected scoreboard page on a fixed interval and fans each
// view out to subscribers. It never mutates scores.
type ResultsPoller struct {
	source   ResultsSource
	quizID   domain.ID
	size     int
	interval time.Duration
	now      func() time.Time
	pageCh   chan int

	mu          sync.RWMutex
	selected    int
	current     ResultsView
	subscribers map[chan ResultsView]struct{}
}

func NewResultsPoller(source ResultsSource, quizID domain.ID, size int, interval time.Duration) *ResultsPoller {
	if size <= 0 {
		size = DefaultPageSize
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &ResultsPoller{
		source:      source,
		quizID:      quizID.Canonical(),
		size:        size,
		interval:    interval,
		now:         time.Now,
		pageCh:      make(chan int, 1),
		subscribers: make(map[chan ResultsView]struct{}),
	}
}

// QuizID is the quiz being watched.
func (p *ResultsPoller) QuizID() domain.ID { return p.quizID }

// FetchPage reads one page, drops rows that belong to another quiz and publishes the view.
// A response for a page that is no longer selected is returned but not published.
func (p *ResultsPoller) FetchPage(ctx context.Context, page int) (ResultsView, error) {
	res, err := p.source.GetResults(ctx, p.quizID, page, p.size)
	view := ResultsView{QuizID: p.quizID, FetchedAt: p.now()}
	if err != nil {
		log.Printf("fetch results for quiz %s page %d: %v", p.quizID, page, err)
		view.Page = domain.ResultsPage{Page: page, Size: p.size}
		view.Error = "Failed to load quiz results"
	} else {
		view.Page = filterRows(res, p.quizID)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if page != p.selected {
		return view, err
	}
	if err != nil {
		// keep the last good rows on screen alongside the error
		view.Page = p.current.Page
	}
	p.current = view
	p.broadcastLocked(view)
	return view, err
}

func filterRows(page domain.ResultsPage, quizID domain.ID) domain.ResultsPage {
	rows := make([]domain.ResultRow, 0, len(page.Results))
	for _, row := range page.Results {
		if row.QuizID.Canonical() == quizID {
			rows = append(rows, row)
		}
	}
	page.Results = rows
	return page
}

// Run fetches the selected page immediately and then every interval until ctx ends.
// Page changes trigger an immediate fetch and restart the interval.
func (p *ResultsPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	_, _ = p.FetchPage(ctx, p.Selected())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_, _ = p.FetchPage(ctx, p.Selected())
		case page := <-p.pageCh:
			ticker.Reset(p.interval)
			_, _ = p.FetchPage(ctx, page)
		}
	}
}

// Selected is the page currently shown.
func (p *ResultsPoller) Selected() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selected
}

// Current is the last published view.
func (p *ResultsPoller) Current() ResultsView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// SetPage selects a page, clamped to the known page range, and asks Run for an immediate fetch.
func (p *ResultsPoller) SetPage(page int) int {
	p.mu.Lock()
	last := p.current.Page.TotalPages - 1
	if page > last {
		page = last
	}
	if page < 0 {
		page = 0
	}
	p.selected = page
	p.mu.Unlock()

	select {
	case p.pageCh <- page:
	default:
		select {
		case <-p.pageCh:
		default:
		}
		select {
		case p.pageCh <- page:
		default:
		}
	}
	return page
}

func (p *ResultsPoller) NextPage() int { return p.SetPage(p.Selected() + 1) }

func (p *ResultsPoller) PrevPage() int { return p.SetPage(p.Selected() - 1) }

// Subscribe returns a channel of views starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (p *ResultsPoller) Subscribe() (<-chan ResultsView, func()) {
	ch := make(chan ResultsView, 4)

	p.mu.Lock()
	p.subscribers[ch] = struct{}{}
	if !p.current.FetchedAt.IsZero() {
		ch <- p.current
	}
	p.mu.Unlock()

	cancel := func() {
		p.mu.Lock()
		if _, ok := p.subscribers[ch]; ok {
			delete(p.subscribers, ch)
			close(ch)
		}
		p.mu.Unlock()
	}
	return ch, cancel
}

func (p *ResultsPoller) broadcastLocked(view ResultsView) {
	for ch := range p.subscribers {
		select {
		case ch <- view:
		default:
			// slow subscriber: replace its oldest view instead of blocking the poll loop
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- view:
			default:
			}
		}
	}
}
