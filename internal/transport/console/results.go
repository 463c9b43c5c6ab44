package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"quizapp-client/internal/app"
)

// RenderResults writes one scoreboard page as an aligned table.
func RenderResults(out io.Writer, view app.ResultsView, now time.Time) {
	page := view.Page
	total := page.TotalPages
	if total < 1 {
		total = 1
	}
	fmt.Fprintf(out, "Results for quiz %s (page %d of %d, %s participants)\n",
		view.QuizID, page.Page+1, total, humanize.Comma(int64(page.TotalResults)))
	if view.Error != "" {
		fmt.Fprintf(out, "! %s\n", view.Error)
	}
	if len(page.Results) == 0 {
		fmt.Fprintln(out, "No responses yet.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tUSERNAME\tSCORE\tANSWERED\tLAST ANSWER")
	for i, row := range page.Results {
		last := "-"
		if t := row.LastSubmittedAt.Time(); !t.IsZero() {
			last = humanize.RelTime(t, now, "ago", "from now")
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n",
			page.Page*page.Size+i+1, row.Username, row.Score, len(row.QuestionIDs), last)
	}
	tw.Flush()
	if !view.FetchedAt.IsZero() {
		fmt.Fprintf(out, "updated %s\n", humanize.RelTime(view.FetchedAt, now, "ago", "from now"))
	}
}

// WatchResults redraws every published view and maps n, p and q commands onto pagination.
// It returns when q is typed, input ends or ctx is done.
func WatchResults(ctx context.Context, poller *app.ResultsPoller, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- poller.Run(ctx) }()

	views, unsubscribe := poller.Subscribe()
	defer unsubscribe()
	lines := readLines(ctx, in)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			return err
		case view, ok := <-views:
			if !ok {
				return nil
			}
			fmt.Fprintln(out)
			RenderResults(out, view, time.Now())
			fmt.Fprint(out, "[n]ext [p]rev [q]uit> ")
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "n", "next":
				poller.NextPage()
			case "p", "prev":
				poller.PrevPage()
			case "q", "quit":
				return nil
			}
		}
	}
}
