package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"quizapp-client/internal/app"
	"quizapp-client/internal/domain"
)

// RespondentDriver plays a timed quiz in the terminal. Input is read on its own goroutine so the
// countdown can end the session while the prompt is waiting.
type RespondentDriver struct {
	flow  *app.RespondentFlow
	in    io.Reader
	out   io.Writer
	watch time.Duration
}

func NewRespondentDriver(flow *app.RespondentFlow, in io.Reader, out io.Writer) *RespondentDriver {
	return &RespondentDriver{flow: flow, in: in, out: out, watch: 200 * time.Millisecond}
}

// Run loads the quiz, asks for a username and then takes one answer per question until the
// session completes, the time runs out or ctx ends. The final phase is returned.
func (d *RespondentDriver) Run(ctx context.Context) (app.Phase, error) {
	if err := d.flow.Load(ctx); err != nil {
		return d.flow.Snapshot().Phase, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := readLines(ctx, d.in)

	snap := d.flow.Snapshot()
	fmt.Fprintf(d.out, "== %s ==\nYou have %s to answer %d question(s).\n",
		snap.Title, formatSeconds(snap.TimeLeft), snap.QuestionCount)
	if err := d.askUsername(ctx, lines); err != nil {
		return d.flow.Snapshot().Phase, err
	}

	go d.flow.RunCountdown(ctx)

	ticker := time.NewTicker(d.watch)
	defer ticker.Stop()
	shown := -1
	for {
		snap := d.flow.Snapshot()
		if snap.Phase.Terminal() {
			d.renderEnd(snap)
			return snap.Phase, nil
		}
		if snap.QuestionIndex != shown {
			d.renderQuestion(snap)
			shown = snap.QuestionIndex
		}
		select {
		case <-ctx.Done():
			return d.flow.Snapshot().Phase, ctx.Err()
		case <-ticker.C:
		case line, ok := <-lines:
			if !ok {
				return d.flow.Snapshot().Phase, io.ErrUnexpectedEOF
			}
			d.handleAnswer(ctx, line)
		}
	}
}

func (d *RespondentDriver) askUsername(ctx context.Context, lines <-chan string) error {
	for {
		fmt.Fprint(d.out, "Username: ")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return io.ErrUnexpectedEOF
			}
			err := d.flow.Start(line)
			switch {
			case err == nil:
				return nil
			case errors.Is(err, domain.ErrEmptyUsername):
				continue
			default:
				return err
			}
		}
	}
}

func (d *RespondentDriver) handleAnswer(ctx context.Context, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if line == "time" {
		fmt.Fprintf(d.out, "%s left\n", formatSeconds(d.flow.Snapshot().TimeLeft))
		return
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		fmt.Fprintln(d.out, "Type the number of your answer.")
		return
	}
	err = d.flow.Answer(ctx, n-1)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrOptionNotFound):
		fmt.Fprintln(d.out, "That answer does not exist.")
	case errors.Is(err, domain.ErrSubmissionInFlight):
		fmt.Fprintln(d.out, "Still sending your previous answer.")
	}
}

func (d *RespondentDriver) renderQuestion(snap app.RespondentSnapshot) {
	fmt.Fprintf(d.out, "\nQuestion %d of %d (%s left)\n%s\n",
		snap.QuestionIndex+1, snap.QuestionCount, formatSeconds(snap.TimeLeft), snap.Question.Text)
	for i, o := range snap.Question.Options {
		fmt.Fprintf(d.out, "  %d. %s\n", i+1, o.Text)
	}
	fmt.Fprint(d.out, "Answer: ")
}

func (d *RespondentDriver) renderEnd(snap app.RespondentSnapshot) {
	fmt.Fprintln(d.out)
	switch snap.Phase {
	case app.PhaseCompleted:
		fmt.Fprintf(d.out, "Well done %s, all %d answers were submitted.\n", snap.Username, snap.QuestionCount)
	case app.PhaseTimeUp:
		fmt.Fprintf(d.out, "Time is up. %d of %d questions answered.\n", snap.QuestionIndex, snap.QuestionCount)
	}
}

// readLines forwards input lines until EOF or ctx ends, then closes the channel.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func formatSeconds(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
