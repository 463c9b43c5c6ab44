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

// Inviter dispatches invites for a created quiz.
type Inviter interface {
	Dispatch(ctx context.Context, quizID domain.ID, participants []domain.Participant, resend bool) ([]app.InviteResult, error)
}

// WizardDriver runs the authoring wizard as a line-oriented command prompt.
type WizardDriver struct {
	wizard  *app.Wizard
	inviter Inviter
	in      *bufio.Scanner
	out     io.Writer
}

func NewWizardDriver(wizard *app.Wizard, inviter Inviter, in io.Reader, out io.Writer) *WizardDriver {
	return &WizardDriver{wizard: wizard, inviter: inviter, in: bufio.NewScanner(in), out: out}
}

// Run reads commands until quit or end of input. It returns the id of the last created quiz.
func (d *WizardDriver) Run(ctx context.Context) (domain.ID, error) {
	var created domain.ID
	if _, closed := d.wizard.Step().(app.StepNone); closed {
		if _, err := d.wizard.Open(); err != nil {
			return "", err
		}
	}
	d.render()
	for {
		fmt.Fprintf(d.out, "%s> ", d.wizard.Step().Name())
		if !d.in.Scan() {
			fmt.Fprintln(d.out)
			return created, d.in.Err()
		}
		cmd, arg := splitCommand(d.in.Text())
		if cmd == "" {
			continue
		}
		if cmd == "quit" || cmd == "exit" {
			return created, nil
		}
		if err := ctx.Err(); err != nil {
			return created, err
		}
		id, err := d.dispatch(ctx, cmd, arg)
		if id != "" {
			created = id
		}
		if err != nil {
			if !isUserError(err) {
				fmt.Fprintf(d.out, "error: %v\n", err)
			}
			continue
		}
		d.render()
	}
}

// notified marks an error the wizard already reported through its notifier.
type notified struct{ error }

func (n notified) Unwrap() error { return n.error }

// isUserError reports errors already surfaced through the notifier.
func isUserError(err error) bool {
	var verr *domain.ValidationError
	var n notified
	return errors.As(err, &n) || errors.As(err, &verr)
}

func (d *WizardDriver) dispatch(ctx context.Context, cmd, arg string) (domain.ID, error) {
	draft := d.wizard.Draft()
	switch cmd {
	case "help":
		d.help()
		return "", nil
	case "cancel":
		d.wizard.Cancel()
		return "", nil
	case "open":
		_, err := d.wizard.Open()
		return "", err
	case "new":
		_, err := d.wizard.CreateNew()
		return "", err
	}

	switch step := d.wizard.Step().(type) {
	case app.StepBasic:
		switch cmd {
		case "title":
			draft.SetTitle(arg)
		case "duration":
			n, err := strconv.Atoi(arg)
			if err != nil {
				return "", fmt.Errorf("duration must be a number of seconds")
			}
			draft.SetDuration(n)
		case "start":
			t, err := time.ParseInLocation("2006-01-02 15:04", arg, time.Local)
			if err != nil {
				return "", fmt.Errorf("start must look like 2006-01-02 15:04")
			}
			draft.SetStartTime(t)
		case "next":
			_, err := d.wizard.Next()
			return "", err
		default:
			return "", errUnknownCommand(cmd)
		}
	case app.StepQuestions:
		q := step.Index
		switch cmd {
		case "text":
			draft.SetQuestionText(q, arg)
		case "option":
			n, text, err := indexAndText(arg)
			if err != nil {
				return "", err
			}
			draft.SetOptionText(q, n, text)
		case "correct":
			n, err := parseIndex(arg)
			if err != nil {
				return "", err
			}
			draft.ToggleOptionCorrect(q, n)
		case "add-option":
			draft.AddOption(q)
		case "remove-option":
			n, err := parseIndex(arg)
			if err != nil {
				return "", err
			}
			draft.RemoveOption(q, n)
		case "goto":
			n, err := parseIndex(arg)
			if err != nil {
				return "", err
			}
			_, err = d.wizard.SelectQuestion(n)
			return "", err
		case "remove-question":
			_, err := d.wizard.RemoveQuestion()
			return "", err
		case "next":
			_, err := d.wizard.Next()
			return "", err
		case "back":
			_, err := d.wizard.Back()
			return "", err
		default:
			return "", errUnknownCommand(cmd)
		}
	case app.StepAddAnother:
		switch cmd {
		case "yes", "add":
			_, err := d.wizard.AddAnother()
			return "", err
		case "no", "finish":
			_, err := d.wizard.Finish()
			return "", err
		case "back":
			_, err := d.wizard.Back()
			return "", err
		default:
			return "", errUnknownCommand(cmd)
		}
	case app.StepParticipants:
		switch cmd {
		case "phone":
			n, number, err := indexAndText(arg)
			if err != nil {
				return "", err
			}
			draft.SetParticipantPhone(n, number)
		case "add":
			draft.AddParticipant()
		case "remove":
			n, err := parseIndex(arg)
			if err != nil {
				return "", err
			}
			draft.RemoveParticipant(n)
		case "back":
			_, err := d.wizard.Back()
			return "", err
		case "submit":
			next, err := d.wizard.Submit(ctx)
			if err != nil {
				return "", notified{err}
			}
			return next.(app.StepInvite).QuizID, nil
		default:
			return "", errUnknownCommand(cmd)
		}
	case app.StepInvite:
		switch cmd {
		case "send":
			if d.inviter == nil {
				return "", errors.New("invites are not configured")
			}
			results, err := d.inviter.Dispatch(ctx, step.QuizID, step.Participants, arg == "--resend")
			PrintInviteResults(d.out, results)
			return "", err
		case "done":
			_, err := d.wizard.Done()
			return "", err
		default:
			return "", errUnknownCommand(cmd)
		}
	default:
		return "", errUnknownCommand(cmd)
	}
	return "", nil
}

// SubmitDraft walks a prepared draft through every wizard step and submits it, so drafts
// loaded from files pass the same gates as interactive ones.
func SubmitDraft(ctx context.Context, wizard *app.Wizard, draft domain.QuizDraft) (domain.ID, error) {
	wizard.Cancel()
	wizard.Draft().Load(draft)
	if _, err := wizard.Open(); err != nil {
		return "", err
	}
	if _, err := wizard.Next(); err != nil {
		return "", err
	}
	count := wizard.Draft().QuestionCount()
	for i := 0; i < count; i++ {
		if _, err := wizard.SelectQuestion(i); err != nil {
			return "", err
		}
		if _, err := wizard.Next(); err != nil {
			return "", fmt.Errorf("question %d: %w", i+1, err)
		}
		if i < count-1 {
			if _, err := wizard.Back(); err != nil {
				return "", err
			}
		}
	}
	if _, err := wizard.Finish(); err != nil {
		return "", err
	}
	step, err := wizard.Submit(ctx)
	if err != nil {
		return "", err
	}
	return step.(app.StepInvite).QuizID, nil
}

func (d *WizardDriver) render() {
	snapshot := d.wizard.Draft().Draft()
	switch step := d.wizard.Step().(type) {
	case app.StepNone:
		fmt.Fprintln(d.out, "Wizard closed. Type 'open' to resume, 'new' to start over or 'quit'.")
	case app.StepBasic:
		fmt.Fprintln(d.out, "== Basic quiz information ==")
		fmt.Fprintf(d.out, "Title:    %s\n", snapshot.Title)
		fmt.Fprintf(d.out, "Duration: %d seconds\n", snapshot.DurationInSeconds)
		fmt.Fprintf(d.out, "Starts:   %s\n", snapshot.StartTime.Time().Format("2006-01-02 15:04"))
	case app.StepQuestions:
		q := snapshot.Questions[step.Index]
		fmt.Fprintf(d.out, "== Question %d of %d ==\n", step.Index+1, len(snapshot.Questions))
		fmt.Fprintf(d.out, "Text: %s\n", q.Text)
		for i, o := range q.Options {
			mark := " "
			if o.Correct {
				mark = "x"
			}
			fmt.Fprintf(d.out, "  %d. [%s] %s\n", i+1, mark, o.Text)
		}
	case app.StepAddAnother:
		fmt.Fprintf(d.out, "Question %d saved. Add another question? (yes/no)\n", step.Index+1)
	case app.StepParticipants:
		fmt.Fprintln(d.out, "== Participants ==")
		for i, p := range snapshot.Participants {
			fmt.Fprintf(d.out, "  %d. %s\n", i+1, p.PhoneNumber)
		}
	case app.StepInvite:
		fmt.Fprintf(d.out, "Quiz created with id %s. Type 'send' to invite %d participant(s) or 'done'.\n",
			step.QuizID, len(step.Participants))
	}
}

func (d *WizardDriver) help() {
	fmt.Fprint(d.out, `Commands:
  basic:        title <text> | duration <seconds> | start <YYYY-MM-DD HH:MM> | next
  questions:    text <text> | option <n> <text> | correct <n> | add-option | remove-option <n>
                goto <n> | remove-question | next | back
  add-another:  yes | no | back
  participants: phone <n> <number> | add | remove <n> | submit | back
  invite:       send [--resend] | done
  always:       cancel | open | new | quit
`)
}

// PrintInviteResults lists one line per participant.
func PrintInviteResults(out io.Writer, results []app.InviteResult) {
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(out, "  %-12s %s: %v\n", r.PhoneNumber, r.Status, r.Err)
			continue
		}
		fmt.Fprintf(out, "  %-12s %s\n", r.PhoneNumber, r.Status)
	}
}

func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	cmd, arg, _ := strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

// parseIndex reads a 1-based position as typed by the user.
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("expected a position starting at 1, got %q", arg)
	}
	return n - 1, nil
}

func indexAndText(arg string) (int, string, error) {
	head, text, _ := strings.Cut(arg, " ")
	n, err := parseIndex(head)
	if err != nil {
		return 0, "", err
	}
	return n, strings.TrimSpace(text), nil
}

func errUnknownCommand(cmd string) error {
	return fmt.Errorf("unknown command %q, type 'help'", cmd)
}
