package app_test

import (
	"context"
	"errors"
	"testing"

	"quizapp-client/internal/app"
	"quizapp-client/internal/domain"
)

type creatorFunc func(ctx context.Context, draft domain.QuizDraft) (domain.ID, error)

func (f creatorFunc) Submit(ctx context.Context, draft domain.QuizDraft) (domain.ID, error) {
	return f(ctx, draft)
}

func newWizard(creator app.QuizCreator) (*app.Wizard, *recordingNotifier) {
	n := &recordingNotifier{}
	return app.NewWizard(newStore(), creator, n), n
}

func mustStep(t *testing.T, step app.Step, err error, want app.Step) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step != want {
		t.Fatalf("expected step %#v, got %#v", want, step)
	}
}

func fillQuestion(w *app.Wizard, q int) {
	d := w.Draft()
	d.SetQuestionText(q, "Question")
	d.SetOptionText(q, 0, "right")
	d.SetOptionText(q, 1, "wrong")
	d.ToggleOptionCorrect(q, 0)
}

func TestWizardHappyPath(t *testing.T) {
	var got domain.QuizDraft
	w, n := newWizard(creatorFunc(func(_ context.Context, d domain.QuizDraft) (domain.ID, error) {
		got = d
		return "17", nil
	}))

	step, err := w.Open()
	mustStep(t, step, err, app.StepBasic{})
	w.Draft().SetTitle("Geography")
	step, err = w.Next()
	mustStep(t, step, err, app.StepQuestions{Index: 0})
	fillQuestion(w, 0)
	step, err = w.Next()
	mustStep(t, step, err, app.StepAddAnother{Index: 0})
	step, err = w.AddAnother()
	mustStep(t, step, err, app.StepQuestions{Index: 1})
	fillQuestion(w, 1)
	step, err = w.Next()
	mustStep(t, step, err, app.StepAddAnother{Index: 1})
	step, err = w.Finish()
	mustStep(t, step, err, app.StepParticipants{})
	w.Draft().SetParticipantPhone(0, "0612345678")

	step, err = w.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	invite, ok := step.(app.StepInvite)
	if !ok || invite.QuizID != "17" || len(invite.Participants) != 1 {
		t.Fatalf("expected invite step for quiz 17, got %#v", step)
	}
	if got.Title != "Geography" || len(got.Questions) != 2 {
		t.Fatalf("unexpected submitted draft %+v", got)
	}
	if fresh := w.Draft().Draft(); fresh.Title != "" || len(fresh.Questions) != 1 {
		t.Fatalf("draft must reset after success, got %+v", fresh)
	}
	if !n.has("Quiz created successfully!") {
		t.Fatalf("expected success notice, got %v", n.messages())
	}
	step, err = w.Done()
	mustStep(t, step, err, app.StepNone{})
}

func TestWizardCreateNewFromInvite(t *testing.T) {
	w, _ := newWizard(creatorFunc(func(context.Context, domain.QuizDraft) (domain.ID, error) {
		return "18", nil
	}))
	w.Open()
	w.Draft().SetTitle("Geography")
	w.Next()
	fillQuestion(w, 0)
	w.Next()
	w.Finish()
	w.Draft().SetParticipantPhone(0, "0612345678")
	step, err := w.Submit(context.Background())
	if _, ok := step.(app.StepInvite); !ok || err != nil {
		t.Fatalf("expected invite step, got %#v %v", step, err)
	}

	step, err = w.CreateNew()
	mustStep(t, step, err, app.StepBasic{})
	if fresh := w.Draft().Draft(); fresh.Title != "" || len(fresh.Participants) != 1 || fresh.Participants[0].PhoneNumber != "" {
		t.Fatalf("expected a fresh draft, got %+v", fresh)
	}
}

func TestWizardNextBlocksIncompleteQuestion(t *testing.T) {
	w, n := newWizard(nil)
	w.Open()
	w.Next()
	step, err := w.Next()
	if !errors.Is(err, domain.ErrEmptyQuestion) {
		t.Fatalf("expected empty question error, got %v", err)
	}
	if step != (app.StepQuestions{Index: 0}) {
		t.Fatalf("step must not change, got %#v", step)
	}
	if len(n.messages()) != 1 {
		t.Fatalf("expected one error notice, got %v", n.messages())
	}
}

func TestWizardBackIsUnconditional(t *testing.T) {
	w, _ := newWizard(nil)
	w.Open()
	w.Next()
	fillQuestion(w, 0)
	w.Next()
	w.AddAnother()
	step, err := w.Back()
	mustStep(t, step, err, app.StepBasic{})

	w.Next()
	w.Next()
	step, err = w.Back()
	mustStep(t, step, err, app.StepQuestions{Index: 0})

	w.Next()
	w.Finish()
	step, err = w.Back()
	mustStep(t, step, err, app.StepQuestions{Index: 1})
}

func TestWizardRejectsOutOfStepActions(t *testing.T) {
	w, _ := newWizard(nil)
	if _, err := w.Next(); !errors.Is(err, app.ErrInvalidTransition) {
		t.Fatalf("next from none: %v", err)
	}
	if _, err := w.Submit(context.Background()); !errors.Is(err, app.ErrInvalidTransition) {
		t.Fatalf("submit from none: %v", err)
	}
	w.Open()
	if _, err := w.Finish(); !errors.Is(err, app.ErrInvalidTransition) {
		t.Fatalf("finish from basic: %v", err)
	}
	if _, err := w.Open(); !errors.Is(err, app.ErrInvalidTransition) {
		t.Fatalf("open twice: %v", err)
	}
}

func TestWizardCancelKeepsDraftAndCreateNewResets(t *testing.T) {
	w, _ := newWizard(nil)
	w.Open()
	w.Draft().SetTitle("Keep me")
	if step := w.Cancel(); step != (app.StepNone{}) {
		t.Fatalf("cancel must close the wizard, got %#v", step)
	}
	w.Open()
	if got := w.Draft().Draft().Title; got != "Keep me" {
		t.Fatalf("cancel must keep the draft, got %q", got)
	}
	step, err := w.CreateNew()
	mustStep(t, step, err, app.StepBasic{})
	if got := w.Draft().Draft().Title; got != "" {
		t.Fatalf("create new must reset the draft, got %q", got)
	}
}

func TestWizardRemoveQuestionClampsIndex(t *testing.T) {
	w, _ := newWizard(nil)
	w.Open()
	w.Next()
	fillQuestion(w, 0)
	w.Next()
	w.AddAnother()
	step, err := w.RemoveQuestion()
	mustStep(t, step, err, app.StepQuestions{Index: 0})
	step, err = w.RemoveQuestion()
	mustStep(t, step, err, app.StepQuestions{Index: 0})
	if w.Draft().QuestionCount() != 1 {
		t.Fatalf("last question must survive")
	}
	if _, err := w.SelectQuestion(3); !errors.Is(err, app.ErrInvalidTransition) {
		t.Fatalf("expected out-of-range select to fail, got %v", err)
	}
}

func TestWizardSubmitValidationStaysOnParticipants(t *testing.T) {
	called := false
	w, n := newWizard(creatorFunc(func(context.Context, domain.QuizDraft) (domain.ID, error) {
		called = true
		return "1", nil
	}))
	w.Open()
	w.Next()
	fillQuestion(w, 0)
	w.Next()
	w.Finish()
	w.Draft().SetParticipantPhone(0, "0712345678")

	step, err := w.Submit(context.Background())
	if step != (app.StepParticipants{}) || called {
		t.Fatalf("expected to stay on participants without posting, got %#v called=%v", step, called)
	}
	var first *domain.ValidationError
	if !errors.As(err, &first) || !errors.Is(first, domain.ErrEmptyTitle) {
		t.Fatalf("expected first violation to be the title, got %v", err)
	}
	var all domain.ValidationErrors
	if !errors.As(err, &all) || len(all) != 2 {
		t.Fatalf("expected both violations reachable, got %v", err)
	}
	if msgs := n.messages(); len(msgs) != 1 || msgs[0] != first.Error() {
		t.Fatalf("expected one notice with the first violation, got %v", msgs)
	}
}

func TestWizardSubmitFailureKeepsDraft(t *testing.T) {
	w, n := newWizard(creatorFunc(func(context.Context, domain.QuizDraft) (domain.ID, error) {
		return "", errors.New("connection refused")
	}))
	w.Open()
	w.Draft().SetTitle("Geography")
	w.Next()
	fillQuestion(w, 0)
	w.Next()
	w.Finish()
	w.Draft().SetParticipantPhone(0, "0612345678")

	step, err := w.Submit(context.Background())
	if err == nil || step != (app.StepParticipants{}) {
		t.Fatalf("expected failure on participants, got %#v %v", step, err)
	}
	if w.Draft().Draft().Title != "Geography" {
		t.Fatalf("draft must survive a failed submission")
	}
	if !n.has("An error occurred while creating the quiz") {
		t.Fatalf("expected generic failure notice, got %v", n.messages())
	}
}
