package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"quizapp-client/internal/app"
	"quizapp-client/internal/domain"
	"quizapp-client/internal/transport/console"
)

// NewCreateCmd runs the authoring wizard, interactively or from a YAML draft file.
func NewCreateCmd(configPath *string) *cobra.Command {
	var (
		from    string
		start   string
		channel string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Author a quiz and invite its participants",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := loadDeps(ctx, *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			out := cmd.OutOrStdout()
			inviter, err := newInviteService(d, channel, out)
			if err != nil {
				return err
			}
			wizard := app.NewWizard(app.NewDraftStore(), app.NewSubmitter(d.api, d.archive), console.NewNotifier(out))

			if from == "" {
				_, err := console.NewWizardDriver(wizard, inviter, cmd.InOrStdin(), out).Run(ctx)
				return err
			}

			draft, err := readDraft(from)
			if err != nil {
				return err
			}
			if start != "" {
				t, err := time.ParseInLocation("2006-01-02 15:04", start, time.Local)
				if err != nil {
					return fmt.Errorf("--start must look like 2006-01-02 15:04: %w", err)
				}
				draft.StartTime = domain.StartTime(t)
			}
			id, err := console.SubmitDraft(ctx, wizard, draft)
			if err != nil {
				return errors.New(app.UserMessage(err))
			}
			fmt.Fprintf(out, "created quiz %s\n", id)
			results, err := inviter.Dispatch(ctx, id, draft.Participants, false)
			console.PrintInviteResults(out, results)
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "YAML draft file to submit without prompting")
	cmd.Flags().StringVar(&start, "start", "", "start time for --from drafts (YYYY-MM-DD HH:MM, default now)")
	cmd.Flags().StringVar(&channel, "channel", "", "invite channel: link or whatsapp (default from config)")
	return cmd
}

func readDraft(path string) (domain.QuizDraft, error) {
	var draft domain.QuizDraft
	f, err := os.Open(path)
	if err != nil {
		return draft, err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&draft); err != nil && err != io.EOF {
		return draft, fmt.Errorf("parse %s: %w", path, err)
	}
	return draft, nil
}
