package cli

import (
	"github.com/spf13/cobra"

	"quizapp-client/internal/app"
	"quizapp-client/internal/transport/console"
)

// NewRespondCmd takes a quiz as a participant, from an invite link or explicit parameters.
func NewRespondCmd(configPath *string) *cobra.Command {
	var (
		link   string
		quizID string
		phone  string
	)
	cmd := &cobra.Command{
		Use:   "respond",
		Short: "Take a timed quiz from an invite",
		RunE: func(cmd *cobra.Command, args []string) error {
			if link != "" {
				id, number, err := app.ParseInviteLink(link)
				if err != nil {
					return err
				}
				if quizID == "" {
					quizID = id.String()
				}
				if phone == "" {
					phone = number
				}
			}
			ctx := cmd.Context()
			d, err := loadDeps(ctx, *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			out := cmd.OutOrStdout()
			flow := app.NewRespondentFlow(quizID, phone, d.quizzes, d.api, app.RespondentOptions{
				Notifier: console.NewNotifier(out),
			})
			_, err = console.NewRespondentDriver(flow, cmd.InOrStdin(), out).Run(ctx)
			return err
		},
	}
	cmd.Flags().StringVar(&link, "link", "", "invite link (…/quiz/respond?quizId=…&phoneNumber=…)")
	cmd.Flags().StringVar(&quizID, "quiz-id", "", "quiz id")
	cmd.Flags().StringVar(&phone, "phone", "", "participant phone number")
	return cmd
}
