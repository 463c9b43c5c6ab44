package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"quizapp-client/internal/app"
	"quizapp-client/internal/config"
	"quizapp-client/internal/domain"
	"quizapp-client/internal/infra/whatsapp"
	"quizapp-client/internal/transport/console"
)

// NewInviteCmd (re)sends invites for a quiz created earlier.
func NewInviteCmd(configPath *string) *cobra.Command {
	var (
		quizID  string
		phones  []string
		channel string
		resend  bool
	)
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Send invite links for a created quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			if quizID == "" {
				return errors.New("--quiz-id is required")
			}
			ctx := cmd.Context()
			d, err := loadDeps(ctx, *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			participants := make([]domain.Participant, 0, len(phones))
			for _, p := range phones {
				participants = append(participants, domain.Participant{PhoneNumber: p})
			}
			if len(participants) == 0 {
				record, err := d.archive.Get(ctx, domain.ID(quizID))
				if err != nil {
					return fmt.Errorf("no --phone given and quiz %s is not archived: %w", quizID, err)
				}
				participants = record.Participants
			}

			out := cmd.OutOrStdout()
			inviter, err := newInviteService(d, channel, out)
			if err != nil {
				return err
			}
			results, err := inviter.Dispatch(ctx, domain.ID(quizID), participants, resend)
			console.PrintInviteResults(out, results)
			return err
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz-id", "", "quiz to invite to")
	cmd.Flags().StringSliceVar(&phones, "phone", nil, "participant phone numbers (default: archived participants)")
	cmd.Flags().StringVar(&channel, "channel", "", "invite channel: link or whatsapp (default from config)")
	cmd.Flags().BoolVar(&resend, "resend", false, "invite numbers that were already invited")
	return cmd
}

// newInviteService picks the sender for channel. "link" prints click-to-chat links and
// "whatsapp" sends through the Cloud API.
func newInviteService(d *deps, channel string, out io.Writer) (*app.InviteService, error) {
	if channel == "" {
		channel = d.cfg.Invites.Channel
	}
	var sender app.Sender
	switch channel {
	case "", "link":
		sender = console.NewLinkSender(out)
	case "whatsapp":
		client, err := whatsapp.New(whatsapp.Config{
			APIURL:        d.cfg.WhatsApp.APIURL,
			PhoneNumberID: d.cfg.WhatsApp.PhoneNumberID,
			AccessToken:   d.cfg.WhatsApp.AccessToken,
			Timeout:       config.TTLDuration(d.cfg.HTTP.Timeout, 15*time.Second),
		})
		if err != nil {
			return nil, err
		}
		sender = client
	default:
		return nil, fmt.Errorf("unknown invite channel %q", channel)
	}
	delay := config.TTLDuration(d.cfg.Invites.Delay, app.DefaultInviteDelay)
	return app.NewInviteService(d.endpoints.FrontendURL, sender, d.ledger, delay), nil
}
