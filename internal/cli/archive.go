package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewArchiveCmd lists quizzes created from this client.
func NewArchiveCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "List quizzes created from this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := loadDeps(ctx, *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			quizzes, err := d.archive.List(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if d.pool == nil {
				fmt.Fprintln(out, "postgres.url is not set; the archive only lives for this process.")
			}
			if len(quizzes) == 0 {
				fmt.Fprintln(out, "No quizzes archived.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tPARTICIPANTS\tCREATED")
			now := time.Now()
			for _, q := range quizzes {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", q.ID, q.Title, len(q.Participants), humanize.RelTime(q.CreatedAt, now, "ago", "from now"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of quizzes to list")
	return cmd
}
