package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/haukened/waitlist/internal/resourceid"
	"github.com/haukened/waitlist/internal/store/sqlite"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print waitlist entries in queue order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			codec, err := resourceid.New(cfg.Secret())
			if err != nil {
				return err
			}
			col, err := resourceid.NewColumn(codec, cfg.IDPrefix)
			if err != nil {
				return err
			}
			st, err := sqlite.New(db, col)
			if err != nil {
				return err
			}
			entries, err := st.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "POSITION\tID\tCREATED\tEMAIL")
			for i, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, e.ID, e.CreatedAt.UTC().Format(time.RFC3339), e.Email)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Int("limit", 0, "maximum entries to print (0 = all)")
	return cmd
}
