package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/petridish/petridish/internal/cache"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := cache.Open(cfg.CacheDir)
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := cache.NewStore(db).List(context.Background())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(os.Stderr, "No cached templates.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLOCATION\tFETCHED")
			for _, entry := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					entry.Name, entry.Location, entry.FetchedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}
