package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/petridish/petridish/internal/cache"
	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a cached template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := cache.Open(cfg.CacheDir)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := cache.NewStore(db).Delete(context.Background(), args[0]); err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintf(os.Stderr, "Removed %s\n", args[0])
			}
			return nil
		},
	}
}
