package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/ExoMetrics/pkg/client"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// NewCatalogCmd groups the catalog maintenance commands.
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Maintain the planet catalog",
	}
	cmd.AddCommand(newCatalogSeedCmd(), newCatalogRefreshCmd())
	return cmd
}

func newCatalogSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Load planets from a YAML seed file",
		Long:  "Load a YAML catalog of the form {planets: [...]} into the database. Use - for stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, cmd *cobra.Command, cc *CLIContext, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, errors.ErrCodeSeedInvalid, "cannot open seed file")
				}
				defer f.Close()
				r = f
			}
			b, err := cc.Backend(ctx)
			if err != nil {
				return err
			}
			n, err := b.Seed(ctx, r)
			if err != nil {
				return err
			}
			if cc.OutputFormat == OutputJSON {
				return printJSON(cmd.OutOrStdout(), map[string]int{"seeded": n})
			}
			PrintSuccess(cmd, fmt.Sprintf("seeded %d planets", n))
			return nil
		}),
	}
}

func newCatalogRefreshCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the catalog from the archive",
		Long: "Fetch the archive and upsert every planet. Without --force the refresh is skipped\n" +
			"while the catalog is fresh. Through --server the refresh may be queued.",
		Args: cobra.NoArgs,
		RunE: run(func(ctx context.Context, cmd *cobra.Command, cc *CLIContext, args []string) error {
			b, err := cc.Backend(ctx)
			if err != nil {
				return err
			}
			res, err := b.Refresh(ctx, force)
			if err != nil {
				return err
			}
			return PrintResult(cmd, cc.OutputFormat, refreshView{res})
		}),
	}
	cmd.Flags().BoolVar(&force, "force", false, "refresh even when the catalog is fresh")
	return cmd
}

type refreshView struct {
	*client.RefreshResponse
}

func (v refreshView) WriteText(w io.Writer) {
	res := v.Result
	switch {
	case res == nil:
		fmt.Fprintf(w, "Refresh %s", v.Status)
		if v.EventID != "" {
			fmt.Fprintf(w, " (event %s)", v.EventID)
		}
		fmt.Fprintln(w)
	case res.Skipped:
		fmt.Fprintf(w, "Refresh skipped: %s\n", res.Reason)
	default:
		fmt.Fprintf(w, "Refresh %s: fetched %d, upserted %d, indexed %d, published %d\n",
			v.Status, res.Fetched, res.Upserted, res.Indexed, res.Published)
	}
}

//Personal.AI order the ending
