package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/specmark/internal/biblio"
)

// BiblioOptions holds flags for the biblio command.
type BiblioOptions struct {
	*RootOptions
	Run       string // filter to one compile run
	Namespace string // filter to one namespace
}

// BiblioRow is one listed entry.
type BiblioRow struct {
	RunID     string       `json:"run_id"`
	Namespace string       `json:"namespace"`
	Entry     biblio.Entry `json:"entry"`
}

// NewBiblioCommand creates the biblio command.
func NewBiblioCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BiblioOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "biblio <database>",
		Short: "List bibliography entries from a snapshot database",
		Long: `List the bibliography entries persisted by build --biblio, in
namespace insertion order. Filters narrow the listing to one run or
one namespace.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBiblio(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Run, "run", "", "only entries from this run id")
	cmd.Flags().StringVar(&opts.Namespace, "ns", "", "only entries in this namespace")

	return cmd
}

func runBiblio(opts *BiblioOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// OpenStore would create an empty database; a listing command should
	// not.
	if _, err := os.Stat(path); err != nil {
		return formatter.Fail(ErrCodeStore, fmt.Sprintf("snapshot database %s not found", path))
	}

	store, err := biblio.OpenStore(path)
	if err != nil {
		return formatter.Fail(ErrCodeStore, err.Error())
	}
	defer store.Close()

	stored, err := store.ListEntries(cmd.Context(), opts.Run, opts.Namespace)
	if err != nil {
		return formatter.Fail(ErrCodeStore, err.Error())
	}

	rows := make([]BiblioRow, 0, len(stored))
	for _, se := range stored {
		rows = append(rows, BiblioRow{RunID: se.RunID, Namespace: se.Namespace, Entry: se.Entry})
	}

	if formatter.Format == "json" {
		return formatter.OK(rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(formatter.Writer, "No entries found")
		return nil
	}
	for _, row := range rows {
		fmt.Fprintf(formatter.Writer, "%s  %s  %-6s  %s\n",
			row.RunID, row.Namespace, row.Entry.Kind, describeEntry(row.Entry))
	}
	fmt.Fprintf(formatter.Writer, "%d entr%s\n", len(rows), pluralY(len(rows)))
	return nil
}

func describeEntry(e biblio.Entry) string {
	if e.Kind == biblio.EntryOp {
		return e.Aoid
	}
	desc := e.ID
	if e.Number != "" {
		desc += " (" + e.Number + ")"
	}
	return desc
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
