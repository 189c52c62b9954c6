package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/spendvibe/internal/cli"
	"github.com/theirongolddev/spendvibe/internal/pipeline"
	"github.com/theirongolddev/spendvibe/internal/source"
	"github.com/theirongolddev/spendvibe/internal/store"
)

var flagForce bool

var importCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Import transaction feeds and the category hierarchy into the database",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagForce, "force", false, "Reimport files even if unchanged")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	path := flagFeed
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" && flagCategories == "" {
		return errors.New("nothing to import: pass a feed path or --categories")
	}

	st, err := store.Open(dbPath(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	rows := [][]string{}

	if flagCategories != "" {
		cats, err := source.LoadCategories(flagCategories)
		if err != nil {
			return err
		}
		if err := st.SaveCategories(cats); err != nil {
			return err
		}
		log.Info().Int("categories", len(cats)).Str("path", flagCategories).Msg("categories imported")
		rows = append(rows, []string{"Categories", cli.FormatNumber(int64(len(cats)))})
	}

	if path != "" {
		res, err := pipeline.Import(path, st, flagForce, progress("Importing"))
		if !flagQuiet && res != nil && res.Imported > 0 {
			fmt.Fprintln(os.Stderr)
		}
		if err != nil {
			return err
		}
		log.Info().
			Int("files", res.TotalFiles).
			Int("imported", res.Imported).
			Int("transactions", res.Transactions).
			Msg("feeds imported")

		rows = append(rows,
			[]string{"Feed files", cli.FormatNumber(int64(res.TotalFiles))},
			[]string{"Unchanged", cli.FormatNumber(int64(res.Unchanged))},
			[]string{"Imported", cli.FormatNumber(int64(res.Imported))},
			[]string{"Transactions", cli.FormatNumber(int64(res.Transactions))},
			[]string{"Duplicates", cli.FormatNumber(int64(res.Duplicates))},
			[]string{"Bad lines", cli.FormatNumber(int64(res.ParseErrors))},
			[]string{"Unreadable files", cli.FormatNumber(int64(res.FileErrors))},
		)
	}

	total, err := st.TransactionCount()
	if err != nil {
		return err
	}
	rows = append(rows, []string{"Stored transactions", cli.FormatNumber(int64(total))})

	if flagJSON {
		return printJSON(map[string]any{"db": dbPath(cfg), "stored_transactions": total})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("IMPORT"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))
	return nil
}
