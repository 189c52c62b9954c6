package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/spendvibe/internal/cli"
	"github.com/theirongolddev/spendvibe/internal/store"
)

var flagLimit int

var historyCmd = &cobra.Command{
	Use:   "history [report-id]",
	Short: "List stored reports, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagLimit, "limit", "l", 20, "Number of reports to list (0 = all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(dbPath(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if len(args) == 1 {
		r, err := st.LoadReport(args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no stored report %q", args[0])
		}
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(r)
		}
		renderReport(r)
		return nil
	}

	list, err := st.ListReports(resolveUser(cfg), flagLimit)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(list)
	}
	if len(list) == 0 {
		fmt.Println("\n  No stored reports. Run `spendvibe analyze` first.")
		return nil
	}

	rows := make([][]string, 0, len(list))
	for _, rs := range list {
		vibe := rs.Vibe
		if rs.Error != "" {
			vibe = "error: " + rs.Error
		}
		rows = append(rows, []string{
			rs.ID,
			rs.GeneratedAt.Local().Format("2006-01-02 15:04"),
			rs.UserID,
			cli.FormatNumber(int64(rs.TotalAnalyzed)),
			vibe,
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("REPORT HISTORY"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Generated", "User", "Txns", "Vibe"},
		Rows:    rows,
	}))
	return nil
}
