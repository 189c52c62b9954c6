package cmd

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/spendvibe/internal/cli"
	"github.com/theirongolddev/spendvibe/internal/config"
	"github.com/theirongolddev/spendvibe/internal/logger"
	"github.com/theirongolddev/spendvibe/internal/model"
	"github.com/theirongolddev/spendvibe/internal/pipeline"
	"github.com/theirongolddev/spendvibe/internal/source"
	"github.com/theirongolddev/spendvibe/internal/store"
)

var (
	flagDB         string
	flagUser       string
	flagMonths     int
	flagConfig     string
	flagFeed       string
	flagCategories string
	flagJSON       bool
	flagQuiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "spendvibe",
	Short: "Spending lifestyle diagnosis",
	Long:  "Cluster your transactions into spending habits, detect fixed costs and forecast next month's budget.",
	RunE:  runAnalyze,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default "+store.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "User to analyze")
	rootCmd.PersistentFlags().IntVarP(&flagMonths, "months", "m", 6, "Lookback window in months (0 = all time)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.Path()+")")
	rootCmd.PersistentFlags().StringVar(&flagFeed, "feed", "", "Read transactions from a JSONL file or directory instead of the database")
	rootCmd.PersistentFlags().StringVar(&flagCategories, "categories", "", "Category hierarchy YAML file")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print reports as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// dataset is the loaded input shared by the analysis commands.
type dataset struct {
	txns []model.RawTransaction
	cats []model.Category
	// st is nil when reading straight from a feed.
	st *store.Store
}

func (d *dataset) Close() {
	if d.st != nil {
		_ = d.st.Close()
	}
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.Path()
}

func loadConfig() (config.Config, error) {
	if flagConfig == "" {
		return config.Load()
	}
	return config.LoadFile(flagConfig)
}

// newLogger logs to stderr: console lines normally, JSON lines alongside
// --json output.
func newLogger(cfg config.Config) zerolog.Logger {
	var log zerolog.Logger
	if flagJSON {
		log = logger.NewWithWriter(os.Stderr, cfg.General.LogLevel)
	} else {
		log = logger.New(cfg.General.LogLevel)
	}
	if flagQuiet && log.GetLevel() < zerolog.WarnLevel {
		log = log.Level(zerolog.WarnLevel)
	}
	return log
}

func dbPath(cfg config.Config) string {
	switch {
	case flagDB != "":
		return flagDB
	case cfg.General.DBPath != "":
		return cfg.General.DBPath
	default:
		return store.DefaultPath()
	}
}

// resolveMonths prefers an explicit --months over the configured default.
func resolveMonths(cmd *cobra.Command, cfg config.Config) int {
	if cmd.Flags().Changed("months") {
		return flagMonths
	}
	return cfg.General.DefaultMonths
}

func resolveUser(cfg config.Config) string {
	if flagUser != "" {
		return flagUser
	}
	return cfg.General.User
}

// loadData is the shared data loading path used by all analysis commands.
// With --feed it parses JSONL directly; otherwise it reads the database.
func loadData(cfg config.Config, months int) (*dataset, error) {
	since := pipeline.LookbackStart(time.Now(), months)
	ds := &dataset{}

	if flagFeed != "" {
		txns, err := loadFeed(flagFeed)
		if err != nil {
			return nil, err
		}
		ds.txns = pipeline.FilterWindow(txns, since, time.Time{})
	} else {
		st, err := store.Open(dbPath(cfg))
		if err != nil {
			return nil, err
		}
		ds.st = st
		txns, err := st.LoadTransactions(store.Filter{Since: since})
		if err != nil {
			ds.Close()
			return nil, fmt.Errorf("loading transactions: %w", err)
		}
		ds.txns = txns
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Loaded %s transactions from %s\n",
				cli.FormatNumber(int64(len(txns))), dbPath(cfg))
		}
	}

	cats, err := loadCategories(ds.st)
	if err != nil {
		ds.Close()
		return nil, err
	}
	ds.cats = cats

	return ds, nil
}

func loadFeed(path string) ([]model.RawTransaction, error) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning feeds...\n")
	}

	files, err := source.ScanFeeds(path)
	if err != nil {
		return nil, err
	}

	var txns []model.RawTransaction
	var parseErrors int
	for i, f := range files {
		res := source.ParseFeed(f, "")
		if res.Err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Path, res.Err)
		}
		txns = append(txns, res.Transactions...)
		parseErrors += res.ParseErrors
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "\r  Parsing %s", cli.RenderProgressBar(i+1, len(files), 30))
		}
	}

	if !flagQuiet && len(files) > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %s transactions from %d files",
			cli.FormatNumber(int64(len(txns))), len(files))
		if parseErrors > 0 {
			fmt.Fprintf(os.Stderr, " (%d bad lines skipped)", parseErrors)
		}
		fmt.Fprintln(os.Stderr)
	}
	return txns, nil
}

// loadCategories reads --categories when given, else the stored hierarchy.
func loadCategories(st *store.Store) ([]model.Category, error) {
	if flagCategories != "" {
		return source.LoadCategories(flagCategories)
	}
	if st == nil {
		return nil, nil
	}
	cats, err := st.LoadCategories()
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	return cats, nil
}

// allUsers lists every user in the dataset, from the database when one
// is open.
func allUsers(ds *dataset) ([]string, error) {
	if ds.st != nil {
		return ds.st.Users()
	}
	return usersIn(ds.txns), nil
}

// progress writes a labelled progress bar to stderr unless --quiet.
func progress(label string) pipeline.ProgressFunc {
	return func(current, total int) {
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "\r  %s %s", label, cli.RenderProgressBar(current, total, 30))
		}
	}
}

// usersIn returns the distinct users in txns, sorted.
func usersIn(txns []model.RawTransaction) []string {
	seen := make(map[string]struct{})
	for _, t := range txns {
		seen[t.UserID] = struct{}{}
	}
	users := make([]string, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

// buildRequests makes one analysis request per user. An empty user list
// analyzes every transaction as a single anonymous request.
func buildRequests(ds *dataset, users []string, months int) []pipeline.Request {
	if len(users) == 0 {
		return []pipeline.Request{{
			Months:       months,
			Transactions: ds.txns,
			Categories:   ds.cats,
		}}
	}

	reqs := make([]pipeline.Request, 0, len(users))
	for _, u := range users {
		reqs = append(reqs, pipeline.Request{
			UserID:       u,
			Months:       months,
			Transactions: pipeline.FilterByUser(ds.txns, u),
			Categories:   ds.cats,
		})
	}
	return reqs
}

// singleRequest builds the request for the resolved user. Data holding a
// single user is analyzed as that user.
func singleRequest(ds *dataset, cfg config.Config, months int) pipeline.Request {
	user := resolveUser(cfg)
	if user == "" {
		if users := usersIn(ds.txns); len(users) == 1 {
			user = users[0]
		}
	}
	if user == "" {
		return buildRequests(ds, nil, months)[0]
	}
	return buildRequests(ds, []string{user}, months)[0]
}
