package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/studiowebux/taskdeck/internal/analytics"
	"github.com/studiowebux/taskdeck/internal/api"
	"github.com/studiowebux/taskdeck/internal/bookmarks"
	"github.com/studiowebux/taskdeck/internal/cli"
	"github.com/studiowebux/taskdeck/internal/config"
	"github.com/studiowebux/taskdeck/internal/events"
	"github.com/studiowebux/taskdeck/internal/keybinds"
	"github.com/studiowebux/taskdeck/internal/logging"
	"github.com/studiowebux/taskdeck/internal/router"
	"github.com/studiowebux/taskdeck/internal/server"
	"github.com/studiowebux/taskdeck/internal/session"
	"github.com/studiowebux/taskdeck/internal/store"
	"github.com/studiowebux/taskdeck/internal/tui"
	"github.com/studiowebux/taskdeck/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			fmt.Fprint(os.Stderr, cli.FormatError(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "taskdeck",
	Short: "taskdeck - tasks, habits and schedules from the terminal",
	Long: `taskdeck talks to a task backend over HTTP.

Run without arguments to start the interactive shell, or use a subcommand
to call the backend directly. 'taskdeck serve' runs a local backend.

Examples:
  taskdeck                                   # Start the shell
  taskdeck list -c habits                    # List habits
  taskdeck get 12 -c schedules -o yaml       # One schedule as YAML
  taskdeck create -b @task.json              # Create from a file
  echo '{"title":"Run",...}' | taskdeck create
  taskdeck list --filter '[?!done]' --query '[].title'
  taskdeck bookmark save open '[?!done]'     # Save a query, then
  taskdeck list -c habits --filter @open     # use it by name
  taskdeck stats                             # Gateway call statistics
  taskdeck route /habits/12/edit /nowhere    # Show what a location renders
  taskdeck keybinds --init                   # Start customizing shell keys
  taskdeck serve --addr :8000                # Run the backend`,
	Version:       version.Current,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd)
	},
}

var shellCmd = &cobra.Command{
	Use:   "shell [location]",
	Short: "Start the interactive shell",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			flagLocation = args[0]
		}
		return runShell(cmd)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every record of a collection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGateway(cmd, cli.ActionList, args)
	},
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Fetch one record (prompts for it when no id is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGateway(cmd, cli.ActionGet, args)
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a record from a JSON body",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGateway(cmd, cli.ActionCreate, args)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Replace a record with a JSON body",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGateway(cmd, cli.ActionUpdate, args)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a record",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGateway(cmd, cli.ActionDelete, args)
	},
}

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Count records in every collection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOverview(cmd)
	},
}

var routeCmd = &cobra.Command{
	Use:   "route <path>...",
	Short: "Resolve shell locations and print the view each one renders",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.PrintRoutes(cmd.OutOrStdout(), router.Default(), args, flagOutput)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics of the calls made to the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats(cmd)
	},
}

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark",
	Short: "Manage saved filter and query expressions",
	Long: `Saved expressions are used with --filter @name or --query @name.
Run without a subcommand to list them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBookmarks(func(m *bookmarks.Manager) error {
			list, err := m.Search(flagSearch)
			if err != nil {
				return err
			}
			return cli.PrintBookmarks(cmd.OutOrStdout(), list, flagOutput)
		})
	},
}

var bookmarkSaveCmd = &cobra.Command{
	Use:   "save <name> <expression>",
	Short: "Save a JMESPath expression or $(command) under a name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBookmarks(func(m *bookmarks.Manager) error {
			if err := m.Save(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s%s\n", bookmarks.Prefix, strings.TrimPrefix(args[0], bookmarks.Prefix))
			return nil
		})
	},
}

var bookmarkDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBookmarks(func(m *bookmarks.Manager) error {
			return m.Delete(args[0])
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print changes as the backend reports them",
	Long: `Follows the backend change feed until interrupted.
With --collection, only changes of that collection are printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd)
	},
}

var keybindsCmd = &cobra.Command{
	Use:   "keybinds",
	Short: "List the shell key bindings and check keybinds.json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKeybinds(cmd)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the task backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and check for a newer release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "taskdeck %s\n", version.Current)
		if !flagCheck {
			return nil
		}
		release, err := version.NewChecker().Check(cmd.Context(), version.Current)
		if err != nil {
			return err
		}
		if release.Available {
			fmt.Fprintf(cmd.OutOrStdout(), "A newer version is available: %s (%s)\n", release.Version, release.URL)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "You are on the latest version")
		}
		return nil
	},
}

// Global flags
var (
	flagConfig     string
	flagBaseURL    string
	flagCollection string
	flagOutput     string
	flagLogLevel   string
)

// Flags for gateway commands
var (
	flagBody   string
	flagFilter string
	flagQuery  string
	flagSave   string
	flagYes    bool
)

// Flags for serve, shell, version, stats and bookmark
var (
	flagAddr     string
	flagDB       string
	flagLocation string
	flagCheck    bool
	flagClear    bool
	flagSearch   string
	flagInit     bool
	flagLive     bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default .taskdeck.jsonc or ~/.taskdeck/config.jsonc)")
	pf.StringVar(&flagBaseURL, "base-url", "", "Backend base URL (overrides config and "+config.EnvBaseURL+")")
	pf.StringVarP(&flagCollection, "collection", "c", "", "Collection: tasks, habits or schedules")
	pf.StringVarP(&flagOutput, "output", "o", "", "Output format (json/yaml/body)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error)")

	for _, c := range []*cobra.Command{listCmd, getCmd, createCmd, updateCmd, deleteCmd} {
		addResultFlags(c.Flags())
	}
	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().StringVarP(&flagBody, "body", "b", "", "JSON body, or @file (default: stdin when piped)")
	}
	deleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Delete without confirmation")

	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config, "+config.DefaultListenAddr+")")
	serveCmd.Flags().StringVar(&flagDB, "db", "", "SQLite database path (default ~/.taskdeck/taskdeck.db)")

	rootCmd.Flags().StringVar(&flagLocation, "at", "", "Open the shell at this location instead of the saved session")
	for _, c := range []*cobra.Command{rootCmd, shellCmd} {
		c.Flags().BoolVar(&flagLive, "live", true, "Refresh the shell when the backend reports changes")
	}
	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Check for a newer release")
	statsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the recorded calls (only those of --collection when given)")
	bookmarkCmd.Flags().StringVar(&flagSearch, "search", "", "Only list bookmarks whose name or expression contains this")
	keybindsCmd.Flags().BoolVar(&flagInit, "init", false, "Write the current bindings to keybinds.json as a starting point")

	bookmarkCmd.AddCommand(bookmarkSaveCmd, bookmarkDeleteCmd)
	rootCmd.AddCommand(shellCmd, listCmd, getCmd, createCmd, updateCmd, deleteCmd,
		overviewCmd, routeCmd, statsCmd, bookmarkCmd, watchCmd, keybindsCmd, serveCmd, versionCmd)
}

// addResultFlags registers the flags that shape a gateway result
func addResultFlags(fs *pflag.FlagSet) {
	fs.StringVar(&flagFilter, "filter", "", "JMESPath filter expression, or @bookmark")
	fs.StringVar(&flagQuery, "query", "", "JMESPath query, $(command) to pipe the result through, or @bookmark")
	fs.StringVarP(&flagSave, "save", "s", "", "Save the result to a file")
}

// loadSettings resolves the configuration: file, then environment, then flags
func loadSettings() (config.Config, *zap.Logger, error) {
	if err := config.Initialize(); err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	path := flagConfig
	if path == "" {
		path = config.GetConfigFilePath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)

	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagCollection != "" {
		cfg.Collection = flagCollection
	}
	if flagOutput != "" {
		cfg.Output = flagOutput
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

// newClient builds the gateway client. Unless disabled, every call is recorded
// for 'taskdeck stats'; the returned func closes the recorder.
func newClient(cfg config.Config, logger *zap.Logger) (*api.Client, func()) {
	opts := []api.Option{
		api.WithCollection(cfg.Collection),
		api.WithLogger(logger),
	}
	closer := func() {}

	if !cfg.NoAnalytics {
		recorder, err := analytics.NewManager(config.AnalyticsPath)
		if err != nil {
			logger.Warn("gateway calls will not be recorded", zap.Error(err))
		} else {
			opts = append(opts, api.WithObserver(recorder.Observer(cfg.BaseURL, logger)))
			closer = func() { recorder.Close() }
		}
	}

	return api.New(cfg.BaseURL, opts...), closer
}

// withBookmarks opens the bookmark database for the duration of fn
func withBookmarks(fn func(*bookmarks.Manager) error) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	m, err := bookmarks.NewManager(config.BookmarksPath)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

// resolveBookmarks expands @name references in the filter and query flags
func resolveBookmarks(filterExpr, queryExpr string) (string, string, error) {
	if !strings.HasPrefix(filterExpr, bookmarks.Prefix) && !strings.HasPrefix(queryExpr, bookmarks.Prefix) {
		return filterExpr, queryExpr, nil
	}
	err := withBookmarks(func(m *bookmarks.Manager) error {
		var err error
		if filterExpr, err = m.Resolve(filterExpr); err != nil {
			return err
		}
		queryExpr, err = m.Resolve(queryExpr)
		return err
	})
	return filterExpr, queryExpr, err
}

// runGateway performs one gateway call for a CRUD subcommand
func runGateway(cmd *cobra.Command, action string, args []string) error {
	cfg, logger, err := loadSettings()
	if err != nil {
		return err
	}
	defer logger.Sync()

	filterExpr, queryExpr, err := resolveBookmarks(flagFilter, flagQuery)
	if err != nil {
		return err
	}

	opts := cli.RunOptions{
		Action:       action,
		Body:         flagBody,
		OutputFormat: cfg.Output,
		Filter:       filterExpr,
		Query:        queryExpr,
		SavePath:     flagSave,
		Yes:          flagYes,
		Stdin:        cmd.InOrStdin(),
		Stdout:       cmd.OutOrStdout(),
		Stderr:       cmd.ErrOrStderr(),
	}
	if len(args) > 0 {
		opts.ID = args[0]
	}

	client, closeClient := newClient(cfg, logger)
	defer closeClient()

	return cli.Run(cmd.Context(), client, opts)
}

// runOverview prints record counts for every collection
func runOverview(cmd *cobra.Command) error {
	cfg, logger, err := loadSettings()
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, closeClient := newClient(cfg, logger)
	defer closeClient()

	summaries := cli.Overview(cmd.Context(), client, server.Collections)
	format := ""
	if flagOutput != "" {
		format = cfg.Output
	}
	if err := cli.PrintOverview(cmd.OutOrStdout(), summaries, format); err != nil {
		return err
	}
	if cli.Failed(summaries) {
		return fmt.Errorf("some collections could not be fetched")
	}
	return nil
}

func runWatch(cmd *cobra.Command) error {
	cfg, logger, err := loadSettings()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Debug("watching", zap.String("base_url", cfg.BaseURL))
	out := cmd.OutOrStdout()
	return events.Watch(cmd.Context(), cfg.BaseURL, func(e events.Event) {
		if flagCollection != "" && e.Collection != cfg.Collection {
			return
		}
		if err := cli.PrintEvent(out, e, flagOutput); err != nil {
			logger.Warn("failed to print event", zap.Error(err))
		}
	})
}

// runStats prints the recorded gateway calls for the configured backend
func runStats(cmd *cobra.Command) error {
	cfg, logger, err := loadSettings()
	if err != nil {
		return err
	}
	defer logger.Sync()

	recorder, err := analytics.NewManager(config.AnalyticsPath)
	if err != nil {
		return err
	}
	defer recorder.Close()

	if flagClear {
		if flagCollection != "" {
			err = recorder.ClearForCollection(cfg.BaseURL, cfg.Collection)
		} else {
			err = recorder.Clear()
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cleared recorded calls")
		return nil
	}

	stats, err := recorder.GetStats(cfg.BaseURL)
	if err != nil {
		return err
	}
	format := ""
	if flagOutput != "" {
		format = cfg.Output
	}
	return cli.PrintStats(cmd.OutOrStdout(), stats, format)
}

// runServe runs the backend until interrupted
func runServe(cmd *cobra.Command) error {
	cfg, logger, err := loadSettings()
	if err != nil {
		return err
	}
	defer logger.Sync()

	addr := cfg.ListenAddr
	if flagAddr != "" {
		addr = flagAddr
	}
	dbPath := cfg.Database
	if flagDB != "" {
		dbPath = flagDB
	}
	if dbPath == "" {
		dbPath = config.DatabasePath
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	logger.Info("starting backend", zap.String("addr", addr), zap.String("database", dbPath))
	return server.New(st, server.WithLogger(logger)).Run(cmd.Context(), addr)
}

// runShell starts the interactive shell
func runShell(cmd *cobra.Command) error {
	cfg, _, err := loadSettings()
	if err != nil {
		return err
	}

	// The shell owns the terminal, so it logs to a file
	logger, err := logging.NewAt(cfg.LogLevel, cfg.LogDev, config.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	keys, err := keybinds.LoadOrDefault(config.KeybindsPath)
	if err != nil {
		return err
	}

	client, closeClient := newClient(cfg, logger)
	defer closeClient()

	return tui.Run(cmd.Context(), tui.Options{
		Client:   client,
		Sessions: session.NewManager(""),
		Logger:   logger,
		Keys:     keys,
		Location: flagLocation,
		Live:     flagLive,
	})
}

func runKeybinds(cmd *cobra.Command) error {
	if _, _, err := loadSettings(); err != nil {
		return err
	}

	keys, err := keybinds.LoadOrDefault(config.KeybindsPath)
	if err != nil {
		return err
	}

	if flagInit {
		if _, err := os.Stat(config.KeybindsPath); err == nil {
			return fmt.Errorf("%s already exists", config.KeybindsPath)
		}
		if err := keybinds.SaveConfig(keybinds.ExportConfig(keys), config.KeybindsPath); err != nil {
			return fmt.Errorf("failed to write %s: %w", config.KeybindsPath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", config.KeybindsPath)
		return nil
	}

	return cli.PrintKeybinds(cmd.OutOrStdout(), keys, keybinds.NewValidator().ValidateRegistry(keys), flagOutput)
}
