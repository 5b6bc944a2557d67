package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo/stores/taskstores"
	"github.com/jrazmi/smarttasks/core/suggestions"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

const defaultProxyURL = "http://localhost:3000/api/gemini"

// cli holds the global flags and the repository opened for one invocation.
type cli struct {
	driver     string
	dataDir    string
	sqlitePath string
	entry      string
	proxy      string
	timeout    time.Duration
	output     string
	logLevel   string
	noColor    bool

	log   *logger.Logger
	store taskstores.Storer
	repo  *tasksrepo.Repository
}

// execute runs taskctl with args and releases the store afterwards.
func execute(args []string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &cli{}
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	defer c.close()

	return root.ExecuteContext(ctx)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:          "taskctl",
		Short:        "Manage tasks and ask the assistant to break them into subtasks",
		Version:      build,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&c.driver, "driver", "", "store driver: file, sqlite or postgres (default from SMARTTASKS_STORE_DRIVER)")
	pf.StringVar(&c.dataDir, "data-dir", "", "directory of the file store (default from SMARTTASKS_DATA_DIR)")
	pf.StringVar(&c.sqlitePath, "sqlite-path", "", "sqlite database file (default from SMARTTASKS_SQLITE_PATH)")
	pf.StringVar(&c.entry, "entry", "", "storage entry name (default from SMARTTASKS_STORE_ENTRY)")
	pf.StringVar(&c.proxy, "proxy", defaultProxyURL, "suggestion proxy URL")
	pf.DurationVar(&c.timeout, "timeout", 30*time.Second, "suggestion request timeout")
	pf.StringVarP(&c.output, "output", "o", outputTable, "output format: table, json or yaml")
	pf.StringVar(&c.logLevel, "log-level", "warn", "log level written to stderr")
	pf.BoolVar(&c.noColor, "no-color", false, "disable coloured output")

	root.AddCommand(
		newAddCmd(c),
		newEditCmd(c),
		newRmCmd(c),
		newLsCmd(c),
		newShowCmd(c),
		newSuggestCmd(c),
		newExportCmd(c),
	)
	return root
}

func (c *cli) open(cmd *cobra.Command) error {
	if c.noColor {
		color.NoColor = true
		text.DisableColors()
	}
	switch c.output {
	case outputTable, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output %q, want table, json or yaml", c.output)
	}

	ctx := cmd.Context()
	c.log = logger.New(cmd.ErrOrStderr(), c.logLevel)

	cfg, err := taskstores.OptionsFromEnv(appName)
	if err != nil {
		return err
	}
	if c.driver != "" {
		cfg.Driver = c.driver
	}
	if c.dataDir != "" {
		cfg.DataDir = c.dataDir
	}
	if c.sqlitePath != "" {
		cfg.SQLitePath = c.sqlitePath
	}
	if c.entry != "" {
		cfg.Entry = c.entry
	}

	store, err := taskstores.Open(ctx, c.log, appName, cfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Driver, err)
	}
	c.store = store

	client := suggestions.NewClient(c.log, suggestions.Options{
		ProxyURL: c.proxy,
		Timeout:  c.timeout,
	})
	c.repo = tasksrepo.NewRepository(c.log, store,
		tasksrepo.WithSuggester(client),
		tasksrepo.WithNotifier(colorNotifier{w: cmd.ErrOrStderr()}),
	)
	c.repo.Load(ctx)
	return nil
}

func (c *cli) close() {
	if c.store.Close == nil {
		return
	}
	if err := c.store.Close(); err != nil && c.log != nil {
		c.log.Warn("closing store", "error", err)
	}
}
