package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jrazmi/smarttasks/app/tooling/commands"
	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo/stores/taskstores"
	"github.com/jrazmi/smarttasks/infrastructure/postgresdb"
	"github.com/jrazmi/smarttasks/sdk/environment"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

var build = "develop"

// the tooling shares the server's configuration
var appName = "SMARTTASKS"

func processCommands(ctx context.Context, log *logger.Logger, command string, args []string) error {
	switch command {
	case "migrate":
		pg, err := postgresdb.NewFromEnv(appName, postgresdb.WithTracer(postgresdb.NewLoggingQueryTracer(log.Logger)))
		if err != nil {
			return fmt.Errorf("configuring postgres support: %w", err)
		}
		defer func() {
			log.InfoContext(ctx, "shutdown", "status", "closing database connection")
			pg.Close()
		}()
		log.InfoContext(ctx, "init", "service", "postgres")

		if err := commands.Migrate(ctx, log, pg); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		return nil

	case "copy":
		if len(args) != 2 {
			fmt.Println("usage: tooling copy <from-driver> <to-driver>")
			return commands.ErrHelp
		}
		return copyStore(ctx, log, args[0], args[1])

	default:
		printHelp()
		return nil
	}
}

func copyStore(ctx context.Context, log *logger.Logger, from, to string) error {
	cfg, err := taskstores.OptionsFromEnv(appName)
	if err != nil {
		return err
	}

	srcCfg := cfg
	srcCfg.Driver = from
	src, err := taskstores.Open(ctx, log, appName, srcCfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", from, err)
	}
	defer src.Close()

	dstCfg := cfg
	dstCfg.Driver = to
	dst, err := taskstores.Open(ctx, log, appName, dstCfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", to, err)
	}
	defer dst.Close()

	n, err := commands.CopyTasks(ctx, log, src, dst)
	if err != nil {
		return err
	}
	fmt.Printf("copied %d tasks from %s to %s\n", n, src.Driver, dst.Driver)
	return nil
}

func printHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  migrate                  - create the schema in the postgres database")
	fmt.Println("  copy <from> <to>         - copy the task collection between store drivers (file, sqlite, postgres)")
	fmt.Println()
	fmt.Println("Use 'go run app/tooling/main.go <command>' with SMARTTASKS_* variables set.")
}

func run(ctx context.Context, log *logger.Logger) error {
	log.InfoContext(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0), "build", build)

	var command string
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	if command == "help" || command == "--help" || command == "-h" {
		printHelp()
		return nil
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		args := []string{}
		if len(os.Args) > 2 {
			args = os.Args[2:]
		}
		done <- processCommands(ctx, log, command, args)
	}()

	select {
	case err := <-done:
		return err

	case sig := <-shutdown:
		log.InfoContext(ctx, "shutdown", "status", "shutdown started", "signal", sig)

		// Give a short time for commands to complete
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		select {
		case err := <-done:
			return err
		case <-shutdownCtx.Done():
			return fmt.Errorf("shutdown timeout: %w", shutdownCtx.Err())
		}
	}
}

func main() {
	if err := environment.LoadEnv(); err != nil {
		fmt.Println("loading .env:", err)
		os.Exit(1)
	}

	log, err := logger.NewFromEnv(appName)
	if err != nil {
		fmt.Println("oh no we couldn't even get logging going.")
		os.Exit(1)
	}
	ctx := context.Background()

	if err = run(ctx, log); err != nil {
		log.ErrorContext(ctx, "startup", "err", err)
		os.Exit(1)
	}
}
