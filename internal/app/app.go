package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/0x4d31/llmtester/internal/ui"
	"github.com/0x4d31/llmtester/tester"
	"github.com/alexflint/go-arg"
	tea "github.com/charmbracelet/bubbletea"
	cblog "github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const version = "1.0"

// App contains the core components and dependencies of the application.
type App struct {
	Logger  *cblog.Logger
	Service *tester.Service
	Stdout  io.Writer
}

// Run parses the command line, runs the test and reports the outcome.
func (a *App) Run() error {
	arg.MustParse(&args)

	if a.Stdout == nil {
		a.Stdout = os.Stdout
	}
	if a.Logger == nil {
		a.Logger = cblog.NewWithOptions(os.Stderr, cblog.Options{
			Prefix:          "LLMTESTER",
			ReportTimestamp: true,
			TimeFormat:      "2006/01/02 15:04:05",
		})
	}
	if err := a.setLogLevel(args.LogLevel); err != nil {
		return fmt.Errorf("error setting log level: %w", err)
	}

	decision, err := ui.ResolveMode(args.UI, a.Stdout)
	if err != nil {
		return err
	}
	if decision.Warning != "" {
		a.Logger.Warn(decision.Warning)
	}
	if !decision.UseTUI {
		printBanner(a.Stdout)
	}

	if err := godotenv.Load(args.EnvFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading %s: %w", args.EnvFile, err)
		}
		a.Logger.Debugf("no env file found at %s", args.EnvFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Service, err = tester.NewService(ctx, tester.Options{
		ConfigFile:    args.ConfigFile,
		CacheDBFile:   args.DatabaseFile,
		EventLogFile:  args.EventLogFile,
		LogLevel:      args.LogLevel,
		Logger:        a.Logger,
		APIKey:        args.LLMAPIKey,
		BaseURL:       args.LLMBaseURL,
		Model:         args.LLMModel,
		Provider:      args.LLMProvider,
		QuestionsFile: args.QuestionsFile,
		OutputFile:    args.OutputFile,
	})
	if err != nil {
		return fmt.Errorf("error creating service: %w", err)
	}
	defer func() {
		if err := a.Service.Close(); err != nil {
			a.Logger.Errorf("error closing service: %s", err)
		}
	}()

	if decision.UseTUI {
		err = a.runTUI(ctx)
	} else {
		_, err = a.Service.Run(ctx, ui.NewPlain(a.Logger))
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, tea.ErrInterrupted) {
		a.Logger.Warnf("run cancelled, answers received so far are in %s", a.Service.Config.OutputFile)
		return nil
	}
	return err
}

// runTUI runs the test behind the viewer. Console logging is muted while the
// viewer owns the terminal; the event log still records every question.
func (a *App) runTUI(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.Logger.SetOutput(io.Discard)

	cols, rows := ui.Dimensions(a.Service.Config.WindowSize, a.Service.Config.FontSize)
	controller := ui.Start(a.Stdout, ui.Options{
		Cols:   cols,
		Rows:   rows,
		Cancel: cancel,
	})

	var g errgroup.Group
	var summary tester.Summary
	g.Go(func() error {
		var err error
		summary, err = a.Service.Run(ctx, controller)
		return err
	})
	g.Go(func() error {
		err := controller.Wait()
		cancel()
		return err
	})

	err := g.Wait()
	a.Logger.SetOutput(os.Stderr)
	if err == nil {
		a.Logger.Infof("wrote %d of %d answers to %s", summary.Answered, summary.Questions, summary.OutputFile)
	}
	return err
}

func (a *App) setLogLevel(level string) error {
	l, err := cblog.ParseLevel(level)
	if err != nil {
		return err
	}
	a.Logger.SetLevel(l)
	return nil
}

func printBanner(w io.Writer) {
	banner := `
██╗     ██╗     ███╗   ███╗    ████████╗███████╗███████╗████████╗
██║     ██║     ████╗ ████║    ╚══██╔══╝██╔════╝██╔════╝╚══██╔══╝
██║     ██║     ██╔████╔██║       ██║   █████╗  ███████╗   ██║   
██║     ██║     ██║╚██╔╝██║       ██║   ██╔══╝  ╚════██║   ██║   
███████╗███████╗██║ ╚═╝ ██║       ██║   ███████╗███████║   ██║   
╚══════╝╚══════╝╚═╝     ╚═╝       ╚═╝   ╚══════╝╚══════╝   ╚═╝   
  chat completion test harness // version %s

`
	fmt.Fprintf(w, banner, version)
}
