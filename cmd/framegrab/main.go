package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/tacusci/logging/v2"
	"github.com/tauraamui/framegrab/pkg/config"
	"github.com/tauraamui/framegrab/pkg/configdef"
	"github.com/tauraamui/framegrab/pkg/journal"
	"github.com/tauraamui/framegrab/pkg/log"
	"github.com/tauraamui/framegrab/pkg/session"
)

const usage = "Usage: framegrab disk | live | runs | init [flags]"

var errUsage = errors.New(usage)

var lookupEnv = os.LookupEnv

func manage(args []string, out io.Writer) (string, error) {
	if len(args) == 0 {
		return usage, nil
	}

	command, rest := args[0], args[1:]
	switch command {
	case string(configdef.SourceDisk), string(configdef.SourceLive):
		return play(configdef.SourceKind(command), rest, out)
	case "runs":
		return listRuns(rest, out)
	case "init":
		return setup()
	default:
		return "", errUsage
	}
}

// setup writes the default config file for the user to edit.
func setup() (string, error) {
	path, err := config.DefaultCreator().Create()
	if err != nil {
		if !errors.Is(err, configdef.ErrConfigAlreadyExists) {
			return "", err
		}
		log.Warn("%v: %s", err, path)
		return "Nothing to do...", nil
	}
	return fmt.Sprintf("Created default config at %s", path), nil
}

func play(kind configdef.SourceKind, args []string, out io.Writer) (string, error) {
	fs, opts := newFlagSet(string(kind), out)
	if err := opts.parse(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return "", nil
		}
		return "", err
	}

	values, err := config.FileResolver(opts.configPath).Resolve()
	if err != nil {
		return "", configdef.ConfigurationError(err)
	}
	values, err = opts.apply(kind, values)
	if err != nil {
		return "", err
	}
	if err := values.RunValidate(); err != nil {
		return "", configdef.ConfigurationError(err)
	}

	deps := session.Deps{Lookup: lookupEnv}
	if path := journal.ResolvePath(values.Journal, lookupEnv); len(path) > 0 {
		j, err := journal.Open(path)
		if err != nil {
			return "", err
		}
		defer j.Close()
		deps.Journal = j
	}

	s, err := session.FromValues(values, deps)
	if err != nil {
		return "", err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Playing %s...", s.Source())
	result, err := s.Play(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprint(out, "\r")
			return fmt.Sprintf("Interrupted after %d frames", result.Delivered), nil
		}
		return "", err
	}

	return fmt.Sprintf(
		"Delivered %d frames of %s in %s", result.Delivered, result.Dimensions, result.Elapsed.Round(time.Millisecond),
	), nil
}

func listRuns(args []string, out io.Writer) (string, error) {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("journal", "", "sqlite journal to read")
	limit := fs.Int("n", 10, "number of runs to list")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return "", nil
		}
		return "", err
	}

	if len(*path) == 0 {
		values, err := config.DefaultResolver().Resolve()
		if err != nil {
			return "", configdef.ConfigurationError(err)
		}
		*path = values.Journal
	}
	resolved := journal.ResolvePath(*path, lookupEnv)
	if len(resolved) == 0 {
		return "", configdef.ConfigurationError(errors.New("no journal configured, use -journal or FRAMEGRAB_JOURNAL"))
	}

	j, err := journal.Open(resolved)
	if err != nil {
		return "", err
	}
	defer j.Close()

	runs, err := j.Recent(*limit)
	if err != nil {
		return "", err
	}
	writeRuns(out, runs)
	return "", nil
}

func writeRuns(out io.Writer, runs []journal.Run) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tSTARTED\tDELIVERED\tOUTCOME\tSOURCE")
	for _, run := range runs {
		outcome := "ok"
		switch {
		case run.Failed():
			outcome = run.Failure
		case !run.Finished():
			outcome = "unfinished"
		}
		fmt.Fprintf(
			w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			run.ID, run.Kind, run.StartedAt.Format(time.RFC3339), run.Delivered, outcome, run.Source,
		)
	}
	w.Flush()
}

func init() {
	level, _ := lookupEnv("FRAMEGRAB_LOGGING_LEVEL")
	log.SetLevel(level)
}

func main() {
	status, err := manage(os.Args[1:], os.Stdout)
	if err != nil {
		logging.Error(err.Error()) //nolint
		os.Exit(1)
	}

	if len(status) > 0 {
		fmt.Println(status)
	}
}
