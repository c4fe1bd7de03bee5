package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Ning0612/hfind/internal/config"
	"github.com/Ning0612/hfind/internal/domain"
	"github.com/Ning0612/hfind/internal/logger"
	"github.com/Ning0612/hfind/internal/service"
	"github.com/Ning0612/hfind/internal/state"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X ...commands.Version=..."
var Version = "0.1.0"

// options holds the parsed command line
type options struct {
	query      domain.Query
	typ        string
	configPath string
	history    int
}

// exitError carries the process exit code for a failure
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// RootCmd creates the hfind command. Results go to stdout, diagnostics to
// stderr.
func RootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "hfind [flags] <path>",
		Short: "Find files on HDFS, local disk, S3 and Google Drive",
		Long: `hfind walks a directory tree and prints every entry that passes all
of the given filters, in the manner of find(1).

The path may be a bare path, a glob (/logs/2024-*/part-*) or a URI such as
hdfs://nn:8020/data, s3://bucket/prefix, gdrive:///Reports or file:///tmp.
A leading "." is replaced by your home directory on the target store.`,
		Example: `  hfind -t f -s +1G hdfs:///data
  hfind -M +30 -D -l -h /user/etl/staging
  hfind -U -t f s3://warehouse/events`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.history > 0 {
				return cobra.MaximumNArgs(1)(cmd, args)
			}
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one path, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.query.Root = args[0]
			}
			opts.query.Type = domain.TypeFilter(opts.typ)
			return run(cmd.Context(), opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.SortFlags = false
	q := &opts.query
	f.StringVarP(&q.Size, "size", "s", "", "size filter, e.g. +10M, -1G, 512 (suffixes K M G T P E)")
	f.StringVarP(&q.Replication, "repl", "r", "", "replication filter, e.g. -3 or +1")
	f.StringVarP(&q.After, "after", "a", "", "modified after date (YYYY-MM-DD[ HH:MM[:SS]])")
	f.StringVarP(&q.Before, "before", "b", "", "modified before date (YYYY-MM-DD[ HH:MM[:SS]])")
	f.StringVarP(&q.MMin, "mmin", "m", "", "modified n minutes ago (-n newer, +n older)")
	f.StringVarP(&q.MTime, "mtime", "M", "", "modified n days ago (-n newer, +n older)")
	f.StringVarP(&opts.typ, "type", "t", "", "entry type: f (file) or d (directory)")
	f.StringVarP(&q.Name, "name", "n", "", "regular expression matched against the printed path")
	f.StringVarP(&q.Owner, "user", "u", "", "owner name")
	f.StringVarP(&q.Group, "group", "g", "", "group name")
	f.BoolVarP(&q.Listing, "ls", "l", false, "long listing")
	f.BoolVarP(&q.FullURI, "uri", "i", false, "print full URIs")
	f.BoolVarP(&q.UnderReplicated, "under", "U", false, "under-replicated files only")
	f.BoolVarP(&q.Human, "human", "h", false, "human readable sizes in long listing")
	f.BoolVarP(&q.PruneHidden, "no-hidden", "D", false, "skip hidden entries and their subtrees")
	f.StringVar(&opts.configPath, "config", "", "config file (default: search standard locations)")
	f.IntVar(&opts.history, "history", 0, "show the N most recent recorded runs and exit")
	// -h is taken by --human
	f.BoolP("help", "H", false, "help for hfind")

	return cmd
}

// Execute runs hfind with args and returns the process exit code
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := RootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		fmt.Fprintf(stderr, "error: %v\n", ee.err)
		return ee.code
	}

	// flag and argument errors
	fmt.Fprintf(stderr, "error: %v\n", err)
	fmt.Fprintf(stderr, "Run '%s -H' for usage.\n", cmd.Name())
	return 1
}

func run(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return &exitError{code: 1, err: err}
	}

	logCfg := logger.FromSettings(cfg.Log)
	logCfg.Console = stderr
	if err := logger.Init(logCfg); err != nil {
		return &exitError{code: 1, err: err}
	}
	defer logger.Shutdown()

	var history *state.Manager
	if cfg.History.Enabled {
		history, err = state.NewManager(config.ExpandPath(cfg.History.Dir))
		if err != nil {
			// history is best effort
			logger.Get().Warn("history disabled", "error", err)
			history = nil
		} else {
			defer history.Close()
		}
	}

	if opts.history > 0 {
		return showHistory(history, opts.query.Root, opts.history, stdout)
	}

	svc, err := service.NewFindService(cfg, service.NewRegistry(cfg))
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	if history != nil {
		svc.SetHistory(history)
	}

	if _, err := svc.Find(ctx, opts.query, stdout); err != nil {
		return classify(err, opts.query.Root, cfg.ExitCodeOnError)
	}
	return nil
}

// classify maps a failed query to its exit code. Option errors are usage
// errors; everything else happened while processing the root.
func classify(err error, root string, failCode int) error {
	switch {
	case errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidSpec),
		errors.Is(err, domain.ErrInvalidPattern),
		errors.Is(err, domain.ErrInvalidType):
		return &exitError{code: 1, err: err}
	}
	return &exitError{
		code: failCode,
		err:  fmt.Errorf("could not process %s: %w", root, err),
	}
}
