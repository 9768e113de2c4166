package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unixthat/reflow-comments/internal/config"
	"github.com/unixthat/reflow-comments/internal/logging"
)

const version = "0.1.0"

// exitError carries a non-zero exit status that needs no message, such
// as a check run that found work to do.
type exitError struct {
	code int
}

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err, os.Stderr))
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintf(stderr, "error: %s\n", err)
	return 1
}

// options holds the persistent flags.
type options struct {
	width       int
	configPath  string
	verbose     bool
	noFormat    bool
	formatter   string
	changed     bool
	noGitignore bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	a := &app{}

	root := &cobra.Command{
		Use:   "reflow [paths...]",
		Short: "Reflow over-long comments in Python source",
		Long: `reflow rewrites comments in Python files that run past the line width.

Commented-out print statements are reformatted with black, trailing
comments on long code lines move onto their own line, runs of long
comment lines become wrapped triple-quoted blocks, and existing
triple-quoted blocks are rewrapped.

Paths may be files or directories; directories are searched for
source files recursively. With no paths the current directory is used.`,
		Args:          cobra.ArbitraryArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd, opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.reflow(cmd.Context(), args, false)
		},
	}

	pf := root.PersistentFlags()
	pf.IntVarP(&opts.width, "width", "w", 0, "maximum line width (default from config, 79)")
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (default ./"+config.FileName+")")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "print every rewrite and debug logs")
	pf.BoolVar(&opts.noFormat, "no-format", false, "do not run the formatter on commented-out prints")
	pf.StringVar(&opts.formatter, "formatter", "", "formatter command and arguments (default black)")
	pf.BoolVar(&opts.changed, "changed", false, "only process files modified in the git work tree")
	pf.BoolVar(&opts.noGitignore, "no-gitignore", false, "process files matched by .gitignore")

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a " + config.FileName + " holding the current settings",
		Long: `init writes the settings in effect, after the config file, environment
and flags are applied, to a commented config file. The file is written to
--config when given and to ./` + config.FileName + ` otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if path == "" {
				path = config.FileName
			}
			return a.initConfig(path, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	root.AddCommand(
		initCmd,
		&cobra.Command{
			Use:   "check [paths...]",
			Short: "Report files that would be rewritten, without writing",
			Long: `check runs the same rules as reflow but leaves every file untouched.
It exits with status 1 when any file would change.`,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.reflow(cmd.Context(), args, true)
			},
		},
		&cobra.Command{
			Use:   "watch [dir]",
			Short: "Reflow files in dir each time they are saved",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				dir := "."
				if len(args) == 1 {
					dir = args[0]
				}
				return a.watch(cmd.Context(), dir)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "reflow "+version)
			},
		},
	)
	return root
}

// setup loads the config, applies flag overrides and builds the logger
// and output writer.
func (a *app) setup(cmd *cobra.Command, opts *options) error {
	// An explicit --config must exist, except for init, which creates it.
	path, required := opts.configPath, cmd.Name() != "init"
	if path == "" {
		path, required = config.FileName, false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("width") {
		cfg.Width = opts.width
	}
	if fields := strings.Fields(opts.formatter); len(fields) > 0 {
		cfg.Formatter.Command = fields[0]
		cfg.Formatter.Args = fields[1:]
	}
	if opts.noFormat {
		cfg.Formatter.Enabled = false
	}
	if opts.noGitignore {
		cfg.RespectGitignore = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logging.New(opts.verbose, cfg.Log.JSON)
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.cwd = cwd
	a.verbose = opts.verbose
	a.changedOnly = opts.changed
	a.w = newWriter(cmd.OutOrStdout())
	a.errw = cmd.ErrOrStderr()
	a.log.Debug("Configuration loaded",
		zap.String("config", path),
		zap.Int("width", cfg.Width),
		zap.Strings("extensions", cfg.Extensions),
		zap.Bool("formatter", cfg.Formatter.Enabled))
	return nil
}
