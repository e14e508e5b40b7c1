package main

import (
	"context"
	"errors"
	"io"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/periphery-audit/internal/config"
	"github.com/hyperifyio/periphery-audit/internal/logging"
	"github.com/hyperifyio/periphery-audit/internal/runner"
	"github.com/hyperifyio/periphery-audit/internal/tools"
)

// deps are the process-level collaborators tests replace.
type deps struct {
	locator runner.Locator
	latest  tools.LatestChecker
	getenv  func(string) string
}

func defaultDeps() deps {
	return deps{locator: runner.DefaultLocator(), latest: newGithubLatest()}
}

// errReported marks failures whose output has already been written.
var errReported = errors.New("reported")

// app is the state shared by every command once flags are parsed.
type app struct {
	deps   deps
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	timeoutFlag   string
	logLevelFlag  string
	logFormatFlag string

	cfg      config.Config
	log      logr.Logger
	runner   *runner.Runner
	service  *tools.Service
	registry *tools.Registry
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, d deps) int {
	a := &app{deps: d, stdin: stdin, stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			safeFprintln(stderr, "error:", err)
		}
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "periphery-audit",
		Short: "Run the Periphery Swift analyzer and normalize its findings",
		Long: `periphery-audit locates the periphery CLI, validates project paths, runs scans
under a time budget and prints findings as a stable JSON envelope.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.timeoutFlag, "timeout", "", "analyzer time budget, e.g. 90s or 300 (env "+config.EnvTimeout+")")
	pf.StringVar(&a.logLevelFlag, "log-level", "", "info or debug (env "+config.EnvLogLevel+")")
	pf.StringVar(&a.logFormatFlag, "log-format", "", "console or json (env "+config.EnvLogFormat+")")
	_ = root.RegisterFlagCompletionFunc("log-level", fixedCompletion("info", "debug"))
	_ = root.RegisterFlagCompletionFunc("log-format", fixedCompletion("console", "json"))

	root.AddCommand(
		a.checkCmd(),
		a.versionCmd(),
		a.configCmd(),
		a.scanCmd(),
		a.scanConfigCmd(),
		a.unusedImportsCmd(),
		a.redundantPublicCmd(),
		a.scanOptionsCmd(),
		a.callCmd(),
		a.toolsCmd(),
		a.reportCmd(),
		a.browseCmd(),
	)
	return root
}

// setup resolves configuration (flags over env over defaults) and wires the
// runner, service and registry.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var (
		cfg config.Config
		err error
	)
	if a.deps.getenv != nil {
		cfg, err = config.FromEnv(a.deps.getenv)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("timeout") {
		d, err := config.ParseDurationFlexible(a.timeoutFlag)
		if err != nil {
			return errors.New("--timeout: " + err.Error())
		}
		cfg.Timeout, cfg.TimeoutSource = d, "flag"
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevelFlag
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = a.logFormatFlag
	}

	log, err := logging.NewWithWriter(a.stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	a.runner = runner.New(a.deps.locator,
		runner.WithLogger(log.WithName("runner")),
		runner.WithDefaultTimeout(cfg.Timeout),
		runner.WithKillGrace(cfg.KillGrace),
	)
	opts := []tools.Option{tools.WithLogger(log.WithName("tools"))}
	if a.deps.latest != nil {
		opts = append(opts, tools.WithLatestChecker(a.deps.latest))
	}
	a.service = tools.NewService(a.runner, opts...)
	a.registry = tools.NewRegistry(a.service)
	log.V(1).Info("configured", "timeout", cfg.Timeout.String(), "timeoutSource", cfg.TimeoutSource,
		"killGrace", cfg.KillGrace.String())
	return nil
}

func fixedCompletion(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
