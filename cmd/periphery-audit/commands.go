package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/periphery-audit/internal/results"
	"github.com/hyperifyio/periphery-audit/internal/tools"
)

var formatChoices = []string{"json", "xcode", "csv", "checkstyle", "codeclimate", "github-actions", "github-markdown", "gitlab", "auto"}

// dispatch runs one tool with req marshaled as its arguments and prints the
// resulting document. Failure envelopes and a missing analyzer exit 1.
func (a *app) dispatch(ctx context.Context, name string, req any) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode %s arguments: %w", name, err)
	}
	return a.dispatchRaw(ctx, name, raw)
}

func (a *app) dispatchRaw(ctx context.Context, name string, raw []byte) error {
	v, err := a.registry.Call(ctx, name, raw)
	if err != nil {
		safeFprintln(a.stdout, results.MustSerialize(results.FromError(err)))
		return errReported
	}
	safeFprintln(a.stdout, results.MustSerialize(v))
	if ic, ok := v.(tools.InstallationCheck); ok && !ic.Installed {
		return errReported
	}
	return nil
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether the periphery CLI is installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.dispatch(cmd.Context(), "check_periphery_installed", struct{}{})
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	var req tools.VersionRequest
	var self bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the installed periphery version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if self {
				printVersion(a.stdout)
				return nil
			}
			return a.dispatch(cmd.Context(), "get_periphery_version", req)
		},
	}
	cmd.Flags().BoolVar(&req.CheckLatest, "check-latest", false, "compare with the latest periphery release on GitHub")
	cmd.Flags().BoolVar(&self, "self", false, "print the periphery-audit build version instead")
	return cmd
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration and where each value came from",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return printResolvedConfig(a, a.stdout)
		},
	}
}

// targetFlags binds the project selection flags shared by scan commands.
func targetFlags(cmd *cobra.Command, t *tools.Target) {
	cmd.Flags().StringSliceVar(&t.Schemes, "schemes", nil, "build schemes to scan (Xcode only), comma separated")
	cmd.Flags().StringSliceVar(&t.Targets, "targets", nil, "targets to analyze, comma separated")
	cmd.Flags().IntVar(&t.TimeoutSec, "timeout-sec", 0, "override the time budget for this scan in seconds")
}

func formatFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVar(format, "format", "", "analyzer output format: "+strings.Join(formatChoices, ", ")+" (default json)")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion(formatChoices...))
}

func (a *app) scanCmd() *cobra.Command {
	var req tools.ScanRequest
	cmd := &cobra.Command{
		Use:   "scan <project>",
		Short: "Scan an .xcodeproj or Swift package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.ProjectPath = args[0]
			return a.dispatch(cmd.Context(), "scan_project", req)
		},
	}
	targetFlags(cmd, &req.Target)
	formatFlag(cmd, &req.Format)
	return cmd
}

func (a *app) scanConfigCmd() *cobra.Command {
	var req tools.ConfigScanRequest
	cmd := &cobra.Command{
		Use:   "scan-config <.periphery.yml>",
		Short: "Scan using a periphery YAML configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.ConfigPath = args[0]
			return a.dispatch(cmd.Context(), "scan_with_config", req)
		},
	}
	cmd.Flags().IntVar(&req.TimeoutSec, "timeout-sec", 0, "override the time budget for this scan in seconds")
	return cmd
}

func (a *app) unusedImportsCmd() *cobra.Command {
	var req tools.ImportsRequest
	cmd := &cobra.Command{
		Use:   "unused-imports <project>",
		Short: "List unused imports only",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.ProjectPath = args[0]
			return a.dispatch(cmd.Context(), "analyze_unused_imports", req)
		},
	}
	targetFlags(cmd, &req.Target)
	return cmd
}

func (a *app) redundantPublicCmd() *cobra.Command {
	var req tools.PublicRequest
	cmd := &cobra.Command{
		Use:   "redundant-public <project>",
		Short: "List unused public or open declarations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.ProjectPath = args[0]
			return a.dispatch(cmd.Context(), "find_redundant_public", req)
		},
	}
	targetFlags(cmd, &req.Target)
	return cmd
}

func (a *app) scanOptionsCmd() *cobra.Command {
	var req tools.OptionsRequest
	cmd := &cobra.Command{
		Use:   "scan-options <project>",
		Short: "Scan with additional periphery flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.ProjectPath = args[0]
			return a.dispatch(cmd.Context(), "scan_with_options", req)
		},
	}
	targetFlags(cmd, &req.Target)
	formatFlag(cmd, &req.Format)
	f := cmd.Flags()
	f.BoolVar(&req.RetainPublic, "retain-public", false, "retain all public declarations")
	f.BoolVar(&req.RetainObjcAccessible, "retain-objc-accessible", false, "retain @objc declarations")
	f.BoolVar(&req.DisableUnusedImportAnalysis, "disable-unused-import-analysis", false, "skip unused import analysis")
	f.StringVar(&req.IndexStorePath, "index-store-path", "", "custom index store location")
	f.BoolVar(&req.Verbose, "verbose", false, "enable verbose analyzer output")
	f.StringVar(&req.Where, "where", "", `JavaScript predicate over each finding r, e.g. 'r.kind === "class"'`)
	return cmd
}

func (a *app) callCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool>",
		Short: "Invoke a tool with JSON arguments read from stdin",
		Long: `call reads one JSON object of tool arguments from stdin and prints the tool
result on stdout. Failures are printed as {"error": ..., "success": false}.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := io.ReadAll(a.stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			return a.dispatchRaw(cmd.Context(), args[0], raw)
		},
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			var names []string
			for _, s := range tools.Specs() {
				names = append(names, s.Name)
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
	}
}

func (a *app) toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool registry with input schemas",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			out, err := results.Serialize(tools.Manifest{Tools: a.registry.Specs()})
			if err != nil {
				return err
			}
			safeFprintln(a.stdout, out)
			return nil
		},
	}
}
