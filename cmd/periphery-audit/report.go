package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/periphery-audit/internal/report"
	"github.com/hyperifyio/periphery-audit/internal/results"
	"github.com/hyperifyio/periphery-audit/internal/tools"
	"github.com/hyperifyio/periphery-audit/internal/tui"
)

// findingsSource selects between a live scan and a saved analyzer JSON file.
type findingsSource struct {
	target tools.Target
	from   string
}

func (s *findingsSource) bind(cmd *cobra.Command) {
	targetFlags(cmd, &s.target)
	cmd.Flags().StringVar(&s.from, "from", "", "read findings from a saved `periphery scan --format json` file instead of scanning")
}

func (a *app) loadFindings(ctx context.Context, src findingsSource) ([]results.Record, error) {
	if src.from != "" {
		b, err := os.ReadFile(src.from)
		if err != nil {
			return nil, fmt.Errorf("read findings: %w", err)
		}
		return results.Parse(string(b))
	}
	return a.service.Findings(ctx, src.target)
}

func (a *app) reportCmd() *cobra.Command {
	var (
		src     findingsSource
		pdfPath string
		title   string
	)
	cmd := &cobra.Command{
		Use:   "report [project]",
		Short: "Render findings as a text summary or a PDF document",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(_ *cobra.Command, args []string) error {
			return requireSource(&src, args)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, err := a.loadFindings(cmd.Context(), src)
			env := results.Success(recs)
			if err != nil {
				env = results.FromError(err)
			}

			if pdfPath == "" {
				if werr := report.WriteText(a.stdout, env); werr != nil {
					return werr
				}
			} else {
				if werr := writePDFFile(pdfPath, env, title); werr != nil {
					return werr
				}
				safeFprintf(a.stdout, "Report saved to %s\n", pdfPath)
			}
			if err != nil {
				return errReported
			}
			return nil
		},
	}
	src.bind(cmd)
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "write a PDF report to this file")
	cmd.Flags().StringVar(&title, "title", "Periphery report", "PDF document title")
	return cmd
}

func (a *app) browseCmd() *cobra.Command {
	var src findingsSource
	cmd := &cobra.Command{
		Use:   "browse [project]",
		Short: "Browse findings interactively",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(_ *cobra.Command, args []string) error {
			return requireSource(&src, args)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			load := func(ctx context.Context) ([]results.Record, error) { return a.loadFindings(ctx, src) }
			p := tea.NewProgram(tui.New(cmd.Context(), load),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(a.stdin),
				tea.WithOutput(a.stdout),
			)
			_, err := p.Run()
			return err
		},
	}
	src.bind(cmd)
	return cmd
}

// requireSource takes the project from args unless --from is given.
func requireSource(src *findingsSource, args []string) error {
	switch {
	case len(args) == 1 && src.from != "":
		return fmt.Errorf("give either a project or --from, not both")
	case len(args) == 1:
		src.target.ProjectPath = args[0]
	case src.from == "":
		return fmt.Errorf("a project path or --from is required")
	}
	return nil
}

func writePDFFile(path string, env results.Envelope, title string) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close report: %w", cerr)
		}
	}()
	return report.WritePDF(f, env, title)
}
