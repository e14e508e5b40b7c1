package tools

import (
	"strings"

	"github.com/hyperifyio/periphery-audit/internal/pathcheck"
)

// scanArgs builds the analyzer argv for a project scan. Schemes are only
// forwarded for Xcode projects; Swift packages have none.
func scanArgs(path pathcheck.ValidatedPath, t Target, format string) []string {
	args := []string{"scan", "--project", string(path)}
	if len(t.Schemes) > 0 && pathcheck.IsXcodeProject(path) {
		args = append(args, "--schemes", strings.Join(t.Schemes, ","))
	}
	if len(t.Targets) > 0 {
		args = append(args, "--targets", strings.Join(t.Targets, ","))
	}
	if format == "" {
		format = FormatJSON
	}
	return append(args, "--format", format)
}

// optionArgs appends the scan_with_options flags after the base scan args.
func optionArgs(path pathcheck.ValidatedPath, r OptionsRequest, format string) []string {
	args := scanArgs(path, r.Target, format)
	if r.RetainPublic {
		args = append(args, "--retain-public")
	}
	if r.RetainObjcAccessible {
		args = append(args, "--retain-objc-accessible")
	}
	if r.DisableUnusedImportAnalysis {
		args = append(args, "--disable-unused-import-analysis")
	}
	if r.Verbose {
		args = append(args, "--verbose")
	}
	if r.IndexStorePath != "" {
		args = append(args, "--index-store-path", r.IndexStorePath)
	}
	return args
}

func configArgs(path pathcheck.ValidatedPath) []string {
	return []string{"scan", "--config", string(path)}
}
