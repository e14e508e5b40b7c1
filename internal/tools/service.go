// Package tools turns typed tool requests into analyzer invocations and
// normalizes what comes back. Every handler returns a value that serializes
// to one of the envelope shapes; Dispatch is the JSON boundary.
package tools

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"github.com/hyperifyio/periphery-audit/internal/apperr"
	"github.com/hyperifyio/periphery-audit/internal/pathcheck"
	"github.com/hyperifyio/periphery-audit/internal/results"
)

// Analyzer is the subset of *runner.Runner the handlers need.
type Analyzer interface {
	FindPath() (string, bool)
	Execute(ctx context.Context, args []string, timeout time.Duration) (string, error)
	Version(ctx context.Context) (string, error)
}

// LatestChecker reports the newest published analyzer release.
type LatestChecker interface {
	CheckLatest(current string) (latest string, outdated bool, err error)
}

const readyMessage = "Periphery is installed and ready"

// InstallationCheck is the check_periphery_installed result.
type InstallationCheck struct {
	Installed bool   `json:"installed"`
	Message   string `json:"message"`
	Path      string `json:"path,omitempty"`
}

// VersionInfo is the get_periphery_version result.
type VersionInfo struct {
	Latest             string `json:"latest,omitempty"`
	Outdated           *bool  `json:"outdated,omitempty"`
	RawOutput          string `json:"raw_output"`
	SupportsJSONFormat bool   `json:"supports_json_format"`
	Version            string `json:"version"`
}

// Service executes tool requests against an Analyzer.
type Service struct {
	analyzer    Analyzer
	latest      LatestChecker
	log         logr.Logger
	whereBudget time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger; the default discards.
func WithLogger(l logr.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithLatestChecker enables get_periphery_version check_latest.
func WithLatestChecker(c LatestChecker) Option {
	return func(s *Service) { s.latest = c }
}

// WithWhereBudget bounds each scan_with_options where predicate run.
func WithWhereBudget(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.whereBudget = d
		}
	}
}

// NewService returns a Service bound to a.
func NewService(a Analyzer, opts ...Option) *Service {
	s := &Service{analyzer: a, log: logr.Discard(), whereBudget: results.DefaultWhereBudget}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CheckInstalled never fails; absence is reported in the result.
func (s *Service) CheckInstalled() InstallationCheck {
	path, ok := s.analyzer.FindPath()
	if !ok {
		return InstallationCheck{Message: apperr.New(apperr.NotInstalled, "").Error()}
	}
	return InstallationCheck{Installed: true, Message: readyMessage, Path: path}
}

// GetVersion queries the analyzer version and optionally compares it with
// the latest release. An unreachable release source is logged, not fatal.
func (s *Service) GetVersion(ctx context.Context, req VersionRequest) (VersionInfo, error) {
	raw, err := s.analyzer.Version(ctx)
	if err != nil {
		return VersionInfo{}, err
	}
	info := VersionInfo{
		RawOutput:          raw,
		SupportsJSONFormat: results.SupportsJSONFormat(raw),
		Version:            raw,
	}
	if req.CheckLatest && s.latest != nil {
		latest, outdated, err := s.latest.CheckLatest(raw)
		if err != nil {
			s.log.Info("latest release lookup failed", "err", err.Error())
			return info, nil
		}
		info.Latest = latest
		info.Outdated = &outdated
	}
	return info, nil
}

// Scan runs scan_project. JSON output becomes an Envelope; any other format
// is returned raw.
func (s *Service) Scan(ctx context.Context, req ScanRequest) (any, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	path, err := pathcheck.ValidateProjectPath(req.ProjectPath)
	if err != nil {
		return nil, err
	}
	format, err := s.resolveFormat(ctx, req.Format)
	if err != nil {
		return nil, err
	}
	out, err := s.analyzer.Execute(ctx, scanArgs(path, req.Target, format), req.timeout())
	if err != nil {
		return nil, err
	}
	if format != FormatJSON {
		return results.Raw(out, format), nil
	}
	records, err := results.Parse(out)
	if err != nil {
		return nil, err
	}
	return results.Success(records), nil
}

// ScanWithConfig runs scan_with_config. The config decides the format, so
// output that does not parse as findings is returned raw.
func (s *Service) ScanWithConfig(ctx context.Context, req ConfigScanRequest) (any, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	path, err := pathcheck.ValidateConfigPath(req.ConfigPath)
	if err != nil {
		return nil, err
	}
	out, err := s.analyzer.Execute(ctx, configArgs(path), time.Duration(req.TimeoutSec)*time.Second)
	if err != nil {
		return nil, err
	}
	records, perr := results.Parse(out)
	if perr != nil {
		s.log.V(1).Info("config scan output is not json findings", "err", perr.Error())
		return results.Raw(out, ""), nil
	}
	return results.Success(records), nil
}

// UnusedImports runs analyze_unused_imports.
func (s *Service) UnusedImports(ctx context.Context, req ImportsRequest) (results.Envelope, error) {
	records, err := s.scanJSON(ctx, req.Target)
	if err != nil {
		return results.Envelope{}, err
	}
	return results.Success(results.UnusedImports(records)), nil
}

// RedundantPublic runs find_redundant_public.
func (s *Service) RedundantPublic(ctx context.Context, req PublicRequest) (results.Envelope, error) {
	records, err := s.scanJSON(ctx, req.Target)
	if err != nil {
		return results.Envelope{}, err
	}
	return results.Success(results.RedundantPublic(records)), nil
}

// ScanWithOptions runs scan_with_options, applying the where predicate to
// parsed findings when one is given.
func (s *Service) ScanWithOptions(ctx context.Context, req OptionsRequest) (any, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	path, err := pathcheck.ValidateProjectPath(req.ProjectPath)
	if err != nil {
		return nil, err
	}
	format, err := s.resolveFormat(ctx, req.Format)
	if err != nil {
		return nil, err
	}
	if req.Where != "" && format != FormatJSON {
		return nil, apperr.Newf(apperr.InvalidArguments, "where requires json output, analyzer only supports %s", format)
	}
	out, err := s.analyzer.Execute(ctx, optionArgs(path, req, format), req.timeout())
	if err != nil {
		return nil, err
	}
	if format != FormatJSON {
		return results.Raw(out, format), nil
	}
	records, err := results.Parse(out)
	if err != nil {
		return nil, err
	}
	if req.Where != "" {
		records, err = results.Where(records, req.Where, s.whereBudget)
		if err != nil {
			return nil, err
		}
	}
	return results.Success(records), nil
}

// Findings runs a JSON scan and returns every record, for the report and
// browse surfaces.
func (s *Service) Findings(ctx context.Context, t Target) ([]results.Record, error) {
	return s.scanJSON(ctx, t)
}

func (s *Service) scanJSON(ctx context.Context, t Target) ([]results.Record, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	path, err := pathcheck.ValidateProjectPath(t.ProjectPath)
	if err != nil {
		return nil, err
	}
	out, err := s.analyzer.Execute(ctx, scanArgs(path, t, FormatJSON), t.timeout())
	if err != nil {
		return nil, err
	}
	return results.Parse(out)
}

// resolveFormat maps "" to json and "auto" to json or xcode depending on
// what the installed analyzer can emit.
func (s *Service) resolveFormat(ctx context.Context, format string) (string, error) {
	switch format {
	case "":
		return FormatJSON, nil
	case FormatAuto:
	default:
		return format, nil
	}
	raw, err := s.analyzer.Version(ctx)
	if err != nil {
		return "", err
	}
	if _, ok := results.ParseVersion(raw); !ok {
		return "", apperr.New(apperr.InvalidVersion, raw)
	}
	if results.SupportsJSONFormat(raw) {
		return FormatJSON, nil
	}
	s.log.V(1).Info("analyzer predates json output", "version", raw)
	return FormatXcode, nil
}
