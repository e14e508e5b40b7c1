package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hyperifyio/periphery-audit/internal/apperr"
)

// Target selects what a scan analyzes. Schemes only apply to Xcode projects.
type Target struct {
	ProjectPath string   `json:"project_path"`
	Schemes     []string `json:"schemes,omitempty"`
	Targets     []string `json:"targets,omitempty"`
	// TimeoutSec overrides the runner timeout for this call; 0 keeps it.
	TimeoutSec int `json:"timeout_sec,omitempty"`
}

// ScanRequest is the input of scan_project.
type ScanRequest struct {
	Target
	// Format is passed to --format; empty means json, "auto" picks json or
	// xcode based on the installed analyzer version.
	Format string `json:"format,omitempty"`
}

// ConfigScanRequest is the input of scan_with_config.
type ConfigScanRequest struct {
	ConfigPath string `json:"config_path"`
	TimeoutSec int    `json:"timeout_sec,omitempty"`
}

// ImportsRequest is the input of analyze_unused_imports.
type ImportsRequest struct {
	Target
}

// PublicRequest is the input of find_redundant_public.
type PublicRequest struct {
	Target
}

// OptionsRequest is the input of scan_with_options.
type OptionsRequest struct {
	ScanRequest
	RetainPublic                bool   `json:"retain_public,omitempty"`
	RetainObjcAccessible        bool   `json:"retain_objc_accessible,omitempty"`
	DisableUnusedImportAnalysis bool   `json:"disable_unused_import_analysis,omitempty"`
	IndexStorePath              string `json:"index_store_path,omitempty"`
	Verbose                     bool   `json:"verbose,omitempty"`
	// Where is an optional JavaScript predicate over each finding.
	Where string `json:"where,omitempty"`
}

// VersionRequest is the input of get_periphery_version.
type VersionRequest struct {
	// CheckLatest compares against the newest published analyzer release.
	CheckLatest bool `json:"check_latest,omitempty"`
}

const (
	FormatJSON  = "json"
	FormatXcode = "xcode"
	FormatAuto  = "auto"
)

var knownFormats = map[string]struct{}{
	FormatJSON:        {},
	FormatXcode:       {},
	FormatAuto:        {},
	"csv":             {},
	"checkstyle":      {},
	"codeclimate":     {},
	"github-actions":  {},
	"github-markdown": {},
	"gitlab":          {},
}

// decodeArgs unmarshals tool arguments; empty input is an empty object.
func decodeArgs(raw []byte, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperr.New(apperr.InvalidArguments, err.Error())
	}
	return nil
}

func (t Target) validate() error {
	if strings.TrimSpace(t.ProjectPath) == "" {
		return apperr.New(apperr.MissingParameter, "project_path")
	}
	if err := validateList("schemes", t.Schemes); err != nil {
		return err
	}
	if err := validateList("targets", t.Targets); err != nil {
		return err
	}
	if t.TimeoutSec < 0 {
		return apperr.New(apperr.InvalidArguments, "timeout_sec must not be negative")
	}
	return nil
}

func (t Target) timeout() time.Duration {
	return time.Duration(t.TimeoutSec) * time.Second
}

// validateList rejects entries that would change meaning once comma-joined.
func validateList(field string, values []string) error {
	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			return apperr.Newf(apperr.InvalidArguments, "%s[%d] is empty", field, i)
		}
		if strings.Contains(v, ",") {
			return apperr.Newf(apperr.InvalidArguments, "%s[%d] must not contain ','", field, i)
		}
	}
	return nil
}

func (r ScanRequest) validate() error {
	if err := r.Target.validate(); err != nil {
		return err
	}
	if r.Format == "" {
		return nil
	}
	if _, ok := knownFormats[r.Format]; !ok {
		return apperr.Newf(apperr.InvalidArguments, "unsupported format %q", r.Format)
	}
	return nil
}

func (r ConfigScanRequest) validate() error {
	if strings.TrimSpace(r.ConfigPath) == "" {
		return apperr.New(apperr.MissingParameter, "config_path")
	}
	if r.TimeoutSec < 0 {
		return apperr.New(apperr.InvalidArguments, "timeout_sec must not be negative")
	}
	return nil
}

func (r OptionsRequest) validate() error {
	if err := r.ScanRequest.validate(); err != nil {
		return err
	}
	if r.IndexStorePath != "" && strings.TrimSpace(r.IndexStorePath) == "" {
		return apperr.New(apperr.InvalidArguments, "index_store_path is blank")
	}
	if r.Where != "" && r.Format != "" && r.Format != FormatJSON && r.Format != FormatAuto {
		return apperr.New(apperr.InvalidArguments, fmt.Sprintf("where requires json output, got format %q", r.Format))
	}
	return nil
}
