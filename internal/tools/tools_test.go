package tools

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/periphery-audit/internal/apperr"
	"github.com/hyperifyio/periphery-audit/internal/pathcheck"
)

const findings = `[
  {"kind": "import", "name": "Foundation", "modifiers": [], "location": "A.swift:1:8"},
  {"kind": "class", "name": "Helper", "modifiers": ["public"], "location": "B.swift:3:14"},
  {"kind": "function", "name": "run()", "modifiers": ["open"], "location": "C.swift:9:10"},
  {"kind": "import", "name": "Combine", "modifiers": [], "location": "C.swift:2:8"}
]`

type fakeAnalyzer struct {
	path     string
	out      string
	err      error
	version  string
	verErr   error
	calls    [][]string
	timeouts []time.Duration
}

func (f *fakeAnalyzer) FindPath() (string, bool) { return f.path, f.path != "" }

func (f *fakeAnalyzer) Execute(_ context.Context, args []string, timeout time.Duration) (string, error) {
	f.calls = append(f.calls, append([]string(nil), args...))
	f.timeouts = append(f.timeouts, timeout)
	return f.out, f.err
}

func (f *fakeAnalyzer) Version(context.Context) (string, error) {
	return f.version, f.verErr
}

type fakeLatest struct {
	latest   string
	outdated bool
	err      error
}

func (f fakeLatest) CheckLatest(string) (string, bool, error) { return f.latest, f.outdated, f.err }

func swiftPackage(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, pathcheck.ManifestName), []byte("// swift-tools-version:5.9\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return dir
}

func xcodeProject(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "App.xcodeproj")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return dir
}

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("not json: %v\n%s", err, s)
	}
	return m
}

func TestScanArgs(t *testing.T) {
	pkg := pathcheck.ValidatedPath("/src/Pkg")
	proj := pathcheck.ValidatedPath("/src/App.xcodeproj")
	tgt := Target{Schemes: []string{"App", "AppTests"}, Targets: []string{"Core", "UI"}}

	got := scanArgs(proj, tgt, "")
	want := []string{"scan", "--project", "/src/App.xcodeproj", "--schemes", "App,AppTests", "--targets", "Core,UI", "--format", "json"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("xcode args:\n got %q\nwant %q", got, want)
	}

	got = scanArgs(pkg, tgt, "csv")
	want = []string{"scan", "--project", "/src/Pkg", "--targets", "Core,UI", "--format", "csv"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("package args must drop schemes:\n got %q\nwant %q", got, want)
	}
}

func TestOptionArgs(t *testing.T) {
	req := OptionsRequest{
		RetainPublic:                true,
		RetainObjcAccessible:        true,
		DisableUnusedImportAnalysis: true,
		Verbose:                     true,
		IndexStorePath:              "/tmp/index store",
	}
	got := optionArgs("/src/Pkg", req, FormatJSON)
	want := []string{
		"scan", "--project", "/src/Pkg", "--format", "json",
		"--retain-public", "--retain-objc-accessible", "--disable-unused-import-analysis",
		"--verbose", "--index-store-path", "/tmp/index store",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q\nwant %q", got, want)
	}
	if got := optionArgs("/src/Pkg", OptionsRequest{}, FormatJSON); len(got) != 5 {
		t.Fatalf("no options should add no flags: %q", got)
	}
}

func TestConfigArgs(t *testing.T) {
	got := configArgs("/src/.periphery.yml")
	if !reflect.DeepEqual(got, []string{"scan", "--config", "/src/.periphery.yml"}) {
		t.Fatalf("got %q", got)
	}
}

func TestCheckInstalled(t *testing.T) {
	svc := NewService(&fakeAnalyzer{path: "/opt/homebrew/bin/periphery"})
	got := svc.CheckInstalled()
	if !got.Installed || got.Message != "Periphery is installed and ready" || got.Path != "/opt/homebrew/bin/periphery" {
		t.Fatalf("unexpected: %+v", got)
	}

	got = NewService(&fakeAnalyzer{}).CheckInstalled()
	if got.Installed || got.Path != "" || !strings.Contains(got.Message, "brew install peripheryapp/periphery/periphery") {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestGetVersion(t *testing.T) {
	fa := &fakeAnalyzer{version: "2.18.0"}
	svc := NewService(fa, WithLatestChecker(fakeLatest{latest: "2.21.2", outdated: true}))

	info, err := svc.GetVersion(context.Background(), VersionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Version != "2.18.0" || info.RawOutput != "2.18.0" || !info.SupportsJSONFormat || info.Outdated != nil {
		t.Fatalf("unexpected: %+v", info)
	}

	info, err = svc.GetVersion(context.Background(), VersionRequest{CheckLatest: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Latest != "2.21.2" || info.Outdated == nil || !*info.Outdated {
		t.Fatalf("unexpected latest: %+v", info)
	}
}

func TestGetVersion_LatestFailureIsNotFatal(t *testing.T) {
	svc := NewService(&fakeAnalyzer{version: "1.9"}, WithLatestChecker(fakeLatest{err: errors.New("offline")}))
	info, err := svc.GetVersion(context.Background(), VersionRequest{CheckLatest: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.SupportsJSONFormat || info.Latest != "" || info.Outdated != nil {
		t.Fatalf("unexpected: %+v", info)
	}
}

func TestGetVersion_NotInstalled(t *testing.T) {
	svc := NewService(&fakeAnalyzer{verErr: apperr.New(apperr.NotInstalled, "")})
	if _, err := svc.GetVersion(context.Background(), VersionRequest{}); !errors.Is(err, apperr.ErrNotInstalled) {
		t.Fatalf("expected NotInstalled, got %v", err)
	}
}

func TestScan_JSONBecomesEnvelope(t *testing.T) {
	dir := swiftPackage(t)
	fa := &fakeAnalyzer{path: "/bin/periphery", out: findings}
	svc := NewService(fa)

	v, err := svc.Scan(context.Background(), ScanRequest{Target: Target{ProjectPath: dir, TimeoutSec: 7}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := decode(t, mustJSON(t, v))
	if doc["success"] != true || len(doc["results"].([]any)) != 4 {
		t.Fatalf("unexpected envelope: %v", doc)
	}
	if fa.timeouts[0] != 7*time.Second {
		t.Fatalf("timeout not forwarded: %v", fa.timeouts)
	}
	if got := fa.calls[0]; got[len(got)-1] != "json" {
		t.Fatalf("expected default json format, got %q", got)
	}
}

func TestScan_RawFormat(t *testing.T) {
	dir := xcodeProject(t)
	fa := &fakeAnalyzer{path: "/bin/periphery", out: "A.swift:1:8: warning: Unused import"}
	v, err := NewService(fa).Scan(context.Background(), ScanRequest{
		Target: Target{ProjectPath: dir, Schemes: []string{"App"}},
		Format: "xcode",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "{\n  \"format\": \"xcode\",\n  \"output\": \"A.swift:1:8: warning: Unused import\",\n  \"success\": true\n}"
	if got := mustJSON(t, v); got != want {
		t.Fatalf("got\n%s\nwant\n%s", got, want)
	}
	if !reflect.DeepEqual(fa.calls[0][3:5], []string{"--schemes", "App"}) {
		t.Fatalf("schemes missing: %q", fa.calls[0])
	}
}

func TestScan_AutoFormat(t *testing.T) {
	dir := swiftPackage(t)
	cases := []struct {
		version string
		want    string
		kind    apperr.Kind
	}{
		{version: "2.18.0", want: "json"},
		{version: "1.9", want: "xcode"},
		{version: "vX", kind: apperr.InvalidVersion},
	}
	for _, tc := range cases {
		fa := &fakeAnalyzer{path: "/bin/periphery", out: "", version: tc.version}
		_, err := NewService(fa).Scan(context.Background(), ScanRequest{Target: Target{ProjectPath: dir}, Format: "auto"})
		if tc.kind != "" {
			if k, _ := apperr.KindOf(err); k != tc.kind {
				t.Fatalf("%s: expected %s, got %v", tc.version, tc.kind, err)
			}
			if len(fa.calls) != 0 {
				t.Fatalf("%s: analyzer must not run", tc.version)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.version, err)
		}
		if got := fa.calls[0][len(fa.calls[0])-1]; got != tc.want {
			t.Fatalf("%s: format %q want %q", tc.version, got, tc.want)
		}
	}
}

func TestScan_ValidationHappensBeforeSpawn(t *testing.T) {
	dir := swiftPackage(t)
	cases := []struct {
		req  ScanRequest
		kind apperr.Kind
	}{
		{ScanRequest{}, apperr.MissingParameter},
		{ScanRequest{Target: Target{ProjectPath: filepath.Join(dir, "missing")}}, apperr.InvalidProjectPath},
		{ScanRequest{Target: Target{ProjectPath: dir, Targets: []string{"a,b"}}}, apperr.InvalidArguments},
		{ScanRequest{Target: Target{ProjectPath: dir, Schemes: []string{" "}}}, apperr.InvalidArguments},
		{ScanRequest{Target: Target{ProjectPath: dir, TimeoutSec: -1}}, apperr.InvalidArguments},
		{ScanRequest{Target: Target{ProjectPath: dir}, Format: "yaml"}, apperr.InvalidArguments},
	}
	for i, tc := range cases {
		fa := &fakeAnalyzer{path: "/bin/periphery"}
		_, err := NewService(fa).Scan(context.Background(), tc.req)
		if k, _ := apperr.KindOf(err); k != tc.kind {
			t.Fatalf("case %d: expected %s, got %v", i, tc.kind, err)
		}
		if len(fa.calls) != 0 {
			t.Fatalf("case %d: analyzer must not run", i)
		}
	}
}

func TestScan_ParseFailureIsDistinctFromEmpty(t *testing.T) {
	dir := swiftPackage(t)
	_, err := NewService(&fakeAnalyzer{path: "/bin/periphery", out: "garbage"}).
		Scan(context.Background(), ScanRequest{Target: Target{ProjectPath: dir}})
	if !errors.Is(err, apperr.ErrParsingFailed) {
		t.Fatalf("expected ParsingFailed, got %v", err)
	}

	v, err := NewService(&fakeAnalyzer{path: "/bin/periphery", out: "[]"}).
		Scan(context.Background(), ScanRequest{Target: Target{ProjectPath: dir}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "{\n  \"results\": [],\n  \"success\": true,\n  \"summary\": {\n    \"by_kind\": {},\n    \"total_unused\": 0\n  }\n}"
	if got := mustJSON(t, v); got != want {
		t.Fatalf("got\n%s\nwant\n%s", got, want)
	}
}

func TestScanWithConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), ".periphery.yml")
	if err := os.WriteFile(cfg, []byte("project: App.xcodeproj\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fa := &fakeAnalyzer{path: "/bin/periphery", out: findings}
	v, err := NewService(fa).ScanWithConfig(context.Background(), ConfigScanRequest{ConfigPath: cfg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc := decode(t, mustJSON(t, v)); doc["success"] != true || doc["summary"] == nil {
		t.Fatalf("expected findings envelope: %v", doc)
	}
	if !reflect.DeepEqual(fa.calls[0], []string{"scan", "--config", cfg}) {
		t.Fatalf("unexpected argv: %q", fa.calls[0])
	}

	fa = &fakeAnalyzer{path: "/bin/periphery", out: "warning: unused"}
	v, err = NewService(fa).ScanWithConfig(context.Background(), ConfigScanRequest{ConfigPath: cfg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "{\n  \"output\": \"warning: unused\",\n  \"success\": true\n}"
	if got := mustJSON(t, v); got != want {
		t.Fatalf("got\n%s\nwant\n%s", got, want)
	}

	_, err = NewService(fa).ScanWithConfig(context.Background(), ConfigScanRequest{ConfigPath: filepath.Dir(cfg)})
	if !errors.Is(err, apperr.ErrInvalidProjectPath) {
		t.Fatalf("expected InvalidProjectPath for a directory, got %v", err)
	}
}

func TestUnusedImportsAndRedundantPublic(t *testing.T) {
	dir := swiftPackage(t)
	fa := &fakeAnalyzer{path: "/bin/periphery", out: findings}
	svc := NewService(fa)

	env, err := svc.UnusedImports(context.Background(), ImportsRequest{Target{ProjectPath: dir}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(env.Results) != 2 || env.Summary.TotalUnused != 2 || env.Summary.ByKind["import"] != 2 {
		t.Fatalf("unexpected imports envelope: %+v", env)
	}

	env, err = svc.RedundantPublic(context.Background(), PublicRequest{Target{ProjectPath: dir, Schemes: []string{"App"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(env.Results) != 2 || env.Results[0].Name != "Helper" || env.Results[1].Name != "run()" {
		t.Fatalf("unexpected public envelope: %+v", env.Results)
	}
	for _, call := range fa.calls {
		if call[len(call)-1] != "json" {
			t.Fatalf("focused scans always request json: %q", call)
		}
		for _, a := range call {
			if a == "--schemes" {
				t.Fatalf("schemes must not be sent for a package: %q", call)
			}
		}
	}
}

func TestScanWithOptions_Where(t *testing.T) {
	dir := swiftPackage(t)
	fa := &fakeAnalyzer{path: "/bin/periphery", out: findings}
	v, err := NewService(fa).ScanWithOptions(context.Background(), OptionsRequest{
		ScanRequest:  ScanRequest{Target: Target{ProjectPath: dir}},
		RetainPublic: true,
		Where:        `r.kind === "import" && r.location.indexOf("C.swift") === 0`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := decode(t, mustJSON(t, v))
	res := doc["results"].([]any)
	if len(res) != 1 || res[0].(map[string]any)["name"] != "Combine" {
		t.Fatalf("unexpected filtered results: %v", res)
	}
	if !reflect.DeepEqual(fa.calls[0][5:], []string{"--retain-public"}) {
		t.Fatalf("unexpected argv: %q", fa.calls[0])
	}
}

func TestScanWithOptions_WhereNeedsJSON(t *testing.T) {
	dir := swiftPackage(t)
	fa := &fakeAnalyzer{path: "/bin/periphery", version: "1.9"}
	for _, format := range []string{"csv", "auto"} {
		_, err := NewService(fa).ScanWithOptions(context.Background(), OptionsRequest{
			ScanRequest: ScanRequest{Target: Target{ProjectPath: dir}, Format: format},
			Where:       "true",
		})
		if !errors.Is(err, apperr.ErrInvalidArguments) {
			t.Fatalf("%s: expected InvalidArguments, got %v", format, err)
		}
	}
	if len(fa.calls) != 0 {
		t.Fatalf("analyzer must not run: %q", fa.calls)
	}
}

func TestScanWithOptions_BadWhere(t *testing.T) {
	dir := swiftPackage(t)
	_, err := NewService(&fakeAnalyzer{path: "/bin/periphery", out: findings}).ScanWithOptions(context.Background(), OptionsRequest{
		ScanRequest: ScanRequest{Target: Target{ProjectPath: dir}},
		Where:       "r.kind ===",
	})
	if !errors.Is(err, apperr.ErrInvalidFilter) {
		t.Fatalf("expected InvalidFilter, got %v", err)
	}
}

func TestExecutionErrorsPropagate(t *testing.T) {
	dir := swiftPackage(t)
	for _, want := range []error{apperr.ErrTimeout, apperr.ErrNotInstalled, apperr.ErrExecutionFailed} {
		fa := &fakeAnalyzer{path: "/bin/periphery", err: want}
		_, err := NewService(fa).Scan(context.Background(), ScanRequest{Target: Target{ProjectPath: dir}})
		if !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	reg := &Registry{handlers: map[string]handler{
		"value": func(context.Context, []byte) (any, error) { return v, nil },
	}}
	return reg.Dispatch(context.Background(), "value", nil)
}
