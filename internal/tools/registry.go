package tools

import (
	"context"
	"sort"

	"github.com/hyperifyio/periphery-audit/internal/apperr"
	"github.com/hyperifyio/periphery-audit/internal/results"
)

type handler func(ctx context.Context, raw []byte) (any, error)

// Registry maps tool names to their specs and handlers.
type Registry struct {
	specs    []ToolSpec
	handlers map[string]handler
}

// NewRegistry binds every built-in tool to svc.
func NewRegistry(svc *Service) *Registry {
	r := &Registry{specs: Specs(), handlers: map[string]handler{
		"check_periphery_installed": func(context.Context, []byte) (any, error) {
			return svc.CheckInstalled(), nil
		},
		"get_periphery_version": func(ctx context.Context, raw []byte) (any, error) {
			var req VersionRequest
			if err := decodeArgs(raw, &req); err != nil {
				return nil, err
			}
			return svc.GetVersion(ctx, req)
		},
		"scan_project": func(ctx context.Context, raw []byte) (any, error) {
			var req ScanRequest
			if err := decodeArgs(raw, &req); err != nil {
				return nil, err
			}
			return svc.Scan(ctx, req)
		},
		"scan_with_config": func(ctx context.Context, raw []byte) (any, error) {
			var req ConfigScanRequest
			if err := decodeArgs(raw, &req); err != nil {
				return nil, err
			}
			return svc.ScanWithConfig(ctx, req)
		},
		"analyze_unused_imports": func(ctx context.Context, raw []byte) (any, error) {
			var req ImportsRequest
			if err := decodeArgs(raw, &req); err != nil {
				return nil, err
			}
			return svc.UnusedImports(ctx, req)
		},
		"find_redundant_public": func(ctx context.Context, raw []byte) (any, error) {
			var req PublicRequest
			if err := decodeArgs(raw, &req); err != nil {
				return nil, err
			}
			return svc.RedundantPublic(ctx, req)
		},
		"scan_with_options": func(ctx context.Context, raw []byte) (any, error) {
			var req OptionsRequest
			if err := decodeArgs(raw, &req); err != nil {
				return nil, err
			}
			return svc.ScanWithOptions(ctx, req)
		},
	}}
	return r
}

// Specs lists the registered tools in manifest order.
func (r *Registry) Specs() []ToolSpec {
	out := make([]ToolSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Names returns the registered tool names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for n := range r.handlers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Call runs one tool and returns its result value or error.
func (r *Registry) Call(ctx context.Context, name string, raw []byte) (any, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, apperr.New(apperr.UnknownTool, name)
	}
	return h(ctx, raw)
}

// Dispatch runs one tool and always returns a serialized document: the
// tool's result on success, a failure envelope otherwise.
func (r *Registry) Dispatch(ctx context.Context, name string, raw []byte) string {
	v, err := r.Call(ctx, name, raw)
	if err != nil {
		return results.MustSerialize(results.FromError(err))
	}
	return results.MustSerialize(v)
}
