package results

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/hyperifyio/periphery-audit/internal/apperr"
)

// DefaultWhereBudget bounds a whole Where pass.
const DefaultWhereBudget = time.Second

// Where keeps the records for which the JavaScript expression is truthy.
// Each record is bound as `r` with fields kind, name, modifiers, location
// and hints. The expression has no host bindings besides `r`. Evaluation
// across all records is interrupted once budget elapses.
func Where(records []Record, expr string, budget time.Duration) ([]Record, error) {
	if strings.TrimSpace(expr) == "" {
		return append([]Record{}, records...), nil
	}
	if budget <= 0 {
		budget = DefaultWhereBudget
	}

	prog, err := goja.Compile("where", "(function (r) { return ("+expr+"); })", true)
	if err != nil {
		return nil, apperr.New(apperr.InvalidFilter, err.Error())
	}

	vm := goja.New()
	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	var (
		out     []Record
		evalErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if p := recover(); p != nil {
				evalErr = fmt.Errorf("panic: %v", p)
			}
		}()
		out, evalErr = evalWhere(vm, prog, records)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		vm.Interrupt("timeout")
		<-done
		return nil, apperr.Newf(apperr.InvalidFilter, "evaluation exceeded %s", budget)
	}
	if evalErr != nil {
		return nil, apperr.New(apperr.InvalidFilter, evalErr.Error())
	}
	return out, nil
}

func evalWhere(vm *goja.Runtime, prog *goja.Program, records []Record) ([]Record, error) {
	fnVal, err := vm.RunProgram(prog)
	if err != nil {
		return nil, err
	}
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, fmt.Errorf("expression did not compile to a predicate")
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		obj, err := recordObject(vm, rec)
		if err != nil {
			return nil, err
		}
		v, err := fn(goja.Undefined(), obj)
		if err != nil {
			return nil, err
		}
		if v.ToBoolean() {
			out = append(out, rec)
		}
	}
	return out, nil
}

func recordObject(vm *goja.Runtime, rec Record) (*goja.Object, error) {
	obj := vm.NewObject()
	fields := []struct {
		name string
		val  any
	}{
		{"kind", rec.Kind},
		{"name", rec.Name},
		{"location", rec.Location},
		{"modifiers", stringArray(vm, rec.Modifiers)},
		{"hints", stringArray(vm, rec.Hints)},
	}
	for _, f := range fields {
		if err := obj.Set(f.name, f.val); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func stringArray(vm *goja.Runtime, values []string) *goja.Object {
	items := make([]any, len(values))
	for i, v := range values {
		items[i] = v
	}
	return vm.NewArray(items...)
}
