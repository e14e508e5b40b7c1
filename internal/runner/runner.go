// Package runner executes the analyzer binary with a bounded wall-clock
// budget and classifies how it terminated.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/go-logr/logr"

	"github.com/hyperifyio/periphery-audit/internal/apperr"
)

const (
	// DefaultTimeout bounds a single analyzer invocation.
	DefaultTimeout = 300 * time.Second
	// DefaultKillGrace is how long a timed-out process may take to honor
	// SIGTERM before it is killed.
	DefaultKillGrace = 2 * time.Second
)

// Runner spawns the analyzer. The zero value is not usable; call New.
type Runner struct {
	loc            Locator
	log            logr.Logger
	killGrace      time.Duration
	defaultTimeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for per-execution records.
func WithLogger(l logr.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithKillGrace overrides DefaultKillGrace.
func WithKillGrace(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.killGrace = d
		}
	}
}

// WithDefaultTimeout overrides DefaultTimeout for calls passing a zero timeout.
func WithDefaultTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.defaultTimeout = d
		}
	}
}

// New returns a Runner resolving the binary through loc.
func New(loc Locator, opts ...Option) *Runner {
	r := &Runner{
		loc:            loc,
		log:            logr.Discard(),
		killGrace:      DefaultKillGrace,
		defaultTimeout: DefaultTimeout,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// FindPath resolves the analyzer location afresh.
func (r *Runner) FindPath() (string, bool) { return r.loc.Find() }

// IsInstalled reports whether FindPath succeeds.
func (r *Runner) IsInstalled() bool {
	_, ok := r.loc.Find()
	return ok
}

// DefaultTimeout returns the timeout applied when Execute gets zero.
func (r *Runner) DefaultTimeout() time.Duration { return r.defaultTimeout }

type outcome string

const (
	outcomeCompleted outcome = "completed"
	outcomeTimedOut  outcome = "timeout"
	outcomeCanceled  outcome = "canceled"
)

// Execute runs the analyzer with args passed as discrete argv tokens and
// returns its stdout. A zero timeout uses the runner default. Errors are
// *apperr.Error of kind NotInstalled, Timeout or ExecutionFailed.
func (r *Runner) Execute(ctx context.Context, args []string, timeout time.Duration) (string, error) {
	bin, ok := r.loc.Find()
	if !ok {
		return "", apperr.New(apperr.NotInstalled, "")
	}
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}

	start := time.Now()
	var stdout bytes.Buffer
	stderr := newBoundedBuffer(maxStderrBytes)
	cmd := exec.Command(bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	// Children that inherit the pipes must not keep Wait blocked after the
	// analyzer itself has exited.
	cmd.WaitDelay = r.killGrace

	r.log.V(1).Info("starting analyzer", "path", bin, "argv", args, "timeout", timeout.String())
	if err := cmd.Start(); err != nil {
		r.log.Error(err, "analyzer start failed", "path", bin)
		return "", apperr.Newf(apperr.ExecutionFailed, "start: %v", err)
	}

	out, waitErr := r.wait(ctx, cmd, timeout)
	elapsed := time.Since(start)

	switch out {
	case outcomeTimedOut:
		r.log.Info("analyzer timed out", "argv", args, "timeout", timeout.String(), "ms", elapsed.Milliseconds())
		return "", apperr.New(apperr.Timeout, timeout.String())
	case outcomeCanceled:
		r.log.Info("analyzer canceled", "argv", args, "ms", elapsed.Milliseconds(), "reason", waitErr.Error())
		if errors.Is(waitErr, context.DeadlineExceeded) {
			return "", apperr.New(apperr.Timeout, timeout.String())
		}
		return "", apperr.New(apperr.ExecutionFailed, "canceled")
	}

	text, err := classify(cmd, waitErr, stdout.Bytes(), stderr.Bytes(), stderr.Truncated())
	r.log.Info("analyzer finished",
		"argv", args,
		"exit", exitCode(cmd),
		"ms", elapsed.Milliseconds(),
		"stdoutBytes", stdout.Len(),
		"stderrBytes", stderr.Len(),
		"stderrTruncated", stderr.Truncated(),
		"ok", err == nil,
	)
	return text, err
}

// wait races process exit against the timer and ctx; exactly one outcome is
// produced and the losing timer is always stopped.
func (r *Runner) wait(ctx context.Context, cmd *exec.Cmd, timeout time.Duration) (outcome, error) {
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		timer.Stop()
		return outcomeCompleted, err
	case <-timer.C:
		// An exit that landed in the same instant still counts as completion.
		select {
		case err := <-done:
			return outcomeCompleted, err
		default:
		}
		r.terminate(cmd, done)
		return outcomeTimedOut, nil
	case <-ctx.Done():
		r.kill(cmd, done)
		return outcomeCanceled, ctx.Err()
	}
}

// terminate asks the process to stop, then kills it once the grace expires.
// It does not wait past the grace; the Wait goroutine reaps the process.
func (r *Runner) terminate(cmd *exec.Cmd, done <-chan error) {
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return
		}
		_ = cmd.Process.Kill()
	}
	grace := time.NewTimer(r.killGrace)
	defer grace.Stop()
	select {
	case <-done:
	case <-grace.C:
		r.log.V(1).Info("analyzer ignored SIGTERM; killing")
		_ = cmd.Process.Kill()
	}
}

func (r *Runner) kill(cmd *exec.Cmd, done <-chan error) {
	_ = cmd.Process.Kill()
	grace := time.NewTimer(r.killGrace)
	defer grace.Stop()
	select {
	case <-done:
	case <-grace.C:
	}
}

// classify maps an observed exit to stdout or an error. A signal-terminated
// process is reported as Timeout, since a termination request is the
// expected cause.
func classify(cmd *exec.Cmd, waitErr error, stdout, stderr []byte, stderrTruncated bool) (string, error) {
	if errors.Is(waitErr, exec.ErrWaitDelay) && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		waitErr = nil
	}
	if waitErr == nil {
		if !utf8.Valid(stdout) {
			return "", nil
		}
		return string(stdout), nil
	}

	var ee *exec.ExitError
	if errors.As(waitErr, &ee) {
		if terminatedBySignal(ee.ProcessState) {
			return "", apperr.New(apperr.Timeout, "")
		}
		msg := strings.TrimSpace(strings.ToValidUTF8(string(stderr), "�"))
		if msg == "" {
			msg = ee.Error()
		} else if stderrTruncated {
			msg += " ... (truncated)"
		}
		return "", apperr.New(apperr.ExecutionFailed, msg)
	}
	return "", apperr.New(apperr.ExecutionFailed, waitErr.Error())
}

func terminatedBySignal(ps *os.ProcessState) bool {
	if ps == nil {
		return false
	}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return true
	}
	return ps.ExitCode() == -1
}

func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}

// Version runs `periphery version` and trims surrounding whitespace.
func (r *Runner) Version(ctx context.Context) (string, error) {
	out, err := r.Execute(ctx, []string{"version"}, 0)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
