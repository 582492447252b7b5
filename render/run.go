// Package render wraps the external collaborators around the
// synchronization core: LilyPond rendering, source sanitization,
// audio synthesis and video assembly.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes external tools synchronously, capturing combined
// output. Stage invocations are blocking; callers may bound them
// through the context.
type Runner struct {
	Log *slog.Logger
}

// Run invokes name with args in dir (empty means inherit) and returns
// its combined output. A non-zero exit is an error carrying the
// captured output.
func (r *Runner) Run(ctx context.Context, dir string, name string, args ...string) (string, error) {
	r.Log.Debug("running command", "command", name, "args", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s failed: %w\n%s", name, err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// Output invokes name with args and returns its stdout alone, for
// tools that write their result to stdout and diagnostics to stderr.
func (r *Runner) Output(ctx context.Context, name string, args ...string) (string, error) {
	r.Log.Debug("running command", "command", name, "args", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s failed: %w\n%s", name, err, strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}

// LookPath reports whether the named binary can be found.
func LookPath(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("binary %q not found", name)
	}
	return nil
}
