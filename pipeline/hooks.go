package pipeline

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/libref/errors"
	"github.com/teranos/libref/logger"
)

// HookResult is the outcome of one post-generate command.
type HookResult struct {
	Command  string
	Duration time.Duration
	Err      error
}

// runHooks runs each post-generate command in order from the project root.
// Commands are split
// with shell quoting rules but not run through a shell. A failing hook is
// reported and does not stop the others.
func (p *Pipeline) runHooks(ctx context.Context, outDir string, report *Report) {
	log := logger.LoggerFromContext(ctx).Named("hooks")
	timeout := time.Duration(p.cfg.Hooks.TimeoutSeconds) * time.Second

	for _, line := range p.cfg.Hooks.PostGenerate {
		start := time.Now()
		err := runHook(ctx, line, p.cfg.Root, timeout, []string{
			"LIBREF_RUN_ID=" + report.RunID,
			"LIBREF_OUTPUT_DIR=" + outDir,
			"LIBREF_MANIFEST=" + p.cfg.Path(p.cfg.Manifest.Path),
		}, log.Debugw)
		res := HookResult{Command: line, Duration: time.Since(start), Err: err}
		report.Hooks = append(report.Hooks, res)

		if err != nil {
			log.Warnw("Post-generate hook failed", "command", line, logger.FieldError, err)
			continue
		}
		log.Infow("Post-generate hook finished", "command", line, logger.FieldDurationMS, res.Duration.Milliseconds())
	}
}

func runHook(ctx context.Context, line, dir string, timeout time.Duration, env []string, debugw func(string, ...interface{})) error {
	argv, err := shellquote.Split(line)
	if err != nil {
		return errors.Wrapf(err, "parse hook %q", line)
	}
	if len(argv) == 0 {
		return errors.New("empty hook command")
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		debugw("Hook output", "command", argv[0], "output", strings.TrimSpace(string(out)))
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.Wrapf(err, "%s timed out after %s", argv[0], timeout)
		}
		return errors.WithDetail(errors.Wrapf(err, "%s", argv[0]), strings.TrimSpace(string(out)))
	}
	return nil
}
