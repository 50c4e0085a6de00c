package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// Step names the stage of page recognition a command belongs to.
type Step string

const (
	StepRender    Step = "render"    // pdftoppm, PDF page to image
	StepRecognize Step = "recognize" // tesseract, image to hOCR
)

// Command is one external tool invocation for one page of one source.
type Command struct {
	Step   Step
	Tool   string
	Args   []string
	Source string
	Page   int
}

// ToolError is returned when a tool exits non-zero. Stderr is kept so it can
// surface as a page warning.
type ToolError struct {
	Command Command
	Stderr  string
	Err     error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s page %d: %s: %v", e.Command.Step, e.Command.Page, e.Command.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Runner runs the external OCR tools. Tests swap in a fake.
type Runner interface {
	Run(ctx context.Context, c Command) (stdout []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, c Command) ([]byte, error) {
	start := time.Now()
	event := "ocr." + string(c.Step)
	r.logger.Debug(event+".start", "tool", c.Tool, "source", c.Source, "page", c.Page)

	cmd := exec.CommandContext(ctx, c.Tool, c.Args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	if err := cmd.Run(); err != nil {
		stderr := truncate(errb.String(), 8<<10)
		r.logger.Error(event+".failed",
			"tool", c.Tool,
			"source", c.Source,
			"page", c.Page,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
			"stderr", stderr,
		)
		return nil, &ToolError{Command: c, Stderr: stderr, Err: err}
	}
	r.logger.Debug(event+".ok",
		"tool", c.Tool,
		"source", c.Source,
		"page", c.Page,
		"duration_ms", time.Since(start).Milliseconds(),
		"stdout_bytes", out.Len(),
	)
	return out.Bytes(), nil
}

// warnings turns a failed command into page warnings.
func warnings(err error) []string {
	var te *ToolError
	if errors.As(err, &te) && te.Stderr != "" {
		return []string{te.Stderr}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
