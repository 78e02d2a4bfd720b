package compressor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Submitter defines the behaviour the transcode supervisor needs: handing a
// source file to the external transcoder and returning once the batch is
// accepted. The transcoder works detached; completion is observed on the
// filesystem, not through the process.
type Submitter interface {
	Submit(ctx context.Context, job Job) error
}

// Job describes one transcode submission.
type Job struct {
	// BatchName labels the batch in the transcoder UI.
	BatchName string
	// SourcePath is the input video.
	SourcePath string
	// OutputPath is where the transcoder writes the result.
	OutputPath string
	// Profile is the named transcoder setting to apply.
	Profile string
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps the Compressor CLI. Submitting returns as soon as the batch
// is queued; the transcode itself continues after this process exits.
type Client struct {
	binary string
	exec   Executor
}

// New constructs a Compressor client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("transcoder binary required")
	}
	client := &Client{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Submit queues one transcode batch.
func (c *Client) Submit(ctx context.Context, job Job) error {
	if job.SourcePath == "" {
		return errors.New("source path required")
	}
	if job.OutputPath == "" {
		return errors.New("output path required")
	}
	if job.Profile == "" {
		return errors.New("transcoder profile required")
	}
	name := job.BatchName
	if name == "" {
		name = "mediathek"
	}
	args := []string{
		"-batchname", name,
		"-jobpath", job.SourcePath,
		"-settingpath", job.Profile,
		"-locationpath", job.OutputPath,
	}
	if err := c.exec.Run(ctx, c.binary, args); err != nil {
		return fmt.Errorf("submit transcode batch %q: %w", name, err)
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail != "" {
			return fmt.Errorf("%w: %s", err, detail)
		}
		return err
	}
	return nil
}
