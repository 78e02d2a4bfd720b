package tagger

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// SubmittedLabel marks a source file whose transcode batch has been handed
// off. Its presence makes resubmission a no-op.
const SubmittedLabel = "An Apple Kompressor übergeben"

// Tagger defines the label operations the supervisor relies on.
type Tagger interface {
	HasLabel(ctx context.Context, path, label string) (bool, error)
	AddLabel(ctx context.Context, path, label string) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
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

// Client wraps the macOS tag CLI for Finder labels.
type Client struct {
	binary string
	exec   Executor
}

// New constructs a tag client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("tagger binary required")
	}
	client := &Client{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// HasLabel reports whether path already carries label.
func (c *Client) HasLabel(ctx context.Context, path, label string) (bool, error) {
	output, err := c.exec.Run(ctx, c.binary, []string{"--list", "--no-name", path})
	if err != nil {
		return false, fmt.Errorf("list labels for %s: %w", path, err)
	}
	for _, existing := range strings.Split(output, ",") {
		if strings.TrimSpace(existing) == label {
			return true, nil
		}
	}
	return false, nil
}

// AddLabel attaches label to path. Adding an already-present label is safe,
// so callers needing idempotence can skip the HasLabel round trip.
func (c *Client) AddLabel(ctx context.Context, path, label string) error {
	if _, err := c.exec.Run(ctx, c.binary, []string{"--add", label, path}); err != nil {
		return fmt.Errorf("add label %q to %s: %w", label, path, err)
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	text := strings.TrimSpace(string(output))
	if err != nil {
		if text != "" {
			return "", fmt.Errorf("%w: %s", err, text)
		}
		return "", err
	}
	return text, nil
}
