package imgconv

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// AdobeRGBProfile is the ICC profile poster JPEGs are matched to.
const AdobeRGBProfile = "/System/Library/ColorSync/Profiles/AdobeRGB1998.icc"

// Converter defines the poster conversion the assembler can request when a
// group only offers a non-canonical image format.
type Converter interface {
	ToJPEG(ctx context.Context, sourcePath, targetPath string) error
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

// Client wraps the sips image tool.
type Client struct {
	binary string
	exec   Executor
}

// New constructs a sips client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("image converter binary required")
	}
	client := &Client{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ToJPEG converts sourcePath into an Adobe RGB JPEG at targetPath.
func (c *Client) ToJPEG(ctx context.Context, sourcePath, targetPath string) error {
	if sourcePath == "" || targetPath == "" {
		return errors.New("source and target paths required")
	}
	args := []string{
		"--setProperty", "format", "jpeg",
		"--matchTo", AdobeRGBProfile,
		sourcePath,
		"--out", targetPath,
	}
	if err := c.exec.Run(ctx, c.binary, args); err != nil {
		return fmt.Errorf("convert %s to jpeg: %w", sourcePath, err)
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
