// Package features holds the behaviour scenarios of studydash, run with godog.
package features

import (
	"fmt"
	"os"
	"strings"
)

// sharedContext holds ALL state for a scenario - used by all step definitions
type sharedContext struct {
	// Common fields
	err        error
	tempDir    string
	configPath string
}

// newTempDir creates the scenario's scratch directory once
func (c *sharedContext) newTempDir() error {
	if c.tempDir != "" {
		return nil
	}
	dir, err := os.MkdirTemp("", "studydash-features-")
	if err != nil {
		return err
	}
	c.tempDir = dir
	return nil
}

// theOperationShouldFailWith checks the last error mentions expected
func (c *sharedContext) theOperationShouldFailWith(expected string) error {
	if c.err == nil {
		return fmt.Errorf("expected an error containing %q, got none", expected)
	}
	if !strings.Contains(strings.ToLower(c.err.Error()), strings.ToLower(expected)) {
		return fmt.Errorf("expected an error containing %q, got: %v", expected, c.err)
	}
	return nil
}

// cleanup removes temporary directories
func (c *sharedContext) cleanup() {
	if c.tempDir != "" {
		_ = os.RemoveAll(c.tempDir)
	}
}
