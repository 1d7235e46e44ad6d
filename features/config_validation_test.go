package features

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"github.com/drew/studydash/internal/config"
)

type configValidationContext struct {
	*sharedContext
	result *config.ValidationResult
}

func (c *configValidationContext) aConfigFile(content *godog.DocString) error {
	if err := c.newTempDir(); err != nil {
		return err
	}
	c.configPath = filepath.Join(c.tempDir, "studydash.toml")
	return os.WriteFile(c.configPath, []byte(content.Content), 0644)
}

func (c *configValidationContext) noConfigFile() error {
	if err := c.newTempDir(); err != nil {
		return err
	}
	c.configPath = filepath.Join(c.tempDir, "missing.toml")
	return nil
}

func (c *configValidationContext) iValidateTheConfigFile() error {
	c.result, c.err = config.ValidateConfigFile(c.configPath)
	return nil
}

func (c *configValidationContext) theConfigShouldBe(state string) error {
	if c.err != nil {
		return fmt.Errorf("validation failed to run: %v", c.err)
	}
	if c.result.Valid != (state == "valid") {
		return fmt.Errorf("expected the config to be %s, errors: %v", state, c.result.Errors)
	}
	return nil
}

func (c *configValidationContext) thereShouldBeWarnings(n int) error {
	if got := len(c.result.Warnings); got != n {
		return fmt.Errorf("expected %d warnings, got %d: %v", n, got, c.result.Warnings)
	}
	return nil
}

func hasField(errs []config.ValidationError, field string) bool {
	for _, e := range errs {
		if strings.HasPrefix(e.Field, field) {
			return true
		}
	}
	return false
}

func (c *configValidationContext) theValidationShouldReport(field string) error {
	if !hasField(c.result.Errors, field) {
		return fmt.Errorf("expected an error for %s, got %v", field, c.result.Errors)
	}
	return nil
}

func (c *configValidationContext) theValidationShouldWarnAbout(field string) error {
	if !hasField(c.result.Warnings, field) {
		return fmt.Errorf("expected a warning for %s, got %v", field, c.result.Warnings)
	}
	return nil
}

// InitializeConfigValidationScenario registers the config validation steps
func InitializeConfigValidationScenario(ctx *godog.ScenarioContext, shared *sharedContext) {
	c := &configValidationContext{sharedContext: shared}

	ctx.Step(`^a config file:$`, c.aConfigFile)
	ctx.Step(`^no config file$`, c.noConfigFile)
	ctx.Step(`^I validate the config file$`, c.iValidateTheConfigFile)
	ctx.Step(`^the config should be (valid|invalid)$`, c.theConfigShouldBe)
	ctx.Step(`^there should be (\d+) warnings$`, c.thereShouldBeWarnings)
	ctx.Step(`^the validation should report "([^"]*)"$`, c.theValidationShouldReport)
	ctx.Step(`^the validation should warn about "([^"]*)"$`, c.theValidationShouldWarnAbout)
}
