package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/sysdash/internal/prefs"
	"github.com/rileyhilliard/sysdash/internal/theme"
	"gopkg.in/yaml.v3"
)

// StateFileCheck verifies the preference file can be read and written.
type StateFileCheck struct {
	Path string
}

func (c *StateFileCheck) Name() string     { return "state_file" }
func (c *StateFileCheck) Category() string { return CategoryState }

func (c *StateFileCheck) Run(ctx context.Context) CheckResult {
	dir := filepath.Dir(c.Path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "State directory " + dir + " doesn't exist yet",
			Suggestion: "It is created on the first theme toggle, or run with --fix",
			Fixable:    true,
		}
	}

	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No preferences stored yet (" + c.Path + ")",
		}
	}
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Cannot read " + c.Path + ": " + err.Error(),
			Suggestion: "Check the file permissions",
		}
	}

	var probe map[string]interface{}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    c.Path + " is not valid YAML",
			Suggestion: "Delete the file to reset your preferences",
		}
	}

	msg := "Preferences at " + c.Path
	if v, ok := prefs.NewFileStore(c.Path).Get(theme.PreferenceKey); ok {
		msg = fmt.Sprintf("%s (theme: %s)", msg, v)
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: msg,
	}
}

// Fix creates the state directory.
func (c *StateFileCheck) Fix() error {
	return os.MkdirAll(filepath.Dir(c.Path), 0755)
}
