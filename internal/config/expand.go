package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Expand resolves the variables sysdash allows in path settings
// (state_file, log_file), then a leading ~. Supported variables are
// ${HOME}, ${USER} and ${XDG_CONFIG_HOME}; anything else is left as written.
func Expand(s string) string {
	if s == "" {
		return s
	}
	expanded := os.Expand(s, func(name string) string {
		switch name {
		case "HOME":
			return homeDir()
		case "USER":
			return userName()
		case "XDG_CONFIG_HOME":
			if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
				return dir
			}
			return filepath.Join(homeDir(), ".config")
		default:
			return "${" + name + "}"
		}
	})
	return ExpandTilde(expanded)
}

// ExpandTilde replaces a leading ~ or ~/ with the home directory.
// ~user forms are not supported and pass through unchanged.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func userName() string {
	for _, env := range []string{"USER", "LOGNAME", "USERNAME"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return "user"
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "~"
}
