// Package config manages the ambient per-user preferences file
// (~/.pbeditrc), modeled directly on cmd/nnav/config.go's ~/.nnav
// handling: same key=value line format, same "create with commented
// defaults if missing, lock permissions down either way" behavior.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const userConfigFile = ".pbeditrc"

// Config is the set of ambient preferences read from ~/.pbeditrc. These
// seed a session's layout.Config and CLI defaults; they are never
// required (every field has a sane zero-value fallback).
type Config struct {
	// ProtoPath lists additional schema search roots, appended to any
	// -I/--proto_path flags given on the command line.
	ProtoPath []string
	// ShowComments/ShowBinary/ShowDataTypes mirror layout.Config's
	// corresponding visibility toggles as session-start defaults.
	ShowComments bool
	ShowBinary   bool
	ShowDataTypes bool
	// LogPath is where internal/logging writes when non-empty.
	LogPath string
	Debug   bool
}

// ensurePath guarantees ~/.pbeditrc exists with secure permissions,
// creating it with commented defaults on first run.
func ensurePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	cfgPath := filepath.Join(home, userConfigFile)

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		// #nosec G304 -- cfgPath is derived from $HOME, not attacker-controlled.
		f, err := os.OpenFile(cfgPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
		if err != nil {
			return "", err
		}
		defer f.Close()
		_, _ = f.WriteString(`# pbedit configuration
# proto_path: extra schema search root(s), one per line, repeat the key to add more
# show_comments: true/false, show schema doc comments inline by default
# show_binary: true/false, show raw bytes alongside decoded scalar values
# show_data_types: true/false, show the trailing type tag column
# log_path: file to write debug logs to; empty disables logging
# debug: true/false, verbose logging when log_path is set
show_comments=false
show_binary=false
show_data_types=true
log_path=
debug=false
`)
	} else if err == nil {
		_ = os.Chmod(cfgPath, 0o600)
	}
	return cfgPath, nil
}

// parseLines turns ~/.pbeditrc's key=value lines into a map, repeating
// a key (proto_path) accumulating into a slice under a separate return.
func parseLines(data string) (map[string]string, []string) {
	m := map[string]string{}
	var protoPaths []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}
		k := strings.ToLower(strings.TrimSpace(kv[0]))
		v := strings.TrimSpace(kv[1])
		if k == "proto_path" {
			if v != "" {
				protoPaths = append(protoPaths, v)
			}
			continue
		}
		m[k] = v
	}
	return m, protoPaths
}

func expandTilde(p string) (string, error) {
	if p == "" || p[0] != '~' {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if p == "~" {
		return home, nil
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:]), nil
	}
	return p, nil
}

func parseBool(s string, fallback bool) bool {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return v
}

// Load reads ~/.pbeditrc, creating it with defaults if missing. A
// load/parse failure yields the defaults (ShowDataTypes on, everything
// else zero) rather than an error: ambient config is a convenience, never a startup requirement.
func Load() Config {
	cfg := Config{ShowDataTypes: true}
	path, err := ensurePath()
	if err != nil {
		return cfg
	}
	// #nosec G304 -- path is computed internally, not attacker-controlled.
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	kv, protoPaths := parseLines(string(data))
	for _, p := range protoPaths {
		if expanded, err := expandTilde(p); err == nil {
			cfg.ProtoPath = append(cfg.ProtoPath, expanded)
		}
	}
	cfg.ShowComments = parseBool(kv["show_comments"], cfg.ShowComments)
	cfg.ShowBinary = parseBool(kv["show_binary"], cfg.ShowBinary)
	cfg.ShowDataTypes = parseBool(kv["show_data_types"], cfg.ShowDataTypes)
	cfg.Debug = parseBool(kv["debug"], cfg.Debug)
	if lp, err := expandTilde(kv["log_path"]); err == nil {
		cfg.LogPath = lp
	}
	return cfg
}
