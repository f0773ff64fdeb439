package headwater

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/subosito/gotenv"
)

// envFileStrategy loads credentials from a single dotenv file. An absent
// file is an inactive environment; a present one commits the strategy.
// explicit records whether the caller named the path themselves, which
// hardens provisioning failures downstream.
type envFileStrategy struct {
	path     string
	explicit bool
}

func (envFileStrategy) name() string { return "env-file" }

func (s envFileStrategy) probe(rt *Runtime) capability {
	if s.path == "" {
		return capAbsent
	}
	if _, err := os.Stat(expandHome(rt, s.path)); err != nil {
		return capInactive
	}
	return capActive
}

func (s envFileStrategy) settings(_ context.Context, rt *Runtime) (*Settings, error) {
	path := expandHome(rt, s.path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, &ConfigFileError{Dirs: []string{path}}
	}

	env, err := readEnvFile(path)
	if err != nil {
		return nil, err
	}

	// Historical contract: loading the detected env file also exports its
	// pairs into the process environment. Kept for compatibility; the
	// explicit file-list loader below never does this.
	if err := exportToEnviron(rt, env); err != nil {
		return nil, fmt.Errorf("exporting env file %s to environment: %w", path, err)
	}

	out := NewSettings()
	mergeEnv(out, env)
	return out, nil
}

// LoadConfigFiles loads an ordered list of dotenv files into one settings
// container. Later files override earlier ones key by key, never as a
// whole-object replacement. All paths are validated up front: an empty
// list, any missing path, or any directory is a ConfigFileError naming
// every offender.
func LoadConfigFiles(paths []string) (*Settings, error) {
	return loadConfigFiles(defaultRuntime(), paths)
}

func loadConfigFiles(rt *Runtime, paths []string) (*Settings, error) {
	if len(paths) == 0 {
		return nil, &ConfigFileError{Empty: true}
	}

	resolved := make([]string, len(paths))
	cfgErr := &ConfigFileError{}
	for i, p := range paths {
		resolved[i] = expandHome(rt, p)
		info, err := os.Stat(resolved[i])
		switch {
		case err != nil:
			cfgErr.Missing = append(cfgErr.Missing, resolved[i])
		case info.IsDir():
			cfgErr.Dirs = append(cfgErr.Dirs, resolved[i])
		}
	}
	if len(cfgErr.Missing) > 0 || len(cfgErr.Dirs) > 0 {
		return nil, cfgErr
	}

	out := NewSettings()
	for _, path := range resolved {
		env, err := readEnvFile(path)
		if err != nil {
			return nil, err
		}
		mergeEnv(out, env)
	}
	return out, nil
}

func readEnvFile(path string) (gotenv.Env, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening env file %s: %w", path, err)
	}
	defer f.Close()

	env, err := gotenv.StrictParse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing env file %s: %w", path, err)
	}
	return env, nil
}

// mergeEnv folds parsed pairs into the settings, last write wins per key.
// Keys are applied in sorted order so the diagnostic ordering is stable.
func mergeEnv(s *Settings, env gotenv.Env) {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.Set(k, env[k])
	}
}

// exportToEnviron copies parsed pairs into the process environment. This
// is a deliberately global, process-lifetime side effect of the
// auto-detected env file strategy; callers relying on os.Getenv after
// resolution depend on it.
func exportToEnviron(rt *Runtime, env gotenv.Env) error {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := rt.Setenv(k, env[k]); err != nil {
			return err
		}
	}
	return nil
}

// expandHome resolves a leading ~/ against the runtime's home directory.
func expandHome(rt *Runtime, path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := rt.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
