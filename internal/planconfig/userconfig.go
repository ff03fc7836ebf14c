package planconfig

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// UserConfigPath returns the default location of the optional per-user
// defaults file, ~/.config/rwx/config.toml.
func UserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rwx", "config.toml"), nil
}

// LoadUserConfig reads the optional on-disk defaults file at path and
// returns its contents as a flat map suitable for layering beneath CLI
// flags (and above the package's built-in defaults). A missing file is not
// an error -- it returns an empty map, same as every other optional config
// source in this codebase.
func LoadUserConfig(path string) (map[string]any, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, err
	}
	return flatten(raw, ""), nil
}

// flatten turns a nested TOML-decoded map into dotted-key form, e.g.
// {"policy": {"require_match": true}} -> {"policy.require_match": true}.
func flatten(m map[string]any, prefix string) map[string]any {
	out := make(map[string]any)
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			for nk, nv := range flatten(nested, key) {
				out[nk] = nv
			}
			continue
		}
		out[key] = v
	}
	return out
}
