package planconfig

// DefaultsFlat returns the built-in default values for every scalar plan
// knob, flattened for koanf's confmap provider. This is the lowest-
// precedence layer in Normalize's merge, mirroring the ambient config
// package's defaults-then-file-then-env-then-flags layering.
func DefaultsFlat() map[string]any {
	return map[string]any{
		"mode":             "literal",
		"case":             "sensitive",
		"transaction":      "file",
		"symlinks":         "follow",
		"binary":           "skip",
		"permissions":      "preserve",
		"fixed_mode":       "",
		"max_file_size":    "",
		"dry_run":          false,
		"no_write":         false,
		"validate_only":    false,
		"policy.require_match": false,
		"policy.fail_on_change": false,
	}
}
