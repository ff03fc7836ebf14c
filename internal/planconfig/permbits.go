package planconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/harvx/rewrite/internal/plan"
)

// ParseFixedMode parses a three-digit octal permission string ("644",
// "0644", "0755") into a plan.FixedMode. Leading "0o"/"0" prefixes are both
// accepted.
func ParseFixedMode(s string) (plan.FixedMode, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "0o")
	s = strings.TrimPrefix(s, "0O")
	if s == "" {
		return 0, fmt.Errorf("empty permission mode")
	}
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid octal permission mode %q: %w", s, err)
	}
	if n > 0o777 {
		return 0, fmt.Errorf("permission mode %q exceeds 0777", s)
	}
	return plan.FixedMode(n), nil
}
