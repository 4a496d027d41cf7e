package policy

import (
	"fmt"
	"strings"

	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
)

// CheckActionAllowed enforces the --enable-actions allowlist. An empty
// allowlist permits every action. Names are matched exactly, as action
// lookup is case-sensitive.
func CheckActionAllowed(allowlist []string, action string) error {
	entries := normalize(allowlist)
	if len(entries) == 0 {
		return nil
	}
	name := strings.TrimSpace(action)
	for _, allowed := range entries {
		if allowed == name {
			return nil
		}
	}
	return clierr.New(clierr.CodeBlocked, fmt.Sprintf("action %q blocked by --enable-actions policy", name))
}

func normalize(allowlist []string) []string {
	out := make([]string, 0, len(allowlist))
	for _, raw := range allowlist {
		for _, part := range strings.Split(raw, ",") {
			if v := strings.TrimSpace(part); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
