package cli

import (
	"os"

	"golang.org/x/term"
)

// IsNonInteractive reports whether prompts should be skipped and defaults
// used.
func IsNonInteractive() bool {
	if nonInteractive || (cfg != nil && cfg.NonInteractive) {
		return true
	}
	if _, ok := os.LookupEnv("PETRIDISH_NON_INTERACTIVE"); ok {
		return true
	}
	return !hasTTY()
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
