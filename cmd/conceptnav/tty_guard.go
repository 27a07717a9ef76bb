package main

import (
	"os"
	"slices"
)

// init runs before lipgloss first touches the terminal.
//
// Resolving adaptive colors makes termenv query the terminal background with
// OSC/DSR sequences. Machine-readable output must not carry them, so such
// invocations set CI=1, which turns termenv probing off.
func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !shouldSuppressTTYQueries(os.Args[1:], os.Getenv("CONCEPTNAV_TEST_MODE") != "") {
		return
	}
	_ = os.Setenv("CI", "1")
}

func shouldSuppressTTYQueries(args []string, testMode bool) bool {
	if testMode {
		return true
	}
	for _, arg := range args {
		switch arg {
		case "--json", "--json=true", "--css", "--version", "--help", "-h", "version":
			return true
		}
	}
	return !slices.Contains(args, "list")
}
