package export

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// OpenInBrowser opens url with the platform's default handler.
func OpenInBrowser(url string) error {
	// Skip browser opening in test mode or when explicitly disabled
	if os.Getenv("CONCEPTNAV_NO_BROWSER") != "" || os.Getenv("CONCEPTNAV_TEST_MODE") != "" {
		return nil
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
