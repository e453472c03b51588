package navigate

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// OpenURL hands target to the desktop's URL handler without waiting for it.
// $BROWSER takes precedence over the platform opener.
func OpenURL(target string) error {
	if target == "" {
		return fmt.Errorf("empty URL")
	}
	if browser := strings.TrimSpace(os.Getenv("BROWSER")); browser != "" {
		parts := strings.Fields(browser)
		if len(parts) > 0 {
			args := append(parts[1:], target)
			if err := start(parts[0], args...); err == nil {
				return nil
			}
		}
	}
	switch runtime.GOOS {
	case "darwin":
		return start("open", target)
	case "windows":
		return start("cmd", "/c", "start", "", fmt.Sprintf("%q", target))
	default:
		return start("xdg-open", target)
	}
}

func start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
