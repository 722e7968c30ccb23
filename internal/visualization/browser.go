package visualization

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// OpenBrowser opens the page or file at target in the user's default browser.
// It supports Linux (xdg-open), macOS (open), and Windows (cmd start).
func OpenBrowser(target string) error {
	cmd, err := browserCommand(runtime.GOOS, target)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// browserCommand returns the command that opens target on goos without
// starting it.
func browserCommand(goos, target string) (*exec.Cmd, error) {
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("nothing to open")
	}
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", target), nil
	case "darwin":
		return exec.Command("open", target), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", target), nil
	}
	return nil, fmt.Errorf("unsupported platform: %s", goos)
}
