package visualization

import (
	"path/filepath"
	"runtime"
	"slices"
	"testing"
)

func TestOpenBrowser_SupportedPlatform(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "darwin", "windows":
		if _, err := browserCommand(runtime.GOOS, "http://localhost:1"); err != nil {
			t.Errorf("browserCommand(%s): %v", runtime.GOOS, err)
		}
	default:
		t.Skipf("skipping on unsupported platform: %s", runtime.GOOS)
	}
}

func TestBrowserCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantBase string
		wantArgs []string
	}{
		{"linux", "xdg-open", []string{"http://x"}},
		{"darwin", "open", []string{"http://x"}},
		{"windows", "cmd", []string{"/c", "start", "http://x"}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmd, err := browserCommand(tt.goos, "http://x")
			if err != nil {
				t.Fatalf("browserCommand: %v", err)
			}
			if base := filepath.Base(cmd.Path); base != tt.wantBase && base != tt.wantBase+".exe" {
				t.Errorf("command = %q, want %q", base, tt.wantBase)
			}
			if !slices.Equal(cmd.Args[1:], tt.wantArgs) {
				t.Errorf("args = %v, want %v", cmd.Args[1:], tt.wantArgs)
			}
		})
	}
}

func TestBrowserCommand_Errors(t *testing.T) {
	if _, err := browserCommand("plan9", "http://x"); err == nil {
		t.Error("expected error for unsupported platform")
	}
	if _, err := browserCommand("linux", "  "); err == nil {
		t.Error("expected error for empty target")
	}
}
