package snapshot

import (
	"os"
	"path/filepath"
	"strings"
)

// Host identifies the machine a snapshot was collected on.
type Host struct {
	OS       string // os-release ID (e.g. "arch"), "unknown" if undetected
	Hostname string
	Shell    string // basename of $SHELL, may be empty
}

// CurrentHost probes the local machine.
func CurrentHost() Host {
	h := Host{OS: osID("/etc/os-release")}
	if name, err := os.Hostname(); err == nil {
		h.Hostname = name
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		h.Shell = filepath.Base(shell)
	}
	return h
}

// osID extracts the ID field from an os-release file.
func osID(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}
	for _, line := range strings.Split(string(data), "\n") {
		if value, ok := strings.CutPrefix(line, "ID="); ok {
			return strings.Trim(value, `"`)
		}
	}
	return "unknown"
}
