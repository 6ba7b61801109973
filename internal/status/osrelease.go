package status

import (
	"bufio"
	"os"
	"strings"

	"firstboot/internal/sysfile"
)

type osRelease struct {
	PrettyName string
	AnsiColor  string
}

// readOSRelease pulls the branding keys out of the target's os-release
// file, trying /etc first and the /usr/lib fallback second.
func readOSRelease(root string) (osRelease, error) {
	var rel osRelease

	f, err := os.Open(sysfile.Under(root, "/etc/os-release"))
	if err != nil {
		f, err = os.Open(sysfile.Under(root, "/usr/lib/os-release"))
	}
	if err != nil {
		return rel, err
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = unquote(value)
		switch key {
		case "PRETTY_NAME":
			rel.PrettyName = value
		case "ANSI_COLOR":
			rel.AnsiColor = value
		}
	}
	return rel, s.Err()
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}
