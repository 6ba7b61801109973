package provision

import (
	"fmt"
	"os"
	"strings"
)

var procCmdlinePath = "/proc/cmdline"

// killSwitchEnabled reports whether provisioning is allowed to run.
// A firstboot= argument on the kernel command line turns the whole
// tool into a no-op when set to a false value; a missing command
// line file (containers, non-Linux test hosts) counts as enabled.
func killSwitchEnabled() (bool, error) {
	data, err := os.ReadFile(procCmdlinePath)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read kernel command line: %w", err)
	}
	for _, arg := range strings.Fields(string(data)) {
		key, value, found := strings.Cut(arg, "=")
		if key != "firstboot" {
			continue
		}
		if !found {
			return true, nil
		}
		switch strings.ToLower(value) {
		case "1", "yes", "true", "on":
			return true, nil
		case "0", "no", "false", "off":
			return false, nil
		default:
			return false, fmt.Errorf("failed to parse firstboot= kernel command line argument: %q", value)
		}
	}
	return true, nil
}
