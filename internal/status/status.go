// Package status prints operator-facing progress output for the
// provisioning run.
package status

import (
	"strings"

	"github.com/fatih/color"
)

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	infoColor  = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
)

// Title prints a headline message.
func Title(format string, a ...any) {
	titleColor.Printf(format+"\n", a...)
}

// Info prints an informational message.
func Info(format string, a ...any) {
	infoColor.Printf(format+"\n", a...)
}

// Warn prints a warning message.
func Warn(format string, a ...any) {
	warnColor.Printf("WARNING: "+format+"\n", a...)
}

// Error prints an error message.
func Error(format string, a ...any) {
	errorColor.Printf("ERROR: "+format+"\n", a...)
}

// Welcome prints the first-boot greeting for the system being
// provisioned, using its os-release branding when available. The gate
// is the press-any-key pause shown after the banner.
func Welcome(root string, gate func() bool) {
	rel, err := readOSRelease(root)
	if err != nil {
		Warn("Failed to read os-release file, ignoring: %v", err)
	}

	name := rel.PrettyName
	if name == "" {
		name = "Linux"
	}

	if rel.AnsiColor != "" && !color.NoColor {
		color.New().Printf("\nWelcome to your new installation of \x1b[%sm%s\x1b[0m!\n", rel.AnsiColor, name)
	} else {
		color.New().Printf("\nWelcome to your new installation of %s!\n", name)
	}
	color.New().Printf("\nPlease configure your system!\n\n")

	if gate != nil {
		gate()
	}
}

// Selected reports a menu choice back to the operator.
func Selected(value string) {
	Info("Selected '%s'.", strings.TrimSpace(value))
}
