// Package hostname validates hostname syntax for /etc/hostname.
package hostname

import "strings"

// MaxLen is the kernel's HOST_NAME_MAX.
const MaxLen = 64

// Valid reports whether name is an acceptable hostname. A single
// trailing dot is tolerated when allowTrailingDot is set; Clean strips
// it before the name is stored.
func Valid(name string, allowTrailingDot bool) bool {
	if name == "" || len(name) > MaxLen {
		return false
	}
	if allowTrailingDot && strings.HasSuffix(name, ".") {
		name = name[:len(name)-1]
	}
	if name == "" {
		return false
	}
	for _, label := range strings.Split(name, ".") {
		if label == "" || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			switch {
			case c >= 'a' && c <= 'z':
			case c >= 'A' && c <= 'Z':
			case c >= '0' && c <= '9':
			case c == '-' || c == '_':
			default:
				return false
			}
		}
	}
	return true
}

// Clean removes the trailing dot that Valid tolerates but that should
// never end up on disk.
func Clean(name string) string {
	return strings.TrimSuffix(name, ".")
}
