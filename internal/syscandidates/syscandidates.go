// Package syscandidates enumerates the locales, console keymaps and
// timezones installed on a system and validates names the operator
// supplies for them.
package syscandidates

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"firstboot/internal/sysfile"
)

// DefaultLocale is the locale every glibc system carries; when it is
// the only one installed there is nothing worth configuring.
const DefaultLocale = "C.UTF-8"

// ErrNoCandidates means the data the enumerator reads from is not
// installed at all. Callers usually skip the setting in that case.
var ErrNoCandidates = errors.New("no candidates installed")

// Locales lists the locales compiled into <root>/usr/lib/locale,
// sorted. The default locale is always included.
func Locales(root string) ([]string, error) {
	seen := map[string]bool{DefaultLocale: true}

	entries, err := os.ReadDir(sysfile.Under(root, "/usr/lib/locale"))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		seen[name] = true
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

var keymapDirs = []string{
	"/usr/share/keymaps",
	"/usr/share/kbd/keymaps",
	"/usr/lib/kbd/keymaps",
}

// Keymaps lists the console keymaps installed under the usual keymap
// directories, sorted and deduplicated. Returns ErrNoCandidates when
// none of the directories exist.
func Keymaps(root string) ([]string, error) {
	seen := map[string]bool{}
	found := false

	for _, dir := range keymapDirs {
		base := sysfile.Under(root, dir)
		if _, err := os.Stat(base); err != nil {
			continue
		}
		found = true
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			name := d.Name()
			switch {
			case strings.HasSuffix(name, ".map.gz"):
				name = strings.TrimSuffix(name, ".map.gz")
			case strings.HasSuffix(name, ".map"):
				name = strings.TrimSuffix(name, ".map")
			default:
				return nil
			}
			seen[name] = true
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if !found {
		return nil, ErrNoCandidates
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Timezones lists the zone names under <root>/usr/share/zoneinfo,
// sorted. Compatibility aliases and the posix/right variant trees are
// excluded.
func Timezones(root string) ([]string, error) {
	base := sysfile.Under(root, "/usr/share/zoneinfo")
	var out []string

	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, rerr := filepath.Rel(base, path)
		if rerr != nil {
			return rerr
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if rel == "posix" || rel == "right" {
				return filepath.SkipDir
			}
			return nil
		}
		// Zone files and directories start with an uppercase letter;
		// everything else (zone.tab, leapseconds, localtime, ...) is
		// metadata.
		if first := d.Name()[0]; first < 'A' || first > 'Z' {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// ValidLocaleName checks the syntax of a locale name such as
// "de_DE.UTF-8" or "en_US.UTF-8@euro".
func ValidLocaleName(name string) bool {
	if name == "" || len(name) >= 128 {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-' || c == '.' || c == '@':
		default:
			return false
		}
	}
	return true
}

// ValidKeymapName checks the syntax of a console keymap name.
func ValidKeymapName(name string) bool {
	if name == "" || len(name) >= 128 || name[0] == '/' || name[0] == '.' {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-' || c == '.' || c == '/':
		default:
			return false
		}
	}
	return true
}

// ValidTimezoneName checks the syntax of a timezone name like
// "Europe/Berlin" and, when the host carries a zoneinfo database, that
// the zone actually exists in it.
func ValidTimezoneName(name string) bool {
	if !timezoneSyntaxOK(name) {
		return false
	}
	if _, err := os.Stat("/usr/share/zoneinfo"); err != nil {
		// No database to check against; syntax has to do.
		return true
	}
	info, err := os.Stat(filepath.Join("/usr/share/zoneinfo", name))
	return err == nil && info.Mode().IsRegular()
}

func timezoneSyntaxOK(name string) bool {
	if name == "" || name == "/" || len(name) >= 256 {
		return false
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return false
	}
	for _, comp := range strings.Split(name, "/") {
		if comp == "" || comp == "." || comp == ".." {
			return false
		}
		for i := 0; i < len(comp); i++ {
			c := comp[i]
			switch {
			case c >= 'a' && c <= 'z':
			case c >= 'A' && c <= 'Z':
			case c >= '0' && c <= '9':
			case c == '-' || c == '_' || c == '+' || c == '.':
			default:
				return false
			}
		}
	}
	return true
}
