package userdb

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type line[T any] struct {
	raw   string
	entry *T
}

// PasswdFile is a parsed password table that remembers every input
// line, parsed or not, in original order.
type PasswdFile struct {
	lines []line[PasswdEntry]
}

// ShadowFile is a parsed shadow table, same line-preserving contract.
type ShadowFile struct {
	lines []line[ShadowEntry]
}

func readLines(r io.Reader) ([]string, error) {
	s := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	s.Buffer(buf, 1024*1024)
	var lines []string
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// ParsePasswd reads a password table. Lines that are not well-formed
// records (comments, blanks, wrong field count, non-numeric ids) are
// preserved verbatim rather than rejected, so that a rewrite never
// drops anything it did not understand.
func ParsePasswd(r io.Reader) (*PasswdFile, error) {
	raw, err := readLines(r)
	if err != nil {
		return nil, err
	}

	f := &PasswdFile{}
	for _, l := range raw {
		trim := strings.TrimSpace(l)
		if trim == "" || strings.HasPrefix(trim, "#") {
			f.lines = append(f.lines, line[PasswdEntry]{raw: l})
			continue
		}
		parts := strings.Split(l, ":")
		if len(parts) != 7 {
			f.lines = append(f.lines, line[PasswdEntry]{raw: l})
			continue
		}
		uid, err1 := strconv.Atoi(parts[2])
		gid, err2 := strconv.Atoi(parts[3])
		if err1 != nil || err2 != nil {
			f.lines = append(f.lines, line[PasswdEntry]{raw: l})
			continue
		}
		e := PasswdEntry{
			Name:     parts[0],
			Password: parts[1],
			UID:      uid,
			GID:      gid,
			Gecos:    parts[4],
			Home:     parts[5],
			Shell:    parts[6],
		}
		f.lines = append(f.lines, line[PasswdEntry]{entry: &e})
	}
	return f, nil
}

// ParseShadow reads a shadow table with the same preservation rules.
func ParseShadow(r io.Reader) (*ShadowFile, error) {
	raw, err := readLines(r)
	if err != nil {
		return nil, err
	}

	f := &ShadowFile{}
	for _, l := range raw {
		trim := strings.TrimSpace(l)
		if trim == "" || strings.HasPrefix(trim, "#") {
			f.lines = append(f.lines, line[ShadowEntry]{raw: l})
			continue
		}
		parts := strings.Split(l, ":")
		if len(parts) != 9 {
			f.lines = append(f.lines, line[ShadowEntry]{raw: l})
			continue
		}
		e := ShadowEntry{
			Name:       parts[0],
			Hash:       parts[1],
			LastChange: parts[2],
			Min:        parts[3],
			Max:        parts[4],
			Warn:       parts[5],
			Inactive:   parts[6],
			Expire:     parts[7],
			Reserved:   parts[8],
		}
		f.lines = append(f.lines, line[ShadowEntry]{entry: &e})
	}
	return f, nil
}

// Find returns the record with the given account name, or nil.
func (f *PasswdFile) Find(name string) *PasswdEntry {
	for i := range f.lines {
		if e := f.lines[i].entry; e != nil && e.Name == name {
			return e
		}
	}
	return nil
}

func (f *ShadowFile) Find(name string) *ShadowEntry {
	for i := range f.lines {
		if e := f.lines[i].entry; e != nil && e.Name == name {
			return e
		}
	}
	return nil
}

// Entries lists the parsed records in file order.
func (f *PasswdFile) Entries() []PasswdEntry {
	var out []PasswdEntry
	for i := range f.lines {
		if e := f.lines[i].entry; e != nil {
			out = append(out, *e)
		}
	}
	return out
}

func (f *ShadowFile) Entries() []ShadowEntry {
	var out []ShadowEntry
	for i := range f.lines {
		if e := f.lines[i].entry; e != nil {
			out = append(out, *e)
		}
	}
	return out
}

func (f *PasswdFile) append(e PasswdEntry) {
	f.lines = append(f.lines, line[PasswdEntry]{entry: &e})
}

func (f *ShadowFile) append(e ShadowEntry) {
	f.lines = append(f.lines, line[ShadowEntry]{entry: &e})
}

// Bytes serializes the table, regenerating parsed records and passing
// raw lines through untouched.
func (f *PasswdFile) Bytes() []byte {
	var b strings.Builder
	for _, ln := range f.lines {
		if e := ln.entry; e != nil {
			fmt.Fprintf(&b, "%s:%s:%d:%d:%s:%s:%s\n",
				e.Name, e.Password, e.UID, e.GID, e.Gecos, e.Home, e.Shell)
			continue
		}
		b.WriteString(ln.raw)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func (f *ShadowFile) Bytes() []byte {
	var b strings.Builder
	for _, ln := range f.lines {
		if e := ln.entry; e != nil {
			fmt.Fprintf(&b, "%s:%s:%s:%s:%s:%s:%s:%s:%s\n",
				e.Name, e.Hash, e.LastChange, e.Min, e.Max, e.Warn, e.Inactive, e.Expire, e.Reserved)
			continue
		}
		b.WriteString(ln.raw)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
