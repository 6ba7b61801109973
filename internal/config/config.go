// Package config turns the command-line surface into one immutable
// Settings value. All policy validation happens here, before any file
// in the target tree is touched.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"firstboot/internal/hostname"
	"firstboot/internal/machineid"
	"firstboot/internal/syscandidates"
	"firstboot/internal/sysfile"
)

// Flags mirrors the raw command-line surface, one field per flag.
type Flags struct {
	Root string

	Locale         string
	LocaleMessages string
	Keymap         string
	Timezone       string
	Hostname       string
	KernelCmdline  string

	MachineID      string
	SetupMachineID bool

	RootPassword       string
	RootPasswordFile   string
	RootPasswordHashed string

	Prompt             bool
	PromptLocale       bool
	PromptKeymap       bool
	PromptTimezone     bool
	PromptHostname     bool
	PromptRootPassword bool

	Copy             bool
	CopyLocale       bool
	CopyKeymap       bool
	CopyTimezone     bool
	CopyRootPassword bool

	Force              bool
	DeleteRootPassword bool

	DefaultsFile string
}

// Settings is the validated, immutable configuration of one
// provisioning run. It is constructed exactly once and passed by
// reference; nothing consults flag state after this point.
type Settings struct {
	Root string

	Locale         string
	LocaleMessages string
	Keymap         string
	Timezone       string
	Hostname       string
	KernelCmdline  string

	MachineID machineid.ID

	RootPassword         string
	RootPasswordIsHashed bool

	PromptLocale       bool
	PromptKeymap       bool
	PromptTimezone     bool
	PromptHostname     bool
	PromptRootPassword bool

	CopyLocale       bool
	CopyKeymap       bool
	CopyTimezone     bool
	CopyRootPassword bool

	Force              bool
	DeleteRootPassword bool
}

// New validates the flag surface and builds the Settings for this run.
func New(f Flags) (*Settings, error) {
	if f.DefaultsFile != "" {
		if err := applyDefaultsFile(&f); err != nil {
			return nil, err
		}
	}

	if f.Prompt {
		f.PromptLocale = true
		f.PromptKeymap = true
		f.PromptTimezone = true
		f.PromptHostname = true
		f.PromptRootPassword = true
	}
	if f.Copy {
		f.CopyLocale = true
		f.CopyKeymap = true
		f.CopyTimezone = true
		f.CopyRootPassword = true
	}

	s := &Settings{
		Locale:             f.Locale,
		LocaleMessages:     f.LocaleMessages,
		Keymap:             f.Keymap,
		Timezone:           f.Timezone,
		KernelCmdline:      f.KernelCmdline,
		PromptLocale:       f.PromptLocale,
		PromptKeymap:       f.PromptKeymap,
		PromptTimezone:     f.PromptTimezone,
		PromptHostname:     f.PromptHostname,
		PromptRootPassword: f.PromptRootPassword,
		CopyLocale:         f.CopyLocale,
		CopyKeymap:         f.CopyKeymap,
		CopyTimezone:       f.CopyTimezone,
		CopyRootPassword:   f.CopyRootPassword,
		Force:              f.Force,
		DeleteRootPassword: f.DeleteRootPassword,
	}
	if f.Root != "" && filepath.Clean(f.Root) != "/" {
		s.Root = filepath.Clean(f.Root)
	}

	if s.Locale != "" && !syscandidates.ValidLocaleName(s.Locale) {
		return nil, fmt.Errorf("locale %q is not valid", s.Locale)
	}
	if s.LocaleMessages != "" && !syscandidates.ValidLocaleName(s.LocaleMessages) {
		return nil, fmt.Errorf("locale %q is not valid", s.LocaleMessages)
	}
	if s.Keymap != "" && !syscandidates.ValidKeymapName(s.Keymap) {
		return nil, fmt.Errorf("keymap %q is not valid", s.Keymap)
	}
	if s.Timezone != "" && !syscandidates.ValidTimezoneName(s.Timezone) {
		return nil, fmt.Errorf("timezone %q is not valid", s.Timezone)
	}
	if f.Hostname != "" {
		if !hostname.Valid(f.Hostname, true) {
			return nil, fmt.Errorf("hostname %q is not valid", f.Hostname)
		}
		s.Hostname = hostname.Clean(f.Hostname)
	}

	if err := resolveMachineID(&f, s); err != nil {
		return nil, err
	}
	if err := resolveRootPassword(&f, s); err != nil {
		return nil, err
	}

	if s.DeleteRootPassword &&
		(s.RootPassword != "" || s.CopyRootPassword || s.PromptRootPassword) {
		return nil, fmt.Errorf("--delete-root-password cannot be combined with other root password options")
	}

	return s, nil
}

func resolveMachineID(f *Flags, s *Settings) error {
	switch {
	case f.MachineID != "":
		id, err := machineid.Parse(f.MachineID)
		if err != nil {
			return err
		}
		s.MachineID = id
	case f.SetupMachineID:
		id, err := machineid.Random()
		if err != nil {
			return err
		}
		s.MachineID = id
	}
	return nil
}

func resolveRootPassword(f *Flags, s *Settings) error {
	sources := 0
	for _, set := range []bool{f.RootPassword != "", f.RootPasswordFile != "", f.RootPasswordHashed != ""} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return fmt.Errorf("only one of --root-password, --root-password-file and --root-password-hashed may be given")
	}

	switch {
	case f.RootPassword != "":
		s.RootPassword = f.RootPassword
	case f.RootPasswordHashed != "":
		s.RootPassword = f.RootPasswordHashed
		s.RootPasswordIsHashed = true
	case f.RootPasswordFile != "":
		pw, err := sysfile.ReadOneLine(f.RootPasswordFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.RootPasswordFile, err)
		}
		s.RootPassword = pw
	}
	return nil
}

// HasRoot reports whether the run targets an alternate filesystem root
// rather than the running system. Copy-from-host only makes sense in
// that case.
func (s *Settings) HasRoot() bool {
	return s.Root != ""
}

// String renders a terse summary for diagnostics; credentials are
// never included.
func (s *Settings) String() string {
	var parts []string
	if s.HasRoot() {
		parts = append(parts, "root="+s.Root)
	}
	if s.Force {
		parts = append(parts, "force")
	}
	if s.DeleteRootPassword {
		parts = append(parts, "delete-root-password")
	}
	return strings.Join(parts, " ")
}
