package provision

import (
	"fmt"
	"os"
	"slices"

	"firstboot/internal/status"
	"firstboot/internal/syscandidates"
	"firstboot/internal/sysfile"
)

var hostLocaleConf = "/etc/locale.conf"

func (p *Provisioner) processLocale() error {
	path := sysfile.Under(p.cfg.Root, "/etc/locale.conf")
	if sysfile.Exists(path) && !p.cfg.Force {
		return nil
	}

	if p.cfg.CopyLocale && p.cfg.HasRoot() {
		err := sysfile.CopyHostFile(hostLocaleConf, path, 0o644)
		switch {
		case err == nil:
			status.Info("%s copied.", path)
			return nil
		case !os.IsNotExist(err):
			return fmt.Errorf("failed to copy %s: %w", hostLocaleConf, err)
		}
	}

	if err := p.promptLocale(); err != nil {
		return err
	}

	var pairs []sysfile.KV
	if p.locale != "" {
		pairs = append(pairs, sysfile.KV{Key: "LANG", Value: p.locale})
	}
	// A message locale equal to the primary one carries no information,
	// so it is not written out.
	if p.localeMessages != "" && p.localeMessages != p.locale {
		pairs = append(pairs, sysfile.KV{Key: "LC_MESSAGES", Value: p.localeMessages})
	}
	if len(pairs) == 0 {
		return nil
	}

	if err := sysfile.WriteEnvFile(path, pairs); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	status.Info("%s written.", path)
	return nil
}

func (p *Provisioner) promptLocale() error {
	if p.cfg.Locale != "" || p.cfg.LocaleMessages != "" {
		p.locale = p.cfg.Locale
		p.localeMessages = p.cfg.LocaleMessages
		return nil
	}
	if !p.cfg.PromptLocale {
		return nil
	}

	locales, err := p.locales(p.cfg.Root)
	if err != nil {
		return fmt.Errorf("cannot query locales list: %w", err)
	}
	switch {
	case len(locales) == 0:
		return nil
	case len(locales) == 1:
		// Nothing to choose from. The sole installed locale is only
		// worth recording when it differs from the built-in default.
		if locales[0] != p.defaultLocale {
			p.locale = locales[0]
		}
		return nil
	}

	valid := p.localeValidator(locales)

	p.welcome()
	loc, err := p.term.Select("Please enter system locale name or number", locales, 60, valid)
	if err != nil {
		return err
	}
	if loc == "" {
		return nil
	}
	p.locale = loc

	msg, err := p.term.Select("Please enter system message locale name or number", locales, 60, valid)
	if err != nil {
		return err
	}
	if msg == p.locale {
		msg = ""
	}
	p.localeMessages = msg
	return nil
}

// localeValidator decides whether free-text locale input is
// acceptable. With a target root only the syntax can be checked; on
// the running system the locale also has to be installed.
func (p *Provisioner) localeValidator(installed []string) func(string) bool {
	if p.cfg.HasRoot() {
		return syscandidates.ValidLocaleName
	}
	return func(name string) bool {
		return slices.Contains(installed, name)
	}
}
