package provision

import (
	"fmt"
	"os"

	"firstboot/internal/status"
	"firstboot/internal/syscandidates"
	"firstboot/internal/sysfile"
)

var hostLocaltime = "/etc/localtime"

func (p *Provisioner) processTimezone() error {
	path := sysfile.Under(p.cfg.Root, "/etc/localtime")
	if sysfile.Exists(path) && !p.cfg.Force {
		return nil
	}

	if p.cfg.CopyTimezone && p.cfg.HasRoot() {
		target, err := os.Readlink(hostLocaltime)
		switch {
		case err == nil:
			if err := sysfile.Symlink(target, path); err != nil {
				return fmt.Errorf("failed to create %s symlink: %w", path, err)
			}
			status.Info("%s copied.", path)
			return nil
		case !os.IsNotExist(err):
			return fmt.Errorf("failed to read host timezone: %w", err)
		}
	}

	if err := p.promptTimezone(); err != nil {
		return err
	}
	if p.timezone == "" {
		return nil
	}

	// Relative so the link resolves both from inside the image and when
	// the image is mounted under a prefix.
	if err := sysfile.Symlink("../usr/share/zoneinfo/"+p.timezone, path); err != nil {
		return fmt.Errorf("failed to create %s symlink: %w", path, err)
	}
	status.Info("%s written.", path)
	return nil
}

func (p *Provisioner) promptTimezone() error {
	if p.cfg.Timezone != "" {
		p.timezone = p.cfg.Timezone
		return nil
	}
	if !p.cfg.PromptTimezone {
		return nil
	}

	zones, err := p.timezones(p.cfg.Root)
	if err != nil {
		return fmt.Errorf("cannot query timezone list: %w", err)
	}
	if len(zones) == 0 {
		return nil
	}

	p.welcome()
	tz, err := p.term.Select("Please enter timezone name or number", zones, 30, syscandidates.ValidTimezoneName)
	if err != nil {
		return err
	}
	p.timezone = tz
	return nil
}
