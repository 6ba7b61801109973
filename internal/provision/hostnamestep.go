package provision

import (
	"fmt"

	"firstboot/internal/hostname"
	"firstboot/internal/status"
	"firstboot/internal/sysfile"
)

func (p *Provisioner) processHostname() error {
	path := sysfile.Under(p.cfg.Root, "/etc/hostname")
	if sysfile.Exists(path) && !p.cfg.Force {
		return nil
	}

	if err := p.promptHostname(); err != nil {
		return err
	}
	if p.hostname == "" {
		return nil
	}

	if err := sysfile.WriteOneLine(path, p.hostname, p.cfg.Force); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	status.Info("%s written.", path)
	return nil
}

func (p *Provisioner) promptHostname() error {
	if p.cfg.Hostname != "" {
		p.hostname = p.cfg.Hostname
		return nil
	}
	if !p.cfg.PromptHostname {
		return nil
	}

	p.welcome()
	for {
		h, err := p.term.Ask("Please enter hostname for new system (empty to skip): ")
		if err != nil {
			return err
		}
		if h == "" {
			status.Warn("No hostname entered, skipping.")
			return nil
		}
		if !hostname.Valid(h, true) {
			status.Error("Specified hostname invalid.")
			continue
		}
		p.hostname = hostname.Clean(h)
		return nil
	}
}
