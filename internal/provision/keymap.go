package provision

import (
	"errors"
	"fmt"
	"os"

	"firstboot/internal/status"
	"firstboot/internal/syscandidates"
	"firstboot/internal/sysfile"
)

var hostVconsoleConf = "/etc/vconsole.conf"

func (p *Provisioner) processKeymap() error {
	path := sysfile.Under(p.cfg.Root, "/etc/vconsole.conf")
	if sysfile.Exists(path) && !p.cfg.Force {
		return nil
	}

	if p.cfg.CopyKeymap && p.cfg.HasRoot() {
		err := sysfile.CopyHostFile(hostVconsoleConf, path, 0o644)
		switch {
		case err == nil:
			status.Info("%s copied.", path)
			return nil
		case !os.IsNotExist(err):
			return fmt.Errorf("failed to copy %s: %w", hostVconsoleConf, err)
		}
	}

	if err := p.promptKeymap(); err != nil {
		// A target image without console keymaps simply has nothing to
		// configure here.
		if errors.Is(err, syscandidates.ErrNoCandidates) {
			return nil
		}
		return err
	}
	if p.keymap == "" {
		return nil
	}

	if err := sysfile.WriteEnvFile(path, []sysfile.KV{{Key: "KEYMAP", Value: p.keymap}}); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	status.Info("%s written.", path)
	return nil
}

func (p *Provisioner) promptKeymap() error {
	if p.cfg.Keymap != "" {
		p.keymap = p.cfg.Keymap
		return nil
	}
	if !p.cfg.PromptKeymap {
		return nil
	}

	keymaps, err := p.keymaps(p.cfg.Root)
	if err != nil {
		return err
	}
	if len(keymaps) == 0 {
		return nil
	}

	p.welcome()
	k, err := p.term.Select("Please enter system keymap name or number", keymaps, 60, syscandidates.ValidKeymapName)
	if err != nil {
		return err
	}
	p.keymap = k
	return nil
}
