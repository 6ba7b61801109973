package provision

import (
	"fmt"

	"firstboot/internal/status"
	"firstboot/internal/sysfile"
)

func (p *Provisioner) processKernelCmdline() error {
	path := sysfile.Under(p.cfg.Root, "/etc/kernel/cmdline")
	if sysfile.Exists(path) && !p.cfg.Force {
		return nil
	}
	if p.cfg.KernelCmdline == "" {
		return nil
	}

	if err := sysfile.WriteOneLine(path, p.cfg.KernelCmdline, p.cfg.Force); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	status.Info("%s written.", path)
	return nil
}
