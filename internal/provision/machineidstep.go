package provision

import (
	"fmt"

	"firstboot/internal/status"
	"firstboot/internal/sysfile"
)

func (p *Provisioner) processMachineID() error {
	path := sysfile.Under(p.cfg.Root, "/etc/machine-id")
	if sysfile.Exists(path) && !p.cfg.Force {
		return nil
	}
	if p.cfg.MachineID.IsZero() {
		return nil
	}

	if err := sysfile.WriteOneLine(path, p.cfg.MachineID.String(), p.cfg.Force); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	status.Info("%s written.", path)
	return nil
}
