package provision

import (
	"errors"
	"fmt"

	"firstboot/internal/status"
	"firstboot/internal/sysfile"
	"firstboot/internal/userdb"
)

func (p *Provisioner) processRootPassword() error {
	shadowPath := sysfile.Under(p.cfg.Root, "/etc/shadow")
	if sysfile.Exists(shadowPath) && !p.cfg.Force {
		return nil
	}

	if err := sysfile.MkdirParents(shadowPath); err != nil {
		return err
	}
	lock, err := userdb.TakeLock(p.cfg.Root)
	if err != nil {
		return fmt.Errorf("failed to take password file lock: %w", err)
	}
	defer lock.Unlock()

	passwdPath := sysfile.Under(p.cfg.Root, "/etc/passwd")

	if p.cfg.DeleteRootPassword {
		if err := userdb.WritePasswd(passwdPath, ""); err != nil {
			return fmt.Errorf("failed to write %s: %w", passwdPath, err)
		}
		status.Info("%s written.", passwdPath)
		return nil
	}

	if p.cfg.CopyRootPassword && p.cfg.HasRoot() {
		hash, err := p.hostHash()
		switch {
		case err == nil:
			if err := p.writeCredential(shadowPath, passwdPath, hash); err != nil {
				return err
			}
			status.Info("%s copied.", shadowPath)
			return nil
		case !errors.Is(err, userdb.ErrNoHostEntry):
			return fmt.Errorf("failed to find shadow entry for root: %w", err)
		}
	}

	password, hashed, err := p.promptRootPassword()
	if err != nil {
		return err
	}
	if password == "" {
		return nil
	}

	hash := password
	if !hashed {
		hash, err = userdb.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
	}
	if err := p.writeCredential(shadowPath, passwdPath, hash); err != nil {
		return err
	}
	status.Info("%s written.", shadowPath)
	return nil
}

// writeCredential stores the hash in the shadow table and makes sure
// the password table defers to it with the "x" placeholder.
func (p *Provisioner) writeCredential(shadowPath, passwdPath, hash string) error {
	if err := userdb.WriteShadow(shadowPath, hash); err != nil {
		return fmt.Errorf("failed to write %s: %w", shadowPath, err)
	}
	if err := userdb.WritePasswd(passwdPath, "x"); err != nil {
		return fmt.Errorf("failed to write %s: %w", passwdPath, err)
	}
	return nil
}

func (p *Provisioner) promptRootPassword() (password string, hashed bool, err error) {
	if p.cfg.RootPassword != "" {
		return p.cfg.RootPassword, p.cfg.RootPasswordIsHashed, nil
	}
	if !p.cfg.PromptRootPassword {
		return "", false, nil
	}

	p.welcome()
	pw, err := p.term.PasswordTwice(
		"Please enter a new root password (empty to skip): ",
		"Please enter new root password again: ")
	return pw, false, err
}
