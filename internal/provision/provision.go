// Package provision applies the first-boot settings to the target
// system, one at a time, in a fixed order.
package provision

import (
	"firstboot/internal/config"
	"firstboot/internal/errors"
	"firstboot/internal/prompt"
	"firstboot/internal/status"
	"firstboot/internal/syscandidates"
	"firstboot/internal/userdb"
)

// Provisioner drives one provisioning run. The collaborators that
// touch the running host (candidate enumeration, host shadow lookup)
// are injectable for tests.
type Provisioner struct {
	cfg  *config.Settings
	term *prompt.Prompter

	locales   func(root string) ([]string, error)
	keymaps   func(root string) ([]string, error)
	timezones func(root string) ([]string, error)
	hostHash  func() (string, error)

	defaultLocale string
	welcomed      bool

	// Values resolved during the run.
	locale         string
	localeMessages string
	keymap         string
	timezone       string
	hostname       string
}

// New wires a Provisioner to the real system collaborators.
func New(cfg *config.Settings) *Provisioner {
	return &Provisioner{
		cfg:           cfg,
		term:          prompt.New(),
		locales:       syscandidates.Locales,
		keymaps:       syscandidates.Keymaps,
		timezones:     syscandidates.Timezones,
		hostHash:      userdb.HostRootHash,
		defaultLocale: syscandidates.DefaultLocale,
	}
}

// Run applies every setting in order. The first hard failure aborts
// the remaining steps; each setting is independent, so everything
// applied before the failure stays applied.
func Run(cfg *config.Settings) error {
	return New(cfg).run()
}

func (p *Provisioner) run() error {
	enabled, err := killSwitchEnabled()
	if err != nil {
		return err
	}
	if !enabled {
		status.Info("Provisioning disabled on the kernel command line, taking no action.")
		return nil
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"locale", p.processLocale},
		{"keymap", p.processKeymap},
		{"timezone", p.processTimezone},
		{"hostname", p.processHostname},
		{"machine-id", p.processMachineID},
		{"root-password", p.processRootPassword},
		{"kernel-command-line", p.processKernelCmdline},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return errors.E(s.name, err)
		}
	}
	return nil
}

// welcome shows the greeting banner once per run, right before the
// first interactive prompt.
func (p *Provisioner) welcome() {
	if p.welcomed {
		return
	}
	p.welcomed = true
	status.Welcome(p.cfg.Root, p.term.AnyKey)
}
