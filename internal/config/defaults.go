package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultsFile is the YAML answer file that pre-seeds settings for
// unattended runs. Explicit flags win over answer-file values.
type defaultsFile struct {
	Locale            string `yaml:"locale"`
	LocaleMessages    string `yaml:"locale_messages"`
	Keymap            string `yaml:"keymap"`
	Timezone          string `yaml:"timezone"`
	Hostname          string `yaml:"hostname"`
	KernelCommandLine string `yaml:"kernel_command_line"`
}

func applyDefaultsFile(f *Flags) error {
	data, err := os.ReadFile(f.DefaultsFile)
	if err != nil {
		return fmt.Errorf("failed to read defaults file: %w", err)
	}

	var d defaultsFile
	if err := yaml.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("failed to parse defaults file %s: %w", f.DefaultsFile, err)
	}

	if f.Locale == "" {
		f.Locale = d.Locale
	}
	if f.LocaleMessages == "" {
		f.LocaleMessages = d.LocaleMessages
	}
	if f.Keymap == "" {
		f.Keymap = d.Keymap
	}
	if f.Timezone == "" {
		f.Timezone = d.Timezone
	}
	if f.Hostname == "" {
		f.Hostname = d.Hostname
	}
	if f.KernelCmdline == "" {
		f.KernelCmdline = d.KernelCommandLine
	}
	return nil
}
