package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"firstboot/internal/config"
	"firstboot/internal/provision"
)

var flags config.Flags

var rootCmd = &cobra.Command{
	Use:   "firstboot",
	Short: "firstboot initializes basic system settings on first boot",
	Long: `firstboot initializes locale, console keymap, timezone, hostname,
machine ID, the root password and the kernel command line of a new OS
installation, either on the booted system or inside an image mounted
under --root. Settings that are already configured are left alone
unless --force is given.`,
	// SilenceErrors is used to prevent cobra from printing the error,
	// as we handle it ourselves in the Execute function.
	SilenceErrors: true,
	SilenceUsage:  true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New(flags)
		if err != nil {
			return err
		}
		return provision.Run(cfg)
	},
}

func init() {
	f := rootCmd.Flags()

	f.StringVar(&flags.Root, "root", "", "operate on an alternate filesystem root")

	f.StringVar(&flags.Locale, "locale", "", "set primary locale (LANG=)")
	f.StringVar(&flags.LocaleMessages, "locale-messages", "", "set message locale (LC_MESSAGES=)")
	f.StringVar(&flags.Keymap, "keymap", "", "set console keymap")
	f.StringVar(&flags.Timezone, "timezone", "", "set timezone")
	f.StringVar(&flags.Hostname, "hostname", "", "set hostname")
	f.StringVar(&flags.KernelCmdline, "kernel-command-line", "", "set kernel command line")

	f.StringVar(&flags.MachineID, "machine-id", "", "set machine ID")
	f.BoolVar(&flags.SetupMachineID, "setup-machine-id", false, "generate and set a random machine ID")

	f.StringVar(&flags.RootPassword, "root-password", "", "set root password from a plain text argument")
	f.StringVar(&flags.RootPasswordFile, "root-password-file", "", "set root password from the first line of a file")
	f.StringVar(&flags.RootPasswordHashed, "root-password-hashed", "", "set root password from a crypt-format hash")
	f.BoolVar(&flags.DeleteRootPassword, "delete-root-password", false, "remove the root password, enabling password-less login")

	f.BoolVar(&flags.Prompt, "prompt", false, "prompt for all settings without a configured value")
	f.BoolVar(&flags.PromptLocale, "prompt-locale", false, "prompt for the locale")
	f.BoolVar(&flags.PromptKeymap, "prompt-keymap", false, "prompt for the console keymap")
	f.BoolVar(&flags.PromptTimezone, "prompt-timezone", false, "prompt for the timezone")
	f.BoolVar(&flags.PromptHostname, "prompt-hostname", false, "prompt for the hostname")
	f.BoolVar(&flags.PromptRootPassword, "prompt-root-password", false, "prompt for the root password")

	f.BoolVar(&flags.Copy, "copy", false, "copy all copyable settings from the host")
	f.BoolVar(&flags.CopyLocale, "copy-locale", false, "copy the locale from the host")
	f.BoolVar(&flags.CopyKeymap, "copy-keymap", false, "copy the console keymap from the host")
	f.BoolVar(&flags.CopyTimezone, "copy-timezone", false, "copy the timezone from the host")
	f.BoolVar(&flags.CopyRootPassword, "copy-root-password", false, "copy the root password from the host")

	f.BoolVar(&flags.Force, "force", false, "overwrite settings that are already configured")
	f.StringVar(&flags.DefaultsFile, "defaults", "", "read default answers from a YAML file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}
