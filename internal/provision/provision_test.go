package provision

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GehirnInc/crypt/sha512_crypt"

	"firstboot/internal/config"
	"firstboot/internal/machineid"
	"firstboot/internal/prompt"
	"firstboot/internal/syscandidates"
)

// noCmdline points the kill switch at a path that does not exist, so
// tests behave the same on hosts whose real kernel command line could
// say anything.
func noCmdline(t *testing.T) {
	t.Helper()
	orig := procCmdlinePath
	procCmdlinePath = filepath.Join(t.TempDir(), "cmdline")
	t.Cleanup(func() { procCmdlinePath = orig })
}

// noHostFiles redirects the copy-from-host sources into an empty
// directory.
func noHostFiles(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origLocale, origVconsole, origLocaltime := hostLocaleConf, hostVconsoleConf, hostLocaltime
	hostLocaleConf = filepath.Join(dir, "locale.conf")
	hostVconsoleConf = filepath.Join(dir, "vconsole.conf")
	hostLocaltime = filepath.Join(dir, "localtime")
	t.Cleanup(func() {
		hostLocaleConf, hostVconsoleConf, hostLocaltime = origLocale, origVconsole, origLocaltime
	})
}

func testProvisioner(cfg *config.Settings, input string) *Provisioner {
	p := New(cfg)
	p.term = &prompt.Prompter{
		In:  bufio.NewReader(strings.NewReader(input)),
		Out: io.Discard,
		TTY: -1,
	}
	p.welcomed = true
	return p
}

// readCred reads a credential table, lifting the restrictive mode a
// fresh table is created with first.
func readCred(t *testing.T, path string) string {
	t.Helper()
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatalf("Chmod(%s): %v", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", path, err)
	}
	return string(data)
}

func rootLine(t *testing.T, content string) []string {
	t.Helper()
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "root:") {
			return strings.Split(line, ":")
		}
	}
	t.Fatalf("no root entry in %q", content)
	return nil
}

func TestRun_AppliesEverythingOnceAndNeverTwice(t *testing.T) {
	noCmdline(t)
	noHostFiles(t)
	root := t.TempDir()

	id, err := machineid.Parse("12345678-9abc-def0-1234-56789abcdef0")
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Settings{
		Root:           root,
		Locale:         "en_US.UTF-8",
		LocaleMessages: "de_DE.UTF-8",
		Keymap:         "us",
		Timezone:       "Europe/Berlin",
		Hostname:       "node1",
		MachineID:      id,
		RootPassword:   "hunter2",
		KernelCmdline:  "console=ttyS0 quiet",
	}
	if err := testProvisioner(cfg, "").run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	checks := map[string]string{
		"etc/locale.conf":    "LANG=en_US.UTF-8\nLC_MESSAGES=de_DE.UTF-8\n",
		"etc/vconsole.conf":  "KEYMAP=us\n",
		"etc/hostname":       "node1\n",
		"etc/machine-id":     "123456789abcdef0123456789abcdef0\n",
		"etc/kernel/cmdline": "console=ttyS0 quiet\n",
	}
	for rel, want := range checks {
		data, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", rel, err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", rel, data, want)
		}
	}

	target, err := os.Readlink(filepath.Join(root, "etc/localtime"))
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if target != "../usr/share/zoneinfo/Europe/Berlin" {
		t.Errorf("localtime -> %q", target)
	}

	// A second run with different answers must not touch anything:
	// every setting already exists.
	other := *cfg
	other.Locale = "fr_FR.UTF-8"
	other.Hostname = "other"
	other.RootPassword = "different"
	other.Timezone = "UTC"
	if err := testProvisioner(&other, "").run(); err != nil {
		t.Fatalf("second run: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "etc/hostname"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "node1\n" {
		t.Errorf("hostname rewritten on second run: %q", data)
	}

	shadow := rootLine(t, readCred(t, filepath.Join(root, "etc/shadow")))
	if err := sha512_crypt.New().Verify(shadow[1], []byte("hunter2")); err != nil {
		t.Errorf("shadow hash does not verify: %v", err)
	}
	passwd := rootLine(t, readCred(t, filepath.Join(root, "etc/passwd")))
	if passwd[1] != "x" {
		t.Errorf("passwd password field = %q, want placeholder", passwd[1])
	}
}

func TestRun_KillSwitchDisables(t *testing.T) {
	dir := t.TempDir()
	cmdline := filepath.Join(dir, "cmdline")
	if err := os.WriteFile(cmdline, []byte("ro quiet firstboot=0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	orig := procCmdlinePath
	procCmdlinePath = cmdline
	t.Cleanup(func() { procCmdlinePath = orig })

	root := t.TempDir()
	cfg := &config.Settings{Root: root, Hostname: "nope"}
	if err := testProvisioner(cfg, "").run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "etc")); !os.IsNotExist(err) {
		t.Error("kill switch run still wrote to the target tree")
	}
}

func TestKillSwitchEnabled(t *testing.T) {
	tests := []struct {
		name    string
		cmdline string
		want    bool
		wantErr bool
	}{
		{"absent key", "ro quiet splash", true, false},
		{"bare key", "quiet firstboot", true, false},
		{"on", "firstboot=yes", true, false},
		{"off", "firstboot=0", false, false},
		{"off word", "quiet firstboot=off ro", false, false},
		{"garbage", "firstboot=maybe", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cmdline")
			if err := os.WriteFile(path, []byte(tt.cmdline+"\n"), 0o644); err != nil {
				t.Fatal(err)
			}
			orig := procCmdlinePath
			procCmdlinePath = path
			t.Cleanup(func() { procCmdlinePath = orig })

			got, err := killSwitchEnabled()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("enabled = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKillSwitchEnabled_MissingFile(t *testing.T) {
	orig := procCmdlinePath
	procCmdlinePath = filepath.Join(t.TempDir(), "cmdline")
	t.Cleanup(func() { procCmdlinePath = orig })

	got, err := killSwitchEnabled()
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("a host without a kernel command line should count as enabled")
	}
}

func TestProcessLocale_CopyMissFallsBackToExplicit(t *testing.T) {
	noHostFiles(t)
	root := t.TempDir()
	cfg := &config.Settings{Root: root, Locale: "en_GB.UTF-8", CopyLocale: true}

	if err := testProvisioner(cfg, "").processLocale(); err != nil {
		t.Fatalf("processLocale: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "etc/locale.conf"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "LANG=en_GB.UTF-8\n" {
		t.Errorf("locale.conf = %q", data)
	}
}

func TestProcessLocale_CopiesHostFile(t *testing.T) {
	noHostFiles(t)
	if err := os.WriteFile(hostLocaleConf, []byte("LANG=sv_SE.UTF-8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	root := t.TempDir()
	cfg := &config.Settings{Root: root, Locale: "en_GB.UTF-8", CopyLocale: true}

	if err := testProvisioner(cfg, "").processLocale(); err != nil {
		t.Fatalf("processLocale: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "etc/locale.conf"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "LANG=sv_SE.UTF-8\n" {
		t.Errorf("copy-from-host should win over the explicit value, got %q", data)
	}
}

func TestProcessLocale_SingleInstalledLocale(t *testing.T) {
	tests := []struct {
		name      string
		installed string
		wantFile  bool
	}{
		{"equals default", "en_US.UTF-8", false},
		{"differs from default", "de_DE.UTF-8", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			cfg := &config.Settings{Root: root, PromptLocale: true}
			p := testProvisioner(cfg, "")
			p.defaultLocale = "en_US.UTF-8"
			p.locales = func(string) ([]string, error) {
				return []string{tt.installed}, nil
			}

			if err := p.processLocale(); err != nil {
				t.Fatalf("processLocale: %v", err)
			}
			_, err := os.Stat(filepath.Join(root, "etc/locale.conf"))
			if tt.wantFile && err != nil {
				t.Fatalf("locale.conf not written: %v", err)
			}
			if !tt.wantFile && !os.IsNotExist(err) {
				t.Errorf("locale.conf written for the default locale (err=%v)", err)
			}
		})
	}
}

func TestProcessLocale_MessageLocaleEqualToPrimarySuppressed(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Settings{Root: root, Locale: "en_US.UTF-8", LocaleMessages: "en_US.UTF-8"}

	if err := testProvisioner(cfg, "").processLocale(); err != nil {
		t.Fatalf("processLocale: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "etc/locale.conf"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "LANG=en_US.UTF-8\n" {
		t.Errorf("locale.conf = %q, want LC_MESSAGES suppressed", data)
	}
}

func TestPromptLocale_SelectsBoth(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Settings{Root: root, PromptLocale: true}
	p := testProvisioner(cfg, "1\n2\n")
	p.locales = func(string) ([]string, error) {
		return []string{"de_DE.UTF-8", "en_US.UTF-8"}, nil
	}

	if err := p.processLocale(); err != nil {
		t.Fatalf("processLocale: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "etc/locale.conf"))
	if err != nil {
		t.Fatal(err)
	}
	want := "LANG=de_DE.UTF-8\nLC_MESSAGES=en_US.UTF-8\n"
	if string(data) != want {
		t.Errorf("locale.conf = %q, want %q", data, want)
	}
}

func TestProcessKeymap_NoCandidatesSkips(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Settings{Root: root, PromptKeymap: true}
	p := testProvisioner(cfg, "")
	p.keymaps = func(string) ([]string, error) {
		return nil, syscandidates.ErrNoCandidates
	}

	if err := p.processKeymap(); err != nil {
		t.Fatalf("processKeymap: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "etc/vconsole.conf")); !os.IsNotExist(err) {
		t.Error("vconsole.conf written without any keymap candidates")
	}
}

func TestPromptTimezone_SelectByNumber(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Settings{Root: root, PromptTimezone: true}
	p := testProvisioner(cfg, "2\n")
	p.timezones = func(string) ([]string, error) {
		return []string{"Europe/Berlin", "UTC"}, nil
	}

	if err := p.processTimezone(); err != nil {
		t.Fatalf("processTimezone: %v", err)
	}
	target, err := os.Readlink(filepath.Join(root, "etc/localtime"))
	if err != nil {
		t.Fatal(err)
	}
	if target != "../usr/share/zoneinfo/UTC" {
		t.Errorf("localtime -> %q", target)
	}
}

func TestPromptHostname_RetriesUntilValid(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Settings{Root: root, PromptHostname: true}
	p := testProvisioner(cfg, "-bad-\ngood-name.\n")

	if err := p.processHostname(); err != nil {
		t.Fatalf("processHostname: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "etc/hostname"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "good-name\n" {
		t.Errorf("hostname = %q, want trailing dot stripped", data)
	}
}

func TestProcessRootPassword_PreHashedWrittenVerbatim(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Settings{
		Root:                 root,
		RootPassword:         "$6$fixedsalt$fixedhash",
		RootPasswordIsHashed: true,
	}

	if err := testProvisioner(cfg, "").processRootPassword(); err != nil {
		t.Fatalf("processRootPassword: %v", err)
	}
	shadow := rootLine(t, readCred(t, filepath.Join(root, "etc/shadow")))
	if shadow[1] != "$6$fixedsalt$fixedhash" {
		t.Errorf("shadow hash = %q, want verbatim", shadow[1])
	}
}

func TestProcessRootPassword_CopyFromHost(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Settings{Root: root, CopyRootPassword: true}
	p := testProvisioner(cfg, "")
	p.hostHash = func() (string, error) {
		return "$6$hostsalt$hosthash", nil
	}

	if err := p.processRootPassword(); err != nil {
		t.Fatalf("processRootPassword: %v", err)
	}
	shadow := rootLine(t, readCred(t, filepath.Join(root, "etc/shadow")))
	if shadow[1] != "$6$hostsalt$hosthash" {
		t.Errorf("shadow hash = %q, want the host hash", shadow[1])
	}
	passwd := rootLine(t, readCred(t, filepath.Join(root, "etc/passwd")))
	if passwd[1] != "x" {
		t.Errorf("passwd password field = %q", passwd[1])
	}
}

func TestProcessRootPassword_Delete(t *testing.T) {
	root := t.TempDir()
	etc := filepath.Join(root, "etc")
	if err := os.MkdirAll(etc, 0o755); err != nil {
		t.Fatal(err)
	}
	passwd := "root:x:0:0:root:/root:/bin/bash\ndaemon:x:1:1::/:/usr/sbin/nologin\n"
	shadow := "root:$6$old$oldhash:19000:0:99999:7:::\n"
	if err := os.WriteFile(filepath.Join(etc, "passwd"), []byte(passwd), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(etc, "shadow"), []byte(shadow), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Settings{Root: root, DeleteRootPassword: true, Force: true}
	if err := testProvisioner(cfg, "").processRootPassword(); err != nil {
		t.Fatalf("processRootPassword: %v", err)
	}

	got := readCred(t, filepath.Join(etc, "passwd"))
	want := "root::0:0:root:/root:/bin/bash\ndaemon:x:1:1::/:/usr/sbin/nologin\n"
	if got != want {
		t.Errorf("passwd = %q, want %q", got, want)
	}
	if readCred(t, filepath.Join(etc, "shadow")) != shadow {
		t.Error("deleting the root password must not rewrite the shadow table")
	}
}

func TestProcessRootPassword_PromptSkip(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Settings{Root: root, PromptRootPassword: true}

	if err := testProvisioner(cfg, "\n").processRootPassword(); err != nil {
		t.Fatalf("processRootPassword: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "etc/shadow")); !os.IsNotExist(err) {
		t.Error("shadow written after the operator skipped the password prompt")
	}
}
