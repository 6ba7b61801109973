package prompt

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"firstboot/internal/status"
)

// PasswordTwice asks for a credential and its confirmation without
// echoing either. An empty first answer skips. On a mismatch the whole
// two-question exchange restarts. Input buffers are zeroed before
// return on every path.
func (p *Prompter) PasswordTwice(first, again string) (string, error) {
	for {
		a, err := p.readPassword(first)
		if err != nil {
			return "", err
		}
		if len(a) == 0 {
			status.Warn("No password entered, skipping.")
			return "", nil
		}

		b, err := p.readPassword(again)
		if err != nil {
			zero(a)
			return "", err
		}

		if string(a) != string(b) {
			status.Error("Entered passwords did not match, please try again.")
			zero(a)
			zero(b)
			continue
		}

		pw := string(a)
		zero(a)
		zero(b)
		return pw, nil
	}
}

func (p *Prompter) readPassword(text string) ([]byte, error) {
	fmt.Fprintf(p.Out, "%s %s", bullet, text)

	if p.TTY >= 0 && term.IsTerminal(p.TTY) {
		pw, err := term.ReadPassword(p.TTY)
		fmt.Fprintln(p.Out)
		if err != nil {
			return nil, fmt.Errorf("failed to query password: %w", err)
		}
		return pw, nil
	}

	line, err := p.In.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return nil, fmt.Errorf("failed to query password: %w", err)
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
