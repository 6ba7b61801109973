// Package prompt implements the interactive terminal dialogue: free
// text questions, a paginated selection menu, and no-echo password
// entry.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"firstboot/internal/status"
)

const (
	bullet      = "‣"
	menuColumns = 3
	menuWidth   = 22
)

// Prompter reads answers from a terminal (or any reader in tests).
type Prompter struct {
	In  *bufio.Reader
	Out io.Writer

	// TTY is the file descriptor used for raw-mode reads, password
	// entry and size detection. Negative means "not a terminal".
	TTY int
}

// New returns a Prompter wired to the process terminal.
func New() *Prompter {
	tty := int(os.Stdin.Fd())
	if !term.IsTerminal(tty) {
		tty = -1
	}
	return &Prompter{
		In:  bufio.NewReader(os.Stdin),
		Out: os.Stdout,
		TTY: tty,
	}
}

// Ask prints the question and returns one line of input, trimmed.
func (p *Prompter) Ask(text string) (string, error) {
	fmt.Fprintf(p.Out, "%s %s", bullet, text)
	line, err := p.In.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to query user: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// AnyKey pauses until a single key is pressed. It returns false when
// that key is 'q', which callers treat as "stop paginating".
func (p *Prompter) AnyKey() bool {
	fmt.Fprint(p.Out, "-- Press any key to proceed --")

	var restore func()
	if p.TTY >= 0 {
		if st, err := term.MakeRaw(p.TTY); err == nil {
			restore = func() { _ = term.Restore(p.TTY, st) }
		}
	}
	k, err := p.In.ReadByte()
	if restore != nil {
		restore()
	}
	fmt.Fprintln(p.Out)
	if err != nil {
		return true
	}
	return k != 'q'
}

// Select runs the selection loop: the answer is either a candidate
// picked by 1-based number, free text accepted by valid, or "" when the
// operator pressed enter to skip. Typing "list" shows the paginated
// candidate menu and asks again.
func (p *Prompter) Select(text string, candidates []string, ellipsisPercent int, valid func(string) bool) (string, error) {
	for {
		answer, err := p.Ask(fmt.Sprintf("%s (empty to skip, \"list\" to list options): ", text))
		if err != nil {
			return "", err
		}

		if answer == "" {
			status.Warn("No data entered, skipping.")
			return "", nil
		}

		if answer == "list" {
			p.menu(candidates, menuWidth, ellipsisPercent)
			fmt.Fprintln(p.Out)
			continue
		}

		if u, err := strconv.ParseUint(answer, 10, 32); err == nil {
			if u == 0 || u > uint64(len(candidates)) {
				status.Error("Specified entry number out of range.")
				continue
			}
			status.Selected(candidates[u-1])
			return candidates[u-1], nil
		}

		if !valid(answer) {
			status.Error("Entered data invalid.")
			continue
		}
		return answer, nil
	}
}

// menu renders candidates in column-major order across a fixed number
// of columns, pausing after each full screen. A 'q' at the pause
// abandons the rest of the listing.
func (p *Prompter) menu(candidates []string, width, ellipsisPercent int) {
	perColumn := (len(candidates) + menuColumns - 1) / menuColumns

	breakLines := p.rows()
	if breakLines > 2 {
		breakLines--
	}
	// The first screen shows the question above the menu, so it gets a
	// smaller budget.
	breakModulo := breakLines
	if breakModulo > 3 {
		breakModulo -= 3
	}

	for i := 0; i < perColumn; i++ {
		for j := 0; j < menuColumns; j++ {
			idx := j*perColumn + i
			if idx >= len(candidates) {
				break
			}
			fmt.Fprintf(p.Out, "%4d) %-*s", idx+1, width, ellipsize(candidates[idx], width, ellipsisPercent))
		}
		fmt.Fprintln(p.Out)

		if i%breakLines == breakModulo {
			if !p.AnyKey() {
				return
			}
		}
	}
}

func (p *Prompter) rows() int {
	if p.TTY >= 0 {
		if _, rows, err := term.GetSize(p.TTY); err == nil && rows > 0 {
			return rows
		}
	}
	return 24
}

// ellipsize shortens s to width characters, placing the ellipsis so
// that roughly percent% of the kept text comes from the front.
func ellipsize(s string, width, percent int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	keep := width - 3
	front := keep * percent / 100
	if front > keep {
		front = keep
	}
	return string(r[:front]) + "..." + string(r[len(r)-(keep-front):])
}
