// Package terminal is the interactive catalog client: a line-oriented REPL
// that drives catalog.Controller against the HTTP API.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// NoTTY marks an input that is not a terminal.
const NoTTY = -1

// TerminalFD returns the descriptor of f when it is a terminal, NoTTY
// otherwise.
func TerminalFD(f *os.File) int {
	if f != nil && term.IsTerminal(int(f.Fd())) {
		return int(f.Fd())
	}
	return NoTTY
}

// Confirmer asks y/N questions. On a terminal a single key answers; on a
// pipe a whole line is read. Anything but y means no.
type Confirmer struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

// NewConfirmer shares in with the REPL so no input is lost between them.
func NewConfirmer(in *bufio.Reader, out io.Writer, fd int) *Confirmer {
	return &Confirmer{in: in, out: out, fd: fd}
}

func (c *Confirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(c.out, "%s (y/N): ", prompt)

	if c.fd != NoTTY {
		if old, err := term.MakeRaw(c.fd); err == nil {
			defer term.Restore(c.fd, old)
			b, err := c.in.ReadByte()
			if err != nil {
				return false, err
			}
			if b == 3 { // Ctrl+C
				fmt.Fprint(c.out, "<CANCELLED>\r\n")
				return false, nil
			}
			fmt.Fprintf(c.out, "%c\r\n", b)
			return b == 'y' || b == 'Y', nil
		} // else not raw: Enter is needed, read a line below
	}

	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.out)
			return false, nil
		}
		return false, err
	}
	answer := strings.TrimSpace(line)
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes"), nil
}

// ReadSecret reads a password without echo on a terminal, or a plain line
// otherwise.
func ReadSecret(in *bufio.Reader, out io.Writer, fd int, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if fd != NoTTY {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		return string(b), err
	}
	return readLine(in)
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
