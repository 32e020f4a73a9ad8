// Package pinentry locates a pinentry program and uses it to ask for the
// master secret, keeping the secret off the terminal and out of shell
// history. Callers fall back to their own hidden prompt when no pinentry is
// around.
package pinentry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ErrNotFound is returned when no pinentry program can be located, or when
// $PINENTRY is set to "none".
var ErrNotFound = errors.New("pinentry program not found")

var (
	pinEntryPrograms = []string{
		"pinentry",
		"pinentry-gnome3",
		"pinentry-kde",
		"pinentry-x11",
		"pinentry-curses",
		"pinentry-tty",
	}

	cachedPinEntry string
)

// Secret asks a pinentry program for a secret. title goes in the window
// title bar, desc above the input box. A user cancel returns an empty
// secret and no error.
func Secret(title, desc string) (secret string, err error) {
	program := lookup()
	if len(program) == 0 {
		return "", ErrNotFound
	}

	cmd := exec.Command(program, "--ttyname", "/dev/tty")
	cmd.Stderr = os.Stderr

	in, err := cmd.StdinPipe()
	if err != nil {
		return "", fmt.Errorf("failed to open pinentry stdin: %w", err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("failed to open pinentry stdout: %w", err)
	}

	if err = cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start pinentry: %w", err)
	}

	c := conn{in: in, scanner: bufio.NewScanner(out)}

	greeting, err := c.line()
	if err != nil {
		return "", err
	}
	if greeting != "OK Pleased to meet you" {
		return "", errors.New("rogue pinentry program")
	}

	options := []string{
		fmt.Sprintf("SETTITLE %s", title),
		fmt.Sprintf("SETDESC %s", desc),
		"OPTION lc-ctype UTF-8",
	}
	if term := os.Getenv("TERM"); len(term) != 0 {
		options = append(options, "OPTION ttytype "+term)
	}
	if display := os.Getenv("DISPLAY"); len(display) != 0 {
		options = append(options, "OPTION display "+display)
	}

	for _, opt := range options {
		if err = c.expectOK(opt); err != nil {
			return "", err
		}
	}

	if err = c.send("GETPIN"); err != nil {
		return "", err
	}

	resp, err := c.line()
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(resp, "D ") {
		secret = resp[2:]
		if resp, err = c.line(); err != nil {
			return "", err
		}
	} else if strings.HasPrefix(resp, "ERR") && strings.Contains(resp, "Operation cancelled") {
		return "", nil
	}
	if resp != "OK" {
		return "", errors.New("rogue pinentry program")
	}

	if err = c.send("BYE"); err != nil {
		return "", err
	}

	if err = cmd.Wait(); err != nil {
		return "", err
	}

	return secret, nil
}

func lookup() string {
	program := os.Getenv("PINENTRY")
	if program == "none" {
		return ""
	}
	if len(program) != 0 {
		return program
	}

	if len(cachedPinEntry) == 0 {
		for _, p := range pinEntryPrograms {
			if _, err := exec.LookPath(p); err == nil {
				cachedPinEntry = p
				break
			}
		}
	}

	return cachedPinEntry
}

// conn is one assuan conversation with a pinentry process.
type conn struct {
	in      io.Writer
	scanner *bufio.Scanner
}

func (c conn) send(cmd string) error {
	if _, err := fmt.Fprintln(c.in, cmd); err != nil {
		return fmt.Errorf("failed to write to pinentry: %w", err)
	}
	return nil
}

func (c conn) line() (string, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read from pinentry: %w", err)
		}
		return "", errors.New("pinentry closed its output")
	}
	return c.scanner.Text(), nil
}

func (c conn) expectOK(cmd string) error {
	if err := c.send(cmd); err != nil {
		return err
	}

	resp, err := c.line()
	if err != nil {
		return err
	}
	if resp != "OK" {
		return fmt.Errorf("pinentry rejected %q: %s", cmd, resp)
	}

	return nil
}
