package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var errEmptyPassword = errors.New("password must not be empty")

// readPassword reads a password without echo when stdin is a terminal,
// otherwise it reads one line from in.
func (a *app) readPassword(prompt string, fromStdin bool) (string, error) {
	if !fromStdin {
		if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			fmt.Fprint(a.errOut, prompt)
			pw, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(a.errOut)
			if err != nil {
				return "", fmt.Errorf("read password: %w", err)
			}
			if len(pw) == 0 {
				return "", errEmptyPassword
			}
			return string(pw), nil
		}
	}

	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errEmptyPassword
	}
	return pw, nil
}
