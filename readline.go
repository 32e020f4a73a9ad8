package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"

	"github.com/passmint/passmint/pinentry"
)

var errInterrupt = errors.New("interrupted")

type lineEditor interface {
	LineHidden(prompt string) (string, error)
	Close() error
}

func newLineEditor() (lineEditor, error) {
	instance, err := readline.NewEx(&readline.Config{
		Prompt: "> ",

		HistoryFile:            "",
		DisableAutoSaveHistory: true,

		InterruptPrompt: "interrupt",
		EOFPrompt:       "exit",

		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	if err != nil {
		return nil, err
	}

	return readlineEditor{instance: instance}, nil
}

type readlineEditor struct {
	instance *readline.Instance
}

// LineHidden reads a line without echoing it.
func (r readlineEditor) LineHidden(prompt string) (string, error) {
	byt, err := r.instance.ReadPassword(prompt)
	switch err {
	case nil:
		return string(byt), nil
	case io.EOF, readline.ErrInterrupt:
		return "", errInterrupt
	default:
		return "", err
	}
}

// Close the line editor
func (r readlineEditor) Close() error {
	return r.instance.Close()
}

// promptMasterSecret prefers pinentry (keeps the secret out of the
// terminal), falling back to a hidden readline prompt.
func (u *uiContext) promptMasterSecret() (string, error) {
	prompt := fmt.Sprintf("%s master secret: ", u.shortFilename)

	secret, err := pinentry.Secret("Passmint master secret", prompt)
	if err == nil {
		return secret, nil
	} else if err != pinentry.ErrNotFound {
		return "", err
	}

	return u.in.LineHidden(inputPromptColor.Sprint(prompt))
}
