package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/gookit/color"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/pkg/errors"

	"github.com/passmint/passmint/passgen"
	"github.com/passmint/passmint/services"
	"github.com/passmint/passmint/session"
)

var (
	errColor         = color.FgLightRed
	infoColor        = color.FgLightMagenta
	inputPromptColor = color.FgYellow
	keyColor         = color.FgLightGreen
)

// dispatch runs the selected subcommand. dirty reports whether the config
// file must be rewritten afterwards.
func (u *uiContext) dispatch() (dirty bool, err error) {
	switch {
	case lsCmd.Used:
		return false, u.list(argFilter)
	case addCmd.Used:
		return u.add(argName)
	case rmCmd.Used:
		return u.remove(argName)
	case showCmd.Used:
		return false, u.show(argName)
	case allCmd.Used:
		return false, u.showAll()
	case bumpCmd.Used:
		return u.bump(argName)
	case patternCmd.Used:
		return u.setPattern(argName, argPatternKey)
	case exportCmd.Used:
		return false, u.export(argPath)
	case importCmd.Used:
		return u.importBlob(argPath)
	default:
		return false, u.list("")
	}
}

func (u *uiContext) list(filter string) error {
	list := u.sess.List()
	if len(list) == 0 {
		infoColor.Println("no services yet, try: passmint add example.com")
		return nil
	}

	shown := 0
	for _, svc := range list {
		if filter != "" && !fuzzy.MatchFold(filter, svc.Name) {
			continue
		}
		shown++

		pattern := svc.Pattern
		if pattern == "" {
			pattern = passgen.DefaultPattern()
		}
		fmt.Printf("%s  (iterations: %d, pattern: %s)\n",
			keyColor.Sprint(svc.Name), svc.Iterations, pattern)
	}

	if shown == 0 {
		infoColor.Printf("no services match %q\n", filter)
	}
	return nil
}

func (u *uiContext) add(name string) (bool, error) {
	svc, err := u.sess.Add(name)
	switch {
	case errors.Is(err, services.ErrDuplicate):
		errColor.Printf("%q already exists\n", strings.TrimSpace(name))
		return false, nil
	case errors.Is(err, services.ErrInvalidName):
		errColor.Printf("%q is not a valid service name, try something like example.com\n", name)
		return false, nil
	case err != nil:
		return false, err
	}

	infoColor.Printf("added %s\n", svc.Name)
	return true, u.show(svc.Name)
}

func (u *uiContext) remove(name string) (bool, error) {
	if !u.sess.Remove(name) {
		errColor.Printf("unknown service %q\n", name)
		return false, nil
	}

	infoColor.Printf("removed %s\n", name)
	return true, nil
}

func (u *uiContext) show(name string) error {
	pass, err := u.sess.Password(name)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			errColor.Printf("unknown service %q\n", name)
			return nil
		}
		return err
	}

	return u.deliverPassword(pass)
}

func (u *uiContext) deliverPassword(pass string) error {
	if flagCopy {
		if err := clipboard.WriteAll(pass); err != nil {
			return errors.Wrap(err, "failed to copy password to clipboard")
		}
		infoColor.Println("password copied to clipboard")
		return nil
	}

	fmt.Println(pass)
	return nil
}

func (u *uiContext) showAll() error {
	results, err := u.sess.DeriveAll(context.Background(), func(done, total int) {
		fmt.Fprintf(os.Stderr, "\rderiving %d/%d", done, total)
		if done == total {
			fmt.Fprint(os.Stderr, "\r\033[K")
		}
	})
	if err != nil {
		return err
	}

	width := 0
	for _, r := range results {
		if len(r.Service.Name) > width {
			width = len(r.Service.Name)
		}
	}

	for _, r := range results {
		if r.Err != nil {
			errColor.Printf("%-*s  failed: %v\n", width, r.Service.Name, r.Err)
			continue
		}
		fmt.Printf("%-*s  %s\n", width, keyColor.Sprint(r.Service.Name), r.Password)
	}
	return nil
}

func (u *uiContext) bump(name string) (bool, error) {
	svc, err := u.sess.Bump(name)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			errColor.Printf("unknown service %q\n", name)
			return false, nil
		}
		return false, err
	}

	infoColor.Printf("%s rotated to iterations %d\n", svc.Name, svc.Iterations)
	return true, u.show(svc.Name)
}

func (u *uiContext) setPattern(name, pattern string) (bool, error) {
	if !passgen.Known(pattern) {
		errColor.Printf("unknown pattern %q, known: %s\n",
			pattern, strings.Join(passgen.Patterns(), " "))
		return false, nil
	}

	svc, err := u.sess.SetPattern(name, pattern)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			errColor.Printf("unknown service %q\n", name)
			return false, nil
		}
		return false, err
	}

	infoColor.Printf("%s now uses pattern %s\n", svc.Name, svc.Pattern)
	return true, u.show(svc.Name)
}

func (u *uiContext) export(path string) error {
	blob, err := u.sess.Export()
	if err != nil {
		return err
	}

	if path == "" {
		fmt.Println(blob)
		return nil
	}

	if err = os.WriteFile(path, []byte(blob+"\n"), 0600); err != nil {
		return err
	}
	infoColor.Printf("exported %d services to %s\n", len(u.sess.List()), path)
	return nil
}

func (u *uiContext) importBlob(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	n, err := u.sess.Import(string(data))
	switch {
	case errors.Is(err, session.ErrLocked):
		return false, err
	case err != nil:
		// Wrong secret and corrupt file are the same thing out here.
		errColor.Println("cannot import: wrong master secret or corrupt config")
		return false, nil
	}

	infoColor.Printf("imported %d services from %s\n", n, path)
	return true, nil
}
