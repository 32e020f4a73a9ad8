package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gookit/color"
	"github.com/pkg/errors"

	"github.com/passmint/passmint/crypt"
	"github.com/passmint/passmint/services"
	"github.com/passmint/passmint/session"
)

var version = "0.1.0"

// secretAttempts is how many times a wrong master secret can be retried
// against an existing config before giving up.
const secretAttempts = 3

type uiContext struct {
	filename      string
	shortFilename string

	sess *session.Session

	in lineEditor
}

func main() {
	parseCli()

	if flagNoColor {
		color.Disable()
	}

	if versionCmd.Used {
		fmt.Println("passmint", version)
		return
	}

	u := &uiContext{sess: session.New()}

	if err := u.run(); err != nil {
		if err == errInterrupt {
			os.Exit(1)
		}
		errColor.Printf("error occurred: %+v\n", err)
		os.Exit(1)
	}
}

func (u *uiContext) run() error {
	var err error
	u.filename, err = filepath.Abs(flagFile)
	if err != nil {
		return err
	}
	u.shortFilename = shortPath(u.filename)

	if u.in, err = newLineEditor(); err != nil {
		return err
	}
	defer u.in.Close()

	if err = u.unlockAndLoad(); err != nil {
		return err
	}

	dirty, err := u.dispatch()
	if err != nil {
		return err
	}

	if dirty {
		return u.saveBlob()
	}
	return nil
}

// unlockAndLoad prompts for the master secret and, when a config file
// already exists, proves the secret against it by decrypting. A wrong secret
// (or a corrupt file, indistinguishable by design) re-prompts; nothing is
// ever committed from a failed attempt.
func (u *uiContext) unlockAndLoad() error {
	blob, err := u.readBlobFile()
	if err != nil {
		return err
	}

	for attempt := 1; ; attempt++ {
		secret, err := u.promptMasterSecret()
		if err != nil {
			return err
		}

		if err = u.sess.Unlock(secret); err != nil {
			return err
		}

		if len(blob) == 0 {
			// Brand new file, nothing to verify the secret against.
			return nil
		}

		_, err = u.sess.Import(blob)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, crypt.ErrDecryption), errors.Is(err, services.ErrMalformedConfig):
			errColor.Println("wrong master secret or corrupt config")
			if attempt >= secretAttempts {
				return errors.New("giving up")
			}
		default:
			return err
		}
	}
}

func (u *uiContext) readBlobFile() (string, error) {
	data, err := os.ReadFile(u.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	// A whitespace-only file is a new file, not a corrupt one.
	return strings.TrimSpace(string(data)), nil
}

func (u *uiContext) saveBlob() error {
	blob, err := u.sess.Export()
	if err != nil {
		return err
	}

	return os.WriteFile(u.filename, []byte(blob+"\n"), 0600)
}

func shortPath(filename string) string {
	parts := strings.Split(filename, string(filepath.Separator))
	if len(parts) == 1 {
		return filename
	}

	var newParts []string
	for _, p := range parts[:len(parts)-1] {
		if len(p) == 0 {
			newParts = append(newParts, p)
			continue
		}
		newParts = append(newParts, string(p[0]))
	}
	newParts = append(newParts, parts[len(parts)-1])

	return strings.Join(newParts, string(filepath.Separator))
}
