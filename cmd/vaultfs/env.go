package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/absfs/absfs"
	"github.com/absfs/osfs"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/absfs/vaultfs"
)

// env is the unlocked state one command works against.
type env struct {
	session  *vaultfs.Session
	registry *vaultfs.Registry
	vaults   []*vaultfs.Vault
}

func openLocalEnv() (*env, error) {
	fs, err := osfs.NewFS()
	if err != nil {
		return nil, fmt.Errorf("open local filesystem: %w", err)
	}
	if len(vaultRoots) == 0 {
		return newEnv(fs, nil, nil, log)
	}
	kp, err := keyProvider(false)
	if err != nil {
		return nil, err
	}
	roots := make([]string, 0, len(vaultRoots))
	for _, r := range vaultRoots {
		p, err := localPath(r)
		if err != nil {
			return nil, err
		}
		roots = append(roots, p)
	}
	return newEnv(fs, roots, kp, log)
}

// newEnv unlocks every root with kp and registers the vaults.
func newEnv(fs absfs.FileSystem, roots []string, kp vaultfs.KeyProvider, logger logrus.FieldLogger) (*env, error) {
	e := &env{
		session:  vaultfs.NewSession(fs),
		registry: vaultfs.NewRegistry(logger),
	}
	cfg := vaultfs.DefaultConfig()
	cfg.Logger = logger
	for _, root := range roots {
		v, err := vaultfs.OpenVault(e.session, root, kp, cfg)
		if err != nil {
			return nil, fmt.Errorf("unlock %s: %w", root, err)
		}
		if err := e.registry.Add(v); err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{"vault": v.ID(), "root": root}).Debug("vault unlocked")
		e.vaults = append(e.vaults, v)
	}
	return e, nil
}

// keyProvider picks the key source from the flags: --key-env wins over
// --password, and an empty password is read from the terminal.
func keyProvider(confirm bool) (vaultfs.KeyProvider, error) {
	if keyEnv != "" {
		return vaultfs.NewEnvKeyProvider(keyEnv), nil
	}
	pw := password
	if pw == "" {
		var err error
		pw, err = promptPassword("Vault password: ")
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		if confirm {
			again, err := promptPassword("Repeat password: ")
			if err != nil {
				return nil, fmt.Errorf("read password: %w", err)
			}
			if again != pw {
				return nil, errors.New("passwords do not match")
			}
		}
	}
	if pw == "" {
		return nil, errors.New("empty password")
	}
	return vaultfs.NewPasswordKeyProvider([]byte(pw), vaultfs.Argon2idParams{}), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// localPath turns a command line path into the absolute slash path the
// session uses.
func localPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	return vaultfs.CleanPath(filepath.ToSlash(abs))
}
