// Package pemfile keeps the SSH host key of the remote console on disk.
package pemfile

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"

	"github.com/pkg/errors"

	gossh "golang.org/x/crypto/ssh"
)

// Generate writes a new host key to keyPath and, if pubPath is set, its
// public half in authorized_keys format.
func Generate(keyPath, pubPath string) error {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return errors.WithStack(err)
	}
	block, err := gossh.MarshalPrivateKey(priv, "etlua host key")
	if err != nil {
		return errors.WithStack(err)
	}
	if err := os.WriteFile(keyPath, pem.EncodeToMemory(block), 0600); err != nil {
		return errors.WithStack(err)
	}
	if pubPath == "" {
		return nil
	}
	sshPub, err := gossh.NewPublicKey(pub)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(pubPath, gossh.MarshalAuthorizedKey(sshPub), 0644))
}

// Load reads the host key at keyPath, generating it first if missing. It
// reports whether the key was new.
func Load(keyPath string) (gossh.Signer, bool, error) {
	generated := false
	if _, err := os.Stat(keyPath); os.IsNotExist(err) {
		if err := Generate(keyPath, keyPath+".pub"); err != nil {
			return nil, false, err
		}
		generated = true
	} else if err != nil {
		return nil, false, errors.WithStack(err)
	}
	pemBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, false, errors.WithStack(err)
	}
	signer, err := gossh.ParsePrivateKey(pemBytes)
	if err != nil {
		return nil, false, errors.Wrapf(err, "parsing %q", keyPath)
	}
	return signer, generated, nil
}
