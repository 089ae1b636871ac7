package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/99designs/keyring"
	"golang.org/x/term"
)

const (
	keyringServiceName       = "com.renault.auth"
	keyringCredentialService = "myrenault"
	keyringDirectory         = "~/.renault_keys"
)

type backendType struct {
	config *Config
}

func (b backendType) String() string {
	if b.config == nil || len(b.config.Backend.AllowedBackends) == 0 {
		return string(keyring.InvalidBackend)
	}
	return string(b.config.Backend.AllowedBackends[0])
}

func (b backendType) Set(v string) error {
	value := keyring.BackendType(v)
	if b.config == nil {
		return fmt.Errorf("invalid backendType")
	}
	if v == "" {
		return nil
	}
	for _, name := range keyring.AvailableBackends() {
		if name == value {
			b.config.Backend.AllowedBackends = []keyring.BackendType{name}
			return nil
		}
	}
	return fmt.Errorf("unsupported credential storage")
}

// PromptSecret prompts the controlling terminal for a secret without echoing it.
func PromptSecret(prompt string) (string, error) {
	var w io.Writer
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		fd = int(os.Stderr.Fd())
		if !term.IsTerminal(fd) {
			return "", fmt.Errorf("no terminal available for password prompt")
		}
		w = os.Stderr
	} else {
		w = os.Stdout
	}

	fmt.Fprintf(w, "%s: ", prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	fmt.Fprintln(w)
	return string(b), nil
}

// getPassword caches the keyring unlock password across multiple backend
// operations so file-backed keyrings prompt at most once.
func (c *Config) getPassword(prompt string) (string, error) {
	if c.keyringPassword != nil && *c.keyringPassword != "" {
		return *c.keyringPassword, nil
	}
	password, err := PromptSecret(prompt)
	if err != nil {
		return "", err
	}
	c.keyringPassword = &password
	return password, nil
}

func (c *Config) openKeyring() (keyring.Keyring, error) {
	return keyring.Open(c.Backend)
}

func (c *Config) credentialKeyName() string {
	name := c.KeyringCredentialsName
	if name == "" {
		name = c.Email
	}
	return keyringCredentialService + "." + name
}

// LoadCredentialsFromKeyring reads the account password from the system keyring.
//
// The entry name must match the value provided to SaveCredentialsToKeyring.
func (c *Config) LoadCredentialsFromKeyring() (string, error) {
	kr, err := c.openKeyring()
	if err != nil {
		return "", err
	}

	item, err := kr.Get(c.credentialKeyName())
	if err != nil {
		return "", fmt.Errorf("could not load account password: %w", err)
	}
	return string(item.Data), nil
}

// SaveCredentialsToKeyring writes the account password to the system keyring.
//
// The entry name identifies the password for future use with
// LoadCredentialsFromKeyring and does not necessarily need to match the system
// username.
func (c *Config) SaveCredentialsToKeyring(password string) error {
	kr, err := c.openKeyring()
	if err != nil {
		return err
	}

	if err := kr.Set(keyring.Item{
		Key:   c.credentialKeyName(),
		Label: "MyRenault password for " + c.Email,
		Data:  []byte(password),
	}); err != nil {
		return fmt.Errorf("failed to enroll password in keyring: %s", err)
	}
	return nil
}

// DeleteCredentials removes the account password from the system keyring.
func (c *Config) DeleteCredentials() error {
	kr, err := c.openKeyring()
	if err != nil {
		return err
	}
	return kr.Remove(c.credentialKeyName())
}
