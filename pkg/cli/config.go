/*
Package cli facilitates building command-line applications that talk to the
MyRenault cloud service. It defines a [Config] type that can be used to register
common command-line flags (using the Golang flag package) and environment variable
equivalents.

The package uses [keyring]'s platform-agnostic interface for storing the account
password in an OS-dependent credential store. Passwords are never accepted on the
command line; they come from the environment, the keyring, or an interactive
prompt.

# Examples

	config, err := cli.NewConfig(cli.FlagAll)
	if err != nil {
		panic(err)
	}
	config.RegisterCommandLineFlags() // Adds command-line flags for account and keyring options.
	flag.Parse()
	config.ReadFromEnvironment() // Fills in missing fields using environment variables.
	if err := config.LoadCredentials(); err != nil { // Prompts for a password if needed.
		panic(err)
	}

	acct, car, err := config.Connect(ctx)
	if err != nil {
		panic(err)
	}

	// Interact with acct and car.

A [Flag] mask controls what [Config] fields are populated. Note that config.Flags
must be set before calling [flag.Parse] or [Config.ReadFromEnvironment]:

	config, err = cli.NewConfig(cli.FlagCredentials)               // Account only; no vehicle selection.
	config, err = cli.NewConfig(cli.FlagCredentials | cli.FlagVIN) // config.Connect() prefers -vin over the first vehicle.
*/
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/renault-community/renault-command/internal/log"
	"github.com/renault-community/renault-command/pkg/account"
	"github.com/renault-community/renault-command/pkg/cache"
	"github.com/renault-community/renault-command/pkg/vehicle"

	"github.com/99designs/keyring"
)

// Environment variable names used by [Config.ReadFromEnvironment] to set common
// parameters.
const (
	EnvRenaultEmail           = "RENAULT_EMAIL"
	EnvRenaultPassword        = "RENAULT_PASSWORD"
	EnvRenaultLocale          = "RENAULT_LOCALE"
	EnvRenaultCountry         = "RENAULT_COUNTRY"
	EnvRenaultVIN             = "RENAULT_VIN"
	EnvRenaultSnapshotTTL     = "RENAULT_SNAPSHOT_TTL"
	EnvRenaultCredentialsName = "RENAULT_CREDENTIALS_NAME"
	EnvRenaultKeyringType     = "RENAULT_KEYRING_TYPE"
	EnvRenaultKeyringPass     = "RENAULT_KEYRING_PASSWORD"
	EnvRenaultKeyringPath     = "RENAULT_KEYRING_PATH"
	EnvRenaultKeyringDebug    = "RENAULT_KEYRING_DEBUG"
)

// Flag controls what options should be scanned from the command line and/or
// environment variables.
type Flag int

func (f Flag) isSet(other Flag) bool {
	return (f & other) == other
}

const (
	FlagVIN         Flag = 1 // Enable VIN option.
	FlagCredentials Flag = 2 // Enable account credential and keyring options.
	FlagCache       Flag = 4 // Enable snapshot cache options.
	FlagAll              = FlagVIN | FlagCredentials | FlagCache
)

var (
	ErrNoEmailSpecified = errors.New("account email not provided")
	ErrKeyNotFound      = keyring.ErrKeyNotFound
)

// Config fields determine how a client authenticates to the MyRenault service and
// which of the account's vehicles it addresses.
type Config struct {
	Flags Flag // Controls which set of environment variables/CLI flags to use.

	Email   string
	Locale  string // Selects the regional deployment, e.g. fr_FR.
	Country string // Overrides the locale's gateway country code.
	VIN     string // Preferred vehicle. When empty the account's first vehicle is used.

	// KeyringCredentialsName is the system keyring entry holding the account
	// password. When empty the keyring is not consulted.
	KeyringCredentialsName string

	// SnapshotTTL bounds the age of cached vehicle snapshots. Zero means the
	// cache package default.
	SnapshotTTL time.Duration

	Backend     keyring.Config
	BackendType backendType
	Debug       bool // Enable keyring debug messages

	password        *string // account password; never a command-line flag
	keyringPassword *string
	acct            *account.Account
	snapshots       *cache.SnapshotCache
}

func NewConfig(flags Flag) (*Config, error) {
	c := Config{
		Flags: flags,
		Backend: keyring.Config{
			ServiceName:              keyringServiceName,
			KeychainTrustApplication: true,
			KeyCtlScope:              "user",
		},
	}
	c.BackendType = backendType{&c}
	c.Backend.KeychainPasswordFunc = c.getPassword
	c.Backend.FilePasswordFunc = c.getPassword

	return &c, nil
}

func (c *Config) RegisterCommandLineFlags() {
	if c.Flags.isSet(FlagVIN) {
		flag.StringVar(&c.VIN, "vin", "", "Vehicle Identification Number. Defaults to $RENAULT_VIN, then the account's first vehicle.")
	}
	if c.Flags.isSet(FlagCredentials) {
		flag.StringVar(&c.Email, "email", "", "MyRenault account email. Defaults to $RENAULT_EMAIL.")
		flag.StringVar(&c.Locale, "locale", "", "Account `locale`, e.g. fr_FR. Defaults to $RENAULT_LOCALE, then "+DefaultLocale+".")
		flag.StringVar(&c.Country, "country", "", "Gateway country override. Defaults to $RENAULT_COUNTRY, then the locale's country.")
		flag.StringVar(&c.KeyringCredentialsName, "credentials-name", "", "System keyring entry `name` holding the account password. Defaults to $RENAULT_CREDENTIALS_NAME.")
		var names []string
		for _, name := range keyring.AvailableBackends() {
			names = append(names, string(name))
		}
		sort.Strings(names)
		flag.Var(&c.BackendType, "keyring-type", "Keyring `type` ("+strings.Join(names, "|")+"). Defaults to $RENAULT_KEYRING_TYPE.")
		flag.StringVar(&c.Backend.FileDir, "keyring-file-dir", keyringDirectory, "keyring `directory` for file-backed keyring types")
		flag.BoolVar(&c.Debug, "keyring-debug", false, "Enable keyring debug logging")
	}
	if c.Flags.isSet(FlagCache) {
		flag.DurationVar(&c.SnapshotTTL, "snapshot-ttl", 0, "Time before a cached vehicle snapshot goes stale. Defaults to $RENAULT_SNAPSHOT_TTL, then "+cache.DefaultTTL.String()+".")
	}
}

// ReadFromEnvironment populates c using environment variables. Values that are
// already populated are not overwritten.
//
// Calling ReadFromEnvironment after flag.Parse() (or other initialization method)
// will prevent the environment from overriding explicit command-line parameters and
// avoid potentially misleading debug log messages.
func (c *Config) ReadFromEnvironment() {
	if c.Flags.isSet(FlagVIN) {
		if c.VIN == "" {
			c.VIN = os.Getenv(EnvRenaultVIN)
			log.Debug("Set VIN to '%s'", c.VIN)
		}
	}
	if c.Flags.isSet(FlagCredentials) {
		if c.Email == "" {
			c.Email = os.Getenv(EnvRenaultEmail)
			log.Debug("Set account email to '%s'", c.Email)
		}
		if c.password == nil {
			if password, ok := os.LookupEnv(EnvRenaultPassword); ok {
				c.password = &password
				log.Debug("Read account password from environment")
			}
		}
		if c.Locale == "" {
			c.Locale = os.Getenv(EnvRenaultLocale)
			log.Debug("Set locale to '%s'", c.Locale)
		}
		if c.Country == "" {
			c.Country = os.Getenv(EnvRenaultCountry)
			log.Debug("Set country to '%s'", c.Country)
		}
		if c.KeyringCredentialsName == "" {
			c.KeyringCredentialsName = os.Getenv(EnvRenaultCredentialsName)
			log.Debug("Set credentials name to '%s'", c.KeyringCredentialsName)
		}
		if c.BackendType.String() == string(keyring.InvalidBackend) {
			if err := c.BackendType.Set(os.Getenv(EnvRenaultKeyringType)); err == nil {
				log.Debug("Set keyring type to '%s'", c.BackendType.String())
			}
		}
		if c.keyringPassword == nil {
			if password, ok := os.LookupEnv(EnvRenaultKeyringPass); ok {
				c.keyringPassword = &password
				log.Debug("Read keyring password from environment")
			}
		}
		if c.Backend.FileDir == "" || c.Backend.FileDir == keyringDirectory {
			if dir := os.Getenv(EnvRenaultKeyringPath); dir != "" {
				c.Backend.FileDir = dir
				log.Debug("Set keyring file path to '%s'", c.Backend.FileDir)
			}
		}
		if !c.Debug {
			_, c.Debug = os.LookupEnv(EnvRenaultKeyringDebug)
		}
	}
	if c.Flags.isSet(FlagCache) {
		if c.SnapshotTTL == 0 {
			if value := os.Getenv(EnvRenaultSnapshotTTL); value != "" {
				ttl, err := time.ParseDuration(value)
				if err != nil {
					log.Warning("Ignoring invalid $%s: %s", EnvRenaultSnapshotTTL, err)
				} else {
					c.SnapshotTTL = ttl
					log.Debug("Set snapshot TTL to %s", ttl)
				}
			}
		}
	}
}

// LoadCredentials resolves the account email and password, prompting the terminal
// for anything still missing. Call this method before [Config.Connect] to prevent
// interactive prompts from counting against timeouts.
func (c *Config) LoadCredentials() error {
	if !c.Flags.isSet(FlagCredentials) {
		return nil
	}
	_, err := c.accountCredentials()
	return err
}

// SetPassword supplies the account password programmatically, bypassing keyring
// and prompt lookups.
func (c *Config) SetPassword(password string) {
	c.password = &password
}

// accountPassword resolves the MyRenault password: explicit value or environment,
// then the system keyring, then an interactive prompt. The result is cached for
// subsequent calls.
func (c *Config) accountPassword() (string, error) {
	if c.password != nil && *c.password != "" {
		return *c.password, nil
	}
	if c.KeyringCredentialsName != "" {
		password, err := c.LoadCredentialsFromKeyring()
		if err == nil {
			c.password = &password
			return password, nil
		}
		if !errors.Is(err, ErrKeyNotFound) {
			return "", err
		}
		log.Debug("No keyring entry named '%s'; falling back to a prompt", c.KeyringCredentialsName)
	}
	password, err := PromptSecret(fmt.Sprintf("MyRenault password for %s", c.Email))
	if err != nil {
		return "", err
	}
	c.password = &password
	return password, nil
}

func (c *Config) accountCredentials() (account.Credentials, error) {
	if c.Email == "" {
		return account.Credentials{}, ErrNoEmailSpecified
	}
	password, err := c.accountPassword()
	if err != nil {
		return account.Credentials{}, err
	}
	locale := c.Locale
	if locale == "" {
		locale = DefaultLocale
	}
	country, err := applyLocale(locale)
	if err != nil {
		return account.Credentials{}, err
	}
	if c.Country != "" {
		country = c.Country
	}
	return account.Credentials{
		Email:        c.Email,
		Password:     password,
		Country:      country,
		PreferredVIN: c.VIN,
	}, nil
}

// Account returns a client for the configured MyRenault account. No network
// traffic occurs until the first request needs a session. The client is cached;
// subsequent calls return the same one.
func (c *Config) Account() (*account.Account, error) {
	if c.acct != nil {
		return c.acct, nil
	}
	credentials, err := c.accountCredentials()
	if err != nil {
		return nil, err
	}
	acct, err := account.New(credentials, "")
	if err != nil {
		return nil, err
	}
	c.acct = acct
	return acct, nil
}

// SnapshotCache returns the process-wide snapshot cache, creating it on first use
// with c.SnapshotTTL (or the cache package default when unset).
func (c *Config) SnapshotCache() *cache.SnapshotCache {
	if c.snapshots == nil {
		ttl := c.SnapshotTTL
		if ttl <= 0 {
			ttl = cache.DefaultTTL
		}
		c.snapshots = cache.New(ttl)
	}
	return c.snapshots
}

// Connect logs into the configured account and resolves its vehicle. The session
// is established eagerly so configuration problems surface here rather than on the
// first command.
func (c *Config) Connect(ctx context.Context) (*account.Account, *vehicle.Vehicle, error) {
	acct, err := c.Account()
	if err != nil {
		return nil, nil, err
	}
	car, err := acct.GetVehicle(ctx, c.SnapshotCache())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve vehicle: %s", err)
	}
	return acct, car, nil
}
