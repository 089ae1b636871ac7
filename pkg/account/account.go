package account

import (
	"context"
	_ "embed" // Used to embed version for use with user agent
	"fmt"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/renault-community/renault-command/internal/log"
	"github.com/renault-community/renault-command/pkg/cache"
	"github.com/renault-community/renault-command/pkg/protocol"
	"github.com/renault-community/renault-command/pkg/rest"
	"github.com/renault-community/renault-command/pkg/telemetry"
	"github.com/renault-community/renault-command/pkg/vehicle"
)

var (
	//go:embed version.txt
	libraryVersion string
)

// Regional defaults cover European accounts. Override before constructing an
// Account; the cli package's locale table does this for other regions. The API keys
// ship with the MyRenault mobile apps and are not secret.
var (
	IdentityHost   = "https://accounts.eu1.gigya.com"
	IdentityAPIKey = "3_7PLksOyBRkHv126x5WhHb-5wqzyzbvdySPaGplkifYCkkkmZnUfsXDPhhXA5DBpv"
	GatewayHost    = "https://api-wired-prod-1-euw1.wrd-aws.com"
	GatewayAPIKey  = "VAX7XYKGfa92yMvXculCkEFyfZbuDLtJ"
)

func buildUserAgent(app string) string {
	library := strings.TrimSpace("renault-sdk/" + libraryVersion)
	build, ok := debug.ReadBuildInfo()
	if !ok {
		return library
	}
	path := strings.Split(build.Path, "/")
	if len(path) == 0 {
		return library
	}

	if app == "" {
		app = path[len(path)-1]
		var version string
		if build.Main.Version != "(devel)" && build.Main.Version != "" {
			version = build.Main.Version
		} else {
			for _, info := range build.Settings {
				if info.Key == "vcs.revision" {
					if len(info.Value) > 8 {
						version = info.Value[0:8]
					}
					break
				}
			}
		}

		if version != "" {
			app = fmt.Sprintf("%s/%s", app, version)
		}
	}

	return fmt.Sprintf("%s %s", app, library)
}

// Credentials identifies a MyRenault account.
type Credentials struct {
	Email    string
	Password string

	// Country selects the gateway region and defaults to FR.
	Country string

	// PreferredVIN selects among the account's vehicles. When empty, or when the
	// account does not list it, the first vehicle wins.
	PreferredVIN string
}

// Session is the resolved context for vehicle-gateway calls. The id token expires
// server-side after a few minutes; the Account re-establishes the Session when the
// gateway starts rejecting it.
type Session struct {
	Cookie    string // identity-service session cookie
	PersonID  string
	IDToken   string // short-lived JWT presented to the gateway
	AccountID string
	VIN       string
	Vehicle   *telemetry.VehicleDescription
}

// loginFlight is a single in-progress session establishment. Concurrent callers
// share one flight: the claimer performs the credential exchange, the rest wait on
// done and read the published outcome.
type loginFlight struct {
	done    chan struct{}
	session *Session
	err     error
}

func (f *loginFlight) wait(ctx context.Context) (*Session, error) {
	select {
	case <-f.done:
		if f.err != nil {
			return nil, f.err
		}
		session := *f.session
		return &session, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Account allows interaction with a MyRenault account.
type Account struct {
	// The default UserAgent is derived from the library version, but can be overridden.
	UserAgent string

	credentials Credentials
	identity    *rest.Connection
	gateway     *rest.Connection

	lock      sync.Mutex
	state     *Session
	relogin   *loginFlight
	snapshots *cache.SnapshotCache
}

// New returns an [Account] for the given credentials. No network traffic occurs
// until the first request needs a session.
func New(credentials Credentials, userAgent string) (*Account, error) {
	if credentials.Email == "" || credentials.Password == "" {
		return nil, protocol.ErrMissingCredentials
	}
	if credentials.Country == "" {
		credentials.Country = "FR"
	}
	agent := buildUserAgent(userAgent)
	return &Account{
		UserAgent:   agent,
		credentials: credentials,
		identity:    rest.NewConnection(IdentityHost, agent, nil),
		gateway:     rest.NewConnection(GatewayHost+"/commerce/v1", agent, map[string]string{"apikey": GatewayAPIKey}),
	}, nil
}

// Session returns the resolved call context, performing the credential exchange and
// directory resolution on first use. Subsequent calls return the cached context
// without network traffic.
func (a *Account) Session(ctx context.Context) (*Session, error) {
	a.lock.Lock()
	if a.state != nil {
		session := *a.state
		a.lock.Unlock()
		return &session, nil
	}
	a.lock.Unlock()
	return a.refresh(ctx)
}

// EnsureSession resolves the gateway session if none is cached. It implements
// [vehicle.API].
func (a *Account) EnsureSession(ctx context.Context) error {
	_, err := a.Session(ctx)
	return err
}

// refresh discards the current session and establishes a new one. At most one
// credential exchange is in flight at a time: the claimer runs it, concurrent
// callers wait for the shared outcome. The in-flight marker is cleared when the
// exchange completes, whether or not it succeeded.
func (a *Account) refresh(ctx context.Context) (*Session, error) {
	a.lock.Lock()
	if flight := a.relogin; flight != nil {
		a.lock.Unlock()
		return flight.wait(ctx)
	}
	flight := &loginFlight{done: make(chan struct{})}
	a.relogin = flight
	a.state = nil
	if a.snapshots != nil {
		a.snapshots.Clear()
	}
	a.lock.Unlock()

	session, err := a.establish(ctx)

	a.lock.Lock()
	if err == nil {
		a.state = session
	}
	a.relogin = nil
	a.lock.Unlock()

	flight.session, flight.err = session, err
	close(flight.done)

	if err != nil {
		return nil, err
	}
	result := *session
	return &result, nil
}

// establish performs the full chain: credential exchange with the identity service,
// then account and vehicle resolution against the directory.
func (a *Account) establish(ctx context.Context) (*Session, error) {
	log.Info("Establishing session with identity service...")
	session, err := a.login(ctx)
	if err != nil {
		return nil, err
	}
	session.AccountID, err = a.resolveAccount(ctx, session)
	if err != nil {
		return nil, err
	}
	session.VIN, session.Vehicle, err = a.resolveVehicle(ctx, session)
	if err != nil {
		return nil, err
	}
	log.Info("Session established for account %s, vehicle %s", session.AccountID, session.VIN)
	return session, nil
}

// do sends an authenticated request to the vehicle gateway. If the gateway rejects
// the session token, the Account re-establishes its session and retries exactly
// once; a failure on the retry propagates unmodified. The endpoint is rebuilt from
// the fresh session because directory identifiers can change across logins.
func (a *Account) do(ctx context.Context, method string, endpoint func(*Session) string, payload interface{}) ([]byte, error) {
	session, err := a.Session(ctx)
	if err != nil {
		return nil, err
	}
	body, err := a.sendOnce(ctx, method, endpoint(session), payload, session)
	if !protocol.IsUnauthorized(err) {
		return body, err
	}
	log.Info("Gateway rejected session token; re-establishing session")
	session, err = a.refresh(ctx)
	if err != nil {
		return nil, err
	}
	return a.sendOnce(ctx, method, endpoint(session), payload, session)
}

func (a *Account) sendOnce(ctx context.Context, method, endpoint string, payload interface{}, session *Session) ([]byte, error) {
	query := url.Values{"country": {a.credentials.Country}}
	headers := map[string]string{"x-gigya-id_token": session.IDToken}
	if method == http.MethodGet {
		return a.gateway.Get(ctx, endpoint, query, headers)
	}
	return a.gateway.PostJSON(ctx, endpoint, query, payload, headers)
}

// Get sends an authenticated GET request to a gateway endpoint under commerce/v1.
func (a *Account) Get(ctx context.Context, endpoint string) ([]byte, error) {
	return a.do(ctx, http.MethodGet, func(*Session) string { return endpoint }, nil)
}

func adapterPath(accountID, version, vin, resource string) string {
	return fmt.Sprintf("accounts/%s/kamereon/kca/car-adapter/%s/cars/%s/%s", accountID, version, vin, resource)
}

// GetVehicleData fetches a car-adapter resource (e.g. "battery-status") for vin.
// The version selects the adapter endpoint revision; most resources are v1, the
// battery endpoint v2.
func (a *Account) GetVehicleData(ctx context.Context, vin, version, resource string) ([]byte, error) {
	return a.do(ctx, http.MethodGet, func(s *Session) string {
		return adapterPath(s.AccountID, version, vin, resource)
	}, nil)
}

// PostVehicleCommand sends an action (e.g. "hvac-start") to the car adapter.
//
// The command must support JSON serialization.
func (a *Account) PostVehicleCommand(ctx context.Context, vin, action string, command interface{}) ([]byte, error) {
	return a.do(ctx, http.MethodPost, func(s *Session) string {
		return adapterPath(s.AccountID, "v1", vin, "actions/"+action)
	}, command)
}

// GetVehicle returns the account's vehicle, resolving the directory if needed.
//
// The snapshots cache may be nil. Providing one lets pollers share aggregated
// reads; the Account clears it whenever the session is re-established, so a cached
// snapshot never outlives the session that produced it.
func (a *Account) GetVehicle(ctx context.Context, snapshots *cache.SnapshotCache) (*vehicle.Vehicle, error) {
	session, err := a.Session(ctx)
	if err != nil {
		return nil, err
	}
	a.lock.Lock()
	a.snapshots = snapshots
	a.lock.Unlock()
	car := vehicle.NewVehicle(a, session.VIN, snapshots)
	car.SetDescription(session.Vehicle)
	return car, nil
}

// Vehicles lists the vehicles attached to the account.
func (a *Account) Vehicles(ctx context.Context) ([]*telemetry.VehicleDescription, error) {
	session, err := a.Session(ctx)
	if err != nil {
		return nil, err
	}
	body, err := a.Get(ctx, "accounts/"+session.AccountID+"/vehicles")
	if err != nil {
		return nil, err
	}
	return parseVehicleLinks(body)
}
