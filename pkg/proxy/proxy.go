package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/renault-community/renault-command/internal/log"
	"github.com/renault-community/renault-command/pkg/account"
	"github.com/renault-community/renault-command/pkg/cache"
	"github.com/renault-community/renault-command/pkg/protocol"
	"github.com/renault-community/renault-command/pkg/rest"
	"github.com/renault-community/renault-command/pkg/telemetry"
	"github.com/renault-community/renault-command/pkg/vehicle"
)

const (
	// DefaultTimeout bounds a single proxied request, including any re-login the
	// account layer performs along the way.
	DefaultTimeout = 10 * time.Second

	// DefaultClimateDuration is how long the vehicle keeps preconditioning after
	// a remote start before shutting it off on its own. It sizes the countdown
	// recorded alongside each start command.
	DefaultClimateDuration = 5 * time.Minute

	maxRequestBodyBytes = 512
)

// Vehicle is the vehicle surface the proxy serves. *vehicle.Vehicle implements it.
type Vehicle interface {
	VIN() string
	Description() *telemetry.VehicleDescription
	Snapshot(ctx context.Context) (*vehicle.Snapshot, error)
	HVACState(ctx context.Context) (*telemetry.HVACState, error)
	ClimateStart(ctx context.Context, temperature float64) error
	ClimateStop(ctx context.Context) error
}

// Account resolves the vehicle the proxy serves.
type Account interface {
	GetVehicle(ctx context.Context, snapshots *cache.SnapshotCache) (Vehicle, error)
}

// LiveAccount wraps the concrete account client in the Account interface.
func LiveAccount(acct *account.Account) Account {
	return liveAccount{acct}
}

type liveAccount struct {
	acct *account.Account
}

func (a liveAccount) GetVehicle(ctx context.Context, snapshots *cache.SnapshotCache) (Vehicle, error) {
	return a.acct.GetVehicle(ctx, snapshots)
}

// Proxy exposes vehicle state and climate commands over a local HTTP API.
type Proxy struct {
	Timeout time.Duration

	// ClimateDuration is the assumed length of a preconditioning run, used when
	// recording the countdown reported by GET /api/1/hvac.
	ClimateDuration time.Duration

	account   Account
	snapshots *cache.SnapshotCache
	store     StateStore

	lock sync.Mutex
	car  Vehicle
}

// New creates an http proxy around acct.
//
// The snapshot cache is shared with the account layer so that re-logins and
// commands issued through the proxy invalidate it. store persists the climate
// countdown across restarts; it may be nil, in which case no countdown is
// reported.
func New(acct Account, snapshots *cache.SnapshotCache, store StateStore) *Proxy {
	return &Proxy{
		Timeout:         DefaultTimeout,
		ClimateDuration: DefaultClimateDuration,
		account:         acct,
		snapshots:       snapshots,
		store:           store,
	}
}

// vehicle resolves the account's vehicle on first use and memoizes it. The
// vehicle object holds no session state, so it stays valid across re-logins.
func (p *Proxy) vehicle(ctx context.Context) (Vehicle, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.car != nil {
		return p.car, nil
	}
	car, err := p.account.GetVehicle(ctx, p.snapshots)
	if err != nil {
		return nil, err
	}
	p.car = car
	return car, nil
}

// Response contains the server's response to a client request.
type Response struct {
	Response   interface{} `json:"response"`
	Error      string      `json:"error"`
	ErrDetails string      `json:"error_description"`
}

func writeJSONError(w http.ResponseWriter, code int, err error) {
	reply := Response{}

	var httpErr *rest.HTTPError
	if errors.As(err, &httpErr) {
		// Propagate the upstream status so clients can tell a gateway rejection
		// from a proxy fault. The raw gateway body rides in error_description.
		code = httpErr.StatusCode
		reply.Error = http.StatusText(httpErr.StatusCode)
		reply.ErrDetails = httpErr.Body
	} else if err == nil {
		reply.Error = http.StatusText(code)
	} else {
		reply.Error = err.Error()
	}

	jsonBytes, marshalErr := json.Marshal(&reply)
	if marshalErr != nil {
		log.Error("Error serializing reply %+v: %s", &reply, marshalErr)
		code = http.StatusInternalServerError
		jsonBytes = []byte("{\"error\": \"internal server error\"}")
	}
	if code != http.StatusOK {
		log.Error("Returning error %s", http.StatusText(code))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	jsonBytes = append(jsonBytes, '\n')
	w.Write(jsonBytes)
}

func writeJSONResponse(w http.ResponseWriter, payload interface{}) {
	reply := Response{Response: payload}
	jsonBytes, err := json.Marshal(&reply)
	if err != nil {
		log.Error("Error serializing reply %+v: %s", &reply, err)
		writeJSONError(w, http.StatusInternalServerError, nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	jsonBytes = append(jsonBytes, '\n')
	w.Write(jsonBytes)
}

func writeCommandAck(w http.ResponseWriter) {
	writeJSONResponse(w, &commandResult{Result: true})
}

type commandResult struct {
	Result bool   `json:"result"`
	Reason string `json:"reason"`
}

// errorStatus maps an account or vehicle failure to the proxy's response status.
// Upstream rejections become gateway errors: the caller's request was fine, the
// exchange behind the proxy was not.
func errorStatus(err error) int {
	var httpErr *rest.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case protocol.IsConfigError(err):
		return http.StatusInternalServerError
	case protocol.Temporary(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	log.Info("Received %s request for %s", req.Method, req.URL.Path)

	ctx, cancel := context.WithTimeout(req.Context(), p.Timeout)
	defer cancel()

	switch strings.TrimPrefix(req.URL.Path, "/api/1/") {
	case "summary":
		p.handleSummary(ctx, w, req)
	case "hvac":
		p.handleClimateState(ctx, w, req)
	case "hvac/start":
		p.handleClimateStart(ctx, w, req)
	case "hvac/stop":
		p.handleClimateStop(ctx, w, req)
	default:
		writeJSONError(w, http.StatusNotFound, nil)
	}
}
