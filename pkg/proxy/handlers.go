package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/renault-community/renault-command/internal/log"
	"github.com/renault-community/renault-command/pkg/telemetry"
)

// RequestParameters allows simple type checks on a JSON request body.
type RequestParameters map[string]interface{}

func parseRequestParameters(req *http.Request) (RequestParameters, error) {
	body, err := io.ReadAll(io.LimitReader(req.Body, maxRequestBodyBytes))
	if err != nil {
		return nil, errors.New("could not read request body")
	}
	params := make(RequestParameters)
	if len(body) > 0 {
		if err := json.Unmarshal(body, &params); err != nil {
			return nil, errors.New("error occurred while parsing request parameters")
		}
	}
	return params, nil
}

func (p RequestParameters) getNumber(key string, required bool) (float64, error) {
	value, exists := p[key]
	if exists {
		if num, isFloat64 := value.(float64); isFloat64 {
			return num, nil
		}
		return 0, fmt.Errorf("invalid %s param", key)
	}

	if !required {
		return 0, nil
	}

	return 0, fmt.Errorf("missing %s param", key)
}

type summaryView struct {
	Vehicle  *telemetry.VehicleDescription `json:"vehicle"`
	Battery  interface{}                   `json:"battery"`
	Cockpit  interface{}                   `json:"cockpit"`
	HVAC     interface{}                   `json:"hvac"`
	Location interface{}                   `json:"location"`
	Taken    time.Time                     `json:"taken"`
}

type errorView struct {
	Error string `json:"error"`
}

// resourceView keeps one resource's failure from hiding the others: a failed
// read renders as {"error": ...} in place of the state object.
func resourceView(value interface{}, err error) interface{} {
	if err != nil {
		return &errorView{Error: err.Error()}
	}
	return value
}

func (p *Proxy) handleSummary(ctx context.Context, w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, nil)
		return
	}
	car, err := p.vehicle(ctx)
	if err != nil {
		writeJSONError(w, errorStatus(err), err)
		return
	}
	snapshot, err := car.Snapshot(ctx)
	if err != nil {
		writeJSONError(w, errorStatus(err), err)
		return
	}
	writeJSONResponse(w, &summaryView{
		Vehicle:  car.Description(),
		Battery:  resourceView(snapshot.Battery, snapshot.Errors.Battery),
		Cockpit:  resourceView(snapshot.Cockpit, snapshot.Errors.Cockpit),
		HVAC:     resourceView(snapshot.HVAC, snapshot.Errors.HVAC),
		Location: resourceView(snapshot.Location, snapshot.Errors.Location),
		Taken:    snapshot.Taken,
	})
}

type climateView struct {
	HVAC *telemetry.HVACState `json:"hvac"`

	// Requested is the countdown of the last start command, present only while
	// the recorded run is still in progress.
	Requested *requestedRun `json:"requested,omitempty"`
}

type requestedRun struct {
	ActiveUntil time.Time `json:"activeUntil"`
	Temperature float64   `json:"temperature"`
}

func (p *Proxy) handleClimateState(ctx context.Context, w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, nil)
		return
	}
	car, err := p.vehicle(ctx)
	if err != nil {
		writeJSONError(w, errorStatus(err), err)
		return
	}
	state, err := car.HVACState(ctx)
	if err != nil {
		writeJSONError(w, errorStatus(err), err)
		return
	}
	view := climateView{HVAC: state}
	if record := p.loadRecord(); record.Active(time.Now()) {
		view.Requested = &requestedRun{
			ActiveUntil: record.ActiveUntil,
			Temperature: record.Parameter,
		}
	}
	writeJSONResponse(w, &view)
}

func (p *Proxy) handleClimateStart(ctx context.Context, w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, nil)
		return
	}
	params, err := parseRequestParameters(req)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	temperature, err := params.getNumber("temperature", true)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	car, err := p.vehicle(ctx)
	if err != nil {
		writeJSONError(w, errorStatus(err), err)
		return
	}
	log.Debug("Starting climate control on %s at %.1f C", car.VIN(), temperature)
	if err := car.ClimateStart(ctx, temperature); err != nil {
		writeJSONError(w, errorStatus(err), err)
		return
	}
	p.saveRecord(ControlState{
		ActiveUntil: time.Now().Add(p.ClimateDuration),
		Parameter:   temperature,
	})
	writeCommandAck(w)
}

func (p *Proxy) handleClimateStop(ctx context.Context, w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, nil)
		return
	}
	car, err := p.vehicle(ctx)
	if err != nil {
		writeJSONError(w, errorStatus(err), err)
		return
	}
	log.Debug("Stopping climate control on %s", car.VIN())
	if err := car.ClimateStop(ctx); err != nil {
		writeJSONError(w, errorStatus(err), err)
		return
	}
	p.clearRecord()
	writeCommandAck(w)
}

func (p *Proxy) loadRecord() *ControlState {
	if p.store == nil {
		return nil
	}
	record, err := p.store.Load()
	if err != nil {
		log.Warning("Could not read climate state record: %s", err)
		return nil
	}
	return record
}

func (p *Proxy) saveRecord(state ControlState) {
	if p.store == nil {
		return
	}
	// The vehicle has already accepted the command at this point, so a
	// bookkeeping failure is only logged.
	if err := p.store.Save(state); err != nil {
		log.Error("Could not write climate state record: %s", err)
	}
}

func (p *Proxy) clearRecord() {
	if p.store == nil {
		return
	}
	if err := p.store.Clear(); err != nil {
		log.Error("Could not clear climate state record: %s", err)
	}
}
