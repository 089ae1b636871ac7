package vehicle

import (
	"context"
	"sync"
	"time"

	"github.com/renault-community/renault-command/internal/log"
	"github.com/renault-community/renault-command/pkg/protocol"
	"github.com/renault-community/renault-command/pkg/telemetry"
)

// Snapshot is the aggregate of the four independent telemetry resources. A nil
// resource pointer means that resource failed; the corresponding entry in Errors
// says why.
type Snapshot struct {
	VIN      string                   `json:"vin"`
	Taken    time.Time                `json:"taken"`
	Battery  *telemetry.BatteryState  `json:"battery,omitempty"`
	Cockpit  *telemetry.CockpitState  `json:"cockpit,omitempty"`
	HVAC     *telemetry.HVACState     `json:"hvac,omitempty"`
	Location *telemetry.LocationState `json:"location,omitempty"`
	Errors   SnapshotErrors           `json:"-"`
}

// SnapshotErrors captures per-resource failures.
type SnapshotErrors struct {
	Battery  error
	Cockpit  error
	HVAC     error
	Location error
}

// Any returns true if at least one resource failed.
func (e *SnapshotErrors) Any() bool {
	return e.Battery != nil || e.Cockpit != nil || e.HVAC != nil || e.Location != nil
}

// Unauthorized returns true if any failure was an authorization rejection that the
// account layer could not recover from.
func (e *SnapshotErrors) Unauthorized() bool {
	return protocol.IsUnauthorized(e.Battery) || protocol.IsUnauthorized(e.Cockpit) ||
		protocol.IsUnauthorized(e.HVAC) || protocol.IsUnauthorized(e.Location)
}

// Snapshot returns the aggregated state of the vehicle.
//
// A fresh-enough aggregate is served from the shared cache without any gateway
// traffic. On a miss, the session is resolved once and the four resources are
// fetched concurrently; per-resource failures are recorded in the aggregate's
// Errors rather than failing the whole call. An aggregate tainted by an
// authorization failure is still returned, but never cached: the next call must
// retry against a fresh session instead of pinning the rejection for a TTL.
//
// Snapshot returns an error only when no session could be resolved at all.
func (v *Vehicle) Snapshot(ctx context.Context) (*Snapshot, error) {
	if v.snapshots != nil {
		if cached, ok := v.snapshots.Get(v.vin); ok {
			if snapshot, ok := cached.(*Snapshot); ok {
				log.Debug("Serving snapshot of %s from cache", v.vin)
				return snapshot, nil
			}
		}
	}

	if err := v.api.EnsureSession(ctx); err != nil {
		return nil, err
	}

	snapshot := &Snapshot{VIN: v.vin, Taken: time.Now()}
	var group sync.WaitGroup
	group.Add(4)
	go func() {
		defer group.Done()
		snapshot.Battery, snapshot.Errors.Battery = v.BatteryState(ctx)
	}()
	go func() {
		defer group.Done()
		snapshot.Cockpit, snapshot.Errors.Cockpit = v.CockpitState(ctx)
	}()
	go func() {
		defer group.Done()
		snapshot.HVAC, snapshot.Errors.HVAC = v.HVACState(ctx)
	}()
	go func() {
		defer group.Done()
		snapshot.Location, snapshot.Errors.Location = v.LocationState(ctx)
	}()
	group.Wait()

	if v.snapshots != nil && !snapshot.Errors.Unauthorized() {
		v.snapshots.Put(v.vin, snapshot)
	}
	return snapshot, nil
}
