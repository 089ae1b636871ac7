// Package vehicle exposes telemetry reads, aggregated snapshots, and climate
// commands for a single car.
package vehicle

import (
	"context"

	"github.com/renault-community/renault-command/pkg/cache"
	"github.com/renault-community/renault-command/pkg/telemetry"
)

// Car-adapter resources. The battery endpoint was revised for newer battery
// management firmware; the others are still on their first revision.
const (
	batteryResource  = "battery-status"
	cockpitResource  = "cockpit"
	hvacResource     = "hvac-status"
	locationResource = "location"

	batteryVersion = "v2"
	defaultVersion = "v1"
)

// API is the account-layer surface the vehicle depends on. *account.Account
// implements it; tests substitute a mock.
type API interface {
	// EnsureSession resolves the gateway session, reusing the cached one when
	// present. Implementations must be safe for concurrent use.
	EnsureSession(ctx context.Context) error

	// GetVehicleData fetches a car-adapter resource for vin.
	GetVehicleData(ctx context.Context, vin, version, resource string) ([]byte, error)

	// PostVehicleCommand sends a car-adapter action for vin.
	PostVehicleCommand(ctx context.Context, vin, action string, command interface{}) ([]byte, error)
}

// A Vehicle represents a single car attached to a MyRenault account.
type Vehicle struct {
	api         API
	vin         string
	description *telemetry.VehicleDescription
	snapshots   *cache.SnapshotCache
}

// NewVehicle creates a Vehicle. The snapshots cache may be nil, in which case
// every Snapshot call fetches from the gateway.
func NewVehicle(api API, vin string, snapshots *cache.SnapshotCache) *Vehicle {
	return &Vehicle{api: api, vin: vin, snapshots: snapshots}
}

// VIN returns the vehicle identification number.
func (v *Vehicle) VIN() string {
	return v.vin
}

// SetDescription attaches directory display metadata to the Vehicle.
func (v *Vehicle) SetDescription(description *telemetry.VehicleDescription) {
	v.description = description
}

// Description returns the directory's display metadata for the vehicle, or a
// record holding only the VIN when none was attached.
func (v *Vehicle) Description() *telemetry.VehicleDescription {
	if v.description == nil {
		return &telemetry.VehicleDescription{VIN: v.vin}
	}
	return v.description
}

// BatteryState fetches and normalizes the battery resource.
func (v *Vehicle) BatteryState(ctx context.Context) (*telemetry.BatteryState, error) {
	body, err := v.api.GetVehicleData(ctx, v.vin, batteryVersion, batteryResource)
	if err != nil {
		return nil, err
	}
	return telemetry.ParseBatteryState(body)
}

// CockpitState fetches and normalizes the cockpit resource.
func (v *Vehicle) CockpitState(ctx context.Context) (*telemetry.CockpitState, error) {
	body, err := v.api.GetVehicleData(ctx, v.vin, defaultVersion, cockpitResource)
	if err != nil {
		return nil, err
	}
	return telemetry.ParseCockpitState(body)
}

// HVACState fetches and normalizes the climate resource.
func (v *Vehicle) HVACState(ctx context.Context) (*telemetry.HVACState, error) {
	body, err := v.api.GetVehicleData(ctx, v.vin, defaultVersion, hvacResource)
	if err != nil {
		return nil, err
	}
	return telemetry.ParseHVACState(body)
}

// LocationState fetches and normalizes the location resource.
func (v *Vehicle) LocationState(ctx context.Context) (*telemetry.LocationState, error) {
	body, err := v.api.GetVehicleData(ctx, v.vin, defaultVersion, locationResource)
	if err != nil {
		return nil, err
	}
	return telemetry.ParseLocationState(body)
}

// invalidate drops any cached snapshot so the next read reflects current state.
func (v *Vehicle) invalidate() {
	if v.snapshots != nil {
		v.snapshots.Clear()
	}
}
