package telemetry

import (
	"strings"
	"time"
)

// Candidate attribute paths per field, in probe order. Older car adapters use the
// names on the left; alternates have been observed on other vehicle generations.
var (
	batteryLevelPaths      = []string{"batteryLevel", "batteryPercentage"}
	batteryAutonomyPaths   = []string{"batteryAutonomy", "batteryRange"}
	plugStatusPaths        = []string{"plugStatus", "plugState"}
	chargingStatusPaths    = []string{"chargingStatus", "chargeStatus"}
	chargingPowerPaths     = []string{"chargingInstantaneousPower", "instantaneousPower"}
	chargingRemainingPaths = []string{"chargingRemainingTime", "timeRequiredToFullSlow"}
	mileagePaths           = []string{"totalMileage", "mileage"}
	fuelAutonomyPaths      = []string{"fuelAutonomy", "fuelRange"}
	fuelQuantityPaths      = []string{"fuelQuantity", "fuelLevel"}
	hvacStatusPaths        = []string{"hvacStatus", "climateControlStatus"}
	externalTempPaths      = []string{"externalTemperature", "outsideTemperature"}
	internalTempPaths      = []string{"internalTemperature", "cabinTemperature"}
	nextStartPaths         = []string{"nextHvacStartDate"}
	latitudePaths          = []string{"gpsLatitude", "latitude"}
	longitudePaths         = []string{"gpsLongitude", "longitude"}
	updatedPaths           = []string{"lastUpdateTime", "timestamp"}
	timestampPaths         = []string{"timestamp", "lastUpdateTime"}
)

// chargingStatusThreshold splits the adapter's numeric charging codes. Codes at or
// above the threshold mean a charge is in progress; lower codes are idle or
// transitional states (waiting for a planned charge, charge ended, flap opened).
const chargingStatusThreshold = 0.9

// chargingMarkers lists the string statuses that mean energy is flowing.
var chargingMarkers = map[string]bool{
	"CHARGE_IN_PROGRESS": true,
	"IN_PROGRESS":        true,
	"CHARGING":           true,
}

// BatteryState describes the traction battery.
type BatteryState struct {
	Level         float64       `json:"level"`    // percent
	Autonomy      float64       `json:"autonomy"` // km
	PluggedIn     bool          `json:"pluggedIn"`
	Charging      bool          `json:"charging"`
	RemainingTime time.Duration `json:"remainingTime,omitempty"` // time to full charge, zero if not reported
	Power         float64       `json:"power,omitempty"`         // instantaneous charge power as reported; some adapters use W, others kW
	Timestamp     time.Time     `json:"timestamp"`
}

// ParseBatteryState extracts a BatteryState from a battery-status payload. Absent
// fields are left at their zero values.
func ParseBatteryState(payload []byte) (*BatteryState, error) {
	doc, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	attrs := doc.attributes()
	var state BatteryState
	state.Level, _ = attrs.firstFloat(batteryLevelPaths...)
	state.Autonomy, _ = attrs.firstFloat(batteryAutonomyPaths...)
	if plug, ok := attrs.firstFloat(plugStatusPaths...); ok {
		state.PluggedIn = plug > 0
	}
	if minutes, ok := attrs.firstFloat(chargingRemainingPaths...); ok {
		state.RemainingTime = time.Duration(minutes) * time.Minute
	}
	state.Power, _ = attrs.firstFloat(chargingPowerPaths...)
	state.Timestamp, _ = attrs.firstTime(timestampPaths...)
	state.Charging = chargingInProgress(attrs, state.Power)
	return &state, nil
}

// chargingInProgress decides whether the vehicle is charging. The charging status is
// authoritative when present: strings are matched against chargingMarkers, numeric
// codes against chargingStatusThreshold. A positive instantaneous power draw also
// counts. chargingRemainingTime is never consulted; the adapter keeps reporting
// stale remaining-time estimates long after a charge stops.
func chargingInProgress(attrs Document, power float64) bool {
	for _, path := range chargingStatusPaths {
		node, ok := attrs.at(path)
		if !ok {
			continue
		}
		if status, ok := asString(node); ok {
			if chargingMarkers[strings.ToUpper(status)] {
				return true
			}
		} else if code, ok := asFloat(node); ok {
			if code >= chargingStatusThreshold {
				return true
			}
		}
		break
	}
	return power > 0
}

// CockpitState describes odometer and fuel readings.
type CockpitState struct {
	TotalMileage float64   `json:"totalMileage"`           // km
	FuelAutonomy float64   `json:"fuelAutonomy,omitempty"` // km, zero for pure EVs
	FuelQuantity float64   `json:"fuelQuantity,omitempty"` // liters, zero for pure EVs
	Timestamp    time.Time `json:"timestamp"`
}

// ParseCockpitState extracts a CockpitState from a cockpit payload.
func ParseCockpitState(payload []byte) (*CockpitState, error) {
	doc, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	attrs := doc.attributes()
	var state CockpitState
	state.TotalMileage, _ = attrs.firstFloat(mileagePaths...)
	state.FuelAutonomy, _ = attrs.firstFloat(fuelAutonomyPaths...)
	state.FuelQuantity, _ = attrs.firstFloat(fuelQuantityPaths...)
	state.Timestamp, _ = attrs.firstTime(timestampPaths...)
	return &state, nil
}

// HVACState describes the climate system.
type HVACState struct {
	On                  bool      `json:"on"`
	ExternalTemperature float64   `json:"externalTemperature"`           // Celsius
	InternalTemperature float64   `json:"internalTemperature,omitempty"` // Celsius, zero if the adapter does not report it
	NextStart           time.Time `json:"nextStart"`
	Timestamp           time.Time `json:"timestamp"`
}

// ParseHVACState extracts an HVACState from an hvac-status payload.
func ParseHVACState(payload []byte) (*HVACState, error) {
	doc, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	attrs := doc.attributes()
	var state HVACState
	if status, ok := attrs.firstString(hvacStatusPaths...); ok {
		state.On = strings.EqualFold(status, "on")
	} else if on, ok := attrs.firstBool(hvacStatusPaths...); ok {
		state.On = on
	}
	state.ExternalTemperature, _ = attrs.firstFloat(externalTempPaths...)
	state.InternalTemperature, _ = attrs.firstFloat(internalTempPaths...)
	state.NextStart, _ = attrs.firstTime(nextStartPaths...)
	state.Timestamp, _ = attrs.firstTime(timestampPaths...)
	return &state, nil
}

// LocationState describes the vehicle's last reported position.
type LocationState struct {
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// ParseLocationState extracts a LocationState from a location payload.
func ParseLocationState(payload []byte) (*LocationState, error) {
	doc, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	attrs := doc.attributes()
	var state LocationState
	state.Latitude, _ = attrs.firstFloat(latitudePaths...)
	state.Longitude, _ = attrs.firstFloat(longitudePaths...)
	state.LastUpdated, _ = attrs.firstTime(updatedPaths...)
	return &state, nil
}
