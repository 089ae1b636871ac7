package vehicle

import (
	"context"

	"github.com/renault-community/renault-command/internal/log"
)

// hvacCommand is the car-adapter action envelope for climate control.
type hvacCommand struct {
	Data hvacData `json:"data"`
}

type hvacData struct {
	Type       string         `json:"type"`
	Attributes hvacAttributes `json:"attributes"`
}

type hvacAttributes struct {
	Action            string  `json:"action"`
	TargetTemperature float64 `json:"targetTemperature,omitempty"`
}

// ClimateStart asks the vehicle to precondition the cabin to the target
// temperature in degrees Celsius.
//
// The snapshot cache is cleared whether or not the command succeeded: the vehicle
// may act on a command whose acknowledgment was lost, so stale state must not be
// served either way.
func (v *Vehicle) ClimateStart(ctx context.Context, temperature float64) error {
	defer v.invalidate()
	log.Info("Starting climate control of %s at %.1f°C", v.vin, temperature)
	_, err := v.api.PostVehicleCommand(ctx, v.vin, "hvac-start", &hvacCommand{
		Data: hvacData{
			Type: "HvacStart",
			Attributes: hvacAttributes{
				Action:            "start",
				TargetTemperature: temperature,
			},
		},
	})
	return err
}

// ClimateStop cancels cabin preconditioning. Like ClimateStart, it always clears
// the snapshot cache.
func (v *Vehicle) ClimateStop(ctx context.Context) error {
	defer v.invalidate()
	log.Info("Stopping climate control of %s", v.vin)
	_, err := v.api.PostVehicleCommand(ctx, v.vin, "hvac-start", &hvacCommand{
		Data: hvacData{
			Type:       "HvacStart",
			Attributes: hvacAttributes{Action: "cancel"},
		},
	})
	return err
}
