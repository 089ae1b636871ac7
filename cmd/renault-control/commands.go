package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/renault-community/renault-command/pkg/account"
	"github.com/renault-community/renault-command/pkg/vehicle"
)

var (
	ErrCommandLineArgs    = errors.New("invalid command line arguments")
	ErrInvalidTemperature = errors.New("invalid temperature")
	ErrUnknownCommand     = errors.New("unrecognized command")
)

type Argument struct {
	name string
	help string
}

type Handler func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error

type Command struct {
	help     string
	args     []Argument
	optional []Argument
	handler  Handler
}

// parseTemperature accepts Celsius values like "21" or "21.5C", or Fahrenheit
// values like "70F", and returns degrees Celsius.
func parseTemperature(value string) (float64, error) {
	if degrees, err := strconv.ParseFloat(value, 64); err == nil {
		return degrees, nil
	}
	var degrees float64
	var unit string
	if _, err := fmt.Sscanf(value, "%f%s", &degrees, &unit); err != nil {
		return 0, fmt.Errorf("%w: format as 21, 21.5C, or 70F", ErrInvalidTemperature)
	}
	switch strings.ToUpper(unit) {
	case "C":
		return degrees, nil
	case "F":
		return (degrees - 32.0) * 5.0 / 9.0, nil
	}
	return 0, fmt.Errorf("%w: units must be C or F", ErrInvalidTemperature)
}

// tokenExpiry decodes the gateway token's registered claims without verifying the
// signature; the token is displayed for diagnostics, not trusted.
func tokenExpiry(idToken string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token carries no expiry")
	}
	return claims.ExpiresAt.Time, nil
}

func printJSON(value interface{}) error {
	encoded, err := json.MarshalIndent(value, "", "    ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func warnMissing(resource string, err error) {
	if err != nil {
		writeErr("Warning: %s unavailable: %s", resource, err)
	}
}

func execute(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args []string) error {
	if len(args) == 0 {
		return errors.New("missing COMMAND")
	}

	info, ok := commands[args[0]]
	if !ok {
		return ErrUnknownCommand
	}

	var err error
	if len(args)-1 < len(info.args) || len(args)-1 > len(info.args)+len(info.optional) {
		writeErr("Invalid number of command line arguments: %d (%d required, %d optional).", len(args)-1, len(info.args), len(info.optional))
		err = ErrCommandLineArgs
	} else {
		keywords := make(map[string]string)
		for i, argInfo := range info.args {
			keywords[argInfo.name] = args[i+1]
		}
		index := len(info.args) + 1
		for _, argInfo := range info.optional {
			if index >= len(args) {
				break
			}
			keywords[argInfo.name] = args[index]
			index++
		}
		err = info.handler(ctx, acct, car, keywords)
	}

	// Print command-specific help
	if errors.Is(err, ErrCommandLineArgs) {
		info.Usage(args[0])
	}
	return err
}

func (c *Command) Usage(name string) {
	fmt.Printf("Usage: %s", name)
	maxLength := 0
	for _, arg := range c.args {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" [")
	}
	for _, arg := range c.optional {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" ]")
	}
	fmt.Printf("\n%s\n", c.help)
	maxLength++
	for _, arg := range c.args {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
	for _, arg := range c.optional {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
}

var commands = map[string]*Command{
	"summary": &Command{
		help: "Fetch the aggregated vehicle snapshot",
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			snapshot, err := car.Snapshot(ctx)
			if err != nil {
				return err
			}
			warnMissing("battery state", snapshot.Errors.Battery)
			warnMissing("cockpit state", snapshot.Errors.Cockpit)
			warnMissing("climate state", snapshot.Errors.HVAC)
			warnMissing("location", snapshot.Errors.Location)
			return printJSON(snapshot)
		},
	},
	"battery": &Command{
		help: "Fetch battery level, range, and charging state",
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			state, err := car.BatteryState(ctx)
			if err != nil {
				return err
			}
			return printJSON(state)
		},
	},
	"cockpit": &Command{
		help: "Fetch odometer and fuel readings",
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			state, err := car.CockpitState(ctx)
			if err != nil {
				return err
			}
			return printJSON(state)
		},
	},
	"hvac": &Command{
		help: "Fetch climate control state",
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			state, err := car.HVACState(ctx)
			if err != nil {
				return err
			}
			return printJSON(state)
		},
	},
	"location": &Command{
		help: "Fetch the vehicle's last reported position",
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			state, err := car.LocationState(ctx)
			if err != nil {
				return err
			}
			return printJSON(state)
		},
	},
	"hvac-start": &Command{
		help: "Start preconditioning the cabin",
		args: []Argument{
			Argument{name: "TEMP", help: "Target cabin temperature (e.g., 21, 21.5C, or 70F)"},
		},
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			degrees, err := parseTemperature(args["TEMP"])
			if err != nil {
				return fmt.Errorf("%w: %s", ErrCommandLineArgs, err)
			}
			if err := car.ClimateStart(ctx, degrees); err != nil {
				return err
			}
			fmt.Printf("Sent preconditioning request to %s.\n", car.VIN())
			return nil
		},
	},
	"hvac-stop": &Command{
		help: "Cancel preconditioning",
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			if err := car.ClimateStop(ctx); err != nil {
				return err
			}
			fmt.Printf("Sent preconditioning cancellation to %s.\n", car.VIN())
			return nil
		},
	},
	"vehicles": &Command{
		help: "List vehicles attached to the account",
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			descriptions, err := acct.Vehicles(ctx)
			if err != nil {
				return err
			}
			for _, description := range descriptions {
				marker := " "
				if description.VIN == car.VIN() {
					marker = "*"
				}
				fmt.Printf("%s %s %s %s\n", marker, description.VIN, description.Brand, description.Model)
			}
			return nil
		},
	},
	"session": &Command{
		help: "Show the resolved gateway session",
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			session, err := acct.Session(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Person:  %s\n", session.PersonID)
			fmt.Printf("Account: %s\n", session.AccountID)
			fmt.Printf("VIN:     %s\n", session.VIN)
			if expiry, err := tokenExpiry(session.IDToken); err == nil {
				fmt.Printf("Token:   expires %s (in %s)\n", expiry.Format(time.RFC3339), time.Until(expiry).Round(time.Second))
			}
			return nil
		},
	},
	"get": &Command{
		help: "GET a raw gateway ENDPOINT under commerce/v1. Useful for debugging.",
		args: []Argument{
			Argument{name: "ENDPOINT", help: "Gateway endpoint, e.g. accounts/ACCOUNT_ID/vehicles"},
		},
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			reply, err := acct.Get(ctx, args["ENDPOINT"])
			if err != nil {
				return err
			}
			fmt.Println(string(reply))
			return nil
		},
	},
}
