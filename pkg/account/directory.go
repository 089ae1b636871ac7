package account

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/renault-community/renault-command/internal/log"
	"github.com/renault-community/renault-command/pkg/protocol"
	"github.com/renault-community/renault-command/pkg/telemetry"
)

// primaryAccountType marks the account created when a person registers with the
// MyRenault app. People who also hold fleet or dealer accounts have several entries
// in the directory; the primary one owns the person's own vehicles.
const primaryAccountType = "MYRENAULT"

// directoryGet queries the gateway directly with the given session. The directory
// endpoints are only called while a session is being established, so they bypass
// the retrying layer: a rejection here means the just-issued token is bad and
// retrying with another login would loop.
func (a *Account) directoryGet(ctx context.Context, endpoint string, session *Session) ([]byte, error) {
	query := url.Values{"country": {a.credentials.Country}}
	headers := map[string]string{"x-gigya-id_token": session.IDToken}
	return a.gateway.Get(ctx, endpoint, query, headers)
}

// resolveAccount picks the account id to use for gateway calls: the primary
// account when the directory lists one, otherwise the first entry.
func (a *Account) resolveAccount(ctx context.Context, session *Session) (string, error) {
	body, err := a.directoryGet(ctx, "persons/"+session.PersonID, session)
	if err != nil {
		return "", fmt.Errorf("fetching person record: %w", err)
	}
	var record struct {
		Accounts []struct {
			AccountID   string `json:"accountId"`
			AccountType string `json:"accountType"`
		} `json:"accounts"`
	}
	if err := json.Unmarshal(body, &record); err != nil {
		return "", fmt.Errorf("person record: %w", protocol.ErrBadResponse)
	}
	if len(record.Accounts) == 0 {
		return "", protocol.ErrNoAccounts
	}
	selected := record.Accounts[0]
	for _, candidate := range record.Accounts {
		if candidate.AccountType == primaryAccountType {
			selected = candidate
			break
		}
	}
	if selected.AccountID == "" {
		return "", protocol.ErrNoAccountID
	}
	if selected.AccountType != primaryAccountType {
		log.Debug("Directory lists no %s account; using %s (%s)",
			primaryAccountType, selected.AccountID, selected.AccountType)
	}
	return selected.AccountID, nil
}

// resolveVehicle picks the VIN to operate on: the preferred VIN when the account
// lists it, otherwise the first vehicle.
func (a *Account) resolveVehicle(ctx context.Context, session *Session) (string, *telemetry.VehicleDescription, error) {
	body, err := a.directoryGet(ctx, "accounts/"+session.AccountID+"/vehicles", session)
	if err != nil {
		return "", nil, fmt.Errorf("fetching vehicle list: %w", err)
	}
	vehicles, err := parseVehicleLinks(body)
	if err != nil {
		return "", nil, err
	}
	if len(vehicles) == 0 {
		return "", nil, protocol.ErrNoVehicles
	}
	if preferred := a.credentials.PreferredVIN; preferred != "" {
		for _, candidate := range vehicles {
			if candidate.VIN == preferred {
				return candidate.VIN, candidate, nil
			}
		}
		log.Warning("Account does not list vehicle %s; using %s", preferred, vehicles[0].VIN)
	}
	return vehicles[0].VIN, vehicles[0], nil
}

func parseVehicleLinks(body []byte) ([]*telemetry.VehicleDescription, error) {
	var listing struct {
		VehicleLinks []map[string]interface{} `json:"vehicleLinks"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("vehicle list: %w", protocol.ErrBadResponse)
	}
	vehicles := make([]*telemetry.VehicleDescription, 0, len(listing.VehicleLinks))
	for _, entry := range listing.VehicleLinks {
		description := telemetry.ParseVehicleDescription(telemetry.Document(entry))
		if description.VIN == "" {
			continue
		}
		vehicles = append(vehicles, description)
	}
	return vehicles, nil
}
