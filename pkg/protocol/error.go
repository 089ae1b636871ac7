// Package protocol defines the error taxonomy shared by the account, vehicle, and
// proxy layers.
package protocol

import (
	"errors"
	"fmt"
)

// Error exposes methods useful for categorizing errors.
type Error interface {
	error

	// Unauthorized returns true if the upstream rejected the client's session token or
	// credentials. The account layer treats these errors as a signal to obtain a fresh
	// session; the aggregation layer refuses to cache results tainted by them.
	Unauthorized() bool

	// Temporary returns true if the Error might be the result of a transient condition.
	// For example, the vehicle gateway intermittently returns server errors when the
	// car-adapter backend is being redeployed.
	Temporary() bool
}

var (
	// ErrNoAccounts indicates the person directory responded successfully but listed no
	// accounts.
	ErrNoAccounts = &DirectoryError{Message: "person has no associated accounts"}
	// ErrNoVehicles indicates the selected account has no vehicles. Check that the
	// vehicle has been added to the account in the MyRenault app.
	ErrNoVehicles = &DirectoryError{Message: "account has no associated vehicles"}
	// ErrMissingCredentials indicates the client was constructed without an email or
	// password.
	ErrMissingCredentials = &ConfigError{Message: "missing email or password"}
	// ErrNoAccountID indicates the directory listed an account without an id, leaving
	// the client unable to address any gateway endpoint.
	ErrNoAccountID = &ConfigError{Message: "could not determine an account id"}
	// ErrBadResponse indicates the upstream returned a payload the client could not
	// interpret.
	ErrBadResponse = errors.New("invalid response")
)

// AuthError indicates the identity service rejected the client's credentials, or
// responded without the artifact (session cookie, person id, or JWT) required by the
// next step of the credential exchange.
type AuthError struct {
	// Code is the identity service's numeric error code, or zero if the response
	// carried none.
	Code    int
	Message string
}

func (e *AuthError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("login failed: %s (code %d)", e.Message, e.Code)
	}
	return "login failed: " + e.Message
}

func (e *AuthError) Unauthorized() bool {
	return true
}

func (e *AuthError) Temporary() bool {
	return false
}

// DirectoryError indicates the directory service responded successfully, but its
// listing did not contain an account or vehicle the client could use. Retrying will
// not help until the account itself changes.
type DirectoryError struct {
	Message string
}

func (e *DirectoryError) Error() string {
	return e.Message
}

func (e *DirectoryError) Unauthorized() bool {
	return false
}

func (e *DirectoryError) Temporary() bool {
	return false
}

// ConfigError indicates the client is misconfigured and cannot proceed without user
// action.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// IsUnauthorized returns true if err indicates the upstream rejected the client's
// session token or credentials.
func IsUnauthorized(err error) bool {
	var pErr Error
	if errors.As(err, &pErr) {
		return pErr.Unauthorized()
	}
	return false
}

// Temporary returns true if err indicates a failure due to possibly transient
// conditions that do not require user action to resolve.
func Temporary(err error) bool {
	var pErr Error
	if errors.As(err, &pErr) {
		return pErr.Temporary()
	}
	return false
}

// IsConfigError returns true if err indicates a client-side misconfiguration rather
// than an upstream failure.
func IsConfigError(err error) bool {
	var cErr *ConfigError
	return errors.As(err, &cErr)
}
