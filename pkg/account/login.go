package account

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/renault-community/renault-command/internal/log"
	"github.com/renault-community/renault-command/pkg/protocol"
)

// idTokenLifetime is the lifetime requested for gateway JWTs. The identity service
// may grant less; the client never assumes a token is still valid and instead
// reacts to gateway rejections.
const idTokenLifetime = 900 * time.Second

// identityResponse covers all three identity-service endpoints; each populates a
// different subset of the fields.
type identityResponse struct {
	ErrorCode    int    `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
	SessionInfo  struct {
		CookieValue string `json:"cookieValue"`
	} `json:"sessionInfo"`
	Data struct {
		PersonID string `json:"personId"`
	} `json:"data"`
	IDToken string `json:"id_token"`
}

func (a *Account) identityCall(ctx context.Context, endpoint string, form url.Values) (*identityResponse, error) {
	body, err := a.identity.PostForm(ctx, endpoint, form)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	var response identityResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, protocol.ErrBadResponse)
	}
	// The identity service reports failures with HTTP 200 and an in-body code.
	if response.ErrorCode != 0 {
		return nil, &protocol.AuthError{Code: response.ErrorCode, Message: response.ErrorMessage}
	}
	return &response, nil
}

// login performs the three-step credential exchange: credentials buy a session
// cookie, the cookie buys the person id, and the cookie buys a short-lived JWT for
// the vehicle gateway. Each step requires the previous step's artifact.
func (a *Account) login(ctx context.Context) (*Session, error) {
	var session Session

	response, err := a.identityCall(ctx, "accounts.login", url.Values{
		"apiKey":   {IdentityAPIKey},
		"loginID":  {a.credentials.Email},
		"password": {a.credentials.Password},
	})
	if err != nil {
		return nil, err
	}
	if session.Cookie = response.SessionInfo.CookieValue; session.Cookie == "" {
		return nil, &protocol.AuthError{Message: "identity response missing session cookie"}
	}
	log.Debug("Obtained identity session cookie")

	response, err = a.identityCall(ctx, "accounts.getAccountInfo", url.Values{
		"apiKey":      {IdentityAPIKey},
		"login_token": {session.Cookie},
	})
	if err != nil {
		return nil, err
	}
	if session.PersonID = response.Data.PersonID; session.PersonID == "" {
		return nil, &protocol.AuthError{Message: "identity response missing person id"}
	}
	log.Debug("Resolved person id %s", session.PersonID)

	response, err = a.identityCall(ctx, "accounts.getJWT", url.Values{
		"apiKey":      {IdentityAPIKey},
		"login_token": {session.Cookie},
		"fields":      {"data.personId,data.gigyaDataCenter"},
		"expiration":  {strconv.Itoa(int(idTokenLifetime.Seconds()))},
	})
	if err != nil {
		return nil, err
	}
	if session.IDToken = response.IDToken; session.IDToken == "" {
		return nil, &protocol.AuthError{Message: "identity response missing id token"}
	}
	log.Debug("Obtained gateway id token")

	return &session, nil
}
