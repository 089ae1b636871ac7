package main

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestParseTemperature(t *testing.T) {
	type params struct {
		str     string
		degrees float64
		err     error
	}
	testCases := []params{
		{str: "21", degrees: 21},
		{str: "21.5", degrees: 21.5},
		{str: "21C", degrees: 21},
		{str: "21.5c", degrees: 21.5},
		{str: "70F", degrees: (70.0 - 32.0) * 5.0 / 9.0},
		{str: "70f", degrees: (70.0 - 32.0) * 5.0 / 9.0},
		{str: "", err: ErrInvalidTemperature},
		{str: "warm", err: ErrInvalidTemperature},
		{str: "21K", err: ErrInvalidTemperature},
		{str: "C", err: ErrInvalidTemperature},
	}
	for _, test := range testCases {
		degrees, err := parseTemperature(test.str)
		if !errors.Is(err, test.err) {
			t.Errorf("expected '%s' to result in error %v, but got %v", test.str, test.err, err)
		} else if degrees != test.degrees {
			t.Errorf("expected parseTemperature('%s') = %f, but got %f", test.str, test.degrees, degrees)
		}
	}
}

func TestTokenExpiry(t *testing.T) {
	expires := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("Failed to sign test token: %s", err)
	}

	expiry, err := tokenExpiry(signed)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if !expiry.Equal(expires) {
		t.Errorf("Expected expiry %s, got %s", expires, expiry)
	}

	if _, err := tokenExpiry("not-a-token"); err == nil {
		t.Error("Expected error for malformed token")
	}

	// A token without an exp claim decodes but is reported as unusable.
	bare := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "person-1"})
	signed, err = bare.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("Failed to sign test token: %s", err)
	}
	if _, err := tokenExpiry(signed); err == nil {
		t.Error("Expected error for token without expiry")
	}
}
