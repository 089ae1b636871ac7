package cli

import (
	"testing"

	"github.com/renault-community/renault-command/pkg/account"
)

func TestNormalizeLocale(t *testing.T) {
	testCases := map[string]string{
		"fr_FR": "fr_FR",
		"fr-fr": "fr_FR",
		"FR_fr": "fr_FR",
		"NL-be": "nl_BE",
		"sv":    "sv",
		"":      "",
	}
	for input, expected := range testCases {
		if normalized := normalizeLocale(input); normalized != expected {
			t.Errorf("normalizeLocale(%q) = %q, expected %q", input, normalized, expected)
		}
	}
}

func TestLookupLocale(t *testing.T) {
	settings, err := lookupLocale("de-at")
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if settings.country != "AT" {
		t.Errorf("Expected country AT, got %s", settings.country)
	}
	if _, err := lookupLocale("xx_XX"); err == nil {
		t.Error("Expected error for unsupported locale")
	}
}

func TestApplyLocale(t *testing.T) {
	origHost := account.IdentityHost
	origKey := account.IdentityAPIKey
	origGateway := account.GatewayHost
	origGatewayKey := account.GatewayAPIKey
	defer func() {
		account.IdentityHost = origHost
		account.IdentityAPIKey = origKey
		account.GatewayHost = origGateway
		account.GatewayAPIKey = origGatewayKey
	}()

	country, err := applyLocale("sv_SE")
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if country != "SE" {
		t.Errorf("Expected country SE, got %s", country)
	}
	if account.IdentityHost == "" || account.GatewayHost == "" {
		t.Error("applyLocale left deployment hosts unset")
	}

	if _, err := applyLocale("xx_XX"); err == nil {
		t.Error("Expected error for unsupported locale")
	}
}
