package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/renault-community/renault-command/pkg/account"
)

// regionSettings points the account package at the identity and gateway deployment
// serving a locale. The API keys ship with the MyRenault mobile apps and are not
// secret; every European locale currently shares one platform deployment and
// differs only in its gateway country code.
type regionSettings struct {
	identityHost   string
	identityAPIKey string
	gatewayHost    string
	gatewayAPIKey  string
	country        string
}

func europe(country string) regionSettings {
	return regionSettings{
		identityHost:   "https://accounts.eu1.gigya.com",
		identityAPIKey: "3_7PLksOyBRkHv126x5WhHb-5wqzyzbvdySPaGplkifYCkkkmZnUfsXDPhhXA5DBpv",
		gatewayHost:    "https://api-wired-prod-1-euw1.wrd-aws.com",
		gatewayAPIKey:  "VAX7XYKGfa92yMvXculCkEFyfZbuDLtJ",
		country:        country,
	}
}

var locales = map[string]regionSettings{
	"bg_BG": europe("BG"),
	"cs_CZ": europe("CZ"),
	"da_DK": europe("DK"),
	"de_AT": europe("AT"),
	"de_CH": europe("CH"),
	"de_DE": europe("DE"),
	"en_GB": europe("GB"),
	"en_IE": europe("IE"),
	"es_ES": europe("ES"),
	"fi_FI": europe("FI"),
	"fr_BE": europe("BE"),
	"fr_CH": europe("CH"),
	"fr_FR": europe("FR"),
	"it_CH": europe("CH"),
	"it_IT": europe("IT"),
	"nl_BE": europe("BE"),
	"nl_NL": europe("NL"),
	"no_NO": europe("NO"),
	"pl_PL": europe("PL"),
	"pt_PT": europe("PT"),
	"ro_RO": europe("RO"),
	"sk_SK": europe("SK"),
	"sl_SI": europe("SI"),
	"sv_SE": europe("SE"),
}

// DefaultLocale is used when neither the command line nor the environment provides
// one.
const DefaultLocale = "fr_FR"

// SupportedLocales lists the locales accepted by -locale, sorted.
func SupportedLocales() []string {
	names := make([]string, 0, len(locales))
	for name := range locales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// normalizeLocale maps inputs like "fr-fr" or "FR_fr" onto table keys.
func normalizeLocale(locale string) string {
	locale = strings.Replace(locale, "-", "_", 1)
	parts := strings.SplitN(locale, "_", 2)
	if len(parts) != 2 {
		return locale
	}
	return strings.ToLower(parts[0]) + "_" + strings.ToUpper(parts[1])
}

func lookupLocale(locale string) (regionSettings, error) {
	if settings, ok := locales[normalizeLocale(locale)]; ok {
		return settings, nil
	}
	return regionSettings{}, fmt.Errorf("unsupported locale '%s' (supported: %s)", locale, strings.Join(SupportedLocales(), ", "))
}

// applyLocale points the account package's deployment variables at the locale's
// region and returns the locale's country code.
func applyLocale(locale string) (string, error) {
	settings, err := lookupLocale(locale)
	if err != nil {
		return "", err
	}
	account.IdentityHost = settings.identityHost
	account.IdentityAPIKey = settings.identityAPIKey
	account.GatewayHost = settings.gatewayHost
	account.GatewayAPIKey = settings.gatewayAPIKey
	return settings.country, nil
}
