package portal

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/adc-dairy/milkroom/internal/domain"
	"github.com/adc-dairy/milkroom/internal/logger"
)

// cognitoKeyMarker marks web-storage keys written by the portal's hosted
// identity provider
const cognitoKeyMarker = "cognitoidentityserviceprovider"

var tokenCookieMarkers = []string{"token", "auth", "session"}

// DiscoverToken recovers a bearer token from the authenticated session's
// cookie jar and web storage. Tiers, in priority order:
//
//  1. a cookie whose name contains token/auth/session
//  2. an identity-provider idToken entry in local storage
//  3. an identity-provider accessToken entry in local storage
//  4. any local- or session-storage entry whose key contains token/auth
//
// The returned TokenSource names the tier that produced the token.
func DiscoverToken(cookies, localStorage, sessionStorage map[string]string) (string, domain.TokenSource, error) {
	if token := findTokenCookie(cookies); token != "" {
		return token, domain.TokenSourceCookie, nil
	}

	if token := findCognitoToken(localStorage, "idtoken"); token != "" {
		return token, domain.TokenSourceIDToken, nil
	}

	if token := findCognitoToken(localStorage, "accesstoken"); token != "" {
		logger.Warn("using access token, id token not present")
		return token, domain.TokenSourceAccessToken, nil
	}

	if token := scanStorageKeys(localStorage, sessionStorage); token != "" {
		return token, domain.TokenSourceStorageScan, nil
	}

	logger.Warn("no token found in session state",
		zap.Int("cookies", len(cookies)),
		zap.Int("localStorageKeys", len(localStorage)),
		zap.Int("sessionStorageKeys", len(sessionStorage)),
	)
	return "", "", domain.ErrNoToken
}

func findTokenCookie(cookies map[string]string) string {
	for _, name := range sortedKeys(cookies) {
		lower := strings.ToLower(name)
		for _, marker := range tokenCookieMarkers {
			if strings.Contains(lower, marker) && cookies[name] != "" {
				logger.Debug("token found in cookie", zap.String("cookie", name))
				return cookies[name]
			}
		}
	}
	return ""
}

func findCognitoToken(localStorage map[string]string, kind string) string {
	for _, key := range sortedKeys(localStorage) {
		lower := strings.ToLower(key)
		if strings.Contains(lower, cognitoKeyMarker) && strings.Contains(lower, kind) && localStorage[key] != "" {
			logger.Debug("token found in local storage", zap.String("key", key))
			return localStorage[key]
		}
	}
	return ""
}

// scanStorageKeys is the last-resort tier: any storage entry whose key
// mentions a token or auth, local storage before session storage
func scanStorageKeys(localStorage, sessionStorage map[string]string) string {
	for _, store := range []map[string]string{localStorage, sessionStorage} {
		for _, key := range sortedKeys(store) {
			lower := strings.ToLower(key)
			if (strings.Contains(lower, "token") || strings.Contains(lower, "auth")) && store[key] != "" {
				logger.Debug("token found by storage scan", zap.String("key", key))
				return store[key]
			}
		}
	}
	return ""
}

// sortedKeys makes discovery deterministic across runs; map iteration order
// would otherwise pick different winners when several entries qualify
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
