package portal_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adc-dairy/milkroom/internal/domain"
	"github.com/adc-dairy/milkroom/internal/logger"
	"github.com/adc-dairy/milkroom/internal/portal"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

func TestDiscoverToken_PriorityOrder(t *testing.T) {
	tests := []struct {
		name           string
		cookies        map[string]string
		localStorage   map[string]string
		sessionStorage map[string]string
		expectedToken  string
		expectedSource domain.TokenSource
		expectedErr    error
	}{
		{
			name:           "cookie wins over storage entries",
			cookies:        map[string]string{"session_token": "from-cookie"},
			localStorage:   map[string]string{"CognitoIdentityServiceProvider.abc.user.idToken": "from-storage"},
			expectedToken:  "from-cookie",
			expectedSource: domain.TokenSourceCookie,
		},
		{
			name:           "cookie name match is case-insensitive",
			cookies:        map[string]string{"AuthKey": "from-cookie"},
			expectedToken:  "from-cookie",
			expectedSource: domain.TokenSourceCookie,
		},
		{
			name:           "id token beats access token",
			localStorage: map[string]string{
				"CognitoIdentityServiceProvider.abc.user.accessToken": "access",
				"CognitoIdentityServiceProvider.abc.user.idToken":     "id",
			},
			expectedToken:  "id",
			expectedSource: domain.TokenSourceIDToken,
		},
		{
			name: "access token used when no id token",
			localStorage: map[string]string{
				"CognitoIdentityServiceProvider.abc.user.accessToken": "access",
			},
			expectedToken:  "access",
			expectedSource: domain.TokenSourceAccessToken,
		},
		{
			name:           "storage scan finds token-like key in session storage",
			sessionStorage: map[string]string{"app.authState": "scanned"},
			expectedToken:  "scanned",
			expectedSource: domain.TokenSourceStorageScan,
		},
		{
			name:          "empty values never match",
			cookies:       map[string]string{"token": ""},
			localStorage:  map[string]string{"CognitoIdentityServiceProvider.x.idToken": ""},
			expectedToken: "",
			expectedErr:   domain.ErrNoToken,
		},
		{
			name:        "nothing anywhere",
			cookies:     map[string]string{"theme": "dark"},
			expectedErr: domain.ErrNoToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, source, err := portal.DiscoverToken(tt.cookies, tt.localStorage, tt.sessionStorage)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedToken, token)
			assert.Equal(t, tt.expectedSource, source)
		})
	}
}

func TestDiscoverToken_LocalStorageBeforeSessionStorage(t *testing.T) {
	local := map[string]string{"local.token": "local-wins"}
	session := map[string]string{"session.token": "session-loses"}

	token, source, err := portal.DiscoverToken(nil, local, session)
	require.NoError(t, err)
	assert.Equal(t, "local-wins", token)
	assert.Equal(t, domain.TokenSourceStorageScan, source)
}
