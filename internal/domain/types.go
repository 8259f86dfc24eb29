package domain

// TokenSource identifies which discovery rule produced a bearer token,
// in descending order of confidence.
type TokenSource string

const (
	// TokenSourceCookie is a session cookie whose name suggests an auth token
	TokenSourceCookie TokenSource = "cookie"
	// TokenSourceIDToken is an identity-provider ID token found in local storage
	TokenSourceIDToken TokenSource = "idp_id_token"
	// TokenSourceAccessToken is an identity-provider access token found in local storage (lower confidence)
	TokenSourceAccessToken TokenSource = "idp_access_token"
	// TokenSourceStorageScan is a last-resort match from scanning both storage scopes
	TokenSourceStorageScan TokenSource = "storage_scan"
)

// DateOnly is the wire format for the portal API's date range parameters
const DateOnly = "2006-01-02"
