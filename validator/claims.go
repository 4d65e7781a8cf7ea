package validator

// Claims is the validated payload of an access token. It is produced once per
// successful Authenticate call and never cached.
type Claims struct {
	// Subject is the sub claim, empty when the token carries none.
	Subject string `json:"sub,omitempty"`
	// PreferredUsername is required; tokens without it are rejected.
	PreferredUsername string `json:"preferred_username"`
	// Email is empty when the token carries none.
	Email string `json:"email,omitempty"`
	// Audience is the configured audience the token was issued for.
	Audience string `json:"aud"`
	Issuer   string `json:"iss"`
	// Expiry is a Unix timestamp in seconds.
	Expiry int64 `json:"exp"`
}
