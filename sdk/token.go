package sdk

import "time"

// Token is a bearer token granted over ssh.
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int       `json:"expires_in,omitempty"`
	TokenType   string    `json:"token_type,omitempty"`
	ExpiryTime  time.Time `json:"expiry_time,omitempty"`
}

// WithExpiry sets ExpiryTime from ExpiresIn, relative to now.
func (t Token) WithExpiry(now time.Time) Token {
	t.ExpiryTime = now.Add(time.Duration(t.ExpiresIn) * time.Second)
	return t
}
