// Package token manages the bearer-token lifecycle for the Graph binding:
// silent acquisition first, an interactive challenge as fallback, caching
// while valid, and lazy refresh after a caller observes an auth failure.
package token

import "time"

// expirySkew is subtracted from the token expiry so a token is replaced
// slightly before the platform would reject it.
const expirySkew = 30 * time.Second

// Token is a short-lived bearer credential. The provider owns it; callers
// hold a transient copy per operation and never persist it.
type Token struct {
	AccessToken string
	Expiry      time.Time
}

// Valid reports whether the token exists and has not expired.
// A zero Expiry means the issuer did not communicate a lifetime; such
// tokens stay valid until explicitly invalidated.
func (t Token) Valid() bool {
	if t.AccessToken == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return true
	}
	return time.Now().Add(expirySkew).Before(t.Expiry)
}
