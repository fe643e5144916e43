// Package google provides service-account authentication for Google APIs.
//
// It loads a service-account key (client email plus PEM-encoded RSA private
// key), signs an RS256 JWT assertion identifying that account, and exchanges
// the assertion for a short-lived OAuth2 access token via the JWT-bearer
// grant. The resulting TokenSource plugs into the oauth2 and google-api
// client plumbing.
//
// Tokens are minted fresh on every call by default; wrap a TokenSource in a
// CachingTokenProvider to reuse a token until shortly before its expiry.
package google
