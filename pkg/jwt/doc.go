// Package jwt issues and verifies HS256 access tokens with
// github.com/golang-jwt/jwt/v4.
//
// Tokens carry an optional tenant id ("tid") and space-separated scopes.
// Middleware stores verified Claims in the request context; TenantClaim feeds
// the tenant middleware's cross-check and RequireScope guards operator routes.
package jwt
