// Package scopes implements space-separated permission scopes with
// hierarchical wildcards ("platform.*") as carried in access tokens.
package scopes
