package tenant

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
)

const (
	// MaxLabelLength keeps identifiers DNS compatible and bounds lookups.
	MaxLabelLength = 63
	// MaxDomainLength is the longest host name DNS allows.
	MaxDomainLength = 253
)

var (
	labelPattern  = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
	domainPattern = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}$`)
)

// Resolver extracts a tenant identifier from a request.
// It returns an empty string when the request names no tenant.
//
// Only resolvers whose input is verified belong here: host names are checked
// against the registry, token claims are signed. A raw client header is not a
// trusted source and has no resolver.
type Resolver func(r *http.Request) (string, error)

// ValidLabel reports whether s can be used as a tenant slug or subdomain.
func ValidLabel(s string) bool {
	return len(s) <= MaxLabelLength && labelPattern.MatchString(s)
}

// ValidDomain reports whether s is a syntactically valid custom domain.
func ValidDomain(s string) bool {
	return len(s) <= MaxDomainLength && domainPattern.MatchString(s)
}

func requestHost(r *http.Request) string {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
}

// NewSubdomainResolver returns the first label of hosts under baseDomain.
// "acme.videos.example" resolves to "acme" for baseDomain "videos.example".
// The bare base domain and "www" resolve to nothing.
func NewSubdomainResolver(baseDomain string) Resolver {
	suffix := "." + strings.Trim(strings.ToLower(baseDomain), ".")
	return func(r *http.Request) (string, error) {
		host := requestHost(r)
		if !strings.HasSuffix(host, suffix) {
			return "", nil
		}
		sub := strings.TrimSuffix(host, suffix)
		if sub == "" || sub == "www" {
			return "", nil
		}
		if i := strings.LastIndex(sub, "."); i >= 0 {
			sub = sub[i+1:]
		}
		if !ValidLabel(sub) {
			return "", fmt.Errorf("%w: subdomain %q", ErrInvalidIdentifier, sub)
		}
		return sub, nil
	}
}

// NewCustomDomainResolver returns the full host for requests that do not target
// baseDomain or one of its subdomains. The registry decides whether the domain
// belongs to a tenant.
func NewCustomDomainResolver(baseDomain string) Resolver {
	base := strings.Trim(strings.ToLower(baseDomain), ".")
	return func(r *http.Request) (string, error) {
		host := requestHost(r)
		if host == "" || host == base || strings.HasSuffix(host, "."+base) {
			return "", nil
		}
		if net.ParseIP(host) != nil || host == "localhost" {
			return "", nil
		}
		if !ValidDomain(host) {
			return "", fmt.Errorf("%w: domain %q", ErrInvalidIdentifier, host)
		}
		return host, nil
	}
}

// NewCompositeResolver tries resolvers in order and returns the first non-empty
// identifier. Errors are collected and only returned when nothing resolved.
func NewCompositeResolver(resolvers ...Resolver) Resolver {
	return func(r *http.Request) (string, error) {
		var errs []error
		for _, resolve := range resolvers {
			id, err := resolve(r)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if id != "" {
				return id, nil
			}
		}
		if len(errs) > 0 {
			return "", errors.Join(errs...)
		}
		return "", nil
	}
}
