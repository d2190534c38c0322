// Package security guards the API against logo URLs that point inside the network.
package security

import (
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
)

// MaxRedirects bounds the redirect chain followed for a logo URL.
const MaxRedirects = 5

// ErrPrivateAddress is returned when a connection would reach a local or
// private address that the policy does not allow.
var ErrPrivateAddress = errors.New("address is local or private")

// LogoURLPolicy controls which remote logos the server is willing to fetch.
type LogoURLPolicy struct {
	// AllowHTTP permits plain http:// URLs alongside https://.
	AllowHTTP bool
	// AllowPrivateHosts permits localhost and private address ranges.
	AllowPrivateHosts bool
}

// DevelopmentPolicy accepts any http(s) URL, including local test servers.
func DevelopmentPolicy() LogoURLPolicy {
	return LogoURLPolicy{AllowHTTP: true, AllowPrivateHosts: true}
}

// ProductionPolicy accepts HTTPS URLs on public hosts only.
func ProductionPolicy() LogoURLPolicy {
	return LogoURLPolicy{}
}

// PolicyFor returns DevelopmentPolicy when devMode is set and
// ProductionPolicy otherwise.
func PolicyFor(devMode bool) LogoURLPolicy {
	if devMode {
		return DevelopmentPolicy()
	}
	return ProductionPolicy()
}

// ValidateLogoURL checks a logo URL against the policy before it is fetched.
func (p LogoURLPolicy) ValidateLogoURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "https":
	case "http":
		if !p.AllowHTTP {
			return fmt.Errorf("only HTTPS logo URLs are allowed (got %s)", parsed.Scheme)
		}
	default:
		return fmt.Errorf("logo URL must use http or https (got %q)", parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return fmt.Errorf("URL must have a hostname")
	}
	if !p.AllowPrivateHosts && isLocalOrPrivateHost(host) {
		return fmt.Errorf("URL cannot point to local or private hosts: %s", host)
	}
	return nil
}

// CheckRedirect applies the policy to each redirect target. It matches the
// signature of http.Client.CheckRedirect.
func (p LogoURLPolicy) CheckRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= MaxRedirects {
		return fmt.Errorf("stopped after %d redirects", MaxRedirects)
	}
	if err := p.ValidateLogoURL(req.URL.String()); err != nil {
		return fmt.Errorf("redirect rejected: %w", err)
	}
	return nil
}

// DialControl rejects connections to local or private addresses unless the
// policy allows them. It runs after name resolution, so it also catches
// public hostnames that resolve to internal addresses. It matches the
// signature of net.Dialer.Control.
func (p LogoURLPolicy) DialControl(network, address string, _ syscall.RawConn) error {
	if p.AllowPrivateHosts {
		return nil
	}
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("unexpected dial address %q: %w", address, err)
	}
	if isPrivateAddr(addrPort.Addr()) {
		return fmt.Errorf("dial %s %s: %w", network, address, ErrPrivateAddress)
	}
	return nil
}

// isLocalOrPrivateHost reports whether host names the local machine or a
// private, link-local or unspecified address. Hostnames are not resolved
// here; DialControl checks the resolved addresses.
func isLocalOrPrivateHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	return isPrivateAddr(addr)
}

func isPrivateAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsUnspecified()
}
