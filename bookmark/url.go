package bookmark

import (
	"net/url"
	"strconv"
	"strings"
)

// NormalizeURL canonicalizes a URL for identity comparison: the scheme
// and host are lowercased, default ports (:80 for http, :443 for https)
// are stripped, trailing slashes are removed from the path, and the
// fragment is dropped. The query string is preserved as-is.
//
// Normalization is idempotent. URLs that fail to parse are returned
// trimmed but otherwise unchanged.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if host, port, ok := splitHostPort(u.Host); ok {
		if (u.Scheme == "http" && port == 80) || (u.Scheme == "https" && port == 443) {
			u.Host = host
		}
	}

	u.Path = strings.TrimRight(u.Path, "/")

	return u.String()
}

func splitHostPort(hostport string) (host string, port int, ok bool) {
	i := strings.LastIndexByte(hostport, ':')
	if i < 0 {
		return hostport, 0, false
	}
	port, err := strconv.Atoi(hostport[i+1:])
	if err != nil {
		return hostport, 0, false
	}
	return hostport[:i], port, true
}

// IsValidURL reports whether a URL string has a usable format: an
// http/https/ftp/ftps scheme and a plausible host (domain name, IPv4
// address, or localhost).
func IsValidURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	switch u.Scheme {
	case "http", "https", "ftp", "ftps":
	default:
		return false
	}

	host := u.Hostname()
	if host == "" || strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return false
	}
	if host == "localhost" {
		return true
	}
	if isIPv4(host) {
		return true
	}

	if !strings.Contains(host, ".") || strings.Contains(host, "..") {
		return false
	}
	if strings.HasPrefix(host, "-") || strings.HasSuffix(host, "-") {
		return false
	}
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
		default:
			return false
		}
	}
	return true
}

func isIPv4(host string) bool {
	parts := strings.Split(host, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}
