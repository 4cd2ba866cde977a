package gensi

import (
	"net/url"
	"strings"
)

// ResolveURL resolves href against base. Unparseable inputs return href
// unchanged; a relative href without a base stays relative.
func ResolveURL(base, href string) string {
	if base == "" {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

// IsImageURL reports whether a URL points at an image file, judged by
// its path extension.
func IsImageURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".svg"} {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// URLExt returns the lowercased path extension of a URL, including the
// dot, or the empty string when the path has none.
func URLExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := u.Path
	if i := strings.LastIndexByte(p, '.'); i >= 0 && !strings.ContainsRune(p[i:], '/') {
		return strings.ToLower(p[i:])
	}
	return ""
}

// MatchesDomain reports whether host equals domain or is a subdomain of
// it. Comparison is case-insensitive.
func MatchesDomain(host, domain string) bool {
	host = strings.ToLower(host)
	domain = strings.ToLower(domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// HostOf returns the host part of a URL, or the empty string if the URL
// does not parse.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
