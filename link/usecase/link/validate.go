package link

import (
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/superj80820/link-shortener/kit/code"
)

var (
	customCodePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$|^[a-z0-9]$`)
	hostnamePattern   = regexp.MustCompile(`^(?i:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)(?:\.(?i:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?))*\.?$`)

	DefaultReservedCodes = []string{
		"api", "admin", "www", "static", "assets", "health", "metrics",
		"robots.txt", "favicon.ico", "sitemap.xml",
	}
	defaultBlockedDomains = []string{"localhost", "localhost.localdomain", "local"}

	privateNetworks = mustParseCIDRs(
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"169.254.0.0/16",
		"0.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10",
	)
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	networks := make([]*net.IPNet, len(cidrs))
	for i, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		networks[i] = network
	}
	return networks
}

func NormalizeCode(rawCode string) string {
	return strings.ToLower(strings.TrimSpace(rawCode))
}

func (l *linkUseCase) isReserved(code string) bool {
	_, ok := l.reservedCodes[code]
	return ok
}

// validateCustomCode checks reserved words before shape, so reserved paths
// such as favicon.ico report as reserved. Availability is checked by the
// caller against cache and store.
func (l *linkUseCase) validateCustomCode(customCode string) error {
	if l.isReserved(customCode) {
		return code.CreateErrorCode(http.StatusBadRequest).AddCode(code.ReservedCode)
	}
	if len(customCode) < l.config.MinCustomCodeLength || len(customCode) > l.config.MaxCustomCodeLength {
		return code.CreateErrorCode(http.StatusBadRequest).AddCode(code.CodeLength, l.config.MinCustomCodeLength, l.config.MaxCustomCodeLength)
	}
	if !customCodePattern.MatchString(customCode) {
		return code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidCode)
	}
	return nil
}

// validateDestination returns the trimmed url or a 400 error code.
func (l *linkUseCase) validateDestination(rawURL string) (string, error) {
	destination := strings.TrimSpace(rawURL)
	if destination == "" {
		return "", code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidURL, "url is required")
	}
	if len(destination) > l.config.MaxURLLength {
		return "", code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidURL, "url is too long")
	}
	if strings.ContainsRune(destination, 0) {
		return "", code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidURL, "url contains invalid characters")
	}

	parsedURL, err := url.Parse(destination)
	if err != nil {
		return "", code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidURL, "url can not be parsed").AddErrorMetaData(err)
	}
	if scheme := strings.ToLower(parsedURL.Scheme); scheme != "http" && scheme != "https" {
		return "", code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidURL, "only http and https are allowed")
	}
	host := parsedURL.Hostname()
	if host == "" {
		return "", code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidURL, "url must have a host")
	}
	if net.ParseIP(host) == nil && !hostnamePattern.MatchString(host) {
		return "", code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidURL, "invalid host")
	}
	if reason := l.unsafeReason(parsedURL); reason != "" {
		return "", code.CreateErrorCode(http.StatusBadRequest).AddCode(code.BlockedURL, reason)
	}

	return destination, nil
}

// unsafeReason returns why a parsed destination must not be shortened, or ""
// when it is allowed.
func (l *linkUseCase) unsafeReason(parsedURL *url.URL) string {
	if parsedURL.User != nil {
		return "contains credentials"
	}
	host := strings.TrimSuffix(strings.ToLower(parsedURL.Hostname()), ".")
	for _, blockedDomain := range l.blockedDomains {
		if host == blockedDomain || strings.HasSuffix(host, "."+blockedDomain) {
			return "blocked domain"
		}
	}
	if ip := net.ParseIP(host); ip != nil {
		for _, network := range privateNetworks {
			if network.Contains(ip) {
				return "private network address"
			}
		}
	}
	return ""
}

func (l *linkUseCase) isSafeDestination(destination string) (bool, string) {
	parsedURL, err := url.Parse(destination)
	if err != nil {
		return false, "this link may be unsafe: url can not be parsed"
	}
	if reason := l.unsafeReason(parsedURL); reason != "" {
		return false, "this link may be unsafe: " + reason
	}
	return true, ""
}

func normalizeDomains(domains []string) []string {
	normalized := make([]string, 0, len(domains))
	for _, blockedDomain := range domains {
		if blockedDomain = strings.Trim(strings.ToLower(strings.TrimSpace(blockedDomain)), "."); blockedDomain != "" {
			normalized = append(normalized, blockedDomain)
		}
	}
	return normalized
}
