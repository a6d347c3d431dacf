package sip

import (
	"strconv"
	"strings"
)

// UriParser parses URIs. It holds only configuration and is safe for
// concurrent use.
type UriParser struct {
	// AllowMailto enables the mailto: scheme. When disabled mailto URIs are
	// rejected as invalid format.
	AllowMailto bool
}

type uriFSM func(uri *Uri, s string) (uriFSM, string, error)

// ParseUri converts a string representation of a URI into a Uri object.
// mailto: URIs are rejected, use UriParser to enable them.
// Following https://datatracker.ietf.org/doc/html/rfc3261#section-19.1.1
// sip:user:password@host:port;uri-parameters?headers
func ParseUri(uriStr string, uri *Uri) error {
	return UriParser{}.ParseUri(uriStr, uri)
}

// ParseUri parses uriStr into uri.
func (p UriParser) ParseUri(uriStr string, uri *Uri) (err error) {
	if len(uriStr) == 0 {
		return emptyMessage("empty uri")
	}

	*uri = Uri{}
	state := p.uriStateScheme
	str := uriStr
	for state != nil {
		state, str, err = state(uri, str)
		if err != nil {
			return
		}
	}
	return
}

func (p UriParser) uriStateScheme(uri *Uri, s string) (uriFSM, string, error) {
	scheme, rest, ok := strings.Cut(s, ":")
	if !ok {
		return nil, s, invalidFormat("missing uri scheme in %q", s)
	}

	switch Scheme(ASCIIToLower(scheme)) {
	case SCHEME_SIP:
		uri.Scheme = SCHEME_SIP
	case SCHEME_SIPS:
		uri.Scheme = SCHEME_SIPS
		uri.Encrypted = true
	case SCHEME_TEL:
		uri.Scheme = SCHEME_TEL
		return uriStateTelNumber, rest, nil
	case SCHEME_MAILTO:
		if !p.AllowMailto {
			return nil, s, invalidFormat("mailto uri not supported: %q", s)
		}
		uri.Scheme = SCHEME_MAILTO
		return uriStateMailto, rest, nil
	default:
		return nil, s, invalidFormat("unknown uri scheme %q", scheme)
	}

	return uriStateUser, rest, nil
}

func uriStateUser(uri *Uri, s string) (uriFSM, string, error) {
	at := strings.IndexByte(s, '@')
	if at < 0 {
		return uriStateHost, s, nil
	}

	user, password, hasPassword := strings.Cut(s[:at], ":")
	if user == "" {
		return nil, s, invalidFormat("empty user in uri userinfo %q", s[:at])
	}
	if !validChars(user, isUserChar) {
		return nil, s, invalidFormat("invalid character in uri user %q", user)
	}
	if hasPassword && !validChars(password, isPasswordChar) {
		return nil, s, invalidFormat("invalid character in uri password")
	}

	uri.User = user
	uri.Password = password
	return uriStateHost, s[at+1:], nil
}

func uriStateHost(uri *Uri, s string) (uriFSM, string, error) {
	host, rest, err := cutHost(s)
	if err != nil {
		return nil, s, err
	}
	uri.Host = host

	if rest == "" {
		return nil, "", nil
	}

	switch rest[0] {
	case ':':
		return uriStatePort, rest[1:], nil
	case ';':
		return uriStateUriParams, rest[1:], nil
	case '?':
		return uriStateHeaders, rest[1:], nil
	}
	return nil, s, invalidFormat("invalid character in uri host %q", s)
}

// cutHost reads IPv6 reference, IPv4 address or hostname from the start of s.
func cutHost(s string) (host string, rest string, err error) {
	if strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return "", s, invalidFormat("unterminated IPv6 reference in %q", s)
		}
		host = s[:end+1]
		if !validIPv6Reference(host) {
			return "", s, invalidFormat("invalid IPv6 reference %q", host)
		}
		return host, s[end+1:], nil
	}

	end := strings.IndexAny(s, ":;?")
	if end < 0 {
		end = len(s)
	}
	host = s[:end]
	if host == "" {
		return "", s, invalidFormat("missing host in %q", s)
	}
	if !validChars(host, isHostChar) {
		return "", s, invalidFormat("invalid host %q", host)
	}
	return host, s[end:], nil
}

func uriStatePort(uri *Uri, s string) (uriFSM, string, error) {
	end := strings.IndexAny(s, ";?")
	if end < 0 {
		end = len(s)
	}

	port, err := parsePort(s[:end])
	if err != nil {
		return nil, s, err
	}
	uri.Port = port

	if end == len(s) {
		return nil, "", nil
	}
	if s[end] == '?' {
		return uriStateHeaders, s[end+1:], nil
	}
	return uriStateUriParams, s[end+1:], nil
}

func parsePort(s string) (int, error) {
	if !isDigits(s) {
		return 0, invalidFormat("invalid port %q", s)
	}
	port, err := strconv.Atoi(s)
	if err != nil || port > 65535 {
		return 0, invalidFormat("port out of range %q", s)
	}
	return port, nil
}

func uriStateUriParams(uri *Uri, s string) (uriFSM, string, error) {
	params, rest, hasHeaders := strings.Cut(s, "?")
	uri.UriParams = NewParams()
	if err := unmarshalUriParams(params, &uri.UriParams); err != nil {
		return nil, s, err
	}

	if !hasHeaders {
		return nil, "", nil
	}
	return uriStateHeaders, rest, nil
}

// unmarshalUriParams reads ;name[=value] list. A param with empty value
// is stored without value, so ;lr and ;lr= are the same.
func unmarshalUriParams(s string, p *HeaderParams) error {
	for _, seg := range strings.Split(s, ";") {
		if seg == "" {
			continue
		}

		name, val, _ := strings.Cut(seg, "=")
		if name == "" || !validChars(name, isParamChar) {
			return invalidFormat("malformed uri parameter %q", seg)
		}
		if !validChars(val, isParamChar) {
			return invalidFormat("malformed uri parameter value %q", seg)
		}

		if val == "" {
			p.AddFlag(name)
			continue
		}
		p.Add(name, val)
	}
	return nil
}

// uriStateHeaders reads ?a=b&c=d. Pairs without "=" are dropped.
func uriStateHeaders(uri *Uri, s string) (uriFSM, string, error) {
	uri.Headers = NewParams()
	for _, pair := range strings.Split(s, "&") {
		name, val, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			continue
		}
		uri.Headers.Add(name, val)
	}
	return nil, "", nil
}

// https://datatracker.ietf.org/doc/html/rfc3966#section-3
// telephone-subscriber = global-number / local-number
func uriStateTelNumber(uri *Uri, s string) (uriFSM, string, error) {
	number, params, hasParams := strings.Cut(s, ";")
	if number == "" {
		return nil, s, invalidFormat("missing tel subscriber in %q", s)
	}

	if strings.HasPrefix(number, "+") {
		if !validChars(number[1:], isGlobalNumberChar) || !strings.ContainsAny(number[1:], "0123456789") {
			return nil, s, invalidFormat("invalid global tel number %q", number)
		}
	} else if !validChars(number, isLocalNumberChar) {
		return nil, s, invalidFormat("invalid local tel number %q", number)
	}
	uri.User = number

	if !hasParams {
		return nil, "", nil
	}
	uri.UriParams = NewParams()
	return nil, "", unmarshalUriParams(params, &uri.UriParams)
}

func uriStateMailto(uri *Uri, s string) (uriFSM, string, error) {
	addr, headers, hasHeaders := strings.Cut(s, "?")
	user, host, ok := strings.Cut(addr, "@")
	if !ok || user == "" {
		return nil, s, invalidFormat("invalid mailto address %q", addr)
	}
	if strings.ContainsAny(user, " \t<>[]\"") {
		return nil, s, invalidFormat("invalid character in mailto user %q", user)
	}
	if host == "" || !validChars(host, isHostChar) {
		return nil, s, invalidFormat("invalid mailto host %q", host)
	}
	uri.User = user
	uri.Host = host

	if !hasHeaders {
		return nil, "", nil
	}
	return uriStateHeaders, headers, nil
}

func validChars(s string, allowed func(c byte) bool) bool {
	for i := 0; i < len(s); i++ {
		if !allowed(s[i]) {
			return false
		}
	}
	return true
}

// unreserved / escaped / user-unreserved
func isUserChar(c byte) bool {
	return isAlphaNum(c) || strings.IndexByte("-_.!~*'()%&=+$,;?/", c) >= 0
}

// unreserved / escaped / "&" / "=" / "+" / "$" / ","
func isPasswordChar(c byte) bool {
	return isAlphaNum(c) || strings.IndexByte("-_.!~*'()%&=+$,", c) >= 0
}

func isHostChar(c byte) bool {
	return isAlphaNum(c) || c == '-' || c == '.'
}

// paramchar = param-unreserved / unreserved / escaped
func isParamChar(c byte) bool {
	return isAlphaNum(c) || strings.IndexByte("-_.!~*'()%[]/:&+$", c) >= 0
}

func isGlobalNumberChar(c byte) bool {
	return '0' <= c && c <= '9' || strings.IndexByte("-.()", c) >= 0
}

func isLocalNumberChar(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F' ||
		strings.IndexByte("*#-.()", c) >= 0
}

func validIPv6Reference(s string) bool {
	inner := s[1 : len(s)-1]
	if inner == "" {
		return false
	}
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F' || c == ':' || c == '.') {
			return false
		}
	}
	return strings.Contains(inner, ":")
}
