package sip

import (
	"net"
	"strings"
)

// ParseViaHeader parses single Via value.
//
// via-parm = sent-protocol LWS sent-by *( SEMI via-params )
// sent-protocol = protocol-name SLASH protocol-version SLASH transport
//
// Transport is an open token set, branch is not required and trailing
// comments in parentheses are dropped.
func ParseViaHeader(headerText string, h *ViaHeader) error {
	*h = ViaHeader{}
	str := stripComments(headerText)
	if strings.TrimSpace(str) == "" {
		return emptyMessage("empty Via header")
	}

	state := viaStateProtocol
	var err error
	for state != nil {
		state, str, err = state(h, str)
		if err != nil {
			return err
		}
	}
	return nil
}

// ParseViaHeaders parses comma separated Via values.
// Note that although Via headers may contain a comma-separated list, RFC 3261 makes it clear that
// these should not be treated as separate logical Via headers, but as multiple values on a single
// Via header.
func ParseViaHeaders(headerText string) ([]*ViaHeader, error) {
	values, err := splitTopLevel(stripComments(headerText), ',')
	if err != nil {
		return nil, err
	}

	vias := make([]*ViaHeader, 0, len(values))
	for _, v := range values {
		h := &ViaHeader{}
		if err := ParseViaHeader(v, h); err != nil {
			return nil, err
		}
		vias = append(vias, h)
	}
	return vias, nil
}

type viaFSM func(h *ViaHeader, s string) (viaFSM, string, error)

func viaStateProtocol(h *ViaHeader, s string) (viaFSM, string, error) {
	ind := strings.IndexByte(s, '/')
	if ind < 0 {
		return nil, s, invalidFormat("malformed protocol name in Via header %q", s)
	}
	h.ProtocolName = strings.TrimSpace(s[:ind])
	if !isToken(h.ProtocolName) {
		return nil, s, invalidFormat("malformed protocol name in Via header %q", s)
	}
	return viaStateProtocolVersion, s[ind+1:], nil
}

func viaStateProtocolVersion(h *ViaHeader, s string) (viaFSM, string, error) {
	ind := strings.IndexByte(s, '/')
	if ind < 0 {
		return nil, s, invalidFormat("malformed protocol version in Via header %q", s)
	}
	h.ProtocolVersion = strings.TrimSpace(s[:ind])
	if !isToken(h.ProtocolVersion) {
		return nil, s, invalidFormat("malformed protocol version in Via header %q", s)
	}
	return viaStateProtocolTransport, s[ind+1:], nil
}

func viaStateProtocolTransport(h *ViaHeader, s string) (viaFSM, string, error) {
	s = strings.TrimLeft(s, abnfWs)
	ind := strings.IndexAny(s, abnfWs)
	if ind < 0 {
		return nil, s, invalidFormat("malformed transport in Via header %q", s)
	}
	h.Transport = s[:ind]
	if !isToken(h.Transport) {
		return nil, s, invalidFormat("malformed transport in Via header %q", s)
	}
	return viaStateHost, strings.TrimLeft(s[ind:], abnfWs), nil
}

// viaStateHost reads sent-by, trying IPv6 reference, IPv4 and hostname.
func viaStateHost(h *ViaHeader, s string) (viaFSM, string, error) {
	hostPort, rest, hasParams := strings.Cut(s, ";")
	hostPort = strings.TrimSpace(hostPort)

	host, portText, err := splitViaHostPort(hostPort)
	if err != nil {
		return nil, s, err
	}
	h.Host = host

	if portText != "" {
		if h.Port, err = parsePort(portText); err != nil {
			return nil, s, err
		}
	}

	if !hasParams {
		return nil, "", nil
	}
	return viaStateParams, rest, nil
}

func splitViaHostPort(s string) (host string, port string, err error) {
	switch {
	case strings.HasPrefix(s, "["):
		end := strings.IndexByte(s, ']')
		if end < 0 || !validIPv6Reference(s[:end+1]) {
			return "", "", invalidFormat("invalid IPv6 reference in Via header %q", s)
		}
		host, s = s[:end+1], s[end+1:]
	default:
		host, s, _ = strings.Cut(s, ":")
		host = strings.TrimSpace(host)
		if ip := net.ParseIP(host); ip == nil || ip.To4() == nil {
			if host == "" || !validChars(host, isHostChar) {
				return "", "", invalidFormat("invalid host in Via header %q", host)
			}
		}
		if s == "" {
			return host, "", nil
		}
		return host, strings.TrimSpace(s), nil
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return host, "", nil
	}
	if s[0] != ':' {
		return "", "", invalidFormat("invalid sent-by in Via header %q", s)
	}
	return host, strings.TrimSpace(s[1:]), nil
}

func viaStateParams(h *ViaHeader, s string) (viaFSM, string, error) {
	h.Params = NewParams()
	return nil, "", UnmarshalHeaderParams(s, ';', &h.Params)
}

// stripComments drops RFC 3261 comments "( ... )" found outside quotes.
func stripComments(s string) string {
	if !strings.Contains(s, "(") {
		return s
	}

	var b strings.Builder
	depth := 0
	inQuotes := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuotes:
			if c == '\\' && i+1 < len(s) {
				b.WriteByte(c)
				i++
				c = s[i]
			} else if c == '"' {
				inQuotes = false
			}
		case c == '"' && depth == 0:
			inQuotes = true
		case c == '(':
			depth++
			continue
		case c == ')' && depth > 0:
			depth--
			continue
		}

		if depth == 0 {
			b.WriteByte(c)
		}
	}
	return b.String()
}
