package sip

import (
	"strings"
)

// ParseNameAddr parses [display-name] <uri> or bare uri.
// See RFC 3261 section 20.10 for details on parsing an address.
func ParseNameAddr(text string, na *NameAddr) error {
	return UriParser{}.ParseNameAddr(text, na)
}

// ParseNameAddr parses [display-name] <uri> or bare uri.
func (p UriParser) ParseNameAddr(text string, na *NameAddr) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return emptyMessage("empty address")
	}

	rest, err := p.cutNameAddr(text, na, false, false)
	if err != nil {
		return err
	}
	if strings.TrimSpace(rest) != "" {
		return invalidFormat("unexpected %q after address", rest)
	}
	return nil
}

// cutNameAddr reads name-addr from start of s and returns what follows it.
// name-addr      =  [ display-name ] LAQUOT addr-spec RAQUOT
// addr-spec      =  SIP-URI / SIPS-URI / absoluteURI
// Bare addr-spec is accepted unless requireBrackets is set. With bareParams
// bare uri ends at first ';' and the rest are header params.
func (p UriParser) cutNameAddr(s string, na *NameAddr, requireBrackets bool, bareParams bool) (string, error) {
	*na = NameAddr{}

	if strings.HasPrefix(s, "\"") {
		end := closingQuote(s)
		if end < 0 {
			return s, invalidFormat("unterminated display name in %q", s)
		}
		name, _ := unquote(s[:end+1])
		na.DisplayName = name

		rest := strings.TrimLeft(s[end+1:], abnfWs)
		if !strings.HasPrefix(rest, "<") {
			return s, invalidFormat("missing angle brackets after display name in %q", s)
		}
		return p.cutBracketUri(rest, na)
	}

	// https://datatracker.ietf.org/doc/html/rfc3261#section-20.10
	// When the header field value contains a display name, the URI
	// including all URI parameters is enclosed in "<" and ">".  If no "<"
	// and ">" are present, all parameters after the URI are header
	// parameters, not URI parameters.
	// Unquoted display name can not hold ';', so '<' after it belongs to params
	if lt := strings.IndexByte(s, '<'); lt >= 0 && !strings.Contains(s[:lt], ";") {
		name := strings.TrimSpace(s[:lt])
		if strings.ContainsAny(name, "\"<>;") {
			return s, invalidFormat("invalid display name %q", name)
		}
		na.DisplayName = name
		return p.cutBracketUri(s[lt:], na)
	}

	if requireBrackets {
		return s, invalidFormat("missing angle brackets around uri in %q", s)
	}

	uriText, rest := s, ""
	if bareParams {
		if semi := strings.IndexByte(s, ';'); semi >= 0 {
			uriText, rest = s[:semi], s[semi:]
		}
	}
	uriText = strings.TrimSpace(uriText)
	if err := p.ParseUri(uriText, &na.Address); err != nil {
		return s, NewInvalidUriError(uriText, err)
	}
	return rest, nil
}

// cutBracketUri parses <uri> at start of s.
func (p UriParser) cutBracketUri(s string, na *NameAddr) (string, error) {
	end := strings.IndexByte(s, '>')
	if end < 0 {
		return s, invalidFormat("invalid uri, missing end bracket in %q", s)
	}

	uriText := strings.TrimSpace(s[1:end])
	if uriText == "" {
		return s, emptyMessage("no uri present")
	}
	if err := p.ParseUri(uriText, &na.Address); err != nil {
		return s, NewInvalidUriError(uriText, err)
	}
	return s[end+1:], nil
}

// closingQuote returns index of the quote closing quoted string at s[0].
func closingQuote(s string) int {
	escaped := false
	for i := 1; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == '"':
			return i
		}
	}
	return -1
}

// parseAddressHeader is shared by From, To and Contact.
func (p UriParser) parseAddressHeader(headerText string, allowBare bool, h *AddressHeader) error {
	headerText = strings.TrimSpace(headerText)
	if headerText == "" {
		return emptyMessage("empty address header")
	}

	*h = AddressHeader{}
	rest, err := p.cutNameAddr(headerText, &h.NameAddr, !allowBare, true)
	if err != nil {
		return err
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil
	}
	if rest[0] != ';' {
		return invalidFormat("unexpected %q after address", rest)
	}

	h.Params = NewParams()
	if err := UnmarshalHeaderParams(rest[1:], ';', &h.Params); err != nil {
		return err
	}

	// Empty tag is same as no tag
	if tag, _, ok := h.Params.Lookup("tag"); ok {
		h.Tag = tag
		h.Params.Remove("tag")
	}
	return nil
}

// ParseFromHeader parses From header value.
// Uri must be enclosed in angle brackets.
func ParseFromHeader(headerText string, h *FromHeader) error {
	return UriParser{}.ParseFromHeader(headerText, h)
}

// ParseFromHeader parses From header value.
func (p UriParser) ParseFromHeader(headerText string, h *FromHeader) error {
	return p.parseAddressHeader(headerText, false, &h.AddressHeader)
}

// ParseToHeader parses To header value.
// Uri must be enclosed in angle brackets.
func ParseToHeader(headerText string, h *ToHeader) error {
	return UriParser{}.ParseToHeader(headerText, h)
}

// ParseToHeader parses To header value.
func (p UriParser) ParseToHeader(headerText string, h *ToHeader) error {
	return p.parseAddressHeader(headerText, false, &h.AddressHeader)
}

// ParseContactHeader parses single Contact value. Bare uri and '*' are allowed.
func ParseContactHeader(headerText string, h *ContactHeader) error {
	return UriParser{}.ParseContactHeader(headerText, h)
}

// ParseContactHeader parses single Contact value.
func (p UriParser) ParseContactHeader(headerText string, h *ContactHeader) error {
	if strings.TrimSpace(headerText) == "*" {
		*h = ContactHeader{}
		h.Address = Uri{Wildcard: true, Host: "*"}
		return nil
	}
	return p.parseAddressHeader(headerText, true, &h.AddressHeader)
}

// ParseContactHeaders parses comma separated Contact values.
func (p UriParser) ParseContactHeaders(headerText string) ([]*ContactHeader, error) {
	values, err := splitTopLevel(headerText, ',')
	if err != nil {
		return nil, err
	}

	contacts := make([]*ContactHeader, 0, len(values))
	for _, v := range values {
		h := &ContactHeader{}
		if err := p.ParseContactHeader(v, h); err != nil {
			return nil, err
		}
		contacts = append(contacts, h)
	}
	return contacts, nil
}
