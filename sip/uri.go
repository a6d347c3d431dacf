package sip

import (
	"io"
	"strconv"
	"strings"
)

type Scheme string

const (
	SCHEME_SIP    Scheme = "sip"
	SCHEME_SIPS   Scheme = "sips"
	SCHEME_TEL    Scheme = "tel"
	SCHEME_MAILTO Scheme = "mailto"
)

// Uri is parsed form of
// sip:user:password@host:port;uri-parameters?headers
// tel:number;params
// mailto:user@host?headers
//
// For tel: the subscriber number is stored in User. Tel params such as
// phone-context, isub and postd stay in UriParams.
type Uri struct {
	// The scheme part of the URI
	Scheme Scheme

	// True if and only if the URI is a SIPS URI.
	Encrypted bool
	// Wildcard is only set for Contact: *
	Wildcard bool

	// The user part of the URI: the 'joe' in sip:joe@bloggs.com
	User string

	// The password field of the URI. This is represented in the URI as joe:hunter2@bloggs.com.
	// Note that if a URI has a password field, it *must* have a user field as well.
	Password string

	// The host part of the URI. This can be a domain, or a string representation of an IP address.
	// IPv6 hosts keep their brackets.
	Host string

	// The port part of the URI. Zero means absent.
	Port int

	// Any parameters associated with the URI.
	// These appear as a semicolon-separated list of key=value pairs following the host[:port] part.
	UriParams HeaderParams

	// Any headers to be included on requests constructed from this URI.
	// These appear as a '&'-separated list at the end of the URI, introduced by '?'.
	Headers HeaderParams
}

// Generates the string representation of a Uri struct.
func (uri *Uri) String() string {
	var buffer strings.Builder
	uri.StringWrite(&buffer)

	return buffer.String()
}

// StringWrite writes uri string to buffer
func (uri *Uri) StringWrite(buffer io.StringWriter) {
	if uri.Wildcard {
		buffer.WriteString("*")
		return
	}

	// Compulsory protocol identifier.
	buffer.WriteString(string(uri.Scheme))
	buffer.WriteString(":")

	switch uri.Scheme {
	case SCHEME_TEL:
		buffer.WriteString(uri.User)
	case SCHEME_MAILTO:
		buffer.WriteString(uri.User)
		buffer.WriteString("@")
		buffer.WriteString(uri.Host)
	default:
		// Optional userinfo part.
		if uri.User != "" {
			buffer.WriteString(uri.User)
			if uri.Password != "" {
				buffer.WriteString(":")
				buffer.WriteString(uri.Password)
			}
			buffer.WriteString("@")
		}

		// Compulsory hostname.
		buffer.WriteString(uri.Host)

		// Optional port number.
		if uri.Port > 0 {
			buffer.WriteString(":")
			buffer.WriteString(strconv.Itoa(uri.Port))
		}
	}

	for _, kv := range uri.UriParams {
		buffer.WriteString(";")
		buffer.WriteString(kv.K)
		if kv.HasValue {
			buffer.WriteString("=")
			buffer.WriteString(kv.V)
		}
	}

	for i, kv := range uri.Headers {
		if i == 0 {
			buffer.WriteString("?")
		} else {
			buffer.WriteString("&")
		}
		buffer.WriteString(kv.K)
		buffer.WriteString("=")
		buffer.WriteString(kv.V)
	}
}

// Clone
func (uri *Uri) Clone() *Uri {
	c := *uri
	if uri.UriParams != nil {
		c.UriParams = uri.UriParams.Clone()
	}
	if uri.Headers != nil {
		c.Headers = uri.Headers.Clone()
	}
	return &c
}

// IsEncrypted returns true if uri is SIPS uri
func (uri *Uri) IsEncrypted() bool {
	return uri.Encrypted
}

// Endpoint is uri user identifier. user@host[:port]
func (uri *Uri) Endpoint() string {
	if uri.Scheme == SCHEME_TEL {
		return ""
	}
	addr := uri.User + "@" + uri.Host
	if uri.Port > 0 {
		addr += ":" + strconv.Itoa(uri.Port)
	}
	return addr
}

// HostPort represents host:port part
func (uri *Uri) HostPort() string {
	if uri.Scheme == SCHEME_TEL {
		return ""
	}
	if uri.Port == 0 {
		return uri.Host
	}
	return uri.Host + ":" + strconv.Itoa(uri.Port)
}
