package sip

import (
	"io"
	"strconv"
	"strings"
)

// Header is a single SIP header.
type Header interface {
	// Name returns underlying header name.
	Name() string
	Value() string
	String() string
	// StringWrite is better way to reuse single buffer
	StringWrite(w io.StringWriter)

	valueStringWrite(w io.StringWriter)
}

func headerString(h Header) string {
	var buffer strings.Builder
	headerStringWrite(h, &buffer)
	return buffer.String()
}

func headerStringWrite(h Header, buffer io.StringWriter) {
	buffer.WriteString(h.Name())
	buffer.WriteString(": ")
	h.valueStringWrite(buffer)
}

func headerValue(h Header) string {
	var buffer strings.Builder
	h.valueStringWrite(&buffer)
	return buffer.String()
}

// NewHeader creates generic type of header
func NewHeader(name, value string) Header {
	return &genericHeader{
		HeaderName: name,
		Contents:   value,
	}
}

// genericHeader is generic struct for unknown headers
type genericHeader struct {
	// The name of the header.
	HeaderName string
	// The contents of the header, including any parameters.
	Contents string
}

func (h *genericHeader) String() string                          { return headerString(h) }
func (h *genericHeader) StringWrite(buffer io.StringWriter)      { headerStringWrite(h, buffer) }
func (h *genericHeader) valueStringWrite(buffer io.StringWriter) { buffer.WriteString(h.Contents) }
func (h *genericHeader) Name() string                            { return h.HeaderName }
func (h *genericHeader) Value() string                           { return h.Contents }

// NameAddr is [display-name] <uri>.
type NameAddr struct {
	// The display name, may be omitted. Stored unescaped.
	DisplayName string
	Address     Uri
}

func (na *NameAddr) String() string {
	var buffer strings.Builder
	na.StringWrite(&buffer)
	return buffer.String()
}

// StringWrite renders name-addr. Display name is always quoted.
func (na *NameAddr) StringWrite(buffer io.StringWriter) {
	if na.DisplayName != "" {
		buffer.WriteString("\"")
		buffer.WriteString(escapeQuoted(na.DisplayName))
		buffer.WriteString("\" ")
	}

	buffer.WriteString("<")
	na.Address.StringWrite(buffer)
	buffer.WriteString(">")
}

// AddressHeader is shared shape of From, To and Contact.
type AddressHeader struct {
	NameAddr
	// Tag is the tag param, empty when absent.
	Tag string
	// Any other parameters present in the header.
	Params HeaderParams
}

func (h *AddressHeader) valueStringWrite(buffer io.StringWriter) {
	if h.Address.Wildcard {
		// Treat the Wildcard URI separately as it must not be contained in < > angle brackets.
		buffer.WriteString("*")
		return
	}

	h.NameAddr.StringWrite(buffer)
	if h.Tag != "" {
		buffer.WriteString(";tag=")
		buffer.WriteString(h.Tag)
	}
	if len(h.Params) > 0 {
		buffer.WriteString(";")
		h.Params.ToStringWrite(';', buffer)
	}
}

// FromHeader introduces SIP 'From' header
type FromHeader struct {
	AddressHeader
}

func (h *FromHeader) Name() string                       { return "From" }
func (h *FromHeader) Value() string                      { return headerValue(h) }
func (h *FromHeader) String() string                     { return headerString(h) }
func (h *FromHeader) StringWrite(buffer io.StringWriter) { headerStringWrite(h, buffer) }

// AsTo converts From into To with same address.
func (h *FromHeader) AsTo() ToHeader {
	return ToHeader{AddressHeader: h.clone()}
}

// ToHeader introduces SIP 'To' header
type ToHeader struct {
	AddressHeader
}

func (h *ToHeader) Name() string                       { return "To" }
func (h *ToHeader) Value() string                      { return headerValue(h) }
func (h *ToHeader) String() string                     { return headerString(h) }
func (h *ToHeader) StringWrite(buffer io.StringWriter) { headerStringWrite(h, buffer) }

// AsFrom converts To into From with same address.
func (h *ToHeader) AsFrom() FromHeader {
	return FromHeader{AddressHeader: h.clone()}
}

// ContactHeader is Contact header representation
type ContactHeader struct {
	AddressHeader
}

func (h *ContactHeader) Name() string                       { return "Contact" }
func (h *ContactHeader) Value() string                      { return headerValue(h) }
func (h *ContactHeader) String() string                     { return headerString(h) }
func (h *ContactHeader) StringWrite(buffer io.StringWriter) { headerStringWrite(h, buffer) }

func (h *AddressHeader) clone() AddressHeader {
	c := AddressHeader{
		NameAddr: NameAddr{DisplayName: h.DisplayName, Address: *h.Address.Clone()},
		Tag:      h.Tag,
	}
	if h.Params != nil {
		c.Params = h.Params.Clone()
	}
	return c
}

// CallIDHeader is a Call-ID header presentation
type CallIDHeader struct {
	LocalID string
	// Host is optional part after '@'
	Host string
}

func (h *CallIDHeader) Name() string                       { return "Call-ID" }
func (h *CallIDHeader) Value() string                      { return headerValue(h) }
func (h *CallIDHeader) String() string                     { return headerString(h) }
func (h *CallIDHeader) StringWrite(buffer io.StringWriter) { headerStringWrite(h, buffer) }

func (h *CallIDHeader) valueStringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.LocalID)
	if h.Host != "" {
		buffer.WriteString("@")
		buffer.WriteString(h.Host)
	}
}

// CSeqHeader is CSeq header
type CSeqHeader struct {
	SeqNo      uint32
	MethodName RequestMethod
}

func (h *CSeqHeader) Name() string                       { return "CSeq" }
func (h *CSeqHeader) Value() string                      { return headerValue(h) }
func (h *CSeqHeader) String() string                     { return headerString(h) }
func (h *CSeqHeader) StringWrite(buffer io.StringWriter) { headerStringWrite(h, buffer) }

func (h *CSeqHeader) valueStringWrite(buffer io.StringWriter) {
	buffer.WriteString(strconv.FormatUint(uint64(h.SeqNo), 10))
	buffer.WriteString(" ")
	buffer.WriteString(string(h.MethodName))
}

// ViaHeader is Via header representation.
type ViaHeader struct {
	// E.g. 'SIP'.
	ProtocolName string
	// E.g. '2.0'.
	ProtocolVersion string
	Transport       string
	Host            string
	Port            int // This is optional
	Params          HeaderParams
}

// Branch returns branch param. It is read from Params so the two can not
// disagree. Empty branch is reported as absent.
func (h *ViaHeader) Branch() (string, bool) {
	branch, ok := h.Params.Get("branch")
	if !ok || branch == "" {
		return "", false
	}
	return branch, true
}

// SentBy returns host[:port]
func (h *ViaHeader) SentBy() string {
	if h.Port > 0 {
		return h.Host + ":" + strconv.Itoa(h.Port)
	}
	return h.Host
}

func (h *ViaHeader) Name() string                       { return "Via" }
func (h *ViaHeader) Value() string                      { return headerValue(h) }
func (h *ViaHeader) String() string                     { return headerString(h) }
func (h *ViaHeader) StringWrite(buffer io.StringWriter) { headerStringWrite(h, buffer) }

func (h *ViaHeader) valueStringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.ProtocolName)
	buffer.WriteString("/")
	buffer.WriteString(h.ProtocolVersion)
	buffer.WriteString("/")
	buffer.WriteString(h.Transport)
	buffer.WriteString(" ")
	buffer.WriteString(h.SentBy())

	if len(h.Params) > 0 {
		buffer.WriteString(";")
		h.Params.ToStringWrite(';', buffer)
	}
}

// Clone returns an exact copy of this ViaHeader.
func (h *ViaHeader) Clone() *ViaHeader {
	c := *h
	if h.Params != nil {
		c.Params = h.Params.Clone()
	}
	return &c
}

// ContentTypeHeader is Content-Type header representation.
type ContentTypeHeader struct {
	Type    string
	Subtype string
	Params  HeaderParams
}

func (h *ContentTypeHeader) Name() string                       { return "Content-Type" }
func (h *ContentTypeHeader) Value() string                      { return headerValue(h) }
func (h *ContentTypeHeader) String() string                     { return headerString(h) }
func (h *ContentTypeHeader) StringWrite(buffer io.StringWriter) { headerStringWrite(h, buffer) }

// MediaType returns type/subtype
func (h *ContentTypeHeader) MediaType() string {
	return h.Type + "/" + h.Subtype
}

func (h *ContentTypeHeader) valueStringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.Type)
	buffer.WriteString("/")
	buffer.WriteString(h.Subtype)
	if len(h.Params) > 0 {
		buffer.WriteString("; ")
		h.Params.toStringWrite("; ", buffer)
	}
}

// MaxForwardsHeader is Max-Forwards header representation
type MaxForwardsHeader uint32

func (h *MaxForwardsHeader) Name() string                       { return "Max-Forwards" }
func (h *MaxForwardsHeader) Value() string                      { return headerValue(h) }
func (h *MaxForwardsHeader) String() string                     { return headerString(h) }
func (h *MaxForwardsHeader) StringWrite(buffer io.StringWriter) { headerStringWrite(h, buffer) }
func (h *MaxForwardsHeader) valueStringWrite(buffer io.StringWriter) {
	buffer.WriteString(strconv.FormatUint(uint64(*h), 10))
}

// Val returns numeric value.
func (h MaxForwardsHeader) Val() uint32 { return uint32(h) }

// ExpiresHeader is Expires header representation
type ExpiresHeader uint32

func (h *ExpiresHeader) Name() string                       { return "Expires" }
func (h *ExpiresHeader) Value() string                      { return headerValue(h) }
func (h *ExpiresHeader) String() string                     { return headerString(h) }
func (h *ExpiresHeader) StringWrite(buffer io.StringWriter) { headerStringWrite(h, buffer) }
func (h *ExpiresHeader) valueStringWrite(buffer io.StringWriter) {
	buffer.WriteString(strconv.FormatUint(uint64(*h), 10))
}

// MinExpiresHeader is Min-Expires header representation
type MinExpiresHeader uint32

func (h *MinExpiresHeader) Name() string                       { return "Min-Expires" }
func (h *MinExpiresHeader) Value() string                      { return headerValue(h) }
func (h *MinExpiresHeader) String() string                     { return headerString(h) }
func (h *MinExpiresHeader) StringWrite(buffer io.StringWriter) { headerStringWrite(h, buffer) }
func (h *MinExpiresHeader) valueStringWrite(buffer io.StringWriter) {
	buffer.WriteString(strconv.FormatUint(uint64(*h), 10))
}

// ContentLengthHeader is Content-Length header representation
type ContentLengthHeader uint32

func (h *ContentLengthHeader) Name() string                       { return "Content-Length" }
func (h *ContentLengthHeader) Value() string                      { return headerValue(h) }
func (h *ContentLengthHeader) String() string                     { return headerString(h) }
func (h *ContentLengthHeader) StringWrite(buffer io.StringWriter) { headerStringWrite(h, buffer) }
func (h *ContentLengthHeader) valueStringWrite(buffer io.StringWriter) {
	buffer.WriteString(strconv.FormatUint(uint64(*h), 10))
}

// UserAgentHeader is User-Agent header representation.
type UserAgentHeader string

func (h *UserAgentHeader) Name() string                            { return "User-Agent" }
func (h *UserAgentHeader) Value() string                           { return string(*h) }
func (h *UserAgentHeader) String() string                          { return headerString(h) }
func (h *UserAgentHeader) StringWrite(buffer io.StringWriter)      { headerStringWrite(h, buffer) }
func (h *UserAgentHeader) valueStringWrite(buffer io.StringWriter) { buffer.WriteString(string(*h)) }

// ServerHeader is Server header representation.
type ServerHeader string

func (h *ServerHeader) Name() string                            { return "Server" }
func (h *ServerHeader) Value() string                           { return string(*h) }
func (h *ServerHeader) String() string                          { return headerString(h) }
func (h *ServerHeader) StringWrite(buffer io.StringWriter)      { headerStringWrite(h, buffer) }
func (h *ServerHeader) valueStringWrite(buffer io.StringWriter) { buffer.WriteString(string(*h)) }

func tokenListWrite(list []string, buffer io.StringWriter) {
	for i, t := range list {
		if i > 0 {
			buffer.WriteString(", ")
		}
		buffer.WriteString(t)
	}
}

// AllowHeader is Allow header representation.
type AllowHeader []string

func (h *AllowHeader) Name() string                            { return "Allow" }
func (h *AllowHeader) Value() string                           { return headerValue(h) }
func (h *AllowHeader) String() string                          { return headerString(h) }
func (h *AllowHeader) StringWrite(buffer io.StringWriter)      { headerStringWrite(h, buffer) }
func (h *AllowHeader) valueStringWrite(buffer io.StringWriter) { tokenListWrite(*h, buffer) }

// RequireHeader is Require header representation.
type RequireHeader []string

func (h *RequireHeader) Name() string                            { return "Require" }
func (h *RequireHeader) Value() string                           { return headerValue(h) }
func (h *RequireHeader) String() string                          { return headerString(h) }
func (h *RequireHeader) StringWrite(buffer io.StringWriter)      { headerStringWrite(h, buffer) }
func (h *RequireHeader) valueStringWrite(buffer io.StringWriter) { tokenListWrite(*h, buffer) }

// SupportedHeader is Supported header representation.
type SupportedHeader []string

func (h *SupportedHeader) Name() string                            { return "Supported" }
func (h *SupportedHeader) Value() string                           { return headerValue(h) }
func (h *SupportedHeader) String() string                          { return headerString(h) }
func (h *SupportedHeader) StringWrite(buffer io.StringWriter)      { headerStringWrite(h, buffer) }
func (h *SupportedHeader) valueStringWrite(buffer io.StringWriter) { tokenListWrite(*h, buffer) }

func compactHeaderName(full string) string {
	switch full {
	case "Via":
		return "v"
	case "From":
		return "f"
	case "To":
		return "t"
	case "Call-ID":
		return "i"
	case "Content-Type":
		return "c"
	case "Content-Length":
		return "l"
	case "Contact":
		return "m"
	case "Supported":
		return "k"
	default:
		return full
	}
}
