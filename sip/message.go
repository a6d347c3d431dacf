package sip

import (
	"io"
	"strings"
)

type RequestMethod string

func (r RequestMethod) String() string { return string(r) }

// StatusCode - response status code: 1xx - 6xx
type StatusCode int

// method names are defined here as constants for convenience.
const (
	INVITE    RequestMethod = "INVITE"
	ACK       RequestMethod = "ACK"
	CANCEL    RequestMethod = "CANCEL"
	BYE       RequestMethod = "BYE"
	REGISTER  RequestMethod = "REGISTER"
	OPTIONS   RequestMethod = "OPTIONS"
	SUBSCRIBE RequestMethod = "SUBSCRIBE"
	NOTIFY    RequestMethod = "NOTIFY"
	REFER     RequestMethod = "REFER"
	INFO      RequestMethod = "INFO"
	MESSAGE   RequestMethod = "MESSAGE"
	PRACK     RequestMethod = "PRACK"
	UPDATE    RequestMethod = "UPDATE"
	PUBLISH   RequestMethod = "PUBLISH"
)

// Message is parsed Request or Response.
type Message interface {
	// StartLine returns message start line.
	StartLine() string
	// StartLineWrite writes message start line.
	StartLineWrite(io.StringWriter)
	// String returns string representation of SIP message in RFC 3261 form.
	String() string
	// StringWrite is same as String but lets you to provide writter and reduce allocations
	StringWrite(io.StringWriter)
	// RenderWrite writes message with render options.
	RenderWrite(io.StringWriter, RenderOptions)
	// Short returns short string info about message.
	Short() string
	// SipVersion returns SIP protocol version, always 2.0
	SipVersion() string

	// Headers returns all message headers in render order.
	Headers() []Header
	// GetHeaders returns headers with given name, case insensitive.
	GetHeaders(name string) []Header
	// GetHeader returns first header with given name or nil.
	GetHeader(name string) Header

	/* Helper getters for mandatory headers */
	// Via returns the top 'Via' header field.
	Via() *ViaHeader
	Vias() []*ViaHeader
	MaxForwards() *MaxForwardsHeader
	From() *FromHeader
	To() *ToHeader
	CallID() *CallIDHeader
	CSeq() *CSeqHeader

	/* Optional headers */
	Contacts() []*ContactHeader
	ContentType() (*ContentTypeHeader, bool)
	ContentLength() (*ContentLengthHeader, bool)
	Expires() (*ExpiresHeader, bool)
	MinExpires() (*MinExpiresHeader, bool)
	UserAgent() (*UserAgentHeader, bool)
	Server() (*ServerHeader, bool)
	Allow() (AllowHeader, bool)
	Require() (RequireHeader, bool)
	Supported() (SupportedHeader, bool)
	HistoryInfo() (*HistoryInfoHeader, bool)

	// Body returns message body.
	Body() []byte
}

// RenderOptions control message rendering.
type RenderOptions struct {
	// Compact uses compact header names where they exist.
	Compact bool
}

// MessageData holds fields shared by Request and Response.
// It is filled only by builders and is not changed after build.
type MessageData struct {
	sipVersion string

	vias          []*ViaHeader
	maxForwards   *MaxForwardsHeader
	from          *FromHeader
	to            *ToHeader
	callID        *CallIDHeader
	cseq          *CSeqHeader
	contacts      []*ContactHeader
	contentType   *ContentTypeHeader
	contentLength *ContentLengthHeader
	expires       *ExpiresHeader
	minExpires    *MinExpiresHeader
	userAgent     *UserAgentHeader
	server        *ServerHeader
	allow         AllowHeader
	require       RequireHeader
	supported     SupportedHeader
	historyInfo   *HistoryInfoHeader

	// unrecognized headers in order of appearance
	others []Header

	body []byte
}

func (msg *MessageData) SipVersion() string { return msg.sipVersion }

func (msg *MessageData) Via() *ViaHeader {
	if len(msg.vias) == 0 {
		return nil
	}
	return msg.vias[0]
}

func (msg *MessageData) Vias() []*ViaHeader              { return msg.vias }
func (msg *MessageData) MaxForwards() *MaxForwardsHeader { return msg.maxForwards }
func (msg *MessageData) From() *FromHeader               { return msg.from }
func (msg *MessageData) To() *ToHeader                   { return msg.to }
func (msg *MessageData) CallID() *CallIDHeader           { return msg.callID }
func (msg *MessageData) CSeq() *CSeqHeader               { return msg.cseq }
func (msg *MessageData) Contacts() []*ContactHeader      { return msg.contacts }
func (msg *MessageData) Body() []byte                    { return msg.body }

// Contact returns first Contact header
func (msg *MessageData) Contact() (*ContactHeader, bool) {
	if len(msg.contacts) == 0 {
		return nil, false
	}
	return msg.contacts[0], true
}

func (msg *MessageData) ContentType() (*ContentTypeHeader, bool) {
	return msg.contentType, msg.contentType != nil
}

func (msg *MessageData) ContentLength() (*ContentLengthHeader, bool) {
	return msg.contentLength, msg.contentLength != nil
}

func (msg *MessageData) Expires() (*ExpiresHeader, bool) {
	return msg.expires, msg.expires != nil
}

func (msg *MessageData) MinExpires() (*MinExpiresHeader, bool) {
	return msg.minExpires, msg.minExpires != nil
}

func (msg *MessageData) UserAgent() (*UserAgentHeader, bool) {
	return msg.userAgent, msg.userAgent != nil
}

func (msg *MessageData) Server() (*ServerHeader, bool) {
	return msg.server, msg.server != nil
}

func (msg *MessageData) Allow() (AllowHeader, bool) {
	return msg.allow, msg.allow != nil
}

func (msg *MessageData) Require() (RequireHeader, bool) {
	return msg.require, msg.require != nil
}

func (msg *MessageData) Supported() (SupportedHeader, bool) {
	return msg.supported, msg.supported != nil
}

func (msg *MessageData) HistoryInfo() (*HistoryInfoHeader, bool) {
	return msg.historyInfo, msg.historyInfo != nil
}

// Headers returns all headers in the order they are rendered:
// Via, From, To, Call-ID, CSeq, Max-Forwards, Contact, optional headers
// and then unrecognized headers as they appeared.
func (msg *MessageData) Headers() []Header {
	hdrs := make([]Header, 0, len(msg.vias)+len(msg.contacts)+len(msg.others)+16)
	for _, v := range msg.vias {
		hdrs = append(hdrs, v)
	}

	if msg.from != nil {
		hdrs = append(hdrs, msg.from)
	}
	if msg.to != nil {
		hdrs = append(hdrs, msg.to)
	}
	if msg.callID != nil {
		hdrs = append(hdrs, msg.callID)
	}
	if msg.cseq != nil {
		hdrs = append(hdrs, msg.cseq)
	}
	if msg.maxForwards != nil {
		hdrs = append(hdrs, msg.maxForwards)
	}
	for _, c := range msg.contacts {
		hdrs = append(hdrs, c)
	}

	if msg.contentType != nil {
		hdrs = append(hdrs, msg.contentType)
	}
	if msg.contentLength != nil {
		hdrs = append(hdrs, msg.contentLength)
	}
	if msg.expires != nil {
		hdrs = append(hdrs, msg.expires)
	}
	if msg.minExpires != nil {
		hdrs = append(hdrs, msg.minExpires)
	}
	if msg.userAgent != nil {
		hdrs = append(hdrs, msg.userAgent)
	}
	if msg.allow != nil {
		hdrs = append(hdrs, &msg.allow)
	}
	if msg.server != nil {
		hdrs = append(hdrs, msg.server)
	}
	if msg.require != nil {
		hdrs = append(hdrs, &msg.require)
	}
	if msg.supported != nil {
		hdrs = append(hdrs, &msg.supported)
	}
	if msg.historyInfo != nil {
		hdrs = append(hdrs, msg.historyInfo)
	}

	return append(hdrs, msg.others...)
}

// GetHeaders returns list of headers with same name
// Headers are pointers, do not change them.
func (msg *MessageData) GetHeaders(name string) []Header {
	var hdrs []Header
	nameLower := HeaderToLower(name)
	for _, h := range msg.Headers() {
		if HeaderToLower(h.Name()) == nameLower {
			hdrs = append(hdrs, h)
		}
	}
	return hdrs
}

// GetHeader returns Header if exists, otherwise nil is returned
func (msg *MessageData) GetHeader(name string) Header {
	nameLower := HeaderToLower(name)
	for _, h := range msg.Headers() {
		if HeaderToLower(h.Name()) == nameLower {
			return h
		}
	}
	return nil
}

// headersWrite writes every header line terminated by CRLF.
func (msg *MessageData) headersWrite(buffer io.StringWriter, opts RenderOptions) {
	for _, h := range msg.Headers() {
		name := h.Name()
		if opts.Compact {
			name = compactHeaderName(name)
		}
		buffer.WriteString(name)
		buffer.WriteString(": ")
		h.valueStringWrite(buffer)
		buffer.WriteString("\r\n")
	}
}

// messageWrite is shared serializer of Request and Response.
func messageWrite(startLine func(io.StringWriter), msg *MessageData, buffer io.StringWriter, opts RenderOptions) {
	// 	The start-line, each message-header line, and the empty line MUST be
	//  terminated by a carriage-return line-feed sequence (CRLF).  Note that
	//  the empty line MUST be present even if the message-body is not.
	startLine(buffer)
	buffer.WriteString("\r\n")
	msg.headersWrite(buffer, opts)
	buffer.WriteString("\r\n")
	if len(msg.body) > 0 {
		buffer.WriteString(string(msg.body))
	}
}

func messageString(m Message) string {
	var buffer strings.Builder
	m.StringWrite(&buffer)
	return buffer.String()
}
