package sip

import (
	"slices"
)

// Field names used for error tracking and missing field reports.
const (
	FieldSipVersion    = "SIP-Version"
	FieldMethod        = "Method"
	FieldRequestURI    = "Request-URI"
	FieldStatusCode    = "Status-Code"
	FieldVia           = "Via"
	FieldMaxForwards   = "Max-Forwards"
	FieldFrom          = "From"
	FieldTo            = "To"
	FieldCallID        = "Call-ID"
	FieldCSeq          = "CSeq"
	FieldContact       = "Contact"
	FieldContentType   = "Content-Type"
	FieldContentLength = "Content-Length"
	FieldExpires       = "Expires"
	FieldMinExpires    = "Min-Expires"
	FieldUserAgent     = "User-Agent"
	FieldServer        = "Server"
	FieldHistoryInfo   = "History-Info"
)

// messageBuilder accumulates fields and errors of a message.
// Errors never stop building, every header is attempted and all
// problems are returned together from Build.
type messageBuilder struct {
	data MessageData

	errs []error
	// fields that already reported an error
	failed map[string]struct{}
}

// AddError records error for field. Later missing field check skips it.
func (b *messageBuilder) AddError(field string, err error) {
	if b.failed == nil {
		b.failed = make(map[string]struct{})
	}
	b.failed[field] = struct{}{}
	b.errs = append(b.errs, err)
}

// Errors returns errors recorded so far.
func (b *messageBuilder) Errors() []error {
	return b.errs
}

func (b *messageBuilder) hasFailed(field string) bool {
	_, ok := b.failed[field]
	return ok
}

func (b *messageBuilder) duplicate(field string) {
	b.AddError(field, invalidFormat("duplicate %s header", field))
}

// SetSipVersion sets version from start line. Only 2.0 is accepted.
func (b *messageBuilder) SetSipVersion(v string) {
	if v != Version {
		b.AddError(FieldSipVersion, invalidFormat("unsupported SIP version %q", v))
		return
	}
	b.data.sipVersion = v
}

// AddVia appends Via values in order of appearance.
func (b *messageBuilder) AddVia(vias ...*ViaHeader) {
	b.data.vias = append(b.data.vias, vias...)
}

func (b *messageBuilder) SetMaxForwards(v uint32) {
	if b.data.maxForwards != nil {
		b.duplicate(FieldMaxForwards)
		return
	}
	h := MaxForwardsHeader(v)
	b.data.maxForwards = &h
}

func (b *messageBuilder) SetFrom(h *FromHeader) {
	if b.data.from != nil {
		b.duplicate(FieldFrom)
		return
	}
	b.data.from = h
}

func (b *messageBuilder) SetTo(h *ToHeader) {
	if b.data.to != nil {
		b.duplicate(FieldTo)
		return
	}
	b.data.to = h
}

func (b *messageBuilder) SetCallID(h *CallIDHeader) {
	if b.data.callID != nil {
		b.duplicate(FieldCallID)
		return
	}
	b.data.callID = h
}

func (b *messageBuilder) SetCSeq(h *CSeqHeader) {
	if b.data.cseq != nil {
		b.duplicate(FieldCSeq)
		return
	}
	b.data.cseq = h
}

// AddContact appends Contact values in order of appearance.
func (b *messageBuilder) AddContact(contacts ...*ContactHeader) {
	b.data.contacts = append(b.data.contacts, contacts...)
}

func (b *messageBuilder) SetContentType(h *ContentTypeHeader) {
	if b.data.contentType != nil {
		b.duplicate(FieldContentType)
		return
	}
	b.data.contentType = h
}

func (b *messageBuilder) SetContentLength(v uint32) {
	if b.data.contentLength != nil {
		b.duplicate(FieldContentLength)
		return
	}
	h := ContentLengthHeader(v)
	b.data.contentLength = &h
}

func (b *messageBuilder) SetExpires(v uint32) {
	if b.data.expires != nil {
		b.duplicate(FieldExpires)
		return
	}
	h := ExpiresHeader(v)
	b.data.expires = &h
}

func (b *messageBuilder) SetMinExpires(v uint32) {
	if b.data.minExpires != nil {
		b.duplicate(FieldMinExpires)
		return
	}
	h := MinExpiresHeader(v)
	b.data.minExpires = &h
}

func (b *messageBuilder) SetUserAgent(v string) {
	if b.data.userAgent != nil {
		b.duplicate(FieldUserAgent)
		return
	}
	h := UserAgentHeader(v)
	b.data.userAgent = &h
}

func (b *messageBuilder) SetServer(v string) {
	if b.data.server != nil {
		b.duplicate(FieldServer)
		return
	}
	h := ServerHeader(v)
	b.data.server = &h
}

// AddAllow accumulates methods over multiple Allow lines.
func (b *messageBuilder) AddAllow(list ...string) {
	b.data.allow = append(b.data.allow, list...)
	if b.data.allow == nil {
		b.data.allow = AllowHeader{}
	}
}

func (b *messageBuilder) AddRequire(list ...string) {
	b.data.require = append(b.data.require, list...)
	if b.data.require == nil {
		b.data.require = RequireHeader{}
	}
}

func (b *messageBuilder) AddSupported(list ...string) {
	b.data.supported = append(b.data.supported, list...)
	if b.data.supported == nil {
		b.data.supported = SupportedHeader{}
	}
}

// AddHistoryInfo merges entries of multiple History-Info lines,
// keeping them ordered by index.
func (b *messageBuilder) AddHistoryInfo(h *HistoryInfoHeader) {
	if b.data.historyInfo == nil {
		b.data.historyInfo = &HistoryInfoHeader{}
	}
	entries := append(b.data.historyInfo.Entries, h.Entries...)
	slices.SortStableFunc(entries, func(a, b HistoryInfoEntry) int {
		return CompareHistoryIndex(a.Index, b.Index)
	})
	b.data.historyInfo.Entries = entries
}

// AddHeader keeps unrecognized header verbatim.
func (b *messageBuilder) AddHeader(h Header) {
	b.data.others = append(b.data.others, h)
}

// SetBody sets message body. Empty body is treated as absent.
func (b *messageBuilder) SetBody(body []byte) {
	if len(body) == 0 {
		b.data.body = nil
		return
	}
	b.data.body = body
}

func (b *messageBuilder) checkMandatory() {
	missing := func(field string, absent bool) {
		if absent && !b.hasFailed(field) {
			b.errs = append(b.errs, NewMissingFieldError(field))
		}
	}

	missing(FieldSipVersion, b.data.sipVersion == "")
	missing(FieldVia, len(b.data.vias) == 0)
	missing(FieldMaxForwards, b.data.maxForwards == nil)
	missing(FieldFrom, b.data.from == nil)
	missing(FieldTo, b.data.to == nil)
	missing(FieldCallID, b.data.callID == nil)
	missing(FieldCSeq, b.data.cseq == nil)
}

func (b *messageBuilder) result() error {
	switch len(b.errs) {
	case 0:
		return nil
	case 1:
		return b.errs[0]
	}
	return &MultipleError{Errors: slices.Clone(b.errs)}
}

// RequestBuilder assembles Request from parsed parts.
type RequestBuilder struct {
	messageBuilder

	method    RequestMethod
	recipient *Uri
}

func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{}
}

func (b *RequestBuilder) SetMethod(m RequestMethod) {
	b.method = m
}

func (b *RequestBuilder) SetRecipient(uri *Uri) {
	b.recipient = uri
}

// Build validates mandatory fields and returns Request.
// A single error is returned as is, more of them as *MultipleError.
func (b *RequestBuilder) Build() (*Request, error) {
	b.checkMandatory()
	if b.method == "" && !b.hasFailed(FieldMethod) {
		b.errs = append(b.errs, NewMissingFieldError(FieldMethod))
	}
	if b.recipient == nil && !b.hasFailed(FieldRequestURI) {
		b.errs = append(b.errs, NewMissingFieldError(FieldRequestURI))
	}

	if err := b.result(); err != nil {
		return nil, err
	}

	return &Request{
		MessageData: b.data,
		Method:      b.method,
		Recipient:   *b.recipient,
	}, nil
}

// ResponseBuilder assembles Response from parsed parts.
type ResponseBuilder struct {
	messageBuilder

	status    StatusCode
	reason    string
	hasStatus bool
}

func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{}
}

// SetStatus sets status code and reason. Code must be in 100-699 range.
func (b *ResponseBuilder) SetStatus(code StatusCode, reason string) {
	if code < 100 || code > 699 {
		b.AddError(FieldStatusCode, invalidFormat("status code %d out of range 100-699", code))
		return
	}
	b.status = code
	b.reason = reason
	b.hasStatus = true
}

// Build validates mandatory fields and returns Response.
func (b *ResponseBuilder) Build() (*Response, error) {
	b.checkMandatory()
	if !b.hasStatus && !b.hasFailed(FieldStatusCode) {
		b.errs = append(b.errs, NewMissingFieldError(FieldStatusCode))
	}

	if err := b.result(); err != nil {
		return nil, err
	}

	return &Response{
		MessageData: b.data,
		status:      b.status,
		reason:      b.reason,
	}, nil
}
