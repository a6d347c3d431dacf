package sip

import (
	"regexp"
	"strconv"
	"strings"
)

// Here we have collection of headers parsing.
// Address headers, Via and History-Info are in their own files.

// The maximum permissible CSeq number in a SIP message (2**31 - 1).
// C.f. RFC 3261 S. 8.1.1.5.
const maxCseq = 2147483647

var cseqRegex = regexp.MustCompile(`^\s*([0-9]+)\s+([A-Z][A-Z0-9]*)\s*$`)

// ParseMethod resolves method token. Only the methods of this package are
// known, extension methods are rejected.
func ParseMethod(s string) (RequestMethod, error) {
	switch m := RequestMethod(s); m {
	case INVITE, ACK, BYE, CANCEL, OPTIONS, REGISTER, PRACK,
		SUBSCRIBE, NOTIFY, PUBLISH, INFO, REFER, MESSAGE, UPDATE:
		return m, nil
	}
	return "", invalidFormat("unknown SIP method %q", s)
}

// ParseCSeqHeader parses CSeq header
func ParseCSeqHeader(headerText string, cseq *CSeqHeader) error {
	m := cseqRegex.FindStringSubmatch(headerText)
	if m == nil {
		return invalidFormat("CSeq field should be sequence number and method: %q", headerText)
	}

	seqno, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil || seqno > maxCseq {
		return invalidFormat("invalid CSeq %s: exceeds maximum permitted value 2**31 - 1", m[1])
	}

	method, err := ParseMethod(m[2])
	if err != nil {
		return err
	}

	cseq.SeqNo = uint32(seqno)
	cseq.MethodName = method
	return nil
}

// ParseCallIdHeader parses Call-ID header
// callid = word [ "@" word ]
func ParseCallIdHeader(headerText string, callId *CallIDHeader) error {
	headerText = strings.TrimSpace(headerText)
	if len(headerText) == 0 {
		return emptyMessage("empty Call-ID body")
	}
	if strings.ContainsAny(headerText, abnfWs) {
		return invalidFormat("Call-ID must not contain whitespace: %q", headerText)
	}

	local, host, hasHost := strings.Cut(headerText, "@")
	if local == "" {
		return invalidFormat("Call-ID has empty local part: %q", headerText)
	}
	if hasHost && host == "" {
		return invalidFormat("Call-ID has empty host part: %q", headerText)
	}

	*callId = CallIDHeader{LocalID: local, Host: host}
	return nil
}

// ParseContentTypeHeader parses Content-Type header
// media-type = m-type SLASH m-subtype *(SEMI m-parameter)
func ParseContentTypeHeader(headerText string, contentType *ContentTypeHeader) error {
	headerText = strings.TrimSpace(headerText)
	if len(headerText) == 0 {
		return emptyMessage("empty Content-Type body")
	}

	media, params, hasParams := strings.Cut(headerText, ";")
	mtype, subtype, ok := strings.Cut(media, "/")
	if !ok {
		return invalidFormat("Content-Type missing '/' between type and subtype: %q", headerText)
	}

	mtype, subtype = strings.TrimSpace(mtype), strings.TrimSpace(subtype)
	if !isToken(mtype) || !isToken(subtype) {
		return invalidFormat("invalid media type in Content-Type %q", headerText)
	}

	*contentType = ContentTypeHeader{Type: mtype, Subtype: subtype}
	if !hasParams {
		return nil
	}
	contentType.Params = NewParams()
	return UnmarshalHeaderParams(params, ';', &contentType.Params)
}

// ParseUintHeader parses non negative integer headers like Expires,
// Min-Expires, Max-Forwards or Content-Length.
func ParseUintHeader(headerText string) (uint32, error) {
	headerText = strings.TrimSpace(headerText)
	if !isDigits(headerText) {
		return 0, invalidFormat("expected non negative integer, got %q", headerText)
	}
	val, err := strconv.ParseUint(headerText, 10, 32)
	if err != nil {
		return 0, invalidFormat("integer out of range %q", headerText)
	}
	return uint32(val), nil
}

// ParseTokenList splits comma separated list like Allow or Supported.
// Tokens are trimmed, empty ones dropped.
func ParseTokenList(headerText string) []string {
	parts := strings.Split(headerText, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	return list
}
