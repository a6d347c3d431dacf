package parser

import (
	"github.com/emiago/sipmsg/sip"
)

// Here we have dispatch of header lines to their parsers.

// MessageBuilder receives parsed header values.
// It is implemented by sip.RequestBuilder and sip.ResponseBuilder.
type MessageBuilder interface {
	AddError(field string, err error)
	SetSipVersion(v string)
	AddVia(vias ...*sip.ViaHeader)
	SetMaxForwards(v uint32)
	SetFrom(h *sip.FromHeader)
	SetTo(h *sip.ToHeader)
	SetCallID(h *sip.CallIDHeader)
	SetCSeq(h *sip.CSeqHeader)
	AddContact(contacts ...*sip.ContactHeader)
	SetContentType(h *sip.ContentTypeHeader)
	SetContentLength(v uint32)
	SetExpires(v uint32)
	SetMinExpires(v uint32)
	SetUserAgent(v string)
	SetServer(v string)
	AddAllow(list ...string)
	AddRequire(list ...string)
	AddSupported(list ...string)
	AddHistoryInfo(h *sip.HistoryInfoHeader)
	AddHeader(h sip.Header)
	SetBody(body []byte)
}

// A HeaderParser parses header value and stores result in builder.
type HeaderParser func(up sip.UriParser, b MessageBuilder, headerText string) error

type headerEntry struct {
	// canonical header name, used as error field
	field string
	parse HeaderParser
}

var headersParsers = map[string]headerEntry{
	"via":            {sip.FieldVia, parseVia},
	"v":              {sip.FieldVia, parseVia},
	"max-forwards":   {sip.FieldMaxForwards, parseMaxForwards},
	"from":           {sip.FieldFrom, parseFrom},
	"f":              {sip.FieldFrom, parseFrom},
	"to":             {sip.FieldTo, parseTo},
	"t":              {sip.FieldTo, parseTo},
	"call-id":        {sip.FieldCallID, parseCallID},
	"i":              {sip.FieldCallID, parseCallID},
	"cseq":           {sip.FieldCSeq, parseCSeq},
	"contact":        {sip.FieldContact, parseContact},
	"m":              {sip.FieldContact, parseContact},
	"content-type":   {sip.FieldContentType, parseContentType},
	"c":              {sip.FieldContentType, parseContentType},
	"content-length": {sip.FieldContentLength, parseContentLength},
	"l":              {sip.FieldContentLength, parseContentLength},
	"expires":        {sip.FieldExpires, parseExpires},
	"min-expires":    {sip.FieldMinExpires, parseMinExpires},
	"user-agent":     {sip.FieldUserAgent, parseUserAgent},
	"server":         {sip.FieldServer, parseServer},
	"allow":          {"Allow", parseAllow},
	"require":        {"Require", parseRequire},
	"supported":      {"Supported", parseSupported},
	"k":              {"Supported", parseSupported},
	"history-info":   {sip.FieldHistoryInfo, parseHistoryInfo},
}

// lookupHeaderParser returns parser for header name. Names are case insensitive.
func lookupHeaderParser(name string) (headerEntry, bool) {
	e, ok := headersParsers[sip.HeaderToLower(name)]
	return e, ok
}

func parseVia(up sip.UriParser, b MessageBuilder, headerText string) error {
	vias, err := sip.ParseViaHeaders(headerText)
	if err != nil {
		return err
	}
	b.AddVia(vias...)
	return nil
}

func parseMaxForwards(up sip.UriParser, b MessageBuilder, headerText string) error {
	val, err := sip.ParseUintHeader(headerText)
	if err != nil {
		return err
	}
	b.SetMaxForwards(val)
	return nil
}

func parseFrom(up sip.UriParser, b MessageBuilder, headerText string) error {
	h := &sip.FromHeader{}
	if err := up.ParseFromHeader(headerText, h); err != nil {
		return err
	}
	b.SetFrom(h)
	return nil
}

func parseTo(up sip.UriParser, b MessageBuilder, headerText string) error {
	h := &sip.ToHeader{}
	if err := up.ParseToHeader(headerText, h); err != nil {
		return err
	}
	b.SetTo(h)
	return nil
}

func parseCallID(up sip.UriParser, b MessageBuilder, headerText string) error {
	h := &sip.CallIDHeader{}
	if err := sip.ParseCallIdHeader(headerText, h); err != nil {
		return err
	}
	b.SetCallID(h)
	return nil
}

func parseCSeq(up sip.UriParser, b MessageBuilder, headerText string) error {
	h := &sip.CSeqHeader{}
	if err := sip.ParseCSeqHeader(headerText, h); err != nil {
		return err
	}
	b.SetCSeq(h)
	return nil
}

func parseContact(up sip.UriParser, b MessageBuilder, headerText string) error {
	contacts, err := up.ParseContactHeaders(headerText)
	if err != nil {
		return err
	}
	b.AddContact(contacts...)
	return nil
}

func parseContentType(up sip.UriParser, b MessageBuilder, headerText string) error {
	h := &sip.ContentTypeHeader{}
	if err := sip.ParseContentTypeHeader(headerText, h); err != nil {
		return err
	}
	b.SetContentType(h)
	return nil
}

func parseContentLength(up sip.UriParser, b MessageBuilder, headerText string) error {
	val, err := sip.ParseUintHeader(headerText)
	if err != nil {
		return err
	}
	b.SetContentLength(val)
	return nil
}

func parseExpires(up sip.UriParser, b MessageBuilder, headerText string) error {
	val, err := sip.ParseUintHeader(headerText)
	if err != nil {
		return err
	}
	b.SetExpires(val)
	return nil
}

func parseMinExpires(up sip.UriParser, b MessageBuilder, headerText string) error {
	val, err := sip.ParseUintHeader(headerText)
	if err != nil {
		return err
	}
	b.SetMinExpires(val)
	return nil
}

func parseUserAgent(up sip.UriParser, b MessageBuilder, headerText string) error {
	b.SetUserAgent(headerText)
	return nil
}

func parseServer(up sip.UriParser, b MessageBuilder, headerText string) error {
	b.SetServer(headerText)
	return nil
}

func parseAllow(up sip.UriParser, b MessageBuilder, headerText string) error {
	b.AddAllow(sip.ParseTokenList(headerText)...)
	return nil
}

func parseRequire(up sip.UriParser, b MessageBuilder, headerText string) error {
	b.AddRequire(sip.ParseTokenList(headerText)...)
	return nil
}

func parseSupported(up sip.UriParser, b MessageBuilder, headerText string) error {
	b.AddSupported(sip.ParseTokenList(headerText)...)
	return nil
}

func parseHistoryInfo(up sip.UriParser, b MessageBuilder, headerText string) error {
	h := &sip.HistoryInfoHeader{}
	if err := up.ParseHistoryInfoHeader(headerText, h); err != nil {
		return err
	}
	b.AddHistoryInfo(h)
	return nil
}
