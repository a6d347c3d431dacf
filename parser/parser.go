package parser

import (
	"regexp"
	"strconv"

	"github.com/emiago/sipmsg/sip"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Request-Line  =  Method SP Request-URI SP SIP-Version CRLF
	requestLineRegex = regexp.MustCompile(`^([A-Za-z]+) (\S+) SIP/(\S+)$`)
	// Status-Line  =  SIP-Version SP Status-Code SP Reason-Phrase CRLF
	statusLineRegex = regexp.MustCompile(`^SIP/(\S+) ([0-9]+)(?: (.*))?$`)
)

// ParseMessage parses data with default parser.
func ParseMessage(msgData []byte) (sip.Message, error) {
	return defaultParser.Parse(msgData)
}

var defaultParser = NewParser()

// Parser turns complete message text into sip.Request or sip.Response.
// It holds no per message state and is safe for concurrent use.
type Parser struct {
	log       zerolog.Logger
	uriParser sip.UriParser
	metrics   *Metrics
}

// ParserOption are addition option for NewParser. Check WithParser...
type ParserOption func(p *Parser)

// Create a new Parser.
func NewParser(options ...ParserOption) *Parser {
	p := &Parser{
		log: log.Logger,
	}

	for _, o := range options {
		o(p)
	}

	return p
}

// WithParserLogger allows customizing parser logger
func WithParserLogger(logger zerolog.Logger) ParserOption {
	return func(p *Parser) {
		p.log = logger
	}
}

// WithMailtoURIs enables mailto scheme in every URI parsed.
func WithMailtoURIs(enabled bool) ParserOption {
	return func(p *Parser) {
		p.uriParser.AllowMailto = enabled
	}
}

// WithMetrics enables parse counters.
func WithMetrics(m *Metrics) ParserOption {
	return func(p *Parser) {
		p.metrics = m
	}
}

// Parse converts data to sip message. Data must contain full sip message.
// All header failures are collected, more than one is returned as *sip.MultipleError.
func (p *Parser) Parse(data []byte) (msg sip.Message, err error) {
	kind := kindUnknown
	defer func() {
		if r := recover(); r != nil {
			msg, err = nil, sip.NewUnknownError(r)
			p.log.Error().Interface("panic", r).Msg("parser panic recovered")
		}
		p.metrics.observeMessage(kind, err)
	}()

	f, err := SplitFrame(data)
	if err != nil {
		return nil, err
	}

	if m := requestLineRegex.FindStringSubmatch(f.StartLine); m != nil {
		kind = kindRequest
		req, err := p.buildRequest(m, f)
		if err != nil {
			return nil, err
		}
		return req, nil
	}

	if m := statusLineRegex.FindStringSubmatch(f.StartLine); m != nil {
		kind = kindResponse
		res, err := p.buildResponse(m, f)
		if err != nil {
			return nil, err
		}
		return res, nil
	}

	return nil, sip.NewInvalidFormatError("Invalid message type: %q", f.StartLine)
}

func (p *Parser) buildRequest(m []string, f *Frame) (*sip.Request, error) {
	b := sip.NewRequestBuilder()

	method, err := sip.ParseMethod(m[1])
	if err != nil {
		b.AddError(sip.FieldMethod, err)
	} else {
		b.SetMethod(method)
	}

	recipient := &sip.Uri{}
	if err := p.uriParser.ParseUri(m[2], recipient); err != nil {
		b.AddError(sip.FieldRequestURI, sip.NewInvalidUriError(m[2], err))
	} else {
		b.SetRecipient(recipient)
	}

	b.SetSipVersion(m[3])
	p.parseHeaders(b, f)

	req, err := b.Build()
	if err != nil {
		p.logBuildError(f, err)
		return nil, err
	}
	return req, nil
}

func (p *Parser) buildResponse(m []string, f *Frame) (*sip.Response, error) {
	b := sip.NewResponseBuilder()

	b.SetSipVersion(m[1])
	code, err := strconv.Atoi(m[2])
	if err != nil {
		b.AddError(sip.FieldStatusCode, sip.NewInvalidFormatError("invalid status code %q", m[2]))
	} else {
		b.SetStatus(sip.StatusCode(code), m[3])
	}
	p.parseHeaders(b, f)

	res, err := b.Build()
	if err != nil {
		p.logBuildError(f, err)
		return nil, err
	}
	return res, nil
}

// parseHeaders dispatches every header to its parser. Failures are stored in
// builder and do not stop the loop.
func (p *Parser) parseHeaders(b MessageBuilder, f *Frame) {
	for _, h := range f.Headers {
		entry, ok := lookupHeaderParser(h.Name)
		if !ok {
			b.AddHeader(sip.NewHeader(h.Name, h.Value))
			continue
		}

		if err := entry.parse(p.uriParser, b, h.Value); err != nil {
			p.log.Debug().Err(err).Str("header", entry.field).Str("value", h.Value).Msg("header parse failed")
			p.metrics.observeHeaderError(entry.field)
			b.AddError(entry.field, err)
		}
	}

	b.SetBody(f.Body)
}

func (p *Parser) logBuildError(f *Frame, err error) {
	count := 1
	if merr, ok := err.(*sip.MultipleError); ok {
		count = len(merr.Errors)
	}
	p.log.Debug().Err(err).Int("errors", count).Str("start_line", f.StartLine).Msg("message rejected")
}
