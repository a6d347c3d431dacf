package parser

import (
	"bytes"
	"strings"

	"github.com/emiago/sipmsg/sip"
)

// RawHeader is single header line with folded continuation lines joined.
type RawHeader struct {
	Name  string
	Value string
}

// Frame is a message split into start line, header lines and body.
type Frame struct {
	StartLine string
	// Headers in order of appearance. Repeated names are kept as separate entries.
	Headers []RawHeader
	// Body lines joined with CRLF. Nil when message has no body.
	Body []byte
}

// Values returns values of all headers with name, case insensitive.
func (f *Frame) Values(name string) []string {
	var vals []string
	name = sip.HeaderToLower(name)
	for _, h := range f.Headers {
		if sip.HeaderToLower(h.Name) == name {
			vals = append(vals, h.Value)
		}
	}
	return vals
}

// SplitFrame splits raw message on lines. Both CRLF and LF line endings are
// accepted. First empty line separates headers from body.
//
// https://datatracker.ietf.org/doc/html/rfc3261#section-7.3.1
// Header fields can be extended over multiple lines by preceding each extra
// line with at least one SP or horizontal tab (HT).
func SplitFrame(data []byte) (*Frame, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, sip.NewEmptyMessageError("empty message")
	}

	text := string(data)
	f := &Frame{}

	line, text, _ := nextLine(text)
	f.StartLine = strings.TrimSpace(line)
	if f.StartLine == "" {
		return nil, sip.NewInvalidFormatError("message does not start with start line")
	}

	for {
		var more bool
		line, text, more = nextLine(text)
		if line == "" {
			// We've hit the end of the header section.
			break
		}

		if line[0] == ' ' || line[0] == '\t' {
			if len(f.Headers) == 0 {
				return nil, sip.NewInvalidFormatError("continuation line %q without header", line)
			}
			last := &f.Headers[len(f.Headers)-1]
			if cont := strings.TrimSpace(line); cont != "" {
				last.Value = strings.TrimSpace(last.Value + " " + cont)
			}
		} else {
			name, value, ok := strings.Cut(line, ":")
			if !ok {
				return nil, sip.NewInvalidFormatError("header line %q has no ':'", line)
			}
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, sip.NewInvalidFormatError("header line %q has empty name", line)
			}
			f.Headers = append(f.Headers, RawHeader{Name: name, Value: strings.TrimSpace(value)})
		}

		if !more {
			return f, nil
		}
	}

	if text == "" {
		return f, nil
	}

	body := strings.ReplaceAll(text, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\n", "\r\n")
	if body != "" {
		f.Body = []byte(body)
	}
	return f, nil
}

// nextLine cuts line and strips its CR. more is false when input was exhausted.
func nextLine(text string) (line string, rest string, more bool) {
	line, rest, more = strings.Cut(text, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, rest, more
}
