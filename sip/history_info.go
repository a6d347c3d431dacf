package sip

import (
	"io"
	"slices"
	"strconv"
	"strings"
)

// HistoryInfoEntry is single hi-targeted-to-uri of History-Info, RFC 7044.
type HistoryInfoEntry struct {
	Address Uri
	// Index is dot separated hierarchy like 1.1.2
	Index string
	// Rc is the rc param, empty when absent.
	Rc     string
	Params HeaderParams
}

// HistoryInfoHeader is History-Info header representation.
// Entries are kept sorted by index.
type HistoryInfoHeader struct {
	Entries []HistoryInfoEntry
}

func (h *HistoryInfoHeader) Name() string { return "History-Info" }

func (h *HistoryInfoHeader) Value() string {
	var buffer strings.Builder
	h.valueStringWrite(&buffer)
	return buffer.String()
}

func (h *HistoryInfoHeader) String() string {
	var buffer strings.Builder
	h.StringWrite(&buffer)
	return buffer.String()
}

func (h *HistoryInfoHeader) StringWrite(buffer io.StringWriter) {
	buffer.WriteString(h.Name())
	buffer.WriteString(": ")
	h.valueStringWrite(buffer)
}

func (h *HistoryInfoHeader) valueStringWrite(buffer io.StringWriter) {
	for i := range h.Entries {
		if i > 0 {
			buffer.WriteString(", ")
		}
		e := &h.Entries[i]
		buffer.WriteString("<")
		e.Address.StringWrite(buffer)
		buffer.WriteString(">;index=")
		buffer.WriteString(e.Index)
		if e.Rc != "" {
			buffer.WriteString(";rc=")
			buffer.WriteString(e.Rc)
		}
		if len(e.Params) > 0 {
			buffer.WriteString(";")
			e.Params.ToStringWrite(';', buffer)
		}
	}
}

// ParseHistoryInfoHeader parses History-Info header
func ParseHistoryInfoHeader(headerText string, h *HistoryInfoHeader) error {
	return UriParser{}.ParseHistoryInfoHeader(headerText, h)
}

// ParseHistoryInfoHeader parses comma separated entries and sorts them by index.
func (p UriParser) ParseHistoryInfoHeader(headerText string, h *HistoryInfoHeader) error {
	if strings.TrimSpace(headerText) == "" {
		return emptyMessage("empty History-Info body")
	}

	values, err := splitTopLevel(headerText, ',')
	if err != nil {
		return err
	}

	entries := make([]HistoryInfoEntry, 0, len(values))
	for _, v := range values {
		var e HistoryInfoEntry
		if err := p.parseHistoryInfoEntry(strings.TrimSpace(v), &e); err != nil {
			return err
		}
		entries = append(entries, e)
	}

	slices.SortStableFunc(entries, func(a, b HistoryInfoEntry) int {
		return CompareHistoryIndex(a.Index, b.Index)
	})
	h.Entries = entries
	return nil
}

func (p UriParser) parseHistoryInfoEntry(s string, e *HistoryInfoEntry) error {
	if !strings.HasPrefix(s, "<") {
		return invalidFormat("History-Info entry must enclose uri in angle brackets: %q", s)
	}

	var na NameAddr
	rest, err := p.cutBracketUri(s, &na)
	if err != nil {
		return err
	}
	e.Address = na.Address
	e.Index = "1"

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil
	}
	if rest[0] != ';' {
		return invalidFormat("unexpected %q after History-Info uri", rest)
	}

	params := NewParams()
	if err := UnmarshalHeaderParams(rest[1:], ';', &params); err != nil {
		return err
	}

	if index, _, ok := params.Lookup("index"); ok {
		if !validHistoryIndex(index) {
			return invalidFormat("invalid History-Info index %q", index)
		}
		e.Index = index
		params.Remove("index")
	}
	if rc, _, ok := params.Lookup("rc"); ok {
		e.Rc = rc
		params.Remove("rc")
	}
	if len(params) > 0 {
		e.Params = params
	}
	return nil
}

// index-val = number *("." number)
func validHistoryIndex(s string) bool {
	for _, seg := range strings.Split(s, ".") {
		if !isDigits(seg) {
			return false
		}
	}
	return true
}

// CompareHistoryIndex orders dot separated indexes hierarchically:
// 1 < 1.1 < 1.1.1 < 1.2 < 2. Segments compare numerically.
func CompareHistoryIndex(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, _ := strconv.ParseUint(as[i], 10, 64)
		bn, _ := strconv.ParseUint(bs[i], 10, 64)
		if an != bn {
			if an < bn {
				return -1
			}
			return 1
		}
	}
	return len(as) - len(bs)
}
