package sip

import (
	"strings"
)

// UnmarshalHeaderParams parses s as name[=value] pairs separated by sep
// and adds them to p.
// Whitespace around names, separators and '=' is ignored. Quoted values are
// unquoted and marked Quoted. Empty segments like ";;" are skipped.
// Duplicate names keep the last value.
func UnmarshalHeaderParams(s string, sep byte, p *HeaderParams) error {
	segments, err := splitTopLevel(s, sep)
	if err != nil {
		return err
	}

	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}

		eq := strings.IndexByte(seg, '=')
		if eq < 0 {
			if !isToken(seg) {
				return invalidFormat("malformed parameter %q", seg)
			}
			p.AddFlag(seg)
			continue
		}

		name := strings.TrimSpace(seg[:eq])
		if !isToken(name) {
			return invalidFormat("malformed parameter name in %q", seg)
		}

		val := strings.TrimSpace(seg[eq+1:])
		if strings.HasPrefix(val, "\"") {
			unq, ok := unquote(val)
			if !ok {
				return invalidFormat("malformed quoted parameter value in %q", seg)
			}
			p.set(HeaderKV{K: name, V: unq, HasValue: true, Quoted: true})
			continue
		}

		if strings.ContainsAny(val, abnfWs+"\"") {
			return invalidFormat("malformed parameter value in %q", seg)
		}
		p.Add(name, val)
	}
	return nil
}

// splitTopLevel splits s on sep ignoring separators inside quoted strings
// and angle brackets.
func splitTopLevel(s string, sep byte) ([]string, error) {
	var (
		parts    []string
		start    int
		inQuotes bool
		escaped  bool
		angle    int
	)

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuotes {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inQuotes = false
			}
			continue
		}

		switch c {
		case '"':
			inQuotes = true
		case '<':
			angle++
		case '>':
			if angle > 0 {
				angle--
			}
		case sep:
			if angle == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}

	if inQuotes {
		return nil, invalidFormat("unterminated quoted string in %q", s)
	}
	if angle > 0 {
		return nil, invalidFormat("unterminated angle bracket in %q", s)
	}
	return append(parts, s[start:]), nil
}

// unquote removes surrounding quotes from quoted-string and resolves
// backslash escapes. s must start with '"'.
func unquote(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' {
		return "", false
	}

	var b strings.Builder
	escaped := false
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			b.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			if i != len(s)-1 {
				return "", false
			}
			return b.String(), true
		default:
			b.WriteByte(c)
		}
	}
	return "", false
}

func escapeQuoted(s string) string {
	if !strings.ContainsAny(s, "\"\\") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// token = 1*(alphanum / "-" / "." / "!" / "%" / "*" / "_" / "+" / "`" / "'" / "~" )
func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTokenChar(s[i]) {
			return false
		}
	}
	return true
}

func isTokenChar(c byte) bool {
	if isAlphaNum(c) {
		return true
	}
	return strings.IndexByte("-.!%*_+`'~", c) >= 0
}

func isAlphaNum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
