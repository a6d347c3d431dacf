package sip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	for _, m := range []RequestMethod{
		INVITE, ACK, BYE, CANCEL, OPTIONS, REGISTER, PRACK,
		SUBSCRIBE, NOTIFY, PUBLISH, INFO, REFER, MESSAGE, UPDATE,
	} {
		got, err := ParseMethod(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	for _, bad := range []string{"invite", "FOO", "", "INVITE "} {
		_, err := ParseMethod(bad)
		assert.ErrorIs(t, err, ErrInvalidFormat, bad)
	}
}

func TestParseCSeqHeader(t *testing.T) {
	var h CSeqHeader
	require.NoError(t, ParseCSeqHeader("1 INVITE", &h))
	assert.Equal(t, uint32(1), h.SeqNo)
	assert.Equal(t, INVITE, h.MethodName)
	assert.Equal(t, "CSeq: 1 INVITE", h.String())

	require.NoError(t, ParseCSeqHeader("  4711   REGISTER ", &h))
	assert.Equal(t, uint32(4711), h.SeqNo)
	assert.Equal(t, REGISTER, h.MethodName)

	require.NoError(t, ParseCSeqHeader("2147483647 BYE", &h))
	assert.Equal(t, uint32(maxCseq), h.SeqNo)

	for _, bad := range []string{
		"2147483648 INVITE",
		"2147483649 INVITE",
		"99999999999999999999999 INVITE",
		"INVITE",
		"1",
		"-1 INVITE",
		"1 FOO",
		"1 invite",
		"1 INVITE extra",
	} {
		t.Run(bad, func(t *testing.T) {
			var h CSeqHeader
			err := ParseCSeqHeader(bad, &h)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestParseCallIdHeader(t *testing.T) {
	var h CallIDHeader
	require.NoError(t, ParseCallIdHeader(" a84b4c76e66710@pc33.atlanta.com ", &h))
	assert.Equal(t, "a84b4c76e66710", h.LocalID)
	assert.Equal(t, "pc33.atlanta.com", h.Host)
	assert.Equal(t, "Call-ID: a84b4c76e66710@pc33.atlanta.com", h.String())

	require.NoError(t, ParseCallIdHeader("f81d4fae-7dec-11d0-a765-00a0c91e6bf6", &h))
	assert.Empty(t, h.Host)
	assert.Equal(t, "f81d4fae-7dec-11d0-a765-00a0c91e6bf6", h.Value())

	assert.ErrorIs(t, ParseCallIdHeader("", &h), ErrEmptyMessage)
	assert.ErrorIs(t, ParseCallIdHeader("   ", &h), ErrEmptyMessage)
	assert.ErrorIs(t, ParseCallIdHeader("abc def", &h), ErrInvalidFormat)
	assert.ErrorIs(t, ParseCallIdHeader("@host", &h), ErrInvalidFormat)
	assert.ErrorIs(t, ParseCallIdHeader("abc@", &h), ErrInvalidFormat)
}

func TestParseContentTypeHeader(t *testing.T) {
	var h ContentTypeHeader
	require.NoError(t, ParseContentTypeHeader("application/sdp", &h))
	assert.Equal(t, "application", h.Type)
	assert.Equal(t, "sdp", h.Subtype)
	assert.Equal(t, "application/sdp", h.MediaType())
	assert.Empty(t, h.Params)

	require.NoError(t, ParseContentTypeHeader(`multipart/mixed ; boundary="unique boundary 1";charset=utf-8`, &h))
	assert.Equal(t, "multipart/mixed", h.MediaType())
	assert.Equal(t, "unique boundary 1", h.Params.GetOr("boundary", ""))
	assert.Equal(t, `Content-Type: multipart/mixed; boundary="unique boundary 1"; charset=utf-8`, h.String())

	assert.ErrorIs(t, ParseContentTypeHeader("", &h), ErrEmptyMessage)
	assert.ErrorIs(t, ParseContentTypeHeader("application", &h), ErrInvalidFormat)
	assert.ErrorIs(t, ParseContentTypeHeader("application/", &h), ErrInvalidFormat)
	assert.ErrorIs(t, ParseContentTypeHeader("text/plain;charset=a b", &h), ErrInvalidFormat)
}

func TestParseUintHeader(t *testing.T) {
	v, err := ParseUintHeader(" 3600 ")
	require.NoError(t, err)
	assert.Equal(t, uint32(3600), v)

	v, err = ParseUintHeader("0")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)

	for _, bad := range []string{"", "-1", "1.5", "abc", "70 1", "4294967296"} {
		_, err := ParseUintHeader(bad)
		assert.ErrorIs(t, err, ErrInvalidFormat, bad)
	}
}

func TestParseTokenList(t *testing.T) {
	assert.Equal(t,
		[]string{"INVITE", "ACK", "OPTIONS", "CANCEL", "BYE"},
		ParseTokenList("INVITE, ACK,OPTIONS ,  CANCEL, BYE"),
	)
	assert.Equal(t, []string{"100rel"}, ParseTokenList(" , 100rel,"))
	assert.Empty(t, ParseTokenList(""))
}
