package sip

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvite(t testing.TB) *Request {
	b := NewRequestBuilder()
	b.SetMethod(INVITE)
	b.SetRecipient(&Uri{Scheme: SCHEME_SIP, User: "bob", Host: "biloxi.com"})
	fillMandatory(&b.messageBuilder)

	b.AddHeader(NewHeader("X-Custom", "first"))
	b.AddContact(&ContactHeader{AddressHeader{
		NameAddr: NameAddr{Address: Uri{Scheme: SCHEME_SIP, User: "alice", Host: "pc33.atlanta.com"}},
	}})
	b.SetContentType(&ContentTypeHeader{Type: "application", Subtype: "sdp"})
	b.SetContentLength(5)
	b.AddHeader(NewHeader("x-custom", "second"))
	b.SetBody([]byte("v=0\r\n"))

	req, err := b.Build()
	require.NoError(t, err)
	return req
}

func TestMessageRender(t *testing.T) {
	req := testInvite(t)

	expected := strings.Join([]string{
		"INVITE sip:bob@biloxi.com SIP/2.0",
		"Via: SIP/2.0/UDP pc33.atlanta.com;branch=z9hG4bK776asdhds",
		`From: "Alice" <sip:alice@atlanta.com>;tag=1928301774`,
		`To: "Bob" <sip:bob@biloxi.com>`,
		"Call-ID: a84b4c76e66710@pc33.atlanta.com",
		"CSeq: 314159 INVITE",
		"Max-Forwards: 70",
		"Contact: <sip:alice@pc33.atlanta.com>",
		"Content-Type: application/sdp",
		"Content-Length: 5",
		"X-Custom: first",
		"x-custom: second",
		"",
		"v=0\r\n",
	}, "\r\n")
	assert.Equal(t, expected, req.String())

	buf := bytes.NewBuffer(nil)
	req.StringWrite(buf)
	assert.Equal(t, expected, buf.String())
}

func TestMessageRenderCompact(t *testing.T) {
	req := testInvite(t)

	buf := bytes.NewBuffer(nil)
	req.RenderWrite(buf, RenderOptions{Compact: true})
	lines := strings.Split(buf.String(), "\r\n")
	require.GreaterOrEqual(t, len(lines), 12)
	assert.Equal(t, []string{
		"INVITE sip:bob@biloxi.com SIP/2.0",
		"v: SIP/2.0/UDP pc33.atlanta.com;branch=z9hG4bK776asdhds",
		`f: "Alice" <sip:alice@atlanta.com>;tag=1928301774`,
		`t: "Bob" <sip:bob@biloxi.com>`,
		"i: a84b4c76e66710@pc33.atlanta.com",
		"CSeq: 314159 INVITE",
		"Max-Forwards: 70",
		"m: <sip:alice@pc33.atlanta.com>",
		"c: application/sdp",
		"l: 5",
		"X-Custom: first",
		"x-custom: second",
	}, lines[:12])
}

func TestMessageRenderNoBody(t *testing.T) {
	b := NewResponseBuilder()
	b.SetStatus(180, "Ringing")
	fillMandatory(&b.messageBuilder)
	b.SetExpires(3600)
	b.SetUserAgent("sipmsg")
	b.AddAllow("INVITE", "ACK")
	b.SetServer("edge")
	b.AddRequire("100rel")
	b.AddSupported("timer", "replaces")
	b.SetMinExpires(60)

	res, err := b.Build()
	require.NoError(t, err)

	str := res.String()
	assert.True(t, strings.HasPrefix(str, "SIP/2.0 180 Ringing\r\n"))
	assert.True(t, strings.HasSuffix(str, "Supported: timer, replaces\r\n\r\n"))
	assert.Contains(t, str, "\r\nExpires: 3600\r\nMin-Expires: 60\r\nUser-Agent: sipmsg\r\nAllow: INVITE, ACK\r\nServer: edge\r\nRequire: 100rel\r\n")
	assert.True(t, res.IsProvisional())
}

func TestMessageGetHeaders(t *testing.T) {
	req := testInvite(t)

	hdrs := req.GetHeaders("X-CUSTOM")
	require.Len(t, hdrs, 2)
	assert.Equal(t, "first", hdrs[0].Value())
	assert.Equal(t, "second", hdrs[1].Value())

	h := req.GetHeader("call-id")
	require.NotNil(t, h)
	assert.Equal(t, "a84b4c76e66710@pc33.atlanta.com", h.Value())

	assert.Len(t, req.GetHeaders("via"), 1)
	assert.Nil(t, req.GetHeader("Route"))
	assert.Empty(t, req.GetHeaders("Route"))

	ct, ok := req.ContentType()
	require.True(t, ok)
	assert.Equal(t, "application/sdp", ct.MediaType())
	_, ok = req.Expires()
	assert.False(t, ok)

	contact, ok := req.Contact()
	require.True(t, ok)
	assert.Equal(t, "alice", contact.Address.User)
}

func TestMessageShortString(t *testing.T) {
	req := testInvite(t)
	assert.Equal(t, "request method=INVITE Recipient=sip:bob@biloxi.com call-id=a84b4c76e66710@pc33.atlanta.com", MessageShortString(req))

	var nilReq *Request
	assert.Equal(t, "<nil>", nilReq.Short())
}

func TestMessageMethodChecks(t *testing.T) {
	req := testInvite(t)
	assert.True(t, req.IsInvite())
	assert.False(t, req.IsAck())
	assert.False(t, req.IsCancel())

	req.Method = CANCEL
	assert.True(t, req.IsCancel())

	b := NewResponseBuilder()
	b.SetStatus(487, "Request Terminated")
	fillMandatory(&b.messageBuilder)
	res, err := b.Build()
	require.NoError(t, err)
	assert.True(t, res.IsClientError())
	assert.False(t, res.IsCancel())

	res.cseq = &CSeqHeader{SeqNo: 314159, MethodName: CANCEL}
	assert.True(t, res.IsCancel())
	assert.False(t, res.IsAck())
}

func BenchmarkMessageRender(b *testing.B) {
	req := testInvite(b)
	buf := bytes.NewBuffer(make([]byte, 0, 1024))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		req.StringWrite(buf)
	}
}
