package parser

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/emiago/sipmsg/sip"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n"))
}

var inviteLines = []string{
	"INVITE sip:bob@biloxi.com SIP/2.0",
	"Via: SIP/2.0/UDP pc33.atlanta.com;branch=z9hG4bK776asdhds",
	"Max-Forwards: 70",
	"To: Bob <sip:bob@biloxi.com>",
	"From: Alice <sip:alice@atlanta.com>;tag=1928301774",
	"Call-ID: a84b4c76e66710@pc33.atlanta.com",
	"CSeq: 314159 INVITE",
	"Contact: <sip:alice@pc33.atlanta.com>",
	"Content-Type: application/sdp",
	"Content-Length: 142",
	"",
	"v=0",
	"o=alice 2890844526 2890844526 IN IP4 pc33.atlanta.com",
	"s=-",
	"c=IN IP4 pc33.atlanta.com",
	"t=0 0",
	"m=audio 49172 RTP/AVP 0",
	"a=rtpmap:0 PCMU/8000",
	"",
}

var ringingLines = []string{
	"SIP/2.0 180 Ringing",
	"Via: SIP/2.0/UDP server10.biloxi.com;branch=z9hG4bK4b43c2ff8.1;received=192.0.2.3",
	"Via: SIP/2.0/UDP pc33.atlanta.com;branch=z9hG4bK776asdhds;received=192.0.2.1",
	`To: "Bob \"the builder\"" <sip:bob@biloxi.com>;tag=a6c85cf`,
	"From: Alice <sip:alice@atlanta.com>;tag=1928301774",
	"Call-ID: a84b4c76e66710",
	"Contact: <sip:bob@192.0.2.4>;expires=60;q=0.7",
	"CSeq: 314159 INVITE",
	"Max-Forwards: 70",
	`Content-Type: text/plain; charset="utf 8"`,
	"History-Info: <sip:bob@b.com>;index=1.1;rc=1, <sip:alice@a.com>;index=1",
	"Allow: INVITE, ACK, BYE",
	"X-Custom: kept as is",
	"",
	"",
}

func TestParseRequest(t *testing.T) {
	msg, err := ParseMessage(testMessage(inviteLines...))
	require.NoError(t, err)

	req, ok := msg.(*sip.Request)
	require.True(t, ok)
	assert.Equal(t, sip.INVITE, req.Method)
	assert.Equal(t, "sip:bob@biloxi.com", req.Recipient.String())
	assert.Equal(t, "2.0", req.SipVersion())

	branch, ok := req.Via().Branch()
	assert.True(t, ok)
	assert.Equal(t, "z9hG4bK776asdhds", branch)
	assert.Equal(t, uint32(70), req.MaxForwards().Val())
	assert.Equal(t, "Bob", req.To().DisplayName)
	assert.Empty(t, req.To().Tag)
	assert.Equal(t, "1928301774", req.From().Tag)
	assert.Equal(t, "a84b4c76e66710", req.CallID().LocalID)
	assert.Equal(t, uint32(314159), req.CSeq().SeqNo)
	assert.Equal(t, sip.INVITE, req.CSeq().MethodName)
	require.Len(t, req.Contacts(), 1)

	ct, ok := req.ContentType()
	require.True(t, ok)
	assert.Equal(t, "application/sdp", ct.MediaType())

	cl, ok := req.ContentLength()
	require.True(t, ok)
	assert.Equal(t, sip.ContentLengthHeader(142), *cl)

	body := strings.Join(inviteLines[11:], "\r\n")
	assert.Equal(t, body, string(req.Body()))
	assert.True(t, strings.HasSuffix(req.String(), "\r\n\r\n"+body))
}

func TestParseRoundTrip(t *testing.T) {
	for name, data := range map[string][]byte{
		"invite":   testMessage(inviteLines...),
		"response": testMessage(ringingLines...),
	} {
		t.Run(name, func(t *testing.T) {
			first, err := ParseMessage(data)
			require.NoError(t, err)

			second, err := ParseMessage([]byte(first.String()))
			require.NoError(t, err)

			opts := cmp.AllowUnexported(sip.MessageData{}, sip.Response{})
			if diff := cmp.Diff(first, second, opts); diff != "" {
				t.Fatalf("round trip mismatch (-first +second):\n%s", diff)
			}
			assert.Equal(t, first.String(), second.String())
		})
	}
}

func TestParseRegisterExpires(t *testing.T) {
	msg, err := ParseMessage(testMessage(
		"REGISTER sip:registrar.biloxi.com SIP/2.0",
		"Via: SIP/2.0/UDP bobspc.biloxi.com:5060;branch=z9hG4bKnashds7",
		"Max-Forwards: 70",
		"To: Bob <sip:bob@biloxi.com>",
		"From: Bob <sip:bob@biloxi.com>;tag=456248",
		"Call-ID: 843817637684230@998sdasdh09",
		"CSeq: 1826 REGISTER",
		"Contact: <sip:bob@192.0.2.4>",
		"Expires: 3600",
		"Content-Length: 0",
		"",
		"",
	))
	require.NoError(t, err)

	req := msg.(*sip.Request)
	exp, ok := req.Expires()
	require.True(t, ok)
	assert.Equal(t, sip.ExpiresHeader(3600), *exp)
	assert.Contains(t, req.String(), "Expires: 3600")
	assert.Nil(t, req.Body())
}

func TestParseResponse(t *testing.T) {
	msg, err := ParseMessage(testMessage(
		"SIP/2.0 200 OK",
		"Via: SIP/2.0/UDP pc33.atlanta.com;branch=z9hG4bK776asdhds, SIP/2.0/TCP proxy.atlanta.com;branch=z9hG4bK1",
		"v: SIP/2.0/UDP last.atlanta.com;branch=z9hG4bK2",
		"To: Bob <sip:bob@biloxi.com>;tag=a6c85cf",
		"From: Alice <sip:alice@atlanta.com>;tag=1928301774",
		"Call-ID: a84b4c76e66710@pc33.atlanta.com",
		"CSeq: 314159 INVITE",
		"Max-Forwards: 70",
		"",
		"",
	))
	require.NoError(t, err)

	res, ok := msg.(*sip.Response)
	require.True(t, ok)
	assert.Equal(t, sip.StatusCode(200), res.StatusCode())
	assert.Equal(t, "OK", res.Reason())
	require.Len(t, res.Vias(), 3)
	assert.Equal(t, "proxy.atlanta.com", res.Vias()[1].Host)
	assert.Equal(t, "last.atlanta.com", res.Vias()[2].Host)
	assert.Equal(t, "a6c85cf", res.To().Tag)

	t.Run("reason may be empty", func(t *testing.T) {
		msg, err := ParseMessage(testMessage(
			"SIP/2.0 486",
			"Via: SIP/2.0/UDP pc33.atlanta.com;branch=z9hG4bK776asdhds",
			"To: <sip:bob@biloxi.com>",
			"From: <sip:alice@atlanta.com>;tag=1",
			"Call-ID: abc",
			"CSeq: 1 INVITE",
			"Max-Forwards: 70",
			"",
		))
		require.NoError(t, err)
		res := msg.(*sip.Response)
		assert.Equal(t, sip.StatusCode(486), res.StatusCode())
		assert.Empty(t, res.Reason())
		assert.True(t, res.IsClientError())
	})
}

func TestParseCompactAndUnknownHeaders(t *testing.T) {
	msg, err := ParseMessage([]byte(
		"MESSAGE sip:bob@biloxi.com SIP/2.0\n" +
			"v: SIP/2.0/TCP pc33.atlanta.com;branch=z9hG4bK776asdhds\n" +
			"f: <sip:alice@atlanta.com>;tag=1\n" +
			"t: <sip:bob@biloxi.com>\n" +
			"i: abc@atlanta.com\n" +
			"CSEQ: 2 MESSAGE\n" +
			"max-forwards: 69\n" +
			"m: <sip:alice@pc33.atlanta.com;transport=tcp>\n" +
			"c: text/plain\n" +
			"l: 5\n" +
			"k: 100rel, timer\n" +
			"Route: <sip:proxy.atlanta.com;lr>\n" +
			"X-Custom: foo\n" +
			"\n" +
			"hello",
	))
	require.NoError(t, err)

	req := msg.(*sip.Request)
	assert.Equal(t, "abc", req.CallID().LocalID)
	assert.Equal(t, uint32(69), req.MaxForwards().Val())
	assert.Equal(t, "tcp", req.Contacts()[0].Address.UriParams.GetOr("transport", ""))

	supported, ok := req.Supported()
	require.True(t, ok)
	assert.Equal(t, sip.SupportedHeader{"100rel", "timer"}, supported)

	route := req.GetHeader("route")
	require.NotNil(t, route)
	assert.Equal(t, "Route", route.Name())
	assert.Equal(t, "<sip:proxy.atlanta.com;lr>", route.Value())
	assert.Equal(t, "foo", req.GetHeader("x-custom").Value())
	assert.Equal(t, "hello", string(req.Body()))
}

func TestParseErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := ParseMessage(nil)
		assert.ErrorIs(t, err, sip.ErrEmptyMessage)

		_, err = ParseMessage([]byte("\r\n\r\n"))
		assert.ErrorIs(t, err, sip.ErrEmptyMessage)
	})

	t.Run("invalid start line", func(t *testing.T) {
		for _, line := range []string{
			"HELLO",
			"INVITE sip:bob@biloxi.com",
			"INVITE  sip:bob@biloxi.com SIP/2.0",
			"SIP/2.0 OK",
			"HTTP/1.1 200 OK",
		} {
			_, err := ParseMessage(testMessage(line, "Call-ID: abc", ""))
			require.Error(t, err, line)
			assert.ErrorIs(t, err, sip.ErrInvalidFormat, line)
			assert.Contains(t, err.Error(), "Invalid message type", line)
		}
	})

	valid := func(start string, replace map[string]string) []byte {
		lines := []string{start}
		for _, l := range inviteLines[1:10] {
			name, _, _ := strings.Cut(l, ":")
			if v, ok := replace[name]; ok {
				if v == "" {
					continue
				}
				l = name + ": " + v
			}
			lines = append(lines, l)
		}
		return testMessage(append(lines, "", "")...)
	}

	t.Run("bad version", func(t *testing.T) {
		_, err := ParseMessage(valid("INVITE sip:bob@biloxi.com SIP/3.0", nil))
		var perr *sip.ParseError
		require.True(t, errors.As(err, &perr))
		assert.ErrorIs(t, err, sip.ErrInvalidFormat)
		assert.Contains(t, err.Error(), "unsupported SIP version")
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := ParseMessage(valid("FOO sip:bob@biloxi.com SIP/2.0", nil))
		assert.ErrorIs(t, err, sip.ErrInvalidFormat)
		assert.NotErrorIs(t, err, sip.ErrMissingField)
	})

	t.Run("bad request uri", func(t *testing.T) {
		_, err := ParseMessage(valid("INVITE sip:bob@biloxi.com:abc SIP/2.0", nil))
		assert.ErrorIs(t, err, sip.ErrInvalidUri)
		assert.NotErrorIs(t, err, sip.ErrMissingField)
	})

	t.Run("status out of range", func(t *testing.T) {
		_, err := ParseMessage(valid("SIP/2.0 700 Weird", nil))
		assert.ErrorIs(t, err, sip.ErrInvalidFormat)
		assert.Contains(t, err.Error(), "out of range")
	})

	t.Run("missing mandatory header", func(t *testing.T) {
		_, err := ParseMessage(valid("INVITE sip:bob@biloxi.com SIP/2.0", map[string]string{"Call-ID": ""}))
		assert.ErrorIs(t, err, sip.ErrMissingField)
		assert.EqualError(t, err, "missing mandatory field Call-ID")
	})

	t.Run("duplicate header", func(t *testing.T) {
		data := valid("INVITE sip:bob@biloxi.com SIP/2.0", nil)
		data = bytes.Replace(data, []byte("CSeq: 314159 INVITE\r\n"), []byte("CSeq: 314159 INVITE\r\nCSeq: 314160 INVITE\r\n"), 1)
		_, err := ParseMessage(data)
		assert.ErrorIs(t, err, sip.ErrInvalidFormat)
		assert.Contains(t, err.Error(), "duplicate CSeq header")
	})

	t.Run("all header errors collected", func(t *testing.T) {
		_, err := ParseMessage(valid("INVITE sip:bob@biloxi.com SIP/2.0", map[string]string{
			"Via":  "SIP/2.0/UDP pc33.atlanta.com:port;branch=z9hG4bK1",
			"From": "sip:alice@atlanta.com;tag=1234",
			"CSeq": "abc INVITE",
			"To":   "",
		}))
		require.Error(t, err)

		var merr *sip.MultipleError
		require.True(t, errors.As(err, &merr))
		require.Len(t, merr.Errors, 4)
		assert.ErrorIs(t, merr.Errors[0], sip.ErrInvalidFormat)
		assert.Contains(t, merr.Errors[0].Error(), "invalid port")
		assert.ErrorIs(t, merr.Errors[1], sip.ErrInvalidFormat)
		assert.ErrorIs(t, merr.Errors[2], sip.ErrInvalidFormat)
		assert.Contains(t, merr.Errors[2].Error(), "CSeq")
		assert.ErrorIs(t, merr.Errors[3], sip.ErrMissingField)
		assert.Equal(t, "missing mandatory field To", merr.Errors[3].Error())
	})

	t.Run("contact uri", func(t *testing.T) {
		_, err := ParseMessage(valid("INVITE sip:bob@biloxi.com SIP/2.0", map[string]string{
			"Contact": "<sip:alice@pc33.atlanta.com:99999>",
		}))
		assert.ErrorIs(t, err, sip.ErrInvalidUri)
	})
}

func TestParserOptions(t *testing.T) {
	data := testMessage(
		"MESSAGE sip:bob@biloxi.com SIP/2.0",
		"Via: SIP/2.0/UDP pc33.atlanta.com;branch=z9hG4bK776asdhds",
		"To: <sip:bob@biloxi.com>",
		"From: <sip:alice@atlanta.com>;tag=1",
		"Call-ID: abc",
		"CSeq: 1 MESSAGE",
		"Max-Forwards: 70",
		`Contact: "Mr. Watson" <mailto:watson@bell-telephone.com>;q=0.1`,
		"",
		"",
	)

	t.Run("mailto", func(t *testing.T) {
		_, err := NewParser().Parse(data)
		assert.ErrorIs(t, err, sip.ErrInvalidUri)

		msg, err := NewParser(WithMailtoURIs(true)).Parse(data)
		require.NoError(t, err)
		contacts := msg.Contacts()
		require.Len(t, contacts, 1)
		assert.Equal(t, sip.SCHEME_MAILTO, contacts[0].Address.Scheme)
	})

	t.Run("logger", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewParser(WithParserLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
		_, err := p.Parse(data)
		require.Error(t, err)
		assert.Contains(t, buf.String(), `"header":"Contact"`)
		assert.Contains(t, buf.String(), "message rejected")
	})

	t.Run("metrics", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := NewMetrics(reg)
		p := NewParser(WithMetrics(m))

		_, err := p.Parse(data)
		require.Error(t, err)
		_, err = p.Parse(testMessage(inviteLines...))
		require.NoError(t, err)
		_, err = p.Parse([]byte("garbage"))
		require.Error(t, err)

		assert.Equal(t, float64(1), testutil.ToFloat64(m.messages.WithLabelValues(kindRequest, resultError)))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.messages.WithLabelValues(kindRequest, resultOK)))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.messages.WithLabelValues(kindUnknown, resultError)))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.headerErrors.WithLabelValues(sip.FieldContact)))
		assert.Equal(t, 3, testutil.CollectAndCount(m.messages))
	})
}

func BenchmarkParser(b *testing.B) {
	data := testMessage(inviteLines...)
	p := NewParser()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Parse(data); err != nil {
			b.Fatal(err)
		}
	}
}
