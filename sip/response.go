package sip

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Response RFC 3261 - 7.2.
type Response struct {
	MessageData
	status StatusCode
	reason string
}

func (res *Response) Short() string {
	if res == nil {
		return "<nil>"
	}

	return fmt.Sprintf("response status=%d reason=%s call-id=%s",
		res.StatusCode(),
		res.Reason(),
		res.callIDString(),
	)
}

func (res *Response) StatusCode() StatusCode {
	return res.status
}

// Reason returns reason phrase. It can be empty.
func (res *Response) Reason() string {
	return res.reason
}

// StartLine returns Response Status Line - RFC 2361 7.2.
func (res *Response) StartLine() string {
	var buffer strings.Builder
	res.StartLineWrite(&buffer)
	return buffer.String()
}

func (res *Response) StartLineWrite(buffer io.StringWriter) {
	buffer.WriteString("SIP/")
	buffer.WriteString(res.sipVersion)
	buffer.WriteString(" ")
	buffer.WriteString(strconv.Itoa(int(res.status)))
	buffer.WriteString(" ")
	buffer.WriteString(res.reason)
}

func (res *Response) String() string {
	return messageString(res)
}

func (res *Response) StringWrite(buffer io.StringWriter) {
	res.RenderWrite(buffer, RenderOptions{})
}

// RenderWrite writes response with given options, like compact header names.
func (res *Response) RenderWrite(buffer io.StringWriter, opts RenderOptions) {
	messageWrite(res.StartLineWrite, &res.MessageData, buffer, opts)
}

func (res *Response) IsProvisional() bool {
	return res.StatusCode() < 200
}

func (res *Response) IsSuccess() bool {
	return res.StatusCode() >= 200 && res.StatusCode() < 300
}

func (res *Response) IsRedirection() bool {
	return res.StatusCode() >= 300 && res.StatusCode() < 400
}

func (res *Response) IsClientError() bool {
	return res.StatusCode() >= 400 && res.StatusCode() < 500
}

func (res *Response) IsServerError() bool {
	return res.StatusCode() >= 500 && res.StatusCode() < 600
}

func (res *Response) IsGlobalError() bool {
	return res.StatusCode() >= 600
}

// IsAck checks CSeq method of response.
func (res *Response) IsAck() bool {
	return res.cseq != nil && res.cseq.MethodName == ACK
}

func (res *Response) IsCancel() bool {
	return res.cseq != nil && res.cseq.MethodName == CANCEL
}
