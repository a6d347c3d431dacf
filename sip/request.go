package sip

import (
	"fmt"
	"io"
	"strings"
)

// Request RFC 3261 - 7.1.
type Request struct {
	MessageData
	Method    RequestMethod
	Recipient Uri
}

func (req *Request) Short() string {
	if req == nil {
		return "<nil>"
	}

	return fmt.Sprintf("request method=%s Recipient=%s call-id=%s",
		req.Method,
		req.Recipient.String(),
		req.callIDString(),
	)
}

// StartLine returns Request Line - RFC 2361 7.1.
func (req *Request) StartLine() string {
	var buffer strings.Builder
	req.StartLineWrite(&buffer)
	return buffer.String()
}

func (req *Request) StartLineWrite(buffer io.StringWriter) {
	buffer.WriteString(string(req.Method))
	buffer.WriteString(" ")
	req.Recipient.StringWrite(buffer)
	buffer.WriteString(" SIP/")
	buffer.WriteString(req.sipVersion)
}

func (req *Request) String() string {
	return messageString(req)
}

func (req *Request) StringWrite(buffer io.StringWriter) {
	req.RenderWrite(buffer, RenderOptions{})
}

// RenderWrite writes request with given options, like compact header names.
func (req *Request) RenderWrite(buffer io.StringWriter, opts RenderOptions) {
	messageWrite(req.StartLineWrite, &req.MessageData, buffer, opts)
}

func (req *Request) IsInvite() bool {
	return req.Method == INVITE
}

func (req *Request) IsAck() bool {
	return req.Method == ACK
}

func (req *Request) IsCancel() bool {
	return req.Method == CANCEL
}

func (msg *MessageData) callIDString() string {
	if msg.callID == nil {
		return ""
	}
	return msg.callID.Value()
}
