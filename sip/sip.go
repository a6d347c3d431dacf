package sip

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// Version is the only SIP version this package handles.
	Version = "2.0"

	RFC3261BranchMagicCookie = "z9hG4bK"

	abnfWs = " \t"
)

// GenerateBranch returns random unique branch ID.
func GenerateBranch() string {
	return RFC3261BranchMagicCookie + "." + uuid.NewString()
}

// GenerateCallID returns random Call-ID. Host is optional.
func GenerateCallID(host string) CallIDHeader {
	return CallIDHeader{
		LocalID: strings.ReplaceAll(uuid.NewString(), "-", ""),
		Host:    host,
	}
}

// GenerateTag returns random tag value for From or To header.
func GenerateTag() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String()[:18], "-", "")
}

// MessageShortString dumps short version of msg. Used only for logging
func MessageShortString(msg Message) string {
	switch m := msg.(type) {
	case *Request:
		return m.Short()
	case *Response:
		return m.Short()
	}
	return "Unknown message type"
}
