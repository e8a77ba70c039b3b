// File: protocol/securechannel.go
// Package protocol
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// SecureChannel and Cancel services.

package protocol

import "time"

// SecurityTokenRequestType distinguishes the initial OPN from a renewal.
type SecurityTokenRequestType uint32

const (
	TokenIssue SecurityTokenRequestType = iota
	TokenRenew
)

// MessageSecurityMode of the channel.
type MessageSecurityMode uint32

const (
	SecurityModeInvalid MessageSecurityMode = iota
	SecurityModeNone
	SecurityModeSign
	SecurityModeSignAndEncrypt
)

// ChannelSecurityToken is the time-limited credential securing a channel.
type ChannelSecurityToken struct {
	ChannelID       uint32    `json:"channelId"`
	TokenID         uint32    `json:"tokenId"`
	CreatedAt       time.Time `json:"createdAt"`
	RevisedLifetime uint32    `json:"revisedLifetime"` // milliseconds
}

// Lifetime returns RevisedLifetime as a duration.
func (t ChannelSecurityToken) Lifetime() time.Duration {
	return time.Duration(t.RevisedLifetime) * time.Millisecond
}

type OpenSecureChannelRequest struct {
	Header                RequestHeader            `json:"header"`
	ClientProtocolVersion uint32                   `json:"clientProtocolVersion"`
	RequestType           SecurityTokenRequestType `json:"requestType"`
	SecurityMode          MessageSecurityMode      `json:"securityMode"`
	ClientNonce           []byte                   `json:"clientNonce,omitempty"`
	RequestedLifetime     uint32                   `json:"requestedLifetime"` // milliseconds
}

func (*OpenSecureChannelRequest) TypeName() string                 { return "OpenSecureChannelRequest" }
func (r *OpenSecureChannelRequest) RequestHeader() *RequestHeader { return &r.Header }

type OpenSecureChannelResponse struct {
	Header                ResponseHeader       `json:"header"`
	ServerProtocolVersion uint32               `json:"serverProtocolVersion"`
	SecurityToken         ChannelSecurityToken `json:"securityToken"`
	ServerNonce           []byte               `json:"serverNonce,omitempty"`
}

func (*OpenSecureChannelResponse) TypeName() string                  { return "OpenSecureChannelResponse" }
func (r *OpenSecureChannelResponse) ResponseHeader() *ResponseHeader { return &r.Header }

// CancelRequest asks the server to cancel every outstanding request that
// carries RequestHandle.
type CancelRequest struct {
	Header        RequestHeader `json:"header"`
	RequestHandle uint32        `json:"requestHandle"`
}

func (*CancelRequest) TypeName() string                 { return "CancelRequest" }
func (r *CancelRequest) RequestHeader() *RequestHeader { return &r.Header }

type CancelResponse struct {
	Header      ResponseHeader `json:"header"`
	CancelCount uint32         `json:"cancelCount"`
}

func (*CancelResponse) TypeName() string                  { return "CancelResponse" }
func (r *CancelResponse) ResponseHeader() *ResponseHeader { return &r.Header }

func init() {
	RegisterMessage(func() Message { return &OpenSecureChannelRequest{} })
	RegisterMessage(func() Message { return &OpenSecureChannelResponse{} })
	RegisterMessage(func() Message { return &CancelRequest{} })
	RegisterMessage(func() Message { return &CancelResponse{} })
}
