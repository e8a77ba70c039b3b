// File: protocol/status.go
// Package protocol
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// OPC UA status codes used by the asynchronous service layer.

package protocol

import "fmt"

// StatusCode is an OPC UA status code. The two most significant bits carry
// the severity: 00 good, 01 uncertain, 10 bad.
type StatusCode uint32

const (
	StatusGood                   StatusCode = 0x00000000
	StatusGoodCallAgain          StatusCode = 0x00A90000
	StatusBadUnexpectedError     StatusCode = 0x80010000
	StatusBadInternalError       StatusCode = 0x80020000
	StatusBadDecodingError       StatusCode = 0x80070000
	StatusBadEncodingError       StatusCode = 0x80060000
	StatusBadTimeout             StatusCode = 0x800A0000
	StatusBadServiceUnsupported  StatusCode = 0x800B0000
	StatusBadShutdown            StatusCode = 0x800C0000
	StatusBadServerNotConnected  StatusCode = 0x800D0000
	StatusBadNothingToDo         StatusCode = 0x800F0000
	StatusBadNotFound            StatusCode = 0x803E0000
	StatusBadRequestCancelled    StatusCode = 0x802C0000
	StatusBadTypeMismatch        StatusCode = 0x80740000
	StatusBadSecureChannelClosed StatusCode = 0x80860000
	StatusBadConnectionClosed    StatusCode = 0x80AE0000
)

var statusNames = map[StatusCode]string{
	StatusGood:                   "Good",
	StatusGoodCallAgain:          "GoodCallAgain",
	StatusBadUnexpectedError:     "BadUnexpectedError",
	StatusBadInternalError:       "BadInternalError",
	StatusBadDecodingError:       "BadDecodingError",
	StatusBadEncodingError:       "BadEncodingError",
	StatusBadTimeout:             "BadTimeout",
	StatusBadServiceUnsupported:  "BadServiceUnsupported",
	StatusBadShutdown:            "BadShutdown",
	StatusBadServerNotConnected:  "BadServerNotConnected",
	StatusBadNothingToDo:         "BadNothingToDo",
	StatusBadNotFound:            "BadNotFound",
	StatusBadRequestCancelled:    "BadRequestCancelledByClient",
	StatusBadTypeMismatch:        "BadTypeMismatch",
	StatusBadSecureChannelClosed: "BadSecureChannelClosed",
	StatusBadConnectionClosed:    "BadConnectionClosed",
}

// String returns the symbolic name, or the hex value for unknown codes.
func (s StatusCode) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("0x%08X", uint32(s))
}

// IsGood reports a good severity.
func (s StatusCode) IsGood() bool { return s&0xC0000000 == 0 }

// IsUncertain reports an uncertain severity.
func (s StatusCode) IsUncertain() bool { return s&0xC0000000 == 0x40000000 }

// IsBad reports a bad severity.
func (s StatusCode) IsBad() bool { return s&0x80000000 != 0 }

// Error lets a bad StatusCode travel as an error value.
func (s StatusCode) Error() string { return s.String() }
