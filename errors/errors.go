package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType int

const (
	ErrorNone ErrorType = iota
	ErrorTransport
	ErrorProtocol
	ErrorConfiguration
	ErrorInvalidArgument
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTransport:
		return "Transport error"
	case ErrorProtocol:
		return "Protocol error"
	case ErrorConfiguration:
		return "Configuration error"
	case ErrorInvalidArgument:
		return "Invalid argument"
	default:
		return "Unknown error"
	}
}

// TransportError represents transport-layer specific errors
type TransportError int

const (
	TransportErrorNone TransportError = iota
	TransportErrorSocketCreateFailure
	TransportErrorSocketConnectFailure
	TransportErrorSocketReadFailure
	TransportErrorSocketWriteFailure
	TransportErrorConnectionClosed
	TransportErrorDnsFailure
	TransportErrorTimeout
	TransportErrorIoUringInit
	TransportErrorIoUringSubmit
)

func (e TransportError) String() string {
	switch e {
	case TransportErrorSocketCreateFailure:
		return "socket creation failed"
	case TransportErrorSocketConnectFailure:
		return "socket connection failed"
	case TransportErrorSocketReadFailure:
		return "socket read failed"
	case TransportErrorSocketWriteFailure:
		return "socket write failed"
	case TransportErrorConnectionClosed:
		return "connection closed"
	case TransportErrorDnsFailure:
		return "DNS lookup failed"
	case TransportErrorTimeout:
		return "timed out"
	case TransportErrorIoUringInit:
		return "io_uring initialization failed"
	case TransportErrorIoUringSubmit:
		return "io_uring submission failed"
	default:
		return fmt.Sprintf("transport error %d", int(e))
	}
}

// ProtocolError represents protocol-layer specific errors
type ProtocolError int

const (
	ProtocolErrorNone ProtocolError = iota
	ProtocolErrorInvalidStatusLine
	ProtocolErrorInvalidHeader
	ProtocolErrorMessageTooLarge
	ProtocolErrorIncompleteResponse
	ProtocolErrorUnexpectedStatus
	ProtocolErrorEmptyAnswer
	ProtocolErrorMissingErrorCode
)

func (e ProtocolError) String() string {
	switch e {
	case ProtocolErrorInvalidStatusLine:
		return "invalid status line"
	case ProtocolErrorInvalidHeader:
		return "invalid header"
	case ProtocolErrorMessageTooLarge:
		return "message too large"
	case ProtocolErrorIncompleteResponse:
		return "incomplete response"
	case ProtocolErrorUnexpectedStatus:
		return "unexpected HTTP status"
	case ProtocolErrorEmptyAnswer:
		return "empty answer"
	case ProtocolErrorMissingErrorCode:
		return "missing error code"
	default:
		return fmt.Sprintf("protocol error %d", int(e))
	}
}

// ConfigurationError represents misuse of the library by the integrating
// application, such as calling it without the keys it needs.
type ConfigurationError int

const (
	ConfigErrorNone ConfigurationError = iota
	ConfigErrorMissingPrivateKey
	ConfigErrorMissingRemoteIP
	ConfigErrorMissingPublicKey
	ConfigErrorInvalidSetting
)

func (e ConfigurationError) String() string {
	switch e {
	case ConfigErrorMissingPrivateKey:
		return "missing private key"
	case ConfigErrorMissingRemoteIP:
		return "missing remote ip"
	case ConfigErrorMissingPublicKey:
		return "missing public key"
	case ConfigErrorInvalidSetting:
		return "invalid setting"
	default:
		return fmt.Sprintf("configuration error %d", int(e))
	}
}

// Error is the single error type returned by every package in this module
type Error struct {
	Type          ErrorType
	TransportErr  TransportError
	ProtocolErr   ProtocolError
	ConfigErr     ConfigurationError
	Message       string
	UnderlyingErr error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "no error"
	}

	var typeStr string
	switch e.Type {
	case ErrorTransport:
		typeStr = fmt.Sprintf("%s (%s)", e.Type, e.TransportErr)
	case ErrorProtocol:
		typeStr = fmt.Sprintf("%s (%s)", e.Type, e.ProtocolErr)
	case ErrorConfiguration:
		typeStr = fmt.Sprintf("%s (%s)", e.Type, e.ConfigErr)
	default:
		typeStr = e.Type.String()
	}

	if e.Message != "" {
		typeStr = fmt.Sprintf("%s: %s", typeStr, e.Message)
	}

	if e.UnderlyingErr != nil {
		return fmt.Sprintf("%s (caused by: %v)", typeStr, e.UnderlyingErr)
	}

	return typeStr
}

// Unwrap returns the underlying error for error chain support
func (e *Error) Unwrap() error {
	return e.UnderlyingErr
}

// NewTransportError creates a new transport error
func NewTransportError(err TransportError, message string, underlying error) *Error {
	return &Error{
		Type:          ErrorTransport,
		TransportErr:  err,
		Message:       message,
		UnderlyingErr: underlying,
	}
}

// NewProtocolError creates a new protocol error
func NewProtocolError(err ProtocolError, message string) *Error {
	return &Error{
		Type:        ErrorProtocol,
		ProtocolErr: err,
		Message:     message,
	}
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(err ConfigurationError, message string) *Error {
	return &Error{
		Type:      ErrorConfiguration,
		ConfigErr: err,
		Message:   message,
	}
}

// NewInvalidArgumentError creates a new invalid argument error
func NewInvalidArgumentError(message string) *Error {
	return &Error{
		Type:    ErrorInvalidArgument,
		Message: message,
	}
}

// As finds the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsTransport reports whether err carries a transport error.
func IsTransport(err error) bool {
	return isType(err, ErrorTransport)
}

// IsProtocol reports whether err carries a protocol error.
func IsProtocol(err error) bool {
	return isType(err, ErrorProtocol)
}

// IsConfiguration reports whether err carries a configuration error.
func IsConfiguration(err error) bool {
	return isType(err, ErrorConfiguration)
}

// IsTransportCode reports whether err is a transport error with the given code.
func IsTransportCode(err error, code TransportError) bool {
	e, ok := As(err)
	return ok && e.Type == ErrorTransport && e.TransportErr == code
}

// IsProtocolCode reports whether err is a protocol error with the given code.
func IsProtocolCode(err error, code ProtocolError) bool {
	e, ok := As(err)
	return ok && e.Type == ErrorProtocol && e.ProtocolErr == code
}

// IsConfigurationCode reports whether err is a configuration error with the given code.
func IsConfigurationCode(err error, code ConfigurationError) bool {
	e, ok := As(err)
	return ok && e.Type == ErrorConfiguration && e.ConfigErr == code
}

func isType(err error, t ErrorType) bool {
	e, ok := As(err)
	return ok && e.Type == t
}
