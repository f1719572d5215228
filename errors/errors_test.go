package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestError_Message(t *testing.T) {
	err := NewTransportError(TransportErrorDnsFailure, "failed to resolve api.ponta.co", io.EOF)

	msg := err.Error()
	if !strings.Contains(msg, "Transport error (DNS lookup failed)") {
		t.Errorf("Unexpected message: %q", msg)
	}
	if !strings.Contains(msg, "failed to resolve api.ponta.co") {
		t.Errorf("Message should include context: %q", msg)
	}
	if !strings.Contains(msg, "caused by: EOF") {
		t.Errorf("Message should include cause: %q", msg)
	}
}

func TestError_NilReceiver(t *testing.T) {
	var err *Error
	if err.Error() != "no error" {
		t.Errorf("Expected \"no error\", got %q", err.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	err := NewTransportError(TransportErrorSocketReadFailure, "read failed", io.ErrUnexpectedEOF)
	if !stderrors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("Expected errors.Is to reach the underlying error")
	}
}

func TestPredicates(t *testing.T) {
	transportErr := NewTransportError(TransportErrorTimeout, "", nil)
	protocolErr := NewProtocolError(ProtocolErrorMissingErrorCode, "")
	configErr := NewConfigurationError(ConfigErrorMissingPrivateKey, "")
	wrapped := fmt.Errorf("check answer: %w", configErr)

	if !IsTransport(transportErr) || IsProtocol(transportErr) || IsConfiguration(transportErr) {
		t.Error("Transport error misclassified")
	}
	if !IsProtocol(protocolErr) || IsTransport(protocolErr) {
		t.Error("Protocol error misclassified")
	}
	if !IsConfiguration(wrapped) {
		t.Error("Wrapped configuration error should be detected")
	}
	if !IsConfigurationCode(wrapped, ConfigErrorMissingPrivateKey) {
		t.Error("Expected MissingPrivateKey code")
	}
	if IsConfigurationCode(wrapped, ConfigErrorMissingRemoteIP) {
		t.Error("Did not expect MissingRemoteIP code")
	}
	if !IsTransportCode(transportErr, TransportErrorTimeout) {
		t.Error("Expected Timeout code")
	}
	if !IsProtocolCode(protocolErr, ProtocolErrorMissingErrorCode) {
		t.Error("Expected MissingErrorCode code")
	}
	if IsTransport(io.EOF) {
		t.Error("Plain errors are not transport errors")
	}
}
