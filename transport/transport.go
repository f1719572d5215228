package transport

import (
	"context"
	"time"
)

// Transport defines the interface for network transports.
// Implementations report an orderly close by the peer as a
// TransportErrorConnectionClosed error from Read.
type Transport interface {
	// Connect establishes a connection to the specified host and port.
	// The context bounds the connect phase and every later Read and Write.
	Connect(ctx context.Context, host string, port int) error

	// Write sends data over the connection
	// Returns the number of bytes written
	Write(buf []byte) (int, error)

	// Read receives data from the connection
	// Returns the number of bytes read
	Read(buf []byte) (int, error)

	// Close closes the connection and releases every resource held by the transport
	Close() error
}

// Factory builds a fresh, unconnected Transport. Callers that need one
// connection per request call it once per request.
type Factory func() (Transport, error)

// TCP returns a Factory producing TcpTransports.
func TCP(connectTimeout time.Duration) Factory {
	return func() (Transport, error) {
		return NewTcpTransport(connectTimeout), nil
	}
}

// Unix returns a Factory producing UnixTransports bound to path.
func Unix(path string) Factory {
	return func() (Transport, error) {
		return NewUnixTransport(path), nil
	}
}

// IOURing returns a Factory producing io_uring backed TCP transports.
func IOURing(connectTimeout time.Duration) Factory {
	return func() (Transport, error) {
		t, err := NewIOURingTransport(connectTimeout)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
}
