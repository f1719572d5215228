package transport

import (
	"context"
	"net"

	bcerrors "github.com/nczempin/brandcaptcha-go/errors"
)

// UnixTransport implements the Transport interface using Unix domain sockets.
// It is meant for hosts that reach the verification service through a local
// forwarding proxy.
type UnixTransport struct {
	connTransport
	path string
}

// NewUnixTransport creates a new UnixTransport. When path is empty the host
// passed to Connect is used as the socket path.
func NewUnixTransport(path string) *UnixTransport {
	return &UnixTransport{path: path}
}

// Connect establishes a Unix domain socket connection.
// The port parameter is ignored for Unix sockets.
func (t *UnixTransport) Connect(ctx context.Context, host string, port int) error {
	if t.conn != nil {
		return bcerrors.NewTransportError(
			bcerrors.TransportErrorSocketConnectFailure,
			"already connected",
			nil,
		)
	}

	path := t.path
	if path == "" {
		path = host
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return dialError(ctx, err, "failed to connect to unix socket "+path)
	}

	t.conn = conn
	t.bind(ctx)
	return nil
}
