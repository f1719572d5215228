package transport

import (
	"context"
	"net"
	"strconv"
	"time"

	bcerrors "github.com/nczempin/brandcaptcha-go/errors"
)

// DefaultConnectTimeout bounds the TCP handshake when no timeout is given.
const DefaultConnectTimeout = 10 * time.Second

// TcpTransport implements the Transport interface using TCP sockets
type TcpTransport struct {
	connTransport
	connectTimeout time.Duration
	resolver       *net.Resolver
}

// NewTcpTransport creates a new TcpTransport instance
func NewTcpTransport(connectTimeout time.Duration) *TcpTransport {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	return &TcpTransport{
		connectTimeout: connectTimeout,
		resolver:       net.DefaultResolver,
	}
}

// Connect resolves host and establishes a TCP connection to it
func (t *TcpTransport) Connect(ctx context.Context, host string, port int) error {
	if t.conn != nil {
		return bcerrors.NewTransportError(
			bcerrors.TransportErrorSocketConnectFailure,
			"already connected",
			nil,
		)
	}

	addrs, err := t.resolver.LookupIPAddr(ctx, host)
	if err != nil || len(addrs) == 0 {
		return bcerrors.NewTransportError(
			bcerrors.TransportErrorDnsFailure,
			"failed to resolve "+host,
			err,
		)
	}

	addr := net.JoinHostPort(addrs[0].String(), strconv.Itoa(port))
	dialer := net.Dialer{Timeout: t.connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return dialError(ctx, err, "failed to connect to "+addr)
	}

	// Set TCP_NODELAY: the whole request goes out in a single write
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			conn.Close()
			return bcerrors.NewTransportError(
				bcerrors.TransportErrorSocketCreateFailure,
				"failed to set TCP_NODELAY",
				err,
			)
		}
	}

	t.conn = conn
	t.bind(ctx)
	return nil
}
