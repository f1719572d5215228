package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"
	"time"

	bcerrors "github.com/nczempin/brandcaptcha-go/errors"
)

// connTransport holds the net.Conn plumbing shared by the TCP and unix transports.
type connTransport struct {
	conn net.Conn
	stop func() bool
}

// bind ties the lifetime of ctx to the connection: its deadline becomes the
// connection deadline and cancellation unblocks any pending Read or Write.
func (t *connTransport) bind(ctx context.Context) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetDeadline(deadline)
	}
	conn := t.conn
	t.stop = context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
}

// Write sends the whole buffer over the connection
func (t *connTransport) Write(buf []byte) (int, error) {
	if t.conn == nil {
		return 0, bcerrors.NewTransportError(
			bcerrors.TransportErrorSocketWriteFailure,
			"not connected",
			nil,
		)
	}

	n, err := t.conn.Write(buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return n, bcerrors.NewTransportError(bcerrors.TransportErrorTimeout, "write deadline exceeded", err)
		}
		if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
			return n, bcerrors.NewTransportError(bcerrors.TransportErrorConnectionClosed, "connection closed during write", err)
		}
		return n, bcerrors.NewTransportError(bcerrors.TransportErrorSocketWriteFailure, "write failed", err)
	}

	return n, nil
}

// Read receives data from the connection
func (t *connTransport) Read(buf []byte) (int, error) {
	if t.conn == nil {
		return 0, bcerrors.NewTransportError(
			bcerrors.TransportErrorSocketReadFailure,
			"not connected",
			nil,
		)
	}

	n, err := t.conn.Read(buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return n, bcerrors.NewTransportError(bcerrors.TransportErrorTimeout, "read deadline exceeded", err)
		}
		if errors.Is(err, io.EOF) {
			return n, bcerrors.NewTransportError(bcerrors.TransportErrorConnectionClosed, "connection closed by peer", err)
		}
		return n, bcerrors.NewTransportError(bcerrors.TransportErrorSocketReadFailure, "read failed", err)
	}

	return n, nil
}

// Close closes the connection. Closing twice is a no-op.
func (t *connTransport) Close() error {
	if t.stop != nil {
		t.stop()
		t.stop = nil
	}
	if t.conn == nil {
		return nil
	}

	err := t.conn.Close()
	t.conn = nil

	if err != nil {
		return bcerrors.NewTransportError(bcerrors.TransportErrorConnectionClosed, "failed to close socket", err)
	}

	return nil
}

func dialError(ctx context.Context, err error, message string) error {
	var netErr interface{ Timeout() bool }
	if ctx.Err() != nil || (errors.As(err, &netErr) && netErr.Timeout()) {
		return bcerrors.NewTransportError(bcerrors.TransportErrorTimeout, message, err)
	}
	return bcerrors.NewTransportError(bcerrors.TransportErrorSocketConnectFailure, message, err)
}
