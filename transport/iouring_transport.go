//go:build linux && iouring

// The iceber binding reaches into syscall through go:linkname, so binaries
// built with this file need -ldflags=-checklinkname=0 on Go 1.23 and later.

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/iceber/iouring-go"
	bcerrors "github.com/nczempin/brandcaptcha-go/errors"
)

// IOURingTransport implements Transport over TCP with connect, send and
// receive submitted to an io_uring instance owned by the transport.
type IOURingTransport struct {
	iour           *iouring.IOURing
	fd             int
	ctx            context.Context
	connectTimeout time.Duration
	resolver       *net.Resolver
}

// NewIOURingTransport creates a new TCP transport with io_uring
func NewIOURingTransport(connectTimeout time.Duration) (*IOURingTransport, error) {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}

	// Queue depth of 32; a request never has more than one operation in flight
	iour, err := iouring.New(32)
	if err != nil {
		return nil, bcerrors.NewTransportError(
			bcerrors.TransportErrorIoUringInit,
			"failed to initialize io_uring",
			err,
		)
	}

	return &IOURingTransport{
		iour:           iour,
		fd:             -1,
		ctx:            context.Background(),
		connectTimeout: connectTimeout,
		resolver:       net.DefaultResolver,
	}, nil
}

// Connect resolves host and establishes a TCP connection using io_uring
func (t *IOURingTransport) Connect(ctx context.Context, host string, port int) error {
	if t.fd >= 0 {
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

	domain := syscall.AF_INET
	var sa syscall.Sockaddr
	if ip4 := addrs[0].IP.To4(); ip4 != nil {
		sa4 := &syscall.SockaddrInet4{Port: port}
		copy(sa4.Addr[:], ip4)
		sa = sa4
	} else {
		domain = syscall.AF_INET6
		sa6 := &syscall.SockaddrInet6{Port: port}
		copy(sa6.Addr[:], addrs[0].IP.To16())
		sa = sa6
	}

	fd, err := syscall.Socket(domain, syscall.SOCK_STREAM, 0)
	if err != nil {
		return bcerrors.NewTransportError(
			bcerrors.TransportErrorSocketCreateFailure,
			"failed to create socket",
			err,
		)
	}

	if err := syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, syscall.TCP_NODELAY, 1); err != nil {
		syscall.Close(fd)
		return bcerrors.NewTransportError(
			bcerrors.TransportErrorSocketCreateFailure,
			"failed to set TCP_NODELAY",
			err,
		)
	}

	connectCtx, cancel := context.WithTimeout(ctx, t.connectTimeout)
	defer cancel()

	addr := net.JoinHostPort(addrs[0].String(), fmt.Sprint(port))
	connectReq, err := iouring.Connect(fd, sa)
	if err != nil {
		syscall.Close(fd)
		return bcerrors.NewTransportError(
			bcerrors.TransportErrorSocketConnectFailure,
			"failed to prepare connect to "+addr,
			err,
		)
	}

	if _, err := t.submit(connectCtx, fd, connectReq,
		bcerrors.TransportErrorSocketConnectFailure, "failed to connect to "+addr); err != nil {
		syscall.Close(fd)
		return err
	}

	t.fd = fd
	t.ctx = ctx
	return nil
}

// Write sends data over the connection using io_uring
func (t *IOURingTransport) Write(buf []byte) (int, error) {
	if t.fd < 0 {
		return 0, bcerrors.NewTransportError(
			bcerrors.TransportErrorSocketWriteFailure,
			"not connected",
			nil,
		)
	}

	totalWritten := 0
	for totalWritten < len(buf) {
		n, err := t.submit(t.ctx, t.fd, iouring.Send(t.fd, buf[totalWritten:], 0),
			bcerrors.TransportErrorSocketWriteFailure, "write failed")
		if err != nil {
			return totalWritten, err
		}

		if n <= 0 {
			return totalWritten, bcerrors.NewTransportError(
				bcerrors.TransportErrorConnectionClosed,
				"connection closed during write",
				nil,
			)
		}

		totalWritten += n
	}

	return totalWritten, nil
}

// Read receives data from the connection using io_uring
func (t *IOURingTransport) Read(buf []byte) (int, error) {
	if t.fd < 0 {
		return 0, bcerrors.NewTransportError(
			bcerrors.TransportErrorSocketReadFailure,
			"not connected",
			nil,
		)
	}

	n, err := t.submit(t.ctx, t.fd, iouring.Recv(t.fd, buf, 0),
		bcerrors.TransportErrorSocketReadFailure, "read failed")
	if err != nil {
		return 0, err
	}

	if n == 0 && len(buf) > 0 {
		return 0, bcerrors.NewTransportError(
			bcerrors.TransportErrorConnectionClosed,
			"connection closed by peer",
			nil,
		)
	}

	return n, nil
}

// Close closes the socket and the io_uring instance
func (t *IOURingTransport) Close() error {
	var err error
	if t.fd >= 0 {
		if cerr := syscall.Close(t.fd); cerr != nil {
			err = bcerrors.NewTransportError(
				bcerrors.TransportErrorConnectionClosed,
				"failed to close socket",
				cerr,
			)
		}
		t.fd = -1
	}

	if t.iour != nil {
		t.iour.Close()
		t.iour = nil
	}

	return err
}

// submit queues one operation and waits for its completion or for ctx to end.
// The result channel is buffered so an abandoned completion never blocks the ring.
// It returns the raw completion result: bytes moved for send and recv, zero
// for connect. A negative result is the errno of the failed operation.
func (t *IOURingTransport) submit(ctx context.Context, fd int, req iouring.PrepRequest, code bcerrors.TransportError, message string) (int, error) {
	ch := make(chan iouring.Result, 1)
	if _, err := t.iour.SubmitRequest(req, ch); err != nil {
		return 0, bcerrors.NewTransportError(
			bcerrors.TransportErrorIoUringSubmit,
			"failed to submit request",
			err,
		)
	}

	select {
	case result := <-ch:
		res, err := completionResult(result)
		if err != nil {
			if errors.Is(err, syscall.ECANCELED) || errors.Is(err, iouring.ErrRequestCanceled) {
				return 0, bcerrors.NewTransportError(bcerrors.TransportErrorTimeout, message, err)
			}
			return 0, bcerrors.NewTransportError(code, message, err)
		}
		return res, nil
	case <-ctx.Done():
		// Shutting the socket down completes the pending operation in the kernel
		_ = syscall.Shutdown(fd, syscall.SHUT_RDWR)
		return 0, bcerrors.NewTransportError(bcerrors.TransportErrorTimeout, message, ctx.Err())
	}
}

// completionResult reads the kernel result of a completed request. Send and
// recv carry no resolver in the binding and connect only resolves an error,
// so the raw cqe result is the one value every operation reports.
func completionResult(result iouring.Result) (int, error) {
	if err := result.Err(); err != nil {
		return 0, err
	}

	req, ok := result.(iouring.Request)
	if !ok {
		return 0, fmt.Errorf("unexpected io_uring result %T", result)
	}

	res, err := req.GetRes()
	if err != nil {
		return 0, err
	}
	if res < 0 {
		return 0, syscall.Errno(-res)
	}
	return res, nil
}
