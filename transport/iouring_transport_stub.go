//go:build !linux || !iouring

package transport

import (
	"context"
	"time"

	bcerrors "github.com/nczempin/brandcaptcha-go/errors"
)

// IOURingTransport is only available on linux builds tagged iouring.
type IOURingTransport struct{}

// NewIOURingTransport always fails without io_uring support compiled in
func NewIOURingTransport(connectTimeout time.Duration) (*IOURingTransport, error) {
	return nil, bcerrors.NewTransportError(
		bcerrors.TransportErrorIoUringInit,
		"io_uring support not compiled in (linux with -tags iouring)",
		nil,
	)
}

func (t *IOURingTransport) Connect(ctx context.Context, host string, port int) error {
	return errUnsupported()
}

func (t *IOURingTransport) Write(buf []byte) (int, error) { return 0, errUnsupported() }

func (t *IOURingTransport) Read(buf []byte) (int, error) { return 0, errUnsupported() }

func (t *IOURingTransport) Close() error { return nil }

func errUnsupported() error {
	return bcerrors.NewTransportError(bcerrors.TransportErrorIoUringInit, "io_uring support not compiled in (linux with -tags iouring)", nil)
}
