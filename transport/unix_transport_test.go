package transport

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	bcerrors "github.com/nczempin/brandcaptcha-go/errors"
)

func setupUnixTestServer(t *testing.T, serverLogic func(net.Conn)) (string, func()) {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "verify.sock")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to create unix socket server: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		serverLogic(conn)
		conn.Close()
	}()

	cleanup := func() {
		listener.Close()
		<-done
	}

	return socketPath, cleanup
}

func TestUnixTransport_RoundTrip(t *testing.T) {
	socketPath, cleanup := setupUnixTestServer(t, func(conn net.Conn) {
		buf := make([]byte, 64)
		n, _ := conn.Read(buf)
		conn.Write(buf[:n])
	})
	defer cleanup()

	transport := NewUnixTransport(socketPath)
	// Host is ignored when the transport is bound to a path
	if err := transport.Connect(context.Background(), "api.ponta.co", 80); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer transport.Close()

	if _, err := transport.Write([]byte("ping")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	buf := make([]byte, 64)
	n, err := transport.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(buf[:n]) != "ping" {
		t.Errorf("Expected echo %q, got %q", "ping", string(buf[:n]))
	}

	_, err = transport.Read(buf)
	expectTransportCode(t, err, bcerrors.TransportErrorConnectionClosed)
}

func TestUnixTransport_HostAsPath(t *testing.T) {
	socketPath, cleanup := setupUnixTestServer(t, func(conn net.Conn) {})
	defer cleanup()

	transport := NewUnixTransport("")
	if err := transport.Connect(context.Background(), socketPath, 0); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	transport.Close()
}

func TestUnixTransport_Connect_Failure(t *testing.T) {
	transport := NewUnixTransport(filepath.Join(t.TempDir(), "missing.sock"))
	err := transport.Connect(context.Background(), "", 0)

	expectTransportCode(t, err, bcerrors.TransportErrorSocketConnectFailure)
}

func TestUnixTransport_Read_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	socketPath, cleanup := setupUnixTestServer(t, func(conn net.Conn) {
		<-release
	})
	defer cleanup()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	transport := NewUnixTransport(socketPath)
	if err := transport.Connect(ctx, "", 0); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer transport.Close()

	_, err := transport.Read(make([]byte, 8))
	expectTransportCode(t, err, bcerrors.TransportErrorTimeout)
}
