package control

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/torctl/internal/config"
)

// fakeControlPort is a minimal stand-in for the Tor ControlPort.
// It accepts one connection, reads command lines until "quit", replies
// with a canned payload, and closes the connection like the real daemon
// does after QUIT.
type fakeControlPort struct {
	listener net.Listener
	reply    string

	mu       sync.Mutex
	received []string
}

// startFakeControlPort starts the fake daemon on a random loopback port.
func startFakeControlPort(t *testing.T, reply string) *fakeControlPort {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	f := &fakeControlPort{listener: listener, reply: reply}
	t.Cleanup(func() { _ = listener.Close() })

	go f.serveOne()
	return f
}

// serveOne handles a single connection.
func (f *fakeControlPort) serveOne() {
	conn, err := f.listener.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		f.mu.Lock()
		f.received = append(f.received, line)
		f.mu.Unlock()
		if line == "quit" {
			break
		}
	}

	_, _ = conn.Write([]byte(f.reply))
}

// endpoint returns a ControlEndpoint pointing at the fake daemon.
func (f *fakeControlPort) endpoint(t *testing.T) config.ControlEndpoint {
	t.Helper()

	addr, ok := f.listener.Addr().(*net.TCPAddr)
	if !ok {
		t.Fatalf("unexpected listener address type %T", f.listener.Addr())
	}
	return config.ControlEndpoint{Host: "127.0.0.1", Port: addr.Port}
}

// receivedLines returns the command lines the fake daemon read.
func (f *fakeControlPort) receivedLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.received...)
}

// TestClientSend tests the normal command/reply exchange.
func TestClientSend(t *testing.T) {
	t.Parallel()

	t.Run("returns full accumulated reply", func(t *testing.T) {
		t.Parallel()

		reply := "250 OK\n250 OK\n250 closing connection\n"
		fake := startFakeControlPort(t, reply)

		client := NewClient(fake.endpoint(t), WithTimeout(5*time.Second))
		raw, err := client.Send(context.Background(), []string{`authenticate ""`, "signal newnym", "quit"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if raw != reply {
			t.Errorf("Send() = %q, expected %q", raw, reply)
		}
	})

	t.Run("writes batch joined by newline with trailing terminator", func(t *testing.T) {
		t.Parallel()

		fake := startFakeControlPort(t, "250 closing connection\n")

		client := NewClient(fake.endpoint(t), WithTimeout(5*time.Second))
		if _, err := client.Send(context.Background(), []string{`authenticate "secret"`, "signal newnym", "quit"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{`authenticate "secret"`, "signal newnym", "quit"}
		got := fake.receivedLines()
		if len(got) != len(want) {
			t.Fatalf("daemon read %d lines %v, expected %d", len(got), got, len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("line %d = %q, expected %q", i, got[i], want[i])
			}
		}
	})

	t.Run("empty batch returns ErrEmptyBatch", func(t *testing.T) {
		t.Parallel()

		client := NewClient(config.NewControlEndpoint())
		_, err := client.Send(context.Background(), nil)
		if !errors.Is(err, ErrEmptyBatch) {
			t.Fatalf("expected ErrEmptyBatch, got %v", err)
		}
	})
}

// TestClientSendTransportError tests connection-level failure handling.
func TestClientSendTransportError(t *testing.T) {
	t.Parallel()

	t.Run("connection refused surfaces as TransportError with hint", func(t *testing.T) {
		t.Parallel()

		// Grab a port and close the listener so nothing accepts on it.
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		addr, ok := listener.Addr().(*net.TCPAddr)
		if !ok {
			t.Fatalf("unexpected listener address type %T", listener.Addr())
		}
		_ = listener.Close()

		endpoint := config.ControlEndpoint{Host: "127.0.0.1", Port: addr.Port}
		client := NewClient(endpoint, WithTimeout(2*time.Second))

		_, err = client.Send(context.Background(), []string{"quit"})
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			t.Fatalf("expected *TransportError, got %T: %v", err, err)
		}
		if !strings.Contains(err.Error(), RemediationHint) {
			t.Errorf("error %q does not contain the remediation hint", err.Error())
		}
	})

	t.Run("context cancellation aborts the wait", func(t *testing.T) {
		t.Parallel()

		// A daemon that never replies and never closes.
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		t.Cleanup(func() { _ = listener.Close() })
		go func() {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			// Hold the connection open without responding.
			time.Sleep(10 * time.Second)
			_ = conn.Close()
		}()

		addr, ok := listener.Addr().(*net.TCPAddr)
		if !ok {
			t.Fatalf("unexpected listener address type %T", listener.Addr())
		}
		endpoint := config.ControlEndpoint{Host: "127.0.0.1", Port: addr.Port}
		client := NewClient(endpoint, WithTimeout(0)) // no deadline: ctx must cut the wait

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_, err = client.Send(ctx, []string{"quit"})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded in chain, got %v", err)
		}
	})

	t.Run("deadline expiry when daemon stays silent", func(t *testing.T) {
		t.Parallel()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		t.Cleanup(func() { _ = listener.Close() })
		go func() {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			time.Sleep(10 * time.Second)
			_ = conn.Close()
		}()

		addr, ok := listener.Addr().(*net.TCPAddr)
		if !ok {
			t.Fatalf("unexpected listener address type %T", listener.Addr())
		}
		endpoint := config.ControlEndpoint{Host: "127.0.0.1", Port: addr.Port}
		client := NewClient(endpoint, WithTimeout(100*time.Millisecond))

		_, err = client.Send(context.Background(), []string{"quit"})
		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			t.Fatalf("expected *TransportError, got %T: %v", err, err)
		}
	})
}

// TestUnavailable tests the capability-gated fallback implementation.
func TestUnavailable(t *testing.T) {
	t.Parallel()

	var ch Channel = Unavailable{}
	_, err := ch.Send(context.Background(), []string{"quit"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

// TestDetect verifies the startup capability selection.
func TestDetect(t *testing.T) {
	t.Parallel()

	ch := Detect(config.NewControlEndpoint())
	if _, ok := ch.(*Client); !ok {
		t.Fatalf("expected *Client on a native platform, got %T", ch)
	}
}

// TestWithHint tests the idempotent hint attachment.
func TestWithHint(t *testing.T) {
	t.Parallel()

	t.Run("nil stays nil", func(t *testing.T) {
		t.Parallel()

		if err := WithHint(nil); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
	})

	t.Run("hint is appended once", func(t *testing.T) {
		t.Parallel()

		base := errors.New("connection refused")
		hinted := WithHint(base)
		if !strings.Contains(hinted.Error(), RemediationHint) {
			t.Fatalf("hint missing from %q", hinted.Error())
		}
		if !errors.Is(hinted, base) {
			t.Error("hinted error lost the original error chain")
		}
	})

	t.Run("second attachment is a no-op", func(t *testing.T) {
		t.Parallel()

		hinted := WithHint(errors.New("connection refused"))
		twice := WithHint(hinted)
		if twice != hinted {
			t.Errorf("expected identical error, got %v", twice)
		}
		if strings.Count(twice.Error(), RemediationHint) != 1 {
			t.Errorf("hint duplicated in %q", twice.Error())
		}
	})
}

// TestProtocolError tests the protocol failure error type.
func TestProtocolError(t *testing.T) {
	t.Parallel()

	raw := "515 Something went wrong\n"
	err := &ProtocolError{Raw: raw}

	if !strings.Contains(err.Error(), "Error communicating with Tor ControlPort") {
		t.Errorf("message %q missing preamble", err.Error())
	}
	if !strings.Contains(err.Error(), raw) {
		t.Errorf("message %q missing raw reply", err.Error())
	}
}
