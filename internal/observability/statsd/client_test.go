package statsd

import (
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		metric string
		global map[string]string
		local  map[string]string
		want   string
	}{
		{"plain", "", "auth.login", nil, nil, "auth.login:1|c"},
		{"prefixed", "kjconnect", "auth.login", nil, nil, "kjconnect.auth.login:1|c"},
		{"normalized", "kjconnect", " guard/decision..x ", nil, nil, "kjconnect.guard_decision.x:1|c"},
		{"empty name", "kjconnect", "  ", nil, nil, ""},
		{
			"tags merged and sorted", "", "auth.login",
			map[string]string{"env": "prod", " service ": " web "},
			map[string]string{"result": " success ", "": "ignored", "env": "stage"},
			"auth.login:1|c|#env:stage,result:success,service:web",
		},
	}
	for _, tt := range tests {
		if got := encode(tt.prefix, tt.metric, "1", "c", tt.global, tt.local); got != tt.want {
			t.Fatalf("%s: encode = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestClientWritesOverConnection(t *testing.T) {
	t.Parallel()

	clientConn, peerConn := net.Pipe()
	defer peerConn.Close()

	c := &Client{prefix: "kjconnect", conn: clientConn, logger: slog.Default()}
	lines := make(chan string, 1)
	go func() {
		buf := make([]byte, 256)
		n, _ := peerConn.Read(buf)
		lines <- string(buf[:n])
	}()

	c.Timing("catalog.post.duration", 1500*time.Millisecond, map[string]string{"kind": "event"})

	select {
	case got := <-lines:
		if got != "kjconnect.catalog.post.duration:1500|ms|#kind:event" {
			t.Fatalf("unexpected line %q", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no metric written")
	}
}

func TestClientEnabledAndClose(t *testing.T) {
	t.Parallel()

	clientConn, peerConn := net.Pipe()
	defer peerConn.Close()

	c := &Client{conn: clientConn}
	if !c.Enabled() {
		t.Fatal("expected Enabled with an open connection")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if c.Enabled() {
		t.Fatal("expected disabled after Close")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}

	var nilClient *Client
	nilClient.Count("x", 1, nil)
	if nilClient.Enabled() {
		t.Fatal("nil client should report disabled")
	}
	if err := nilClient.Close(); err != nil {
		t.Fatalf("nil client Close error: %v", err)
	}
}

func TestNewClientDisabledWithoutAddress(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{Enabled: true, Address: "   "})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	if c.Enabled() {
		t.Fatal("expected client to stay disabled without an address")
	}
	c.Count("auth.login", 1, nil)
}

func TestNewClientDialError(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{Enabled: true, Address: "bad address"})
	if err == nil || !strings.Contains(err.Error(), "statsd dial") {
		t.Fatalf("expected dial error, got %v", err)
	}
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder
	r.Count("auth.login", 1, map[string]string{"result": "success"})
	r.Timing("catalog.post.duration", time.Second, nil)

	if got := len(r.Samples()); got != 2 {
		t.Fatalf("Samples len = %d, want 2", got)
	}
	logins := r.Named("auth.login")
	if len(logins) != 1 || logins[0].Tags["result"] != "success" {
		t.Fatalf("unexpected login samples %+v", logins)
	}
}
