package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// newHubServer upgrades every request and attaches the resulting connection
// under the user named in the "user" query parameter.
func newHubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(_ *http.Request) bool { return true },
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hub.Attach(NewConnection(r.URL.Query().Get("user"), ws))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user=" + userID
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", userID, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func waitForConnections(t *testing.T, hub *Hub, userID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ConnectionCount(userID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("user %s has %d connections, want %d", userID, hub.ConnectionCount(userID), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readText(t *testing.T, client *websocket.Conn) string {
	t.Helper()
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func TestPushToUserReachesAllDevices(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	srv := newHubServer(t, hub)

	phone := dial(t, srv, "alice")
	laptop := dial(t, srv, "alice")
	other := dial(t, srv, "bob")
	waitForConnections(t, hub, "alice", 2)
	waitForConnections(t, hub, "bob", 1)

	delivered := hub.PushToUser("alice", []byte("hello"))
	if delivered != 2 {
		t.Fatalf("delivered to %d connections, want 2", delivered)
	}
	if got := readText(t, phone); got != "hello" {
		t.Fatalf("phone received %q", got)
	}
	if got := readText(t, laptop); got != "hello" {
		t.Fatalf("laptop received %q", got)
	}

	// bob's socket must stay silent
	_ = other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Fatal("bob received a push addressed to alice")
	}
}

func TestPushToUnknownUser(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	if delivered := hub.PushToUser("ghost", []byte("x")); delivered != 0 {
		t.Fatalf("delivered %d, want 0", delivered)
	}
}

func TestPushToUsersSumsDeliveries(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	srv := newHubServer(t, hub)

	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")
	waitForConnections(t, hub, "alice", 1)
	waitForConnections(t, hub, "bob", 1)

	delivered := hub.PushToUsers([]string{"alice", "bob", "ghost"}, []byte("fanout"))
	if delivered != 2 {
		t.Fatalf("delivered %d, want 2", delivered)
	}
	if got := readText(t, alice); got != "fanout" {
		t.Fatalf("alice received %q", got)
	}
	if got := readText(t, bob); got != "fanout" {
		t.Fatalf("bob received %q", got)
	}
}

func TestDetachDropsUserChannel(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	srv := newHubServer(t, hub)

	var attached *Connection
	dial(t, srv, "carol")
	waitForConnections(t, hub, "carol", 1)

	hub.mu.RLock()
	for _, conn := range hub.users["carol"] {
		attached = conn
	}
	hub.mu.RUnlock()

	hub.Detach(attached)
	if hub.ConnectionCount("carol") != 0 {
		t.Fatal("connection still tracked after Detach")
	}
	if delivered := hub.PushToUser("carol", []byte("x")); delivered != 0 {
		t.Fatalf("delivered %d after detach, want 0", delivered)
	}
}

func TestSendAfterClose(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	dial(t, srv, "dave")
	waitForConnections(t, hub, "dave", 1)

	hub.mu.RLock()
	var conn *Connection
	for _, c := range hub.users["dave"] {
		conn = c
	}
	hub.mu.RUnlock()

	conn.Close(websocket.CloseNormalClosure, "bye")
	for i := 0; i < 100; i++ {
		if err := conn.Send([]byte("late")); err != ErrConnectionClosed {
			t.Fatalf("send %d: expected ErrConnectionClosed, got %v", i, err)
		}
	}
}

func TestConcurrentSendAndClose(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	dial(t, srv, "erin")
	waitForConnections(t, hub, "erin", 1)

	hub.mu.RLock()
	var conn *Connection
	for _, c := range hub.users["erin"] {
		conn = c
	}
	hub.mu.RUnlock()

	// senders racing a disconnect must only ever see ErrConnectionClosed,
	// never a panic from writing to a torn-down connection
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = conn.Send([]byte("racing"))
			}
		}()
	}
	conn.Close(websocket.CloseGoingAway, "teardown race")
	wg.Wait()

	if err := conn.Send([]byte("after")); err != ErrConnectionClosed {
		t.Fatalf("expected ErrConnectionClosed, got %v", err)
	}
}
