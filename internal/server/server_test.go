package server_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"postbox/internal/client"
	"postbox/internal/domain"
	"postbox/internal/server"
	"postbox/internal/server/config"
)

// startServer runs a server on a random port and returns its address.
func startServer(t *testing.T) string {
	t.Helper()
	cfg, err := config.Load([]byte(`
Address = "127.0.0.1:0"

[Logging]
Disable = true
`))
	require.NoError(t, err)

	srv, err := server.New(cfg)
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Halt)
	return srv.Addr().String()
}

// connect establishes a fresh session against addr.
func connect(t *testing.T, addr string) *client.Session {
	t.Helper()
	s, err := client.Connect(addr)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHandshake(t *testing.T) {
	addr := startServer(t)
	s := connect(t, addr)
	_, loggedIn := s.Username()
	require.False(t, loggedIn)
}

func TestCreateAccountAndLogin(t *testing.T) {
	addr := startServer(t)
	s := connect(t, addr)

	require.NoError(t, s.CreateAccount("alice", "pw"))
	require.ErrorIs(t, s.CreateAccount("alice", "other"), domain.ErrAccountExists)
	require.ErrorIs(t, s.CreateAccount("al ice", "pw"), domain.ErrInvalidUsername)

	require.ErrorIs(t, s.Login("alice", "wrong"), domain.ErrIncorrectPassword)
	require.ErrorIs(t, s.Login("nobody", "pw"), domain.ErrIncorrectPassword)

	require.NoError(t, s.Login("alice", "pw"))
	name, loggedIn := s.Username()
	require.True(t, loggedIn)
	require.Equal(t, domain.Username("alice"), name)
}

func TestSendBeforeLogin(t *testing.T) {
	addr := startServer(t)
	s := connect(t, addr)

	err := s.SendMessage([]domain.Username{"bob"}, "hi")
	require.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestMessageDeliveryFIFO(t *testing.T) {
	addr := startServer(t)

	alice := connect(t, addr)
	require.NoError(t, alice.CreateAccount("alice", "pw"))
	require.NoError(t, alice.Login("alice", "pw"))

	bob := connect(t, addr)
	require.NoError(t, bob.CreateAccount("bob", "pw"))
	require.NoError(t, bob.Login("bob", "pw"))

	for _, contents := range []string{"m1", "m2", "m3"} {
		require.NoError(t, alice.SendMessage([]domain.Username{"bob"}, contents))
	}

	for _, want := range []string{"m1", "m2", "m3"} {
		msg, err := bob.RecvMessage()
		require.NoError(t, err)
		require.Equal(t, want, msg.Contents)
		require.Equal(t, domain.Username("alice"), msg.Sender)
	}
}

func TestFanOut(t *testing.T) {
	addr := startServer(t)

	alice := connect(t, addr)
	require.NoError(t, alice.CreateAccount("alice", "pw"))
	require.NoError(t, alice.Login("alice", "pw"))

	bob := connect(t, addr)
	require.NoError(t, bob.CreateAccount("bob", "pw"))
	require.NoError(t, bob.Login("bob", "pw"))

	carol := connect(t, addr)
	require.NoError(t, carol.CreateAccount("carol", "pw"))
	require.NoError(t, carol.Login("carol", "pw"))

	recipients := []domain.Username{"bob", "carol"}
	require.NoError(t, alice.SendMessage(recipients, "hi both"))

	for _, rcpt := range []*client.Session{bob, carol} {
		msg, err := rcpt.RecvMessage()
		require.NoError(t, err)
		require.Equal(t, "hi both", msg.Contents)
		require.Equal(t, domain.Username("alice"), msg.Sender)
		require.Equal(t, recipients, msg.Recipients)
	}
}

func TestRecvBlocksUntilSend(t *testing.T) {
	addr := startServer(t)

	alice := connect(t, addr)
	require.NoError(t, alice.CreateAccount("alice", "pw"))
	require.NoError(t, alice.Login("alice", "pw"))

	bob := connect(t, addr)
	require.NoError(t, bob.CreateAccount("bob", "pw"))
	require.NoError(t, bob.Login("bob", "pw"))

	type result struct {
		msg domain.Inbound
		err error
	}
	done := make(chan result, 1)
	go func() {
		msg, err := bob.RecvMessage()
		done <- result{msg, err}
	}()

	select {
	case <-done:
		t.Fatal("RecvMessage returned with an empty mailbox")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, alice.SendMessage([]domain.Username{"bob"}, "wake up"))

	select {
	case r := <-done:
		require.NoError(t, r.err)
		require.Equal(t, "wake up", r.msg.Contents)
	case <-time.After(5 * time.Second):
		t.Fatal("RecvMessage did not resolve after a send")
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	addr := startServer(t)

	s := connect(t, addr)
	require.NoError(t, s.CreateAccount("alice", "pw"))
	require.NoError(t, s.Login("alice", "pw"))

	require.NoError(t, s.Logout())

	err := s.SendMessage([]domain.Username{"alice"}, "late")
	require.ErrorIs(t, err, domain.ErrInvalidToken)

	err = s.Login("alice", "pw")
	require.ErrorIs(t, err, domain.ErrInvalidToken)
	_, loggedIn := s.Username()
	require.False(t, loggedIn)
}

func TestTwoSessionsOneAccount(t *testing.T) {
	addr := startServer(t)

	cmd := connect(t, addr)
	require.NoError(t, cmd.CreateAccount("alice", "pw"))
	require.NoError(t, cmd.Login("alice", "pw"))

	// A second connection long-polls while the first issues commands, the
	// intended two-connection usage for simultaneous send and receive.
	poll := connect(t, addr)
	require.NoError(t, poll.Login("alice", "pw"))

	done := make(chan domain.Inbound, 1)
	go func() {
		msg, err := poll.RecvMessage()
		if err == nil {
			done <- msg
		}
	}()

	require.NoError(t, cmd.SendMessage([]domain.Username{"alice"}, "note to self"))

	select {
	case msg := <-done:
		require.Equal(t, "note to self", msg.Contents)
	case <-time.After(5 * time.Second):
		t.Fatal("polling session never received the message")
	}
}
