package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"postbox/internal/domain"
	"postbox/internal/store"
)

func msg(sender domain.Username, contents string) domain.Inbound {
	return domain.Inbound{
		Sender:     sender,
		Recipients: []domain.Username{"bob"},
		Contents:   contents,
	}
}

func TestMailboxFIFO(t *testing.T) {
	s := store.NewMailboxStore()
	s.Enqueue("bob", msg("alice", "m1"))
	s.Enqueue("bob", msg("alice", "m2"))
	s.Enqueue("bob", msg("carol", "m3"))

	for _, want := range []string{"m1", "m2", "m3"} {
		got, err := s.Dequeue("bob", time.Second)
		require.NoError(t, err)
		require.Equal(t, want, got.Contents)
	}
	require.Zero(t, s.Pending("bob"))
}

func TestDequeueBlocksUntilEnqueue(t *testing.T) {
	s := store.NewMailboxStore()

	done := make(chan domain.Inbound, 1)
	go func() {
		m, err := s.Dequeue("bob", 5*time.Second)
		if err == nil {
			done <- m
		}
	}()

	select {
	case <-done:
		t.Fatal("Dequeue returned before any message was enqueued")
	case <-time.After(50 * time.Millisecond):
	}

	s.Enqueue("bob", msg("alice", "hello"))
	select {
	case m := <-done:
		require.Equal(t, "hello", m.Contents)
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not wake on enqueue")
	}
}

func TestDequeueDeadline(t *testing.T) {
	s := store.NewMailboxStore()

	start := time.Now()
	_, err := s.Dequeue("bob", 50*time.Millisecond)
	require.ErrorIs(t, err, domain.ErrTimeout)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestDequeueOnClosedStore(t *testing.T) {
	s := store.NewMailboxStore()

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Dequeue("bob", 0)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	s.Close()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, domain.ErrStoreClosed)
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not return after Close")
	}
}

func TestIndependentRecipients(t *testing.T) {
	s := store.NewMailboxStore()
	s.Enqueue("bob", msg("alice", "for bob"))
	s.Enqueue("carol", msg("alice", "for carol"))

	got, err := s.Dequeue("carol", time.Second)
	require.NoError(t, err)
	require.Equal(t, "for carol", got.Contents)
	require.Equal(t, 1, s.Pending("bob"))
}
