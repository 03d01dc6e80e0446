package backend

import (
	"errors"
	"io"
	"testing"
	"time"

	"n8n-restore/src/errdefs"
)

func TestGuardStall_StalledStreamFailsWithTimeout(t *testing.T) {
	pr, pw := io.Pipe()
	canceled := make(chan struct{})
	// Stands in for canceling the HTTP request context: it unblocks the
	// pending Read with an error.
	cancel := func() {
		select {
		case <-canceled:
		default:
			close(canceled)
			pw.CloseWithError(errors.New("request canceled"))
		}
	}
	rc := GuardStall(pr, cancel, 20*time.Millisecond)
	defer rc.Close()

	go func() {
		pw.Write([]byte("partial"))
		// Never writes again; the guard has to break the deadlock.
	}()

	if _, err := io.ReadAll(rc); !errors.Is(err, errdefs.ErrTimeout) {
		t.Fatalf("read err = %v, want ErrTimeout", err)
	}
	select {
	case <-canceled:
	default:
		t.Fatal("request context was not canceled")
	}
}

func TestGuardStall_CompletedStreamPassesThrough(t *testing.T) {
	pr, pw := io.Pipe()
	rc := GuardStall(pr, func() {}, time.Second)
	go func() {
		pw.Write([]byte("whole-body"))
		pw.Close()
	}()
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "whole-body" {
		t.Fatalf("body = %q", body)
	}
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
