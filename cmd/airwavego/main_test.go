package main

import (
	"context"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestRunServerLifecycleShutdown(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	quit := make(chan os.Signal, 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runServerLifecycle(context.Background(), srv, quit)
	}()

	time.Sleep(50 * time.Millisecond)
	quit <- syscall.SIGTERM

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("runServerLifecycle() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunServerLifecycleContextCancel(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	quit := make(chan os.Signal, 1)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- runServerLifecycle(ctx, srv, quit)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("runServerLifecycle() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
