package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_Addr(t *testing.T) {
	s := NewServer(ServerConfig{Host: "127.0.0.1", Port: 8080}, http.NewServeMux(), nil)
	assert.Equal(t, "127.0.0.1:8080", s.Addr())
	assert.NotNil(t, s.Handler())
}

func TestServer_ServeAndStop(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("pong")) })
	s := NewServer(ServerConfig{ShutdownTimeout: time.Second}, mux, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	require.NoError(t, s.Stop(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_StartListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	s := NewServer(ServerConfig{Host: "127.0.0.1", Port: port}, http.NewServeMux(), nil)
	assert.Error(t, s.Start())
}

//Personal.AI order the ending
