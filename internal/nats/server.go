// Package nats runs an in-process NATS server and exposes its JetStream
// key-value bucket as a session store.
package nats

import (
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/deckfill/internal/logger"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

const (
	readyTimeout    = 4 * time.Second
	drainTimeout    = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

// errShutdownTimeout is returned when the server does not stop in time.
var errShutdownTimeout = errors.New("nats server shutdown timed out")

// startServer runs a JetStream-enabled server with file storage under
// storeDir. It accepts in-process connections only.
func startServer(storeDir string) (*server.Server, error) {
	ns, err := server.NewServer(&server.Options{
		ServerName: "deckfill",
		JetStream:  true,
		StoreDir:   storeDir,
		DontListen: true,
		NoSigs:     true,
		NoLog:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(readyTimeout) {
		ns.Shutdown()
		return nil, fmt.Errorf("server not ready after %s", readyTimeout)
	}
	logger.Debug("Session server ready (store %s)", storeDir)
	return ns, nil
}

// connect opens an in-process connection to ns.
func connect(ns *server.Server) (*nats.Conn, error) {
	nc, err := nats.Connect("", nats.InProcessServer(ns), nats.Name("deckfill"))
	if err != nil {
		return nil, fmt.Errorf("in-process connect: %w", err)
	}
	return nc, nil
}

// shutdown drains nc, then stops ns. Either may be nil.
func shutdown(nc *nats.Conn, ns *server.Server) error {
	if nc != nil {
		done := make(chan error, 1)
		go func() { done <- nc.Drain() }()
		select {
		case err := <-done:
			if err != nil {
				logger.Warn("Session connection drain failed: %v", err)
				nc.Close()
			}
		case <-time.After(drainTimeout):
			logger.Warn("Session connection drain timed out, closing")
			nc.Close()
		}
	}

	if ns == nil {
		return nil
	}
	ns.Shutdown()
	stopped := make(chan struct{})
	go func() {
		ns.WaitForShutdown()
		close(stopped)
	}()
	select {
	case <-stopped:
		logger.Debug("Session server stopped")
		return nil
	case <-time.After(shutdownTimeout):
		return errShutdownTimeout
	}
}
