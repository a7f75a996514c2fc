package gateway

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
	"github.com/clearcut-labs/clearcut/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
}

// Handler exposes the gateway to remote callers over websockets at
// /ws/{capability}. Each websocket message carries one protocol frame; the
// relay stays byte-transparent apart from the newline framing the worker's
// stdio protocol already uses. Closing the socket terminates the worker.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/{capability}", g.handleWS)
	return mux
}

// Serve runs the websocket relay until ctx is cancelled.
func (g *Gateway) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (g *Gateway) handleWS(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("capability")

	session, err := g.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrCapabilityNotFound) {
			http.Error(w, "unknown capability", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to start worker", http.StatusBadGateway)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		session.Close()
		return
	}

	logger.Info("gateway: websocket session opened for %q", name)

	// Caller → worker. Socket closure is the cancellation signal: it
	// closes the session, which kills the worker.
	go func() {
		defer session.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if !bytes.HasSuffix(data, []byte("\n")) {
				data = append(data, '\n')
			}
			if _, err := session.Write(data); err != nil {
				return
			}
		}
	}()

	// Worker → caller, one frame per line. Ends on worker exit.
	scanner := bufio.NewScanner(session)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if err := conn.WriteMessage(websocket.TextMessage, scanner.Bytes()); err != nil {
			break
		}
	}

	session.Close()
	conn.Close()
	logger.Info("gateway: websocket session for %q closed (exit code %d)", name, session.ExitCode())
}
