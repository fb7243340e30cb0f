package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/aprilaire/internal/bridge"
	"github.com/muurk/aprilaire/internal/client"
	"github.com/muurk/aprilaire/internal/logging"
)

var listenAddr string

func init() {
	bridgeCmd.Flags().StringVar(&listenAddr, "listen", ":8080", "HTTP listen address for the WebSocket endpoint")
	rootCmd.AddCommand(bridgeCmd)
}

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Expose a thermostat to browsers over WebSocket",
	Long: `Hold a connection to a thermostat and serve it as JSON over WebSocket at /ws.

Every update from the thermostat is broadcast to connected browsers, and
browsers joining late receive the latest value of every attribute. Browsers
may send read and write messages:

  {"type":"read","domain":"sensors","attribute":2}
  {"type":"write","domain":"scheduling","attribute":4,"fields":{"hold":1}}`,
	Example: `  aprilaire bridge --host 192.168.1.50 --listen 127.0.0.1:8080`,
	RunE:    runBridge,
}

func runBridge(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.Named("cli")

	var hub atomic.Pointer[bridge.Bridge]
	s, err := openSession(ctx, func(u client.Update) {
		if b := hub.Load(); b != nil {
			b.Publish(u)
		}
	})
	if err != nil {
		return err
	}
	defer s.Close()

	b := bridge.New(s)
	hub.Store(b)
	defer b.Close()

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           b.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.ListenAndServe()
	}()
	fmt.Fprintf(os.Stderr, "Bridging %s to ws://%s/ws (Ctrl+C to stop)\n", s.target.Address(), listenAddr)

	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("bridge server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down bridge")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Bridge shutdown incomplete", zap.Error(err))
	}
	return nil
}
