package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/jointreplay"
	logAdapter "github.com/bft-labs/jointreplay/internal/adapters/log"
	"github.com/bft-labs/jointreplay/internal/adapters/ws"
	"github.com/bft-labs/jointreplay/internal/app"
)

const shutdownTimeout = 5 * time.Second

func (c *cli) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve playback to WebSocket viewers",
		RunE: func(cmd *cobra.Command, args []string) error {
			hub := ws.NewHub(logAdapter.NewZerologAdapterWithLogger(c.log))

			r, err := c.open(
				jointreplay.WithUpdateHandler(hub.Publish),
				jointreplay.WithStateHandler(func(prev, cur jointreplay.State, reason string) {
					hub.PublishState(cur.String(), reason)
				}),
			)
			if err != nil {
				return err
			}
			defer r.Close()
			hub.SetCommandHandler(commandHandler(r.Controller()))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := r.Start(ctx); err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              c.cfg.Listen,
				Handler:           routes(hub, r),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				c.log.Info().Str("listen", c.cfg.Listen).Msg("serving")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			if c.cfg.Autoplay {
				if err := r.Controller().Play(); err != nil {
					c.log.Warn().Err(err).Msg("autoplay")
				}
			}

			select {
			case <-ctx.Done():
				c.log.Info().Msg("received signal, stopping...")
			case err, ok := <-errCh:
				if ok {
					return fmt.Errorf("serve: %w", err)
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			r.Controller().Pause()
			hub.Close()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&c.cfg.Listen, "listen", c.cfg.Listen, "HTTP listen address")
	cmd.Flags().BoolVar(&c.cfg.Autoplay, "autoplay", c.cfg.Autoplay, "start playing as soon as the server is up")
	return cmd
}

func routes(hub *ws.Hub, r *jointreplay.Replay) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, r.Controller().Status())
	})
	mux.HandleFunc("/api/validation", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, r.Validate())
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// commandHandler maps viewer commands onto the controller.
func commandHandler(ctrl *app.Controller) ws.CommandHandler {
	return func(cmd ws.Command) error {
		switch cmd.Type {
		case ws.CommandPlay:
			return ctrl.Play()
		case ws.CommandPause:
			ctrl.Pause()
		case ws.CommandStop:
			ctrl.Stop()
		case ws.CommandSeek:
			return ctrl.GotoIndex(cmd.Index)
		case ws.CommandSeekSequence:
			return ctrl.GotoSequenceID(cmd.SequenceID)
		case ws.CommandSpeed:
			ctrl.SetSpeed(cmd.Speed)
		default:
			return fmt.Errorf("unknown command %q", cmd.Type)
		}
		return nil
	}
}
