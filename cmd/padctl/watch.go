package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func watchCmd(opts *clientOptions) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow live state updates until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(opts)
			u, err := c.wsURL()
			if err != nil {
				return err
			}
			header := http.Header{}
			if c.apiKey != "" {
				header.Set("X-API-Key", c.apiKey)
			}

			ctx, stop := signal.NotifyContext(contextOrBackground(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u, header)
			if err != nil {
				if resp != nil {
					return fmt.Errorf("stream: %w (HTTP %d)", err, resp.StatusCode)
				}
				return fmt.Errorf("stream: %w", err)
			}
			defer conn.Close()

			go func() {
				<-ctx.Done()
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				_ = conn.Close()
			}()

			out := cmd.OutOrStdout()
			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
						return nil
					}
					return err
				}
				if raw {
					fmt.Fprintln(out, string(msg))
					continue
				}
				fmt.Fprintln(out, summarize(msg))
			}
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the full JSON snapshot for every update")
	return cmd
}

// streamSnapshot 推送快照中用于单行摘要的字段
type streamSnapshot struct {
	State  string `json:"session_state"`
	Device *struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"device"`
	Status struct {
		Speed    int    `json:"speed"`
		Mode     string `json:"mode_name"`
		Distance int    `json:"distance"`
		Steps    int    `json:"steps"`
		Time     int    `json:"time"`
	} `json:"status"`
	LastError string `json:"last_error"`
}

func summarize(msg []byte) string {
	var s streamSnapshot
	if err := json.Unmarshal(msg, &s); err != nil {
		return string(msg)
	}
	line := fmt.Sprintf("%-12s", s.State)
	if s.Device != nil && s.Device.Address != "" {
		line += " " + s.Device.Address
	}
	if s.State == "connected" {
		line += fmt.Sprintf("  %s  %.1f km/h  %d steps  %.2f km  %ds",
			s.Status.Mode, float64(s.Status.Speed)/10, s.Status.Steps, float64(s.Status.Distance)/100, s.Status.Time)
	}
	if s.LastError != "" {
		line += "  error: " + s.LastError
	}
	return line
}
