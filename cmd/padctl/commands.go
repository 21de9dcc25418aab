package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// call 执行请求并输出结果：有数据时输出缩进 JSON，否则输出消息
func call(cmd *cobra.Command, opts *clientOptions, method, path string, query url.Values, body interface{}) error {
	resp, err := newClient(opts).do(contextOrBackground(cmd), method, path, query, body)
	if err != nil {
		return err
	}
	return printResponse(cmd.OutOrStdout(), resp)
}

func printResponse(w io.Writer, resp *apiResponse) error {
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		_, err := fmt.Fprintln(w, resp.Message)
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, resp.Data, "", "  "); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, buf.String())
	return err
}

// parseSpeed 接受 km/h（如 3.5）并换算为 0.1 km/h
func parseSpeed(s string) (int, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid speed %q", s)
	}
	n := int(v*10 + 0.5)
	if v < 0 || n > 255 {
		return 0, fmt.Errorf("speed %q out of range", s)
	}
	return n, nil
}

// parseToggle on/off/true/false
func parseToggle(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "enable", "enabled":
		return true, nil
	case "off", "disable", "disabled":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
	return b, nil
}

func stateCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show connection state, live status and stored parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodGet, "/state", nil, nil)
		},
	}
}

func connectCmd(opts *clientOptions) *cobra.Command {
	var anyDevice, wait bool
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Scan for a WalkingPad and connect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/connect"
			if anyDevice {
				path = "/connect-any"
			}
			q := url.Values{}
			if wait {
				q.Set("wait", "true")
			}
			return call(cmd, opts, http.MethodPost, path, q, nil)
		},
	}
	cmd.Flags().BoolVar(&anyDevice, "any", false, "accept any advertising device instead of filtering by name")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait until the connection is established")
	return cmd
}

func disconnectCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnect and stop any reconnect in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodPost, "/disconnect", nil, nil)
		},
	}
}

func reconnectCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconnect",
		Short: "Start reconnecting to the last known device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodPost, "/reconnect", nil, nil)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "cancel",
		Short: "Cancel a pending reconnect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodPost, "/reconnect/cancel", nil, nil)
		},
	})
	return cmd
}

func autoReconnectCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "auto-reconnect on|off",
		Short: "Enable or disable automatic reconnect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseToggle(args[0])
			if err != nil {
				return err
			}
			return call(cmd, opts, http.MethodPut, "/auto-reconnect", nil, map[string]bool{"enabled": on})
		},
	}
}

func speedCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "speed KMH",
		Short:   "Set the belt speed in km/h",
		Example: "  padctl speed 3.5",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseSpeed(args[0])
			if err != nil {
				return err
			}
			return call(cmd, opts, http.MethodPost, "/speed", nil, map[string]int{"speed": n})
		},
	}
}

func modeCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "mode auto|manual|sleep",
		Short:     "Switch the operating mode",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"auto", "manual", "sleep"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodPost, "/mode", nil, map[string]string{"mode": args[0]})
		},
	}
}

func startCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the belt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodPost, "/start", nil, nil)
		},
	}
}

func stopCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the belt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodPost, "/stop", nil, nil)
		},
	}
}

func setCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change a stored device parameter",
	}

	speedParam := func(use, path, short string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " KMH",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := parseSpeed(args[0])
				if err != nil {
					return err
				}
				return call(cmd, opts, http.MethodPut, path, nil, map[string]int{"speed": n})
			},
		}
	}
	toggleParam := func(use, path, short string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " on|off",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				on, err := parseToggle(args[0])
				if err != nil {
					return err
				}
				return call(cmd, opts, http.MethodPut, path, nil, map[string]bool{"enabled": on})
			},
		}
	}
	stringParam := func(use, path, field, short string) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(cmd, opts, http.MethodPut, path, nil, map[string]string{field: args[0]})
			},
		}
	}

	display := &cobra.Command{
		Use:   "display FLAGS",
		Short: "Select which values the panel cycles through (bit mask 0-31)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseUint(args[0], 0, 8)
			if err != nil || n > 31 {
				return fmt.Errorf("invalid display flags %q", args[0])
			}
			return call(cmd, opts, http.MethodPut, "/display", nil, map[string]int{"flags": int(n)})
		},
	}

	cmd.AddCommand(
		speedParam("start-speed", "/start-speed", "Speed the belt starts at"),
		speedParam("max-speed", "/max-speed", "Upper speed limit"),
		stringParam("sensitivity high|medium|low", "/sensitivity", "sensitivity", "Auto mode sensitivity"),
		stringParam("unit metric|imperial", "/unit", "unit", "Display unit"),
		toggleParam("auto-start", "/auto-start", "Start automatically when stepped on"),
		toggleParam("lock", "/lock", "Child lock"),
		toggleParam("calibration", "/calibration", "Calibration mode"),
		display,
	)
	return cmd
}

func recordsCmd(opts *clientOptions) *cobra.Command {
	var limit int
	var device string
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List stored workout records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			if device != "" {
				q.Set("device", device)
			}
			return call(cmd, opts, http.MethodGet, "/records", q, nil)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of records")
	cmd.Flags().StringVar(&device, "device", "", "only records from this device address")

	var count int
	sync := &cobra.Command{
		Use:   "sync",
		Short: "Ask the treadmill to upload its recent records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if count > 0 {
				q.Set("count", strconv.Itoa(count))
			}
			return call(cmd, opts, http.MethodPost, "/records/sync", q, nil)
		},
	}
	sync.Flags().IntVarP(&count, "count", "c", 0, "number of records to request (0 uses the device default)")
	cmd.AddCommand(sync)
	return cmd
}

// contextOrBackground cobra 在未设置上下文时返回 nil
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
