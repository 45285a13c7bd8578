package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-photomap/internal/logger"
	"github.com/joeblew999/plat-photomap/internal/server"
)

// Options defines all CLI flags and env vars for the photo map server.
// Flags: --host, --port, --data-dir, --web-dir, --nats-url, --fetch-timeout
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_WEB_DIR,
// SERVICE_NATS_URL, SERVICE_FETCH_TIMEOUT
type Options struct {
	Host         string `doc:"Host to bind to" default:"0.0.0.0"`
	Port         int    `doc:"Port to listen on" short:"p" default:"8086"`
	DataDir      string `doc:"Directory for the photo database (empty keeps it in memory)" default:".data"`
	WebDir       string `doc:"Path to web/ directory" default:"web"`
	NATSURL      string `doc:"NATS server for host notifications (empty disables)" default:""`
	FetchTimeout int    `doc:"Seconds to wait for photo metadata" default:"5"`
}

func newServer(opts *Options) (*server.Server, error) {
	return server.New(server.Config{
		Host:         opts.Host,
		Port:         fmt.Sprintf("%d", opts.Port),
		DataDir:      opts.DataDir,
		WebDir:       opts.WebDir,
		NATSURL:      opts.NATSURL,
		FetchTimeout: time.Duration(opts.FetchTimeout) * time.Second,
		Logger:       logger.L(),
	})
}

func main() {
	logger.Setup()

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		var srv *server.Server
		var httpServer *http.Server

		hooks.OnStart(func() {
			var err error
			srv, err = newServer(opts)
			if err != nil {
				logger.L().Error("server setup failed", "error", err)
				os.Exit(1)
			}
			srv.Start(context.Background())

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-photomap server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Data:    %s\n", opts.DataDir)
			fmt.Println()
			fmt.Printf("  Map:     %s/map\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Printf("  Metrics: %s/metrics\n", baseURL)
			fmt.Println()

			httpServer = &http.Server{Addr: addr, Handler: srv}
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.L().Error("server error", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			if httpServer != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				httpServer.Shutdown(ctx)
			}
			if srv != nil {
				if err := srv.Close(); err != nil {
					logger.L().Warn("shutdown", "error", err)
				}
			}
		})
	})

	cli.Root().Use = "photomap"
	cli.Root().Short = "Photo map server: markers, photo popups and trails"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			o := *opts
			o.DataDir = ""
			o.NATSURL = ""
			srv, err := newServer(&o)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
				os.Exit(1)
			}
			defer srv.Close()
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// call subcommand: invoke a host bridge function on a running server
	callCmd := &cobra.Command{
		Use:     "call <function> [params-json]",
		Short:   "Call a bridge function, e.g. call setMapPosition '{\"lat\":51.5,\"lng\":-0.09,\"zoom\":12}'",
		Args:    cobra.RangeArgs(1, 2),
		Example: "  photomap call zoomToAll\n  photomap call panMapTo '[48.85, 2.35]'",
		Run: func(cmd *cobra.Command, args []string) {
			serverURL, _ := cmd.Flags().GetString("server")
			params := "{}"
			if len(args) == 2 {
				params = args[1]
			}
			out, err := callBridge(serverURL, args[0], params)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(out)
		},
	}
	callCmd.Flags().StringP("server", "s", "http://localhost:8086", "Base URL of the running server")
	cli.Root().AddCommand(callCmd)

	cli.Run()
}

func callBridge(serverURL, fn, params string) (string, error) {
	url := strings.TrimRight(serverURL, "/") + "/api/v1/bridge/" + fn
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewBufferString(params))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return strings.TrimSpace(string(body)), nil
}
