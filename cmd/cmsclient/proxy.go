package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/go-cms-client/cachestore"
	"github.com/jrsteele09/go-cms-client/cachestore/redisstore"
	"github.com/jrsteele09/go-cms-client/internal/config"
	"github.com/jrsteele09/go-cms-client/offline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func proxyCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "proxy",
		Short: "Serve the site and API through the offline cache worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppname(cfg.GetAppName())
			return runProxy(cmd.Context(), cfg)
		},
	}
}

func openCacheStorage(ctx context.Context, cfg config.Config) (cachestore.Storage, func(), error) {
	addr := cfg.GetRedisAddr()
	if addr == "" {
		log.Info().Msg("cache groups kept in memory")
		return cachestore.NewMemoryStorage(), func() {}, nil
	}
	st, err := redisstore.Connect(ctx, addr)
	if err != nil {
		return nil, nil, err
	}
	return st, func() {
		if err := st.Close(); err != nil {
			log.Err(err).Msg("closing redis")
		}
	}, nil
}

func runProxy(ctx context.Context, cfg config.Config) error {
	st, closeStorage, err := openCacheStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	worker, err := offline.New(cfg, st, cfg.GetOriginURL(), offline.WithRegisterer(registry))
	if err != nil {
		return err
	}
	controller := offline.NewController(cfg)
	defer controller.Close()
	if err := controller.Register(ctx, worker); err != nil {
		// Keep proxying; fetches go straight to the network until a worker is active.
		log.Warn().Err(err).Msg("offline worker not installed")
		worker.Close()
	}

	scheduler, err := offline.NewScheduler(cfg, controller)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	handler, err := offline.NewHandler(cfg, controller, offline.WithGatherer(registry))
	if err != nil {
		return err
	}
	server := &http.Server{Addr: cfg.GetProxyPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("origin", cfg.GetOriginURL()).Str("api", cfg.GetAPIBaseURL()).Msg("proxy listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server.ListenAndServe %w", err)
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-errCh:
		return err
	}
	return shutdown(server)
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("proxy stopped")
	return nil
}

func cacheCmd(cfg config.Config) *cobra.Command {
	var proxyURL string
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Talk to a running proxy's offline cache",
	}
	cmd.PersistentFlags().StringVar(&proxyURL, "proxy", "http://localhost"+cfg.GetProxyPort(), "Proxy base URL")

	cmd.AddCommand(&cobra.Command{
		Use:   "size",
		Short: "Total bytes held in the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := postControl(cmd.Context(), proxyURL, offline.GetCacheSize{})
			if err != nil {
				return err
			}
			var size offline.CacheSize
			if err := json.Unmarshal(body, &size); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d bytes\n", size.CacheSize)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cache group",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := postControl(cmd.Context(), proxyURL, offline.ClearCache{})
			if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
			}
			return err
		},
	})
	return cmd
}

func postControl(ctx context.Context, proxyURL string, m offline.Message) ([]byte, error) {
	payload, err := offline.EncodeMessage(m)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, proxyURL+offline.ControlPrefix+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proxy unreachable: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(body))
	}
	return body, nil
}
