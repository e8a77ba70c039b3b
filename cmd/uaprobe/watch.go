// File: cmd/uaprobe/watch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/client"
	"github.com/momentics/hioload-ua/protocol"
)

type watchFlags struct {
	interval time.Duration
	tick     time.Duration
}

func newWatchCmd(flags *globalFlags) *cobra.Command {
	wf := &watchFlags{}
	cmd := &cobra.Command{
		Use:   "watch NODE_ID...",
		Short: "Poll node values until interrupted, exporting client metrics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, flags, wf, args)
		},
	}
	cmd.Flags().DurationVar(&wf.interval, "interval", time.Second, "poll interval")
	cmd.Flags().DurationVar(&wf.tick, "tick", 10*time.Millisecond, "processing step interval")
	return cmd
}

func runWatch(ctx context.Context, flags *globalFlags, wf *watchFlags, nodes []string) error {
	s, err := connect(ctx, flags)
	if err != nil {
		return err
	}
	defer s.client.Close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.client.Run(ctx, wf.tick)
	})

	g.Go(func() error {
		ticker := time.NewTicker(wf.interval)
		defer ticker.Stop()
		for {
			for _, node := range nodes {
				if err := pollNode(s, node); err != nil {
					return err
				}
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	if s.cfg.Metrics.Enabled && s.cfg.Metrics.Listen != "" {
		srv := &http.Server{
			Addr:              s.cfg.Metrics.Listen,
			Handler:           promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			s.log.WithField("listen", srv.Addr).Info("serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if drainErr := s.client.Shutdown(); drainErr != nil {
		s.log.WithError(drainErr).Warn("shutdown failed")
	}
	return err
}

func pollNode(s *session, node string) error {
	_, err := s.client.ReadValueAsync(node, func(c *client.Client, id uint32, dv protocol.DataValue, out api.Outcome) {
		log := s.log.WithFields(logrus.Fields{"node": node, "request_id": id})
		if !out.OK() {
			log.WithField("status", out.Status).Warn(out.Message)
			return
		}
		log.WithField("value", dv.Value).Info("value")
	})
	if errors.Is(err, api.ErrClientShutDown) {
		return nil
	}
	return err
}
