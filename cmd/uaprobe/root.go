// File: cmd/uaprobe/root.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/momentics/hioload-ua/client"
	"github.com/momentics/hioload-ua/codec/jsoncodec"
	"github.com/momentics/hioload-ua/control"
	"github.com/momentics/hioload-ua/transport/ws"
)

type globalFlags struct {
	configFile string
	endpoint   string
	timeout    time.Duration
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "uaprobe",
		Short:         "Probe an OPC UA server over WebSocket",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&flags.endpoint, "endpoint", "", "server endpoint, overrides the configuration")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, "per-request timeout, overrides the configuration")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level, overrides the configuration")

	root.AddCommand(newReadCmd(flags), newWatchCmd(flags))
	return root
}

// loadConfig merges the configuration file with command line overrides.
func (f *globalFlags) loadConfig() (*control.Config, error) {
	cfg := &control.Config{}
	if f.configFile != "" {
		loaded, err := control.LoadConfig(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", f.configFile, err)
		}
		cfg = loaded
	}
	if f.endpoint != "" {
		cfg.Endpoint = f.endpoint
	}
	if f.timeout > 0 {
		cfg.Timeout = f.timeout
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	control.ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is a connected client plus what it was built from.
type session struct {
	cfg      *control.Config
	client   *client.Client
	registry *prometheus.Registry
	log      *logrus.Entry
}

func connect(ctx context.Context, f *globalFlags) (*session, error) {
	fc, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	cc := client.ConfigFromFile(fc)
	log := cc.Logger.WithField("endpoint", fc.Endpoint)

	opts := ws.OptionsFromConfig(fc)
	opts.Logger = log
	tr, err := ws.Dial(ctx, opts)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	cc.Codec = jsoncodec.New()
	cc.Transport = tr
	cc.Metrics = control.NewMetrics(fc.Metrics.Namespace, reg)
	c, err := client.New(cc)
	if err != nil {
		_ = tr.Close()
		return nil, err
	}
	return &session{cfg: fc, client: c, registry: reg, log: log}, nil
}
