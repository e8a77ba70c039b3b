// File: cmd/uaprobe/read.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/client"
	"github.com/momentics/hioload-ua/protocol"
)

func newReadCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "read NODE_ID...",
		Short: "Read the Value attribute of one or more nodes",
		Example: `  uaprobe read "ns=2;s=Temperature"
  uaprobe --endpoint ws://plc:4840/ua read "ns=2;i=7" "ns=2;i=8"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runRead(ctx, flags, args, cmd.OutOrStdout())
		},
	}
}

func runRead(ctx context.Context, flags *globalFlags, nodes []string, out io.Writer) error {
	s, err := connect(ctx, flags)
	if err != nil {
		return err
	}
	defer s.client.Close()

	remaining := len(nodes)
	failed := 0
	for _, node := range nodes {
		_, err := s.client.ReadValueAsync(node, func(_ *client.Client, _ uint32, dv protocol.DataValue, res api.Outcome) {
			remaining--
			if !res.OK() {
				failed++
				fmt.Fprintf(out, "%s\t%s\t%s\n", node, res.Status, res.Message)
				return
			}
			fmt.Fprintf(out, "%s\t%v\n", node, dv.Value)
		})
		if err != nil {
			return fmt.Errorf("read %s: %w", node, err)
		}
	}

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for remaining > 0 {
		if err := s.client.RunIterate(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d reads failed", failed, len(nodes))
	}
	return nil
}
