package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Stream host change notifications",
	Long: "Subscribe to the daemon's event stream and print one line per time\n" +
		"configuration change until interrupted or the daemon stops.",
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, socketURL("/v1/events"), nil)
	if err != nil {
		return fmt.Errorf("hostctl events: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	client := newSocketClient(socketPath)
	defer client.CloseIdleConnections()

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("hostctl events: daemon not running or socket unavailable at %s: %w", socketPath, err)
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return fmt.Errorf("hostctl events: %w", err)
	}

	err = readEvents(resp.Body, func(event string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", time.Now().Format(time.RFC3339), event)
	})
	if err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return fmt.Errorf("hostctl events: %w", err)
	}
	return nil
}

// readEvents calls fn with the name of every event in an SSE stream.
// Comments and data lines are skipped.
func readEvents(r io.Reader, fn func(event string)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if name, ok := strings.CutPrefix(scanner.Text(), "event:"); ok {
			fn(strings.TrimSpace(name))
		}
	}
	return scanner.Err()
}
