package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

var (
	flushAddrFlag  string
	flushIDFlag    int
	flushResetFlag bool
)

// addFlushCommand adds a thin HTTP client around a running server's
// POST /admin/flush.
func addFlushCommand(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Flush cache lines on a running frameserver",
		Args:  cobra.NoArgs,
		RunE:  runFlush,
	}

	flags := cmd.Flags()
	flags.StringVar(&flushAddrFlag, "addr", "http://127.0.0.1:8080", "base URL of the running frameserver")
	flags.IntVar(&flushIDFlag, "id", -1, "file id to flush; omit to flush every unpinned line")
	flags.BoolVar(&flushResetFlag, "reset", false, "reset hit/miss counters")

	parent.AddCommand(cmd)
}

func runFlush(cmd *cobra.Command, args []string) error {
	q := url.Values{}
	if flushIDFlag >= 0 {
		q.Set("id", fmt.Sprintf("%d", flushIDFlag))
	}
	q.Set("reset", fmt.Sprintf("%t", flushResetFlag))

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequest(http.MethodPost, flushAddrFlag+"/admin/flush?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("frameserver: flush request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("frameserver: flush request returned %s", resp.Status)
	}
	return nil
}
