// Package commands implements rendezvousctl's cobra command tree.
package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rendezvous-relay/rendezvous/internal/dashboard"
)

var adminAddr string

var rootCmd = &cobra.Command{
	Use:   "rendezvousctl",
	Short: "Operator CLI for a running rendezvousd",
	Long:  "rendezvousctl reads the admin/observability surface of a running rendezvousd; it never mutates relay state.",

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&adminAddr, "admin", "127.0.0.1:9090", "rendezvousd admin surface address (host:port)")

	rootCmd.AddCommand(sessionsCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(versionCmd())
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// sessionView mirrors internal/server's admin /sessions response shape.
type sessionView struct {
	ID      string `json:"id"`
	Members []struct {
		Endpoint string `json:"endpoint"`
		ID       string `json:"id"`
		IdleFor  string `json:"idle_for"`
	} `json:"members"`
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

func fetchSessions() ([]sessionView, error) {
	resp, err := httpClient.Get(fmt.Sprintf("http://%s/sessions", adminAddr))
	if err != nil {
		return nil, fmt.Errorf("fetching /sessions from %s: %w", adminAddr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET /sessions: unexpected status %s", resp.Status)
	}

	var sessions []sessionView
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		return nil, fmt.Errorf("decoding /sessions response: %w", err)
	}
	return sessions, nil
}

// toDashboardSessions adapts the wire shape into dashboard.Session,
// deriving the oldest/newest idle duration from each member's reported
// idle_for string.
func toDashboardSessions(sessions []sessionView) []dashboard.Session {
	out := make([]dashboard.Session, 0, len(sessions))
	for _, s := range sessions {
		var oldest, newest time.Duration
		for i, m := range s.Members {
			d, err := time.ParseDuration(m.IdleFor)
			if err != nil {
				continue
			}
			if i == 0 || d > oldest {
				oldest = d
			}
			if i == 0 || d < newest {
				newest = d
			}
		}
		out = append(out, dashboard.Session{
			ID:          s.ID,
			MemberCount: len(s.Members),
			OldestIdle:  oldest,
			NewestIdle:  newest,
		})
	}
	return out
}
