// agentindex CLI - command line client for the agentindex API
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/eldtechnologies/agentindex/clients/go/registry"
	"github.com/eldtechnologies/agentindex/internal/format"
	"github.com/eldtechnologies/agentindex/internal/models"
)

var (
	baseURL    string
	jsonOutput bool
	timeout    time.Duration

	page     int
	pageSize int
	sortBy   string
	protocol string
)

var rootCmd = &cobra.Command{
	Use:           "agentindex",
	Short:         "Browse the ERC-8004 agent registry",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered agents",
	Long: `List registered agents, newest first by default.

Examples:
  agentindex list
  agentindex list --protocol mcp --page 2
  agentindex list --sort updatedAt:desc --json | jq '.items[].id'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, "")
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search agents by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, strings.Join(args, " "))
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an agent with its recent feedback and stats",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		agent, err := newClient().GetAgent(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), agent)
		}
		printAgent(cmd.OutOrStdout(), agent, time.Now())
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show server health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		resp, err := newClient().Health(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

func init() {
	defaultURL := os.Getenv("AGENTINDEX_URL")
	if defaultURL == "" {
		defaultURL = registry.DefaultBaseURL
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", defaultURL, "agentindex server URL (env AGENTINDEX_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	for _, c := range []*cobra.Command{listCmd, searchCmd} {
		c.Flags().IntVarP(&page, "page", "p", 1, "page number (1-based)")
		c.Flags().IntVarP(&pageSize, "page-size", "n", 12, "agents per page")
		c.Flags().StringVar(&protocol, "protocol", "", "filter by protocol: mcp or a2a")
	}
	listCmd.Flags().StringVarP(&sortBy, "sort", "s", "", "sort as key:dir, e.g. createdAt:desc")

	rootCmd.AddCommand(listCmd, searchCmd, showCmd, healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newClient() *registry.Client {
	return registry.NewClient(strings.TrimRight(baseURL, "/"))
}

func runList(cmd *cobra.Command, query string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	resp, err := newClient().ListAgents(ctx, registry.ListOptions{
		Page:     page,
		PageSize: pageSize,
		Query:    query,
		Sort:     sortBy,
		Protocol: protocol,
	})
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	printAgents(cmd.OutOrStdout(), resp, time.Now())
	return nil
}

func printAgents(w io.Writer, resp *registry.ListResponse, now time.Time) {
	if len(resp.Items) == 0 {
		fmt.Fprintln(w, "No agents found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPROTOCOLS\tOWNER\tREGISTERED")
	for _, a := range resp.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.ID,
			format.DisplayName(a),
			strings.Join(format.Protocols(a), ","),
			format.TruncateAddress(a.Owner),
			format.RelativeTimeAt(a.CreatedAt, now),
		)
	}
	tw.Flush()

	fmt.Fprintf(w, "\npage %d", resp.Page)
	if resp.HasMore {
		fmt.Fprintf(w, " (more with --page %d)", resp.Page+1)
	}
	fmt.Fprintln(w)
}

func printAgent(w io.Writer, a *models.AgentWithDetails, now time.Time) {
	fmt.Fprintf(w, "%s (%s)\n", format.DisplayName(a.Agent), a.ID)
	if f := a.RegistrationFile; f != nil && f.Description != nil && *f.Description != "" {
		fmt.Fprintf(w, "  %s\n", *f.Description)
	}
	fmt.Fprintf(w, "  owner:      %s\n", a.Owner)
	fmt.Fprintf(w, "  protocols:  %s\n", strings.Join(format.Protocols(a.Agent), ", "))
	fmt.Fprintf(w, "  registered: %s\n", format.FormatDateTime(a.CreatedAt))
	if f := a.RegistrationFile; f != nil {
		if f.HasMCP() {
			fmt.Fprintf(w, "  mcp:        %s\n", *f.MCPEndpoint)
		}
		if f.HasA2A() {
			fmt.Fprintf(w, "  a2a:        %s\n", *f.A2AEndpoint)
		}
	}

	if s := a.Stats; s != nil {
		fmt.Fprintf(w, "\nfeedback %d, average %.1f, validations %d/%d\n",
			format.ParseCount(s.TotalFeedback),
			format.ParseScore(s.AverageScore),
			format.ParseCount(s.CompletedValidations),
			format.ParseCount(s.TotalValidations),
		)
	}

	if len(a.Feedback) == 0 {
		fmt.Fprintln(w, "\nNo feedback yet.")
		return
	}
	fmt.Fprintln(w, "\nRecent feedback:")
	for _, fb := range a.Feedback {
		line := fmt.Sprintf("  [%s] %s from %s",
			format.RelativeTimeAt(fb.CreatedAt, now),
			fb.Value,
			format.TruncateAddress(fb.ClientAddress),
		)
		if fb.FeedbackFile != nil && fb.FeedbackFile.Text != nil {
			line += ": " + *fb.FeedbackFile.Text
		}
		fmt.Fprintln(w, line)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
