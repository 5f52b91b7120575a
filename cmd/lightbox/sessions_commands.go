package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lightbox/internal/api"
	"lightbox/internal/ipc"
	"lightbox/internal/session"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and manage composition sessions",
	}

	sessionsCmd.AddCommand(newSessionsListCommand(ctx))
	sessionsCmd.AddCommand(newSessionsShowCommand(ctx))
	sessionsCmd.AddCommand(newSessionsDiscardCommand(ctx))
	sessionsCmd.AddCommand(newSessionsClearPublishedCommand(ctx))
	sessionsCmd.AddCommand(newSessionsResetCommand(ctx))
	sessionsCmd.AddCommand(newSessionsHealthCommand(ctx))
	sessionsCmd.AddCommand(newSessionsDBHealthCommand(ctx))

	return sessionsCmd
}

func newSessionsListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSessions(func(client *ipc.Client, store *session.Store) error {
				var sessions []api.Session
				if client != nil {
					resp, err := client.SessionList(listStatuses)
					if err != nil {
						return err
					}
					sessions = resp.Sessions
				} else {
					var statuses []session.Status
					for _, raw := range listStatuses {
						if parsed, ok := session.ParseStatus(raw); ok {
							statuses = append(statuses, parsed)
						}
					}
					rows, err := store.List(cmd.Context(), statuses...)
					if err != nil {
						return err
					}
					sessions = api.FromSessions(rows)
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, api.SessionListResponse{Sessions: api.SortSessionsNewestFirst(sessions)})
				}
				if len(sessions) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No sessions")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Mode", "Status", "Ratio", "Media", "Created"},
					buildSessionListRows(sessions),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by session status (repeatable)")
	return cmd
}

func newSessionsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <sessionID>",
		Short: "Show details for a single session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}
			return ctx.withSessions(func(client *ipc.Client, store *session.Store) error {
				var view *api.Session
				if client != nil {
					resp, err := client.SessionDescribe(id)
					if err != nil {
						if strings.Contains(strings.ToLower(err.Error()), "not found") {
							fmt.Fprintf(cmd.OutOrStdout(), "Session %d not found\n", id)
							return nil
						}
						return err
					}
					view = &resp.Session
				} else {
					sess, err := store.GetByID(cmd.Context(), id)
					if err != nil {
						return err
					}
					if sess == nil {
						fmt.Fprintf(cmd.OutOrStdout(), "Session %d not found\n", id)
						return nil
					}
					converted := api.FromSession(sess)
					view = &converted
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, view)
				}
				printSessionDetails(cmd, *view)
				return nil
			})
		},
	}
}

func printSessionDetails(cmd *cobra.Command, sess api.Session) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session %d\n", sess.ID)
	fmt.Fprintf(out, "  Mode:     %s\n", formatStatusLabel(sess.Mode))
	fmt.Fprintf(out, "  Status:   %s\n", formatStatusLabel(sess.Status))
	fmt.Fprintf(out, "  Ratio:    %s\n", sess.RatioLabel)
	fmt.Fprintf(out, "  Media:    %s\n", formatMediaCounts(sess.ImageCount, sess.VideoCount))
	if sess.Category != "" {
		fmt.Fprintf(out, "  Category: %s\n", sess.Category)
	}
	if sess.DraftText != "" {
		fmt.Fprintf(out, "  Text:     %s\n", sess.DraftText)
	}
	if sess.Progress.Stage != "" {
		fmt.Fprintf(out, "  Progress: %s (%.0f%%) %s\n", sess.Progress.Stage, sess.Progress.Percent, sess.Progress.Message)
	}
	if sess.PostID != "" {
		fmt.Fprintf(out, "  Post:     %s\n", sess.PostID)
	}
	if sess.NeedsAttention {
		reason := sess.AttentionReason
		if reason == "" {
			reason = "needs attention"
		}
		fmt.Fprintf(out, "  Attention: %s\n", reason)
	}
	if sess.ErrorMessage != "" {
		fmt.Fprintf(out, "  Error:    %s\n", sess.ErrorMessage)
	}
	if sess.CreatedAt != "" {
		fmt.Fprintf(out, "  Created:  %s\n", formatDisplayTime(sess.CreatedAt))
	}
	if sess.PublishedAt != "" {
		fmt.Fprintf(out, "  Published: %s\n", formatDisplayTime(sess.PublishedAt))
	}
}

func newSessionsDiscardCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "discard <sessionID>",
		Short: "Remove a session and its staged output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionDiscard(id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if resp.Removed {
					fmt.Fprintf(out, "Session %d discarded\n", id)
				} else {
					fmt.Fprintf(out, "Session %d not found\n", id)
				}
				return nil
			})
		},
	}
}

func newSessionsClearPublishedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-published",
		Short: "Remove published sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSessions(func(client *ipc.Client, store *session.Store) error {
				var removed int64
				var err error
				if client != nil {
					var resp *ipc.ClearPublishedResponse
					resp, err = client.ClearPublished()
					if resp != nil {
						removed = resp.Removed
					}
				} else {
					removed, err = store.ClearPublished(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d published sessions\n", removed)
				return nil
			})
		},
	}
}

func newSessionsResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-stuck",
		Short: "Return interrupted publishes to editable drafts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSessions(func(client *ipc.Client, store *session.Store) error {
				var updated int64
				var err error
				if client != nil {
					var resp *ipc.SessionResetResponse
					resp, err = client.SessionReset()
					if resp != nil {
						updated = resp.Updated
					}
				} else {
					updated, err = store.ResetStuckPublishing(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d sessions\n", updated)
				return nil
			})
		},
	}
}

func newSessionsHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show session health summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSessions(func(client *ipc.Client, store *session.Store) error {
				var health session.HealthSummary
				if client != nil {
					resp, err := client.SessionHealth()
					if err != nil {
						return err
					}
					health = session.HealthSummary{
						Total:          resp.Total,
						Drafts:         resp.Drafts,
						Publishing:     resp.Publishing,
						Published:      resp.Published,
						NeedsAttention: resp.NeedsAttention,
					}
				} else {
					var err error
					health, err = store.Health(cmd.Context())
					if err != nil {
						return err
					}
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, ipc.SessionHealthResponse{
						Total:          health.Total,
						Drafts:         health.Drafts,
						Publishing:     health.Publishing,
						Published:      health.Published,
						NeedsAttention: health.NeedsAttention,
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\nDrafts: %d\nPublishing: %d\nPublished: %d\nNeeds attention: %d\n",
					health.Total,
					health.Drafts,
					health.Publishing,
					health.Published,
					health.NeedsAttention,
				)
				return nil
			})
		},
	}
}

func newSessionsDBHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "db-health",
		Short: "Check session database health (schema, integrity, columns)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.DatabaseHealth()
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database path: %s\n", resp.DBPath)
				fmt.Fprintf(out, "Database exists: %s\n", yesNo(resp.DatabaseExists))
				fmt.Fprintf(out, "Readable: %s\n", yesNo(resp.DatabaseReadable))
				fmt.Fprintf(out, "Schema version: %s\n", resp.SchemaVersion)
				fmt.Fprintf(out, "sessions table present: %s\n", yesNo(resp.TableExists))
				if len(resp.ColumnsPresent) > 0 {
					cols := append([]string(nil), resp.ColumnsPresent...)
					sort.Strings(cols)
					fmt.Fprintf(out, "Columns: %s\n", strings.Join(cols, ", "))
				}
				if len(resp.MissingColumns) > 0 {
					missing := append([]string(nil), resp.MissingColumns...)
					sort.Strings(missing)
					fmt.Fprintf(out, "Missing columns: %s\n", strings.Join(missing, ", "))
				} else {
					fmt.Fprintln(out, "Missing columns: none")
				}
				fmt.Fprintf(out, "Integrity check: %s\n", yesNo(resp.IntegrityCheck))
				fmt.Fprintf(out, "Total sessions: %d\n", resp.TotalSessions)
				if resp.Error != "" {
					fmt.Fprintf(out, "Error: %s\n", resp.Error)
				}
				return nil
			})
		},
	}
}

func parseSessionID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid session id %q", arg)
	}
	return id, nil
}
