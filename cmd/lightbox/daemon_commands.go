package main

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"lightbox/internal/api"
	"lightbox/internal/deps"
	"lightbox/internal/ipc"
	"lightbox/internal/preflight"
	"lightbox/internal/session"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, dependency, and session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := buildStatusSnapshot(ctx, cmd)
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, snapshot)
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(stdout, line)
			}
			if snapshot.Running {
				fmt.Fprintln(stdout, renderStatusLine("Daemon", statusOK, fmt.Sprintf("Running (pid %d)", snapshot.PID), colorize))
			} else {
				fmt.Fprintln(stdout, renderStatusLine("Daemon", statusWarn, "Not running", colorize))
			}
			fmt.Fprintln(stdout, renderStatusLine("Database", statusInfo, snapshot.DatabasePath, colorize))
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("System Checks", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, check := range snapshot.Checks {
				kind := statusOK
				if !check.Passed {
					kind = statusError
				}
				fmt.Fprintln(stdout, renderStatusLine(check.Name, kind, check.Detail, colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range dependencyLines(snapshot.Dependencies, colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Catalog", colorize) {
				fmt.Fprintln(stdout, line)
			}
			catalogDetail := fmt.Sprintf("%d images, %d videos", snapshot.Catalog.Images, snapshot.Catalog.Videos)
			if snapshot.Catalog.LastScan == "" {
				catalogDetail = "Not scanned yet"
			}
			fmt.Fprintln(stdout, renderStatusLine("Media store", statusInfo, catalogDetail, colorize))
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Sessions", colorize) {
				fmt.Fprintln(stdout, line)
			}
			rows := buildSessionStatusRows(snapshot.SessionStats)
			if len(rows) == 0 {
				fmt.Fprintln(stdout, "No sessions")
				return nil
			}
			fmt.Fprintln(stdout, renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}

// buildStatusSnapshot prefers the daemon's view and falls back to local
// inspection when the daemon is offline.
func buildStatusSnapshot(ctx *commandContext, cmd *cobra.Command) (api.DaemonStatus, error) {
	if client, err := ctx.dialClient(); err == nil {
		defer client.Close()
		resp, err := client.Status()
		if err != nil {
			return api.DaemonStatus{}, err
		}
		return api.DaemonStatus{
			Running:      resp.Running,
			PID:          resp.PID,
			DatabasePath: resp.DatabasePath,
			LockFilePath: resp.LockPath,
			SessionStats: resp.SessionStats,
			Catalog:      resp.Catalog,
			Dependencies: resp.Dependencies,
			Checks:       resp.Checks,
		}, nil
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return api.DaemonStatus{}, err
	}
	snapshot := api.DaemonStatus{
		DatabasePath: cfg.DatabasePath(),
		LockFilePath: cfg.LockPath(),
		Dependencies: api.FromDependencyStatuses(deps.CheckBinaries(deps.Requirements(cfg))),
		Checks:       api.FromCheckResults(preflight.RunAll(cmd.Context(), cfg)),
	}
	store, err := session.Open(cfg)
	if err != nil {
		return api.DaemonStatus{}, fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()
	if stats, err := store.Stats(cmd.Context()); err == nil {
		snapshot.SessionStats = api.MergeSessionStats(stats)
	}
	return snapshot, nil
}

func dependencyLines(statuses []ipc.DependencyStatus, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	missing := make([]string, 0)
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		if !dep.Optional {
			missing = append(missing, dep.Name)
		}
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, fmt.Sprintf("%s (see README.md for install steps)", strings.Join(missing, ", ")), colorize))
	}
	return lines
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the lightbox daemon services",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			err := ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stop()
				if err != nil {
					return err
				}
				if resp.Stopped {
					fmt.Fprintln(stdout, "Daemon stopped")
				} else {
					fmt.Fprintln(stdout, "Stop request sent")
				}
				return nil
			})
			if err != nil && (errors.Is(err, syscall.ENOENT) || errors.Is(err, syscall.ECONNREFUSED) || strings.Contains(err.Error(), "not found")) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			return err
		},
	}
}
