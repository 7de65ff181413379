package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/nowdoing/internal/config"
	"github.com/sadopc/nowdoing/internal/duration"
	"github.com/sadopc/nowdoing/internal/export"
	"github.com/sadopc/nowdoing/internal/tracker"
)

// withSession opens a session logging to the command's stderr, runs fn and
// reports a failed save as the command's error.
func withSession(cmd *cobra.Command, gf *globalFlags, fn func(*session) error) error {
	s, err := openSession(gf, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(s); err != nil {
		return err
	}
	if err := s.tracker.LastSaveError(); err != nil {
		return fmt.Errorf("changes not saved: %w", err)
	}
	return nil
}

func newStatusCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current status and today's totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, gf, func(s *session) error {
				status, err := s.tracker.CurrentStatus()
				if err != nil {
					return err
				}
				rec, err := s.tracker.CurrentRecord()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				elapsed := duration.SecondsToString(s.tracker.ElapsedSeconds(rec))
				_, _ = fmt.Fprintf(out, "now: %s %s (since %s)\n", status.Name, elapsed, rec.StartedAt.Local().Format("15:04:05"))
				_, _ = fmt.Fprintln(out, "today:")
				for _, st := range s.tracker.TodayStats() {
					_, _ = fmt.Fprintf(out, "  %s\t%s\n", st.StatusName, st.DurationString)
				}
				return nil
			})
		},
	}
}

func newStartCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "start <status>",
		Short: "Close the current interval and start a new one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, gf, func(s *session) error {
				if err := s.tracker.Start(args[0]); err != nil {
					if errors.Is(err, tracker.ErrNotFound) {
						return fmt.Errorf("%w (known: %s)", err, statusNames(s.tracker.Statuses()))
					}
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "now %s\n", args[0])
				return nil
			})
		},
	}
}

func newEditCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [--] <duration>",
		Short: "Set how long the current status has been running (H:MM:SS, M:SS or SS)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secs, err := duration.StringToSeconds(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, gf, func(s *session) error {
				if err := s.tracker.EditCurrentDuration(secs); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "duration set to %s\n", duration.SecondsToString(secs))
				return nil
			})
		},
	}
}

func newResetCmd(gf *globalFlags) *cobra.Command {
	var onlyStatuses, purge bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Reset everything, or only the status list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if onlyStatuses && purge {
				return fmt.Errorf("--statuses and --purge are mutually exclusive")
			}
			return withSession(cmd, gf, func(s *session) error {
				if purge {
					if err := s.slot.Delete(s.cfg.Key); err != nil {
						return err
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "stored snapshot deleted")
					return nil
				}
				if onlyStatuses {
					s.tracker.ResetStatuses()
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "statuses reset")
					return nil
				}
				s.tracker.ResetAll()
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "everything reset")
				return nil
			})
		},
	}
	reset.Flags().BoolVar(&onlyStatuses, "statuses", false, "reset only the status list")
	reset.Flags().BoolVar(&purge, "purge", false, "delete the stored snapshot instead of writing a fresh one")
	return reset
}

func newExportCmd(gf *globalFlags) *cobra.Command {
	var format, out string
	exp := &cobra.Command{
		Use:   "export",
		Short: "Export the interval history as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(format)
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}
			path := out
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("resolve home dir: %w", err)
				}
				path = filepath.Join(home, fmt.Sprintf("%s-export-%s.%s", tracker.AppName, time.Now().Format("2006-01-02"), format))
			}
			return withSession(cmd, gf, func(s *session) error {
				var err error
				if format == "csv" {
					err = export.ToCSV(s.tracker, path)
				} else {
					err = export.ToJSON(s.tracker, path)
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d records to %s\n", len(s.tracker.Records()), path)
				return nil
			})
		},
	}
	exp.Flags().StringVar(&format, "format", "csv", "export format: csv|json")
	exp.Flags().StringVar(&out, "out", "", "output path (default ~/nowdoing-export-<date>.<format>)")
	return exp
}

func newStatusesCmd(gf *globalFlags) *cobra.Command {
	statuses := &cobra.Command{Use: "statuses", Short: "Manage the status list"}

	statuses.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the current statuses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, gf, func(s *session) error {
				for i, st := range s.tracker.Statuses() {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", i+1, st.Name, st.Kind)
				}
				return nil
			})
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current statuses to the YAML status file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, gf, func(s *session) error {
				path := s.cfg.StatusesFile
				if _, err := os.Stat(path); err == nil && !force {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
				if err := config.WriteStatuses(path, s.tracker.Statuses()); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				return nil
			})
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	apply := &cobra.Command{
		Use:   "apply",
		Short: "Replace the status list with the YAML status file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, gf, func(s *session) error {
				list, err := config.LoadStatuses(s.cfg.StatusesFile)
				if err != nil {
					return err
				}
				if list == nil {
					return fmt.Errorf("no status file at %s", s.cfg.StatusesFile)
				}
				if err := s.tracker.SetStatuses(list); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "applied %d statuses\n", len(list))
				return nil
			})
		},
	}

	statuses.AddCommand(initCmd, apply)
	return statuses
}

func newInfoCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show where data is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, gf, func(s *session) error {
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "backend: %s\n", s.cfg.Backend)
				_, _ = fmt.Fprintf(out, "key: %s\n", s.cfg.Key)
				if s.store == nil {
					_, _ = fmt.Fprintf(out, "slots: %s\n", s.cfg.SlotDir)
				} else {
					_, _ = fmt.Fprintf(out, "db: %s\n", s.cfg.DBPath)
					slots, err := s.store.ListSlots()
					if err != nil {
						return err
					}
					for _, sl := range slots {
						_, _ = fmt.Fprintf(out, "  %s\t%d bytes\tupdated %s\n", sl.Key, len(sl.Value), sl.UpdatedAt.Local().Format(time.RFC3339))
					}
				}
				_, _ = fmt.Fprintf(out, "log: %s\n", s.cfg.LogFile)
				_, _ = fmt.Fprintf(out, "statuses file: %s\n", s.cfg.StatusesFile)
				_, _ = fmt.Fprintf(out, "records: %d\n", len(s.tracker.Records()))
				return nil
			})
		},
	}
}

func statusNames(statuses []tracker.Status) string {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = s.Name
	}
	return strings.Join(names, " ")
}
