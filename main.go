package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/sadopc/nowdoing/internal/config"
	"github.com/sadopc/nowdoing/internal/logging"
	"github.com/sadopc/nowdoing/internal/store"
	"github.com/sadopc/nowdoing/internal/tracker"
	"github.com/sadopc/nowdoing/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// globalFlags override the environment when set.
type globalFlags struct {
	db           string
	backend      string
	logFile      string
	statusesFile string
}

func newRootCmd() *cobra.Command {
	var gf globalFlags

	root := &cobra.Command{
		Use:           "nowdoing",
		Short:         "Track what you are doing right now",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(&gf)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&gf.db, "db", "", "SQLite database path (sqlite backend)")
	pf.StringVar(&gf.backend, "backend", "", "storage backend: sqlite|file")
	pf.StringVar(&gf.logFile, "log-file", "", "TUI log file")
	pf.StringVar(&gf.statusesFile, "statuses-file", "", "YAML status list")

	root.AddCommand(newTUICmd(&gf))
	root.AddCommand(newStatusCmd(&gf))
	root.AddCommand(newStartCmd(&gf))
	root.AddCommand(newEditCmd(&gf))
	root.AddCommand(newResetCmd(&gf))
	root.AddCommand(newExportCmd(&gf))
	root.AddCommand(newStatusesCmd(&gf))
	root.AddCommand(newInfoCmd(&gf))
	return root
}

type slotDeleter interface {
	tracker.Slot
	Delete(key string) error
}

// session is an opened tracker plus everything that must be closed with it.
type session struct {
	cfg     *config.Config
	tracker *tracker.Tracker
	store   *store.Store // nil for the file backend
	slot    slotDeleter
	log     hclog.Logger
	closers []io.Closer
}

func (s *session) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func loadConfig(gf *globalFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if gf.db != "" {
		cfg.DBPath = gf.db
	}
	if gf.backend != "" {
		cfg.Backend = gf.backend
	}
	if gf.logFile != "" {
		cfg.LogFile = gf.logFile
	}
	if gf.statusesFile != "" {
		cfg.StatusesFile = gf.statusesFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSession loads config, opens the slot backend and rehydrates the
// tracker. A nil logOut sends logs to the configured log file.
func openSession(gf *globalFlags, logOut io.Writer) (*session, error) {
	cfg, err := loadConfig(gf)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg}

	if logOut != nil {
		s.log = logging.New(logOut, "warn")
	} else {
		log, closer, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		s.log = log
		s.closers = append(s.closers, closer)
	}

	var slot slotDeleter
	switch cfg.Backend {
	case config.BackendFile:
		fs, err := store.NewFileSlots(cfg.SlotDir)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		slot = fs
	default:
		st, err := store.New(cfg.DBPath)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.store = st
		s.closers = append(s.closers, st)
		slot = st
	}

	defaults, err := config.LoadStatuses(cfg.StatusesFile)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	t, err := tracker.Open(slot,
		tracker.WithDefaults(defaults),
		tracker.WithLogger(s.log.Named("tracker")),
		tracker.WithKey(cfg.Key),
	)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.tracker = t
	s.slot = slot
	s.log.Debug("session opened", "backend", cfg.Backend)
	return s, nil
}

func runTUI(gf *globalFlags) error {
	s, err := openSession(gf, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	app := tui.NewApp(s.tracker, tui.Options{
		Poll:   s.cfg.Poll,
		Logger: s.log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func newTUICmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal UI (default)",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(gf)
		},
	}
}
