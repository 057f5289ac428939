package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog"

	"github.com/five82/rayvision/internal/config"
	"github.com/five82/rayvision/internal/logging"
	"github.com/five82/rayvision/internal/prefs"
	"github.com/five82/rayvision/internal/rayvision"
	"github.com/five82/rayvision/internal/state"
	"github.com/five82/rayvision/internal/ui"
)

// Options configure the raywatch application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/raywatch/prefs.toml
	PollEvery  int    // seconds; zero uses default
	Once       bool   // print one snapshot to Out and exit
	Out        io.Writer
	LogPath    string // TUI log file; empty uses ~/.local/state/raywatch/raywatch.log
}

const defaultLogPath = ".local/state/raywatch/raywatch.log"

// Run loads configuration, builds the signed client and either prints one
// snapshot or runs the TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	logOut, closeLog, err := openLog(opts)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := logging.New("raywatch", logOut)

	poster, err := NewPoster(cfg, logger)
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}

	store := &state.Store{}
	query := rayvision.TaskListQuery{PageSize: userPrefs.PageSize, StatusList: userPrefs.StatusList}
	pl := &poller{store: store, poster: poster, query: query, logger: logger}

	if opts.Once {
		if err := pl.refresh(ctx); err != nil {
			return err
		}
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		return printSnapshot(out, cfg.Domain, store.Snapshot())
	}

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	// Do initial refresh to populate store before UI starts
	_ = pl.refresh(ctx)

	StartPoller(ctx, store, poster, query, interval, logger)

	return ui.Run(ui.Options{
		Context:   ctx,
		Poster:    poster,
		Store:     store,
		Domain:    cfg.Domain,
		PollTick:  time.Second,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
	})
}

// NewPoster builds the signed client for cfg, wrapped in a Retrier when
// retry_attempts is set.
func NewPoster(cfg config.Config, logger zerolog.Logger) (rayvision.Poster, error) {
	client, err := rayvision.NewClient(
		rayvision.Credentials{AccessID: cfg.AccessID, AccessKey: cfg.AccessKey},
		rayvision.Session{
			Domain:     cfg.Domain,
			Protocol:   cfg.Protocol,
			PlatformID: cfg.Platform,
			APIVersion: cfg.APIVersion,
		},
		rayvision.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
		rayvision.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	if cfg.RetryAttempts <= 0 {
		return client, nil
	}
	policy := rayvision.DefaultRetryPolicy()
	policy.Attempts = cfg.RetryAttempts
	return rayvision.NewRetrier(client, policy, logger), nil
}

// openLog picks the log destination: stderr for one-shot runs, a file while
// the TUI owns the terminal.
func openLog(opts Options) (io.Writer, func(), error) {
	if opts.Once {
		return os.Stderr, func() {}, nil
	}
	path := opts.LogPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, defaultLogPath)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func printSnapshot(w io.Writer, domain string, snap state.Snapshot) error {
	p := snap.Profile
	if _, err := fmt.Fprintf(w, "%s (%d) on %s, platform %d, %d tasks\n",
		p.UserName, p.UserID, domain, p.Platform, snap.TaskTotal); err != nil {
		return err
	}
	if len(snap.Tasks) == 0 {
		_, err := fmt.Fprintln(w, "no tasks")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TASK", "SCENE", "CODE", "DONE", "TOTAL")
	for _, task := range snap.Tasks {
		label := task.Alias
		if label == "" {
			label = strconv.FormatInt(task.ID, 10)
		}
		t.Row(label, task.SceneName, strconv.Itoa(task.Status),
			strconv.Itoa(task.DoneFrames), strconv.Itoa(task.TotalFrames))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
