package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/five82/curator/internal/api"
	"github.com/five82/curator/internal/catalog"
	"github.com/five82/curator/internal/collection"
	"github.com/five82/curator/internal/config"
	"github.com/five82/curator/internal/editor"
	"github.com/five82/curator/internal/prefs"
	"github.com/five82/curator/internal/slug"
	"github.com/five82/curator/internal/ui"
)

// Options configure the curator application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/curator/prefs.toml
	Debug      bool
	// LogOutput overrides the configured log file. Tests use io.Discard.
	LogOutput io.Writer
}

// Services is the wired object graph shared by the TUI and the CLI
// subcommands.
type Services struct {
	Config  config.Config
	Prefs   prefs.Prefs
	Logger  *slog.Logger
	Client  *api.Client
	Slugs   *slug.Slugifier
	Editor  *editor.Editor
	Manager *collection.Manager[catalog.Course]

	closers []func() error
}

// Setup loads configuration and preferences and builds every component.
// Callers must Close the result.
func Setup(opts Options) (*Services, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	userPrefs := prefs.Load(opts.PrefsPath)

	svc := &Services{Config: cfg, Prefs: userPrefs}

	out := opts.LogOutput
	if out == nil {
		f, err := openLogFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		svc.closers = append(svc.closers, f.Close)
		out = f
	}
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	svc.Logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))

	client, err := api.NewClient(cfg.APIURL, api.WithToken(cfg.Token))
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}
	svc.Client = client

	cache := slug.NewCache(slug.WithMaxEntries(cfg.SlugCacheSize), slug.WithTTL(cfg.SlugCacheTTL))
	svc.Slugs = slug.NewSlugifier(cache)
	svc.Editor = editor.New(editor.WithSlugifier(svc.Slugs))

	pageSize := cfg.PageSize
	if userPrefs.PageSize > 0 {
		pageSize = userPrefs.PageSize
	}
	svc.Manager = collection.NewManager(client, catalog.Fields(cfg.SearchFields), catalog.WithID, collection.Options{
		PageSize:    pageSize,
		MaxPageSize: cfg.MaxPageSize,
		Sort: collection.SortSpec{
			Key: userPrefs.SortKey,
			Dir: collection.ParseSortDir(userPrefs.SortDir),
		},
		Logger: svc.Logger.With(slog.String("component", "collection")),
	})
	svc.closers = append(svc.closers, func() error {
		svc.Manager.Close()
		return nil
	})

	svc.Logger.Info("curator started",
		slog.String("api_url", client.BaseURL()),
		slog.Int("page_size", pageSize),
		slog.Duration("reload_every", cfg.ReloadEvery))
	return svc, nil
}

// Close stops in-flight writes and releases the log file. Closers run in
// reverse order so the manager drains before the log closes.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
	s.closers = nil
}

// Run boots the curator TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	svc, err := Setup(opts)
	if err != nil {
		return err
	}
	defer svc.Close()

	// Load before the first frame; a failure is shown in the header.
	_ = svc.Manager.Reload(ctx)

	StartPoller(ctx, svc.Manager, svc.Config.ReloadEvery, svc.Logger)

	return ui.Run(ui.Options{
		Context:   ctx,
		Manager:   svc.Manager,
		Editor:    svc.Editor,
		Prefs:     svc.Prefs,
		PrefsPath: opts.PrefsPath,
		Logger:    svc.Logger.With(slog.String("component", "ui")),
	})
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
