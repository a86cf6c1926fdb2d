package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	sleepinadapter "sleeptrack/internal/modules/sleep/adapter/in"
	sleepoutadapter "sleeptrack/internal/modules/sleep/adapter/out"
	sleepin "sleeptrack/internal/modules/sleep/port/in"
	sleepservice "sleeptrack/internal/modules/sleep/service"
	sleepusecase "sleeptrack/internal/modules/sleep/usecase"
	"sleeptrack/internal/platform/clock"
	"sleeptrack/internal/platform/config"
	"sleeptrack/internal/platform/logging"
	"sleeptrack/internal/platform/metrics"
	uiapp "sleeptrack/internal/ui/app"
	"sleeptrack/internal/viewmodel/quality"
	"sleeptrack/internal/viewmodel/tracker"
)

type App struct {
	Config   config.Config
	Log      hclog.Logger
	Metrics  *metrics.Recorder
	Sleep    sleepin.Usecase
	SleepCLI sleepinadapter.CLIHandler

	store *sleepoutadapter.SQLiteNightStore
}

func New(cfg config.Config, logOut io.Writer) (*App, error) {
	log := logging.New(cfg.LogLevel, logOut)

	store, err := sleepoutadapter.NewSQLiteNightStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new night store: %w", err)
	}
	svc := sleepservice.NewNightService(clock.SystemClock{}, store, sleepoutadapter.NewMarkdownJournal(), cfg.JournalDir)
	uc := sleepusecase.NewInteractor(svc)
	log.Debug("opened night store", "db", cfg.DBPath)

	return &App{
		Config:   cfg,
		Log:      log,
		Metrics:  metrics.NewRecorder(),
		Sleep:    uc,
		SleepCLI: sleepinadapter.NewCLIHandler(uc),
		store:    store,
	}, nil
}

func (a *App) Close() error {
	return a.store.Close()
}

// NewTracker builds the tracking screen's state holder.
func (a *App) NewTracker() *tracker.Controller {
	return tracker.New(a.Sleep, tracker.WithLogger(a.Log), tracker.WithMetrics(a.Metrics))
}

// NewRecorder builds a rating screen state holder bound to nightID.
func (a *App) NewRecorder(nightID int64) *quality.Recorder {
	return quality.New(a.Sleep, nightID, quality.WithLogger(a.Log), quality.WithMetrics(a.Metrics))
}

// OpenTUILog returns the log file used while the terminal is taken over by the TUI.
func OpenTUILog(cfg config.Config) (*os.File, error) {
	path := filepath.Join(cfg.DataDir, "sleeptrack.log")
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func RunTUI(app *App) error {
	trackerCtrl := app.NewTracker()
	defer trackerCtrl.Close()

	if addr := app.Config.MetricsAddr; addr != "" {
		srv := &http.Server{Addr: addr, Handler: app.Metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				app.Log.Error("metrics server stopped", "addr", addr, "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		app.Log.Info("serving metrics", "addr", addr)
	}

	model := uiapp.NewModel(trackerCtrl, func(nightID int64) uiapp.RecorderHandle {
		return app.NewRecorder(nightID)
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	final, err := program.Run()
	if m, ok := final.(uiapp.Model); ok {
		m.Shutdown()
	}
	return err
}
