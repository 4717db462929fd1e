package commands

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tableflip.dev/chartdesk/pkg/app"
	"tableflip.dev/chartdesk/pkg/config"
	"tableflip.dev/chartdesk/pkg/metrics"
	"tableflip.dev/chartdesk/pkg/store"
)

// env is what every command needs before it can touch charts.
type env struct {
	ctx     context.Context
	cfg     *config.Config
	store   store.Persistence
	metrics *metrics.Recorder
}

func load(cmd *cobra.Command) (*env, error) {
	v := viper.New()
	if f := cmd.Flag("log-level"); f != nil {
		_ = v.BindPFlag("log_level", f)
	}
	cfg, err := config.LoadWith(v)
	if err != nil {
		return nil, err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		Level(cfg.Level()).
		With().Timestamp().Logger()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithContext(ctx)

	p, err := store.Load(cfg, store.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &env{
		ctx:     ctx,
		cfg:     cfg,
		store:   p,
		metrics: metrics.New(prometheus.NewRegistry()),
	}, nil
}

// workspace builds the application state with the user's settings applied
// and the chart listing loaded.
func (r *env) workspace() (*app.Workspace, error) {
	ws := app.New(app.Options{
		Persistence:    r.store,
		SettingsFile:   r.cfg.SettingsPath(),
		AskToSave:      r.cfg.AskToSave,
		StrictSettings: r.cfg.StrictSettings,
		Logger:         *zerolog.Ctx(r.ctx),
		Metrics:        r.metrics,
	})
	if err := ws.LoadSettings(); err != nil && !errors.Is(err, app.ErrNoSettings) {
		return nil, err
	}
	if err := ws.Database.Refresh(r.ctx); err != nil {
		return nil, err
	}
	return ws, nil
}
