package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/smartspend-dev/smartspend/internal/analysis"
	"github.com/smartspend-dev/smartspend/internal/config"
	"github.com/smartspend-dev/smartspend/internal/events"
	"github.com/smartspend-dev/smartspend/internal/ledger"
	"github.com/smartspend-dev/smartspend/internal/logging"
	"github.com/smartspend-dev/smartspend/internal/report"
	"github.com/smartspend-dev/smartspend/internal/tracker"
)

// app is everything a command needs, built from the project config.
type app struct {
	cfg  *config.Config
	log  zerolog.Logger
	user string
	svc  *tracker.Service

	closers []io.Closer
}

type appOptions struct {
	// withAnalysis wires the Gemini analyzer; required fails when no key
	// is configured.
	withAnalysis     bool
	analysisRequired bool
	logFormat        logging.Format
	logOut           io.Writer
}

func openApp(ctx context.Context, flags *globalFlags, opts appOptions) (*app, error) {
	dir, err := filepath.Abs(flags.dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if err := config.LoadEnv(dir); err != nil {
		return nil, err
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("no %s in %s (run smartspend init first)", config.FileName, dir)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if opts.logFormat == "" {
		opts.logFormat = logging.FormatConsole
	}
	if opts.logOut == nil {
		opts.logOut = os.Stderr
	}
	log, err := logging.New(opts.logOut, logging.Config{Level: cfg.Log.Level, Format: opts.logFormat})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, user: flags.user}
	if a.user == "" {
		a.user = cfg.DefaultUser
	}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}

	svcOpts := []tracker.Option{
		tracker.WithLogger(logging.WithComponent(log, logging.ComponentTracker)),
		tracker.WithSummaryOptions(report.Options{
			TopN:         cfg.Summary.TopN,
			RecentWindow: cfg.Summary.RecentWindow,
		}),
	}

	if cfg.Events.AMQPURL != "" {
		pub, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, cfg.Events.RoutingKey,
			logging.WithComponent(log, logging.ComponentEvents))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connecting event broker: %w", err)
		}
		a.closers = append(a.closers, pub)
		svcOpts = append(svcOpts, tracker.WithPublisher(pub))
	}

	if opts.withAnalysis {
		analyzer, err := a.openAnalyzer(ctx)
		switch {
		case err == nil:
			svcOpts = append(svcOpts, tracker.WithAnalyzer(analyzer))
		case opts.analysisRequired:
			a.Close()
			return nil, err
		default:
			appLog := logging.WithComponent(log, logging.ComponentApp)
			appLog.Warn().Err(err).Msg("analysis disabled")
		}
	}

	a.svc = tracker.New(store, svcOpts...)
	return a, nil
}

func (a *app) openStore() (ledger.Store, error) {
	storeLog := ledger.WithLogger(logging.WithComponent(a.log, logging.ComponentLedger))
	switch a.cfg.Storage.Backend {
	case config.BackendSQLite:
		s, err := ledger.NewSQLiteStore(a.cfg.SQLitePath(), storeLog)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	default:
		return ledger.NewFileStore(a.cfg.DataPath(), storeLog), nil
	}
}

func (a *app) openAnalyzer(ctx context.Context) (analysis.Analyzer, error) {
	key := a.cfg.APIKey()
	if key == "" {
		return nil, fmt.Errorf("%s is not set", a.cfg.Analysis.APIKeyEnv)
	}
	return analysis.NewGemini(ctx, analysis.Config{
		APIKey:      key,
		Model:       a.cfg.Analysis.Model,
		Temperature: a.cfg.Analysis.Temperature,
	})
}

// Close releases the store and the event broker connection.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}
