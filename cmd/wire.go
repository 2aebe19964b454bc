package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/serp-hawk/outreach-cli/internal/enrich"
	"github.com/serp-hawk/outreach-cli/internal/fetch"
	"github.com/serp-hawk/outreach-cli/internal/gate"
	"github.com/serp-hawk/outreach-cli/internal/pipeline"
	"github.com/serp-hawk/outreach-cli/internal/render"
	"github.com/serp-hawk/outreach-cli/internal/store"
	anthropicpkg "github.com/serp-hawk/outreach-cli/pkg/anthropic"
	"github.com/serp-hawk/outreach-cli/pkg/mailer"
)

// pipelineEnv holds the initialized store and pipeline used by the serve,
// draft, send, and generate commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "outreach.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline sets up the store, clients, and pipeline. Callers should
// defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	catalog, err := enrich.LoadCatalog()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
	analyzer := enrich.NewAnalyzer(anthropicClient, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, catalog)
	drafter := enrich.NewDrafter(analyzer, enrich.DrafterConfig{
		BrandName:  cfg.Outreach.BrandName,
		SignerName: cfg.Outreach.SignerName,
		Phone:      cfg.Outreach.Phone,
	})

	site := fetch.NewSiteFetcher(fetch.Config{
		Timeout:  time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxChars: cfg.Fetch.MaxChars,
	})
	var fetcher fetch.Fetcher = site
	if cfg.Fetch.Crawl {
		fetcher = fetch.NewCrawlFetcher(site, cfg.Fetch.MaxSubpages)
		zap.L().Info("subpage crawling enabled", zap.Int("max_subpages", cfg.Fetch.MaxSubpages))
	}

	var m mailer.Mailer
	smtpCfg := mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
	}
	if smtpCfg.Configured() {
		m = mailer.NewSMTP(smtpCfg)
	} else {
		zap.L().Warn("smtp credentials not configured, sends will be simulated")
		m = mailer.NewSimulated()
	}

	renderer, err := render.NewCardRenderer(cfg.Render.Dir)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	p := pipeline.New(pipeline.Options{
		Store:       st,
		Gate:        gate.New(st, cfg.Outreach.SenderEmail, cfg.Outreach.HourlyLimit),
		Fetcher:     fetcher,
		Analyzer:    analyzer,
		Drafter:     drafter,
		Mailer:      m,
		Renderer:    renderer,
		SenderEmail: cfg.Outreach.SenderEmail,
	})

	return &pipelineEnv{Store: st, Pipeline: p}, nil
}
