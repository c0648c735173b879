package commands

import (
	"fmt"

	"github.com/hedgineer/eqindex/internal/build"
	"github.com/hedgineer/eqindex/internal/contracts"
	"github.com/hedgineer/eqindex/internal/index"
	"github.com/hedgineer/eqindex/internal/marketdata"
	"github.com/hedgineer/eqindex/internal/marketdata/alphavantage"
	"github.com/hedgineer/eqindex/internal/marketdata/universe"
	"github.com/hedgineer/eqindex/internal/marketdata/yahoo"
	"github.com/hedgineer/eqindex/internal/query"
	"github.com/hedgineer/eqindex/internal/store"
	"github.com/hedgineer/eqindex/pkg/config"
	"github.com/hedgineer/eqindex/pkg/database"
	"github.com/hedgineer/eqindex/pkg/httputil"
	"github.com/hedgineer/eqindex/pkg/logger"
	"github.com/hedgineer/eqindex/pkg/redis"
)

// components holds the wired application graph shared by the commands.
type components struct {
	cfg          *config.Config
	log          *logger.Logger
	db           *database.DB
	redisClient  *redis.Client
	store        *store.Postgres
	calendar     *index.Calendar
	fetcher      *marketdata.Source
	ingestor     *build.Ingestor
	orchestrator *build.Orchestrator
	reader       *query.Reader
}

// Close releases held connections.
func (c *components) Close() {
	if c.redisClient != nil {
		_ = c.redisClient.Close()
	}
	if c.db != nil {
		c.db.Close()
	}
}

// bootstrap loads config and wires the full component graph.
func bootstrap() (*components, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, read path runs uncached")
		redisClient = nil
	}

	var cache contracts.Cache
	if redisClient != nil && redisClient.Enabled() {
		cache = redis.NewCache(redisClient, "eqindex")
	} else {
		cache = query.NewNopCache()
	}

	httpClient := httputil.New(cfg, log)

	sp500 := universe.NewSP500(httpClient, log, cfg.Providers.SP500ListURL)
	yahooClient := yahoo.NewClient(httpClient, sp500, log, cfg.Providers.YahooBaseURL, cfg.Providers.FetchWorkers)
	avClient := alphavantage.NewClient(httpClient, sp500, log, cfg.Providers.AlphaVantageBaseURL, cfg.Providers.AlphaVantageAPIKey, cfg.Providers.FetchWorkers)
	fetcher := marketdata.NewSource(log, yahooClient, avClient)

	pg := store.NewPostgres(db.Pool)
	calendar := index.NewCalendar()

	compBuilder := index.NewCompositionBuilder(cfg.Index.TopCompanies)
	accumulator := index.NewPerformanceAccumulator(pg, calendar, cfg.Index.BaseValue, cfg.Index.LookbackDays, cfg.Index.RequireHistory)
	orchestrator := build.NewOrchestrator(pg, fetcher, calendar, compBuilder, accumulator, log)
	ingestor := build.NewIngestor(pg, fetcher, calendar, cfg.Index.TopCompanies, log)

	differ := index.NewDiffer(cfg.Index.TopCompanies)
	reader := query.NewReader(pg, cache, calendar, differ, cfg.Index.CacheTTL, log)

	return &components{
		cfg:          cfg,
		log:          log,
		db:           db,
		redisClient:  redisClient,
		store:        pg,
		calendar:     calendar,
		fetcher:      fetcher,
		ingestor:     ingestor,
		orchestrator: orchestrator,
		reader:       reader,
	}, nil
}
