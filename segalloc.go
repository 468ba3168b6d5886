// Package segalloc pairs the segments of two tiers of a Praat TextGrid.
//
// A Client stores uploaded annotation files and keeps interactive allocation
// sessions in memory. Each session parses one file, assigns segment ids with
// the shortest tier first, links the tiers by boundary tolerance and drives an
// allocation engine that renderers talk to through segment ids.
//
// Basic usage:
//
//	client, err := segalloc.New(segalloc.WithSQLite(".segalloc/segalloc.db"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	doc, err := client.Documents.Upload(ctx, "take1.TextGrid", data)
//	session, err := client.Sessions.Create(ctx, service.SessionParams{
//	    DocumentID: doc.ID(),
//	    TierA:      "words",
//	    TierB:      "phones",
//	})
//
//	changed, err := session.Pick(&segmentID)
//	changed, err = session.Commit()
package segalloc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/helixml/segalloc/application/service"
	"github.com/helixml/segalloc/infrastructure/persistence"
	"github.com/helixml/segalloc/internal/database"
)

// Client is the main entry point for the segalloc library.
//
// Access resources via struct fields:
//
//	client.Documents.Find(ctx)
//	client.Sessions.Get(id)
type Client struct {
	Documents *service.Documents
	Sessions  *service.Sessions

	db             database.Database
	logger         *slog.Logger
	dataDir        string
	linkScope      float64
	maxUploadBytes int64
	sessionLimit   int
	sweeper        *service.SessionSweeper
	closed         atomic.Bool
	mu             sync.Mutex
}

// New creates a Client. Without a database option the document library is
// a SQLite file inside the data directory.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.dataDir != "" {
		if err := os.MkdirAll(cfg.dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	dbURL := cfg.databaseURL()
	db, err := database.NewDatabase(context.Background(), dbURL, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	documents := service.NewDocuments(persistence.NewDocumentStore(db), cfg.maxUploadBytes, logger)
	sessions := service.NewSessions(documents,
		service.WithSessionLimit(cfg.sessionLimit),
		service.WithDefaultScope(cfg.linkScope),
		service.WithSessionLogger(logger),
	)

	logger.Info("segalloc client ready",
		slog.String("data_dir", cfg.dataDir),
		slog.Bool("postgres", db.IsPostgres()),
		slog.Float64("link_scope", cfg.linkScope),
		slog.Int("session_limit", cfg.sessionLimit),
	)

	sweeper := service.NewSessionSweeper(sessions, cfg.sessionIdle, logger)
	sweeper.Start(context.Background())

	return &Client{
		Documents:      documents,
		Sessions:       sessions,
		db:             db,
		logger:         logger,
		dataDir:        cfg.dataDir,
		linkScope:      cfg.linkScope,
		maxUploadBytes: documents.MaxBytes(),
		sessionLimit:   cfg.sessionLimit,
		sweeper:        sweeper,
	}, nil
}

// Close stops idle session expiry and releases the database. Calling Close twice returns
// service.ErrClientClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return service.ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweeper.Stop()
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	c.logger.Info("segalloc client closed")
	return nil
}

// Logger returns the client logger.
func (c *Client) Logger() *slog.Logger { return c.logger }

// DataDir returns the data directory.
func (c *Client) DataDir() string { return c.dataDir }

// LinkScope returns the default link tolerance for new sessions.
func (c *Client) LinkScope() float64 { return c.linkScope }

// MaxUploadBytes returns the upload size limit.
func (c *Client) MaxUploadBytes() int64 { return c.maxUploadBytes }

// SessionLimit returns the live session bound.
func (c *Client) SessionLimit() int { return c.sessionLimit }

// Ping checks that the document library is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return service.ErrClientClosed
	}
	sqlDB, err := c.db.GORM().DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

