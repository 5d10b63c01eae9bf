package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/rajsexperiments/scanner-final/internal/db"
	"github.com/rajsexperiments/scanner-final/internal/inventory/service"
	"github.com/rajsexperiments/scanner-final/internal/inventory/store"
	"github.com/rajsexperiments/scanner-final/internal/inventory/store/memory"
	"github.com/rajsexperiments/scanner-final/internal/inventory/store/sqlite"
	"github.com/rajsexperiments/scanner-final/internal/ledgerserver"
)

const memoryDB = ":memory:"

func (a *app) ledgerCmd() *cobra.Command {
	var (
		addr         string
		dbPath       string
		apiKey       string
		seedPassword string
	)

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Run a local development ledger",
		Long: `ledger serves the ledger action protocol from a local SQLite file (or
memory), so the proxy and the CLI can be exercised without the hosted
spreadsheet. With --seed-password the catalog, users and B2B clients are
seeded on start.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.DevLedgerAddr
			}
			if !cmd.Flags().Changed("db") {
				dbPath = a.cfg.DBPath
			}
			if !cmd.Flags().Changed("api-key") {
				apiKey = a.cfg.LedgerAPIKey
			}
			if !cmd.Flags().Changed("seed-password") {
				seedPassword = a.cfg.SeedPassword
			}
			return a.runLedger(cmd.Context(), addr, dbPath, apiKey, seedPassword)
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", "", "listen address (default $SCANNER_DEV_LEDGER_ADDR or :8090)")
	f.StringVar(&dbPath, "db", "", `SQLite file, or ":memory:" (default $SCANNER_DB_PATH or ./data/ledger.db)`)
	f.StringVar(&apiKey, "api-key", "", "bearer key callers must present (default $SCANNER_LEDGER_API_KEY)")
	f.StringVar(&seedPassword, "seed-password", "", "seed development fixtures with this user password")
	return cmd
}

func (a *app) runLedger(ctx context.Context, addr, dbPath, apiKey, seedPassword string) error {
	stores, closeStores, err := a.openLedgerStores(ctx, dbPath, seedPassword)
	if err != nil {
		return err
	}
	defer closeStores()

	pruner := service.NewLogPruner(stores.Scans, service.PrunerConfig{
		RetentionDays: a.cfg.LogRetentionDays,
		IntervalHours: a.cfg.PruneIntervalHours,
	}, a.logger)
	pruner.Start(ctx)
	defer pruner.Stop()

	srv := ledgerserver.New(ledgerserver.Config{
		Addr:   addr,
		APIKey: apiKey,
		Logger: a.logger,
	}, stores)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("dev ledger listening", "addr", addr, "db", dbPath)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dev ledger: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (a *app) openLedgerStores(ctx context.Context, dbPath, seedPassword string) (ledgerserver.Stores, func(), error) {
	if dbPath == memoryDB {
		m := memory.New()
		if seedPassword != "" {
			fx, err := store.DevFixtures(seedPassword)
			if err != nil {
				return ledgerserver.Stores{}, nil, err
			}
			if err := fx.Load(ctx, m, m); err != nil {
				return ledgerserver.Stores{}, nil, err
			}
		}
		return ledgerserver.Stores{Scans: m, Products: m, Directory: m}, func() {}, nil
	}

	sqlDB, err := db.Open(ctx, db.Config{Path: dbPath, Env: a.cfg.Env})
	if err != nil {
		return ledgerserver.Stores{}, nil, err
	}
	if seedPassword != "" {
		if err := db.SeedDev(ctx, sqlDB, db.SeedDevOptions{Password: seedPassword}); err != nil {
			_ = sqlDB.Close()
			return ledgerserver.Stores{}, nil, fmt.Errorf("seed: %w", err)
		}
	}
	writer := db.NewWorker(sqlDB)
	stores := ledgerserver.Stores{
		Scans:     sqlite.NewScanLogStore(sqlDB, writer),
		Products:  sqlite.NewProductStore(sqlDB, writer),
		Directory: sqlite.NewDirectoryStore(sqlDB, writer),
	}
	return stores, func() {
		writer.Close()
		_ = sqlDB.Close()
	}, nil
}
