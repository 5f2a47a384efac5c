package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/lfarias/meubolso/internal/category"
	"github.com/lfarias/meubolso/internal/domain"
	"github.com/lfarias/meubolso/internal/infra/observability"
	"github.com/lfarias/meubolso/internal/ofx"
	"github.com/lfarias/meubolso/internal/port"
)

var ingestTracer = otel.Tracer("service/ingest")

const categoriesCacheKey = "categories:by-name"

// IngestService coordinates OFX parsing, categorization and
// persistence of statement transactions.
type IngestService struct {
	txStore  port.TransactionStore
	catStore port.CategoryStore
	engine   *category.Engine
	catCache port.Cache[map[string]string]
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewIngestService creates an ingest service.
func NewIngestService(
	txStore port.TransactionStore,
	catStore port.CategoryStore,
	engine *category.Engine,
	catCache port.Cache[map[string]string],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		txStore:  txStore,
		catStore: catStore,
		engine:   engine,
		catCache: catCache,
		metrics:  metrics,
		logger:   logger,
	}
}

// IngestFile parses raw OFX bytes and ingests the resulting statement.
func (s *IngestService) IngestFile(ctx context.Context, filename string, raw []byte) (*domain.ImportReport, error) {
	ctx, span := ingestTracer.Start(ctx, "IngestService.IngestFile")
	defer span.End()
	span.SetAttributes(attribute.String("file.name", filename))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("ingest_file", time.Since(start))
	}()

	stmt, strategy, err := ofx.Parse(raw)
	if err != nil {
		s.logger.Warn("statement parse failed",
			zap.String("file", filename),
			zap.Error(err),
		)
		return nil, err
	}
	s.metrics.IncrStatementParsed(string(strategy))

	s.logger.Info("statement parsed",
		zap.String("file", filename),
		zap.String("strategy", string(strategy)),
		zap.String("account_id", stmt.AccountID),
		zap.Int("transactions", len(stmt.Transactions)),
	)

	return s.Ingest(ctx, stmt)
}

// Ingest walks the parsed transactions sequentially: already-stored
// FITIDs are skipped, new ones are categorized and inserted. A failed
// insert is logged and counted but never aborts the run, and
// processing order guarantees a FITID repeated later in the same
// statement sees the earlier insert. Re-ingesting the same statement
// therefore inserts nothing.
func (s *IngestService) Ingest(ctx context.Context, stmt *domain.ParsedStatement) (*domain.ImportReport, error) {
	ctx, span := ingestTracer.Start(ctx, "IngestService.Ingest")
	defer span.End()
	span.SetAttributes(
		attribute.String("statement.account_id", stmt.AccountID),
		attribute.Int("statement.transactions", len(stmt.Transactions)),
	)

	catByName, err := s.categoryIDsByName(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	balance, _ := stmt.Balance.Float64()
	report := &domain.ImportReport{
		ImportID:          uuid.New().String(),
		AccountID:         stmt.AccountID,
		Balance:           balance,
		BalanceDate:       stmt.BalanceDate,
		TotalTransactions: len(stmt.Transactions),
	}

	for i := range stmt.Transactions {
		tx := &stmt.Transactions[i]
		if strings.TrimSpace(tx.FitID) == "" {
			continue
		}

		exists, err := s.txStore.ExistsByFitID(ctx, tx.FitID)
		if err != nil {
			report.FailedCount++
			s.metrics.IncrExternalError("supabase/transactions")
			s.logger.Warn("ingest: existence check failed",
				zap.String("import_id", report.ImportID),
				zap.String("fit_id", tx.FitID),
				zap.Error(err),
			)
			continue
		}
		if exists {
			report.SkippedCount++
			continue
		}

		description := ofx.NormalizeDescription(tx.Description)
		var categoryID *string
		if id, ok := catByName[s.engine.Categorize(description)]; ok {
			categoryID = &id
		}

		amount, _ := tx.Amount.Float64()
		_, err = s.txStore.InsertTransaction(ctx, &domain.Transaction{
			FitID:       tx.FitID,
			Date:        tx.Date,
			Description: description,
			Amount:      amount,
			Type:        storedType(tx.Kind, tx.Amount.IsNegative()),
			CategoryID:  categoryID,
		})
		if err != nil {
			report.FailedCount++
			s.logger.Warn("ingest: insert failed",
				zap.String("import_id", report.ImportID),
				zap.String("fit_id", tx.FitID),
				zap.Error(err),
			)
			continue
		}
		report.InsertedCount++
	}

	s.metrics.AddTransactionOutcomes(report.InsertedCount, report.SkippedCount, report.FailedCount)

	s.logger.Info("statement ingested",
		zap.String("import_id", report.ImportID),
		zap.String("account_id", report.AccountID),
		zap.Int("total", report.TotalTransactions),
		zap.Int("inserted", report.InsertedCount),
		zap.Int("skipped", report.SkippedCount),
		zap.Int("failed", report.FailedCount),
	)

	return report, nil
}

// categoryIDsByName returns the category name to id map, TTL-cached so
// repeated uploads do not refetch the table.
func (s *IngestService) categoryIDsByName(ctx context.Context) (map[string]string, error) {
	if cached, ok := s.catCache.Get(categoriesCacheKey); ok {
		s.metrics.IncrCacheHit("categories")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("categories")

	categories, err := s.catStore.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]string, len(categories))
	for _, cat := range categories {
		byName[cat.Name] = cat.ID
	}
	s.catCache.Set(categoriesCacheKey, byName)
	return byName, nil
}

// storedType reduces a statement kind tag to the credit/debit view the
// stored schema and the listing filter expose. Kinds that do not imply
// a direction follow the amount sign.
func storedType(kind string, negative bool) string {
	switch kind {
	case "credit", "dep", "directdep", "int", "dividend":
		return "credit"
	case "debit", "payment", "fee", "srvchg", "atm", "pos", "check", "directdebit", "repeatpmt":
		return "debit"
	}
	if negative {
		return "debit"
	}
	return "credit"
}
