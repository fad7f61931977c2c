package transform

import (
	"context"
	"fmt"
	"time"

	"github.com/LilVoxy/customers_etl/ETL/config"
	"github.com/LilVoxy/customers_etl/ETL/models"
	"github.com/LilVoxy/customers_etl/ETL/utils"
)

// Transformer coordinates the transform phase: parallel chunk cleaning
// followed by the entity split
type Transformer struct {
	logger   *utils.ETLLogger
	chunks   *ChunkTransformer
	driver   *ParallelDriver
	splitter *Splitter
}

// NewTransformer creates a Transformer for a run started at now
func NewTransformer(cfg config.ETLConfig, now time.Time, logger *utils.ETLLogger) *Transformer {
	chunks := NewChunkTransformer(now)
	return &Transformer{
		logger:   logger,
		chunks:   chunks,
		driver:   NewParallelDriver(cfg.Workers, cfg.ChunkTimeout, chunks.TransformChunk, logger),
		splitter: NewSplitter(),
	}
}

// Transform reads every chunk of source and returns the merged records with
// their entity tables
func (t *Transformer) Transform(ctx context.Context, source ChunkSource) (*models.TransformedData, error) {
	startTime := time.Now()
	t.logger.Info("Transform phase started")

	records, chunks, err := t.driver.Run(ctx, source)
	if err != nil {
		t.logger.Error("Chunk transformation failed: %v", err)
		return nil, fmt.Errorf("transform chunks: %w", err)
	}
	t.logger.LogExtractComplete(chunks, len(records), time.Since(startTime))

	customers, emails, phones := t.splitter.Split(records)
	t.logger.Info("Entities split: %d customers, %d emails, %d phones", len(customers), len(emails), len(phones))

	t.logger.Timed("extract_transform_data", startTime)
	return &models.TransformedData{
		Records:   records,
		Chunks:    chunks,
		Customers: customers,
		Emails:    emails,
		Phones:    phones,
	}, nil
}
