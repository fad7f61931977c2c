package load

import (
	"context"
	"fmt"
	"time"

	"github.com/LilVoxy/customers_etl/ETL/models"
	"github.com/LilVoxy/customers_etl/ETL/utils"
)

// LoadSummary reports what the load phase wrote
type LoadSummary struct {
	RowsLoaded  map[string]int
	Files       []string
	StagingPath string
}

// LoadManager runs the load phase: database append, xlsx export and the
// optional staging dump. A nil loader or exporter skips that sink.
type LoadManager struct {
	logger      *utils.ETLLogger
	metrics     *utils.Metrics
	loader      Loader
	exporter    Exporter
	stagingPath string
}

// NewLoadManager creates a new LoadManager
func NewLoadManager(loader Loader, exporter Exporter, stagingPath string, logger *utils.ETLLogger, metrics *utils.Metrics) *LoadManager {
	return &LoadManager{
		logger:      logger,
		metrics:     metrics,
		loader:      loader,
		exporter:    exporter,
		stagingPath: stagingPath,
	}
}

// Load writes the transformed data to every configured sink. Tables go to
// the database in customers, emails, phones order.
func (m *LoadManager) Load(ctx context.Context, data *models.TransformedData) (*LoadSummary, error) {
	startTime := time.Now()
	m.logger.Info("Load phase started")

	summary := &LoadSummary{RowsLoaded: make(map[string]int)}
	tables := data.Tables()

	// 1. Database
	if m.loader != nil {
		phaseStart := time.Now()
		if err := m.loader.AppendAll(ctx, tables); err != nil {
			m.logger.Error("Database load failed: %v", err)
			return nil, fmt.Errorf("load tables: %w", err)
		}
		for _, t := range tables {
			summary.RowsLoaded[t.Name] = t.Len()
			if m.metrics != nil {
				m.metrics.RowsLoaded.WithLabelValues(t.Name).Add(float64(t.Len()))
			}
		}
		m.observe("load_to_sql", m.logger.Timed("load_to_sql", phaseStart))
	}

	// 2. Spreadsheets
	if m.exporter != nil {
		phaseStart := time.Now()
		for _, t := range tables {
			path, err := m.exporter.Export(t)
			if err != nil {
				m.logger.Error("Export of %s failed: %v", t.Name, err)
				return nil, fmt.Errorf("export %s: %w", t.Name, err)
			}
			m.logger.Info("Exported %d rows to %s", t.Len(), path)
			summary.Files = append(summary.Files, path)
			if m.metrics != nil {
				m.metrics.RowsExported.WithLabelValues(t.Name).Add(float64(t.Len()))
			}
		}
		m.observe("save_to_xlsx", m.logger.Timed("save_to_xlsx", phaseStart))
	}

	// 3. Staging dump
	if m.stagingPath != "" {
		if err := WriteStaging(m.stagingPath, data.Records); err != nil {
			m.logger.Error("Staging dump failed: %v", err)
			return nil, fmt.Errorf("write staging: %w", err)
		}
		m.logger.Info("Staged %d records to %s", len(data.Records), m.stagingPath)
		summary.StagingPath = m.stagingPath
	}

	m.logger.Info("Load phase finished. Duration: %v", time.Since(startTime))
	return summary, nil
}

func (m *LoadManager) observe(phase string, d time.Duration) {
	if m.metrics != nil {
		m.metrics.ObservePhase(phase, d)
	}
}
