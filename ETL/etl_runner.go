package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/LilVoxy/customers_etl/ETL/config"
	"github.com/LilVoxy/customers_etl/ETL/extractors"
	"github.com/LilVoxy/customers_etl/ETL/load"
	"github.com/LilVoxy/customers_etl/ETL/models"
	"github.com/LilVoxy/customers_etl/ETL/transform"
	"github.com/LilVoxy/customers_etl/ETL/utils"
)

// recentRuns is how many run log entries are summarized at the start of a run
const recentRuns = 5

// Process exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type ETLRunner struct {
	config      config.ETLConfig
	dbConn      *config.DBConnection
	logger      *utils.ETLLogger
	metrics     *utils.Metrics
	extractor   *extractors.Extractor
	loadManager *load.LoadManager
	etlLogRepo  models.ETLLogRepository
	now         func() time.Time
}

// NewETLRunner connects the destination store, bootstraps its schema and
// wires the phases of the pipeline
func NewETLRunner(ctx context.Context, cfg config.ETLConfig, logger *utils.ETLLogger) (*ETLRunner, error) {
	logger.Info("Initializing ETL runner")

	r := &ETLRunner{
		config:    cfg,
		logger:    logger,
		metrics:   utils.NewMetrics(),
		extractor: extractors.NewExtractor(cfg, logger),
		now:       time.Now,
	}

	var loader load.Loader
	if !cfg.SkipDatabase {
		conn, err := config.ConnectDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := config.BootstrapSchema(ctx, conn.DB, cfg.SchemaPath); err != nil {
			config.CloseDatabase(conn)
			return nil, fmt.Errorf("bootstrap schema: %w", err)
		}
		r.dbConn = conn
		r.etlLogRepo = models.NewSQLETLLogRepository(conn.DB, conn.Dialect)
		loader = load.NewSQLLoader(conn.DB, conn.Dialect, cfg.BatchSize, cfg.AtomicLoad, logger)
		logger.Info("Connected to %s database", cfg.Database.Driver)
	}

	var exporter load.Exporter
	if !cfg.SkipExport {
		exporter = load.NewExcelExporter(cfg.OutputDir)
	}

	r.loadManager = load.NewLoadManager(loader, exporter, cfg.StagingPath, logger, r.metrics)
	return r, nil
}

// Close releases the database connection
func (r *ETLRunner) Close() {
	r.logger.Info("Shutting down ETL runner")
	if r.dbConn != nil {
		config.CloseDatabase(r.dbConn)
	}
}

// ExecuteETL runs the whole pipeline once over the configured input
func (r *ETLRunner) ExecuteETL(ctx context.Context) (*models.ETLRunLog, error) {
	startTime := r.now()
	runLog := &models.ETLRunLog{
		RunID:     uuid.NewString(),
		InputFile: r.config.InputPath,
		StartTime: startTime,
		Status:    models.RunStatusInProgress,
	}
	r.logger.LogETLStart(runLog.RunID, runLog.InputFile)

	// 0. Run log: summarize the previous runs, then register this one
	if r.etlLogRepo != nil {
		r.logRunHistory(ctx)
		if err := r.etlLogRepo.CreateLogEntry(ctx, runLog.RunID, runLog.InputFile, startTime); err != nil {
			r.logger.Error("Failed to create run log entry: %v", err)
		}
	}

	// 1. Extract phase: the input is only opened here, chunks are read
	// lazily by the transform phase
	source, err := r.extractor.Open(r.config.InputPath)
	if err != nil {
		return runLog, r.fail(ctx, runLog, "extract", err)
	}
	defer source.Close()

	// 2. Transform phase: parallel chunk parsing, then dedup and split
	// into the three tables. Any chunk error or timeout aborts the run
	// before anything is written.
	transformer := transform.NewTransformer(r.config, startTime, r.logger)
	transformStart := time.Now()
	data, err := transformer.Transform(ctx, source)
	if err != nil {
		return runLog, r.fail(ctx, runLog, "transform", err)
	}
	r.metrics.ObservePhase("extract_transform_data", time.Since(transformStart))
	r.metrics.RecordsProcessed.Add(float64(data.RecordsProcessed()))
	r.metrics.ChunksProcessed.Add(float64(data.Chunks))

	// 3. Load phase: database, spreadsheets and the optional staging dump
	if _, err := r.loadManager.Load(ctx, data); err != nil {
		return runLog, r.fail(ctx, runLog, "load", err)
	}

	// 4. Finish the run log entry and publish the metrics
	runLog.EndTime = r.now()
	runLog.Status = models.RunStatusSuccess
	runLog.RecordsProcessed = data.RecordsProcessed()
	runLog.CustomersLoaded = len(data.Customers)
	runLog.EmailsLoaded = len(data.Emails)
	runLog.PhonesLoaded = len(data.Phones)
	runLog.ExecutionTimeSeconds = runLog.EndTime.Sub(startTime).Seconds()

	if r.etlLogRepo != nil {
		if err := r.etlLogRepo.UpdateLogEntrySuccess(ctx, runLog); err != nil {
			r.logger.Error("Failed to update run log entry: %v", err)
		}
	}
	r.metrics.ObserveRun(models.RunStatusSuccess, runLog.EndTime)
	r.writeMetrics()

	r.logger.LogETLComplete(startTime, runLog.RecordsProcessed,
		runLog.CustomersLoaded, runLog.EmailsLoaded, runLog.PhonesLoaded)
	return runLog, nil
}

// fail marks the run as failed and returns the phase error
func (r *ETLRunner) fail(ctx context.Context, runLog *models.ETLRunLog, phase string, err error) error {
	runLog.EndTime = r.now()
	runLog.Status = models.RunStatusFailed
	runLog.ErrorMessage = fmt.Sprintf("%s phase: %v", phase, err)
	runLog.ExecutionTimeSeconds = runLog.EndTime.Sub(runLog.StartTime).Seconds()
	r.logger.Error("ETL run %s failed: %s", runLog.RunID, runLog.ErrorMessage)

	if r.etlLogRepo != nil {
		// the run context may already be cancelled
		if uerr := r.etlLogRepo.UpdateLogEntryFailure(context.WithoutCancel(ctx), runLog.RunID, runLog.EndTime, runLog.ErrorMessage); uerr != nil {
			r.logger.Error("Failed to update run log entry: %v", uerr)
		}
	}
	r.metrics.ObserveRun(models.RunStatusFailed, runLog.EndTime)
	r.writeMetrics()

	return fmt.Errorf("%s phase: %w", phase, err)
}

// logRunHistory logs the last successful run and the outcome of the most
// recent runs. Read errors are logged only.
func (r *ETLRunner) logRunHistory(ctx context.Context) {
	lastRun, err := r.etlLogRepo.GetLastSuccessfulRun(ctx)
	if err != nil {
		r.logger.Error("Failed to read the last successful run: %v", err)
		return
	}
	if lastRun != nil {
		r.logger.Info("Last successful run: %s at %v (%d records)",
			lastRun.RunID, lastRun.EndTime, lastRun.RecordsProcessed)
	}

	runs, err := r.etlLogRepo.GetETLRunStats(ctx, recentRuns)
	if err != nil {
		r.logger.Error("Failed to read run statistics: %v", err)
		return
	}
	if len(runs) == 0 {
		return
	}

	var succeeded, failed int
	for _, run := range runs {
		switch run.Status {
		case models.RunStatusSuccess:
			succeeded++
		case models.RunStatusFailed:
			failed++
		}
	}
	r.logger.Info("Last %d runs: %d succeeded, %d failed", len(runs), succeeded, failed)
}

func (r *ETLRunner) writeMetrics() {
	if r.config.MetricsFile == "" {
		return
	}
	if err := r.metrics.WriteTextfile(r.config.MetricsFile); err != nil {
		r.logger.Error("Failed to write metrics to %s: %v", r.config.MetricsFile, err)
	}
}

// StartScheduler runs the ETL every RunInterval until ctx is cancelled.
// A run still in progress when the next one is due is not overlapped.
func (r *ETLRunner) StartScheduler(ctx context.Context) error {
	scheduler := gocron.NewScheduler(time.UTC)

	r.logger.Info("Starting ETL scheduler with interval %v", r.config.RunInterval)

	_, err := scheduler.Every(r.config.RunInterval).SingletonMode().Do(func() {
		r.logger.Info("Scheduled ETL run")
		if _, err := r.ExecuteETL(ctx); err != nil {
			r.logger.Error("Scheduled ETL run failed: %v", err)
		}
	})
	if err != nil {
		r.logger.Error("Failed to configure scheduler: %v", err)
		return fmt.Errorf("configure scheduler: %w", err)
	}

	scheduler.StartAsync()

	<-ctx.Done()

	scheduler.Stop()
	r.logger.Info("ETL scheduler stopped")
	return nil
}

// RunOnce runs the ETL once and returns the process exit code
func RunOnce(ctx context.Context, cfg config.ETLConfig) int {
	logger, err := utils.NewETLLogger(cfg.LogDir, cfg.EnableDetailedLogging)
	if err != nil {
		log.Printf("Failed to create logger: %v", err)
		return exitFailure
	}
	defer logger.Close()

	runner, err := NewETLRunner(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to create ETL runner: %v", err)
		return exitFailure
	}
	defer runner.Close()

	if _, err := runner.ExecuteETL(ctx); err != nil {
		if errors.Is(err, models.ErrInputNotFound) {
			return exitUsage
		}
		return exitFailure
	}
	return exitOK
}

// RunScheduled runs the ETL on a schedule until SIGINT or SIGTERM
func RunScheduled(cfg config.ETLConfig) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	go func() {
		select {
		case <-signalCh:
			log.Println("Shutdown signal received, stopping ETL runner...")
			cancel()
		case <-ctx.Done():
		}
	}()

	logger, err := utils.NewETLLogger(cfg.LogDir, cfg.EnableDetailedLogging)
	if err != nil {
		log.Printf("Failed to create logger: %v", err)
		return exitFailure
	}
	defer logger.Close()

	runner, err := NewETLRunner(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to create ETL runner: %v", err)
		return exitFailure
	}
	defer runner.Close()

	if err := runner.StartScheduler(ctx); err != nil {
		return exitFailure
	}
	return exitOK
}

// parseFlags builds the run configuration from defaults, ETL_* variables
// and command-line flags, in increasing priority
func parseFlags(args []string, stderr io.Writer) (config.ETLConfig, string, error) {
	cfg := config.GetConfig()

	fs := flag.NewFlagSet("etl_runner", flag.ContinueOnError)
	fs.SetOutput(stderr)

	mode := fs.String("mode", "once", "Run mode: once or scheduled")
	fs.StringVar(&cfg.InputPath, "input", "", "Fixed-width customer file (required)")
	fs.DurationVar(&cfg.RunInterval, "interval", cfg.RunInterval, "Interval between runs in scheduled mode")
	fs.StringVar(&cfg.Database.Driver, "db-driver", cfg.Database.Driver, "Database driver: sqlite3, mysql or postgres")
	fs.StringVar(&cfg.Database.DSN, "db-dsn", cfg.Database.DSN, "Database data source name")
	fs.StringVar(&cfg.SchemaPath, "schema", cfg.SchemaPath, "DDL script run at startup")
	fs.StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "Directory of the xlsx exports")
	fs.IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "Records per chunk")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Transform worker count")
	fs.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Rows per INSERT statement")
	fs.DurationVar(&cfg.ChunkTimeout, "timeout", cfg.ChunkTimeout, "Maximum wait per chunk")
	fs.StringVar(&cfg.InputEncoding, "encoding", cfg.InputEncoding, "Input encoding: utf-8, latin1 or windows-1252")
	fs.BoolVar(&cfg.AtomicLoad, "atomic", cfg.AtomicLoad, "Load the three tables in one transaction")
	fs.StringVar(&cfg.StagingPath, "staging", cfg.StagingPath, "Optional snappy dump of the merged records")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Optional Prometheus textfile")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Directory of the daily log file")
	fs.BoolVar(&cfg.EnableDetailedLogging, "verbose", cfg.EnableDetailedLogging, "Enable debug logging")
	fs.BoolVar(&cfg.SkipDatabase, "skip-db", cfg.SkipDatabase, "Do not load into the database")
	fs.BoolVar(&cfg.SkipExport, "skip-xlsx", cfg.SkipExport, "Do not write xlsx files")

	if err := fs.Parse(args); err != nil {
		return cfg, "", err
	}
	if cfg.InputPath == "" {
		fs.Usage()
		return cfg, "", errors.New("-input is required")
	}
	return cfg, *mode, nil
}

func run(args []string, stderr io.Writer) int {
	cfg, mode, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return exitUsage
	}

	// a missing input is reported before anything else
	if err := extractors.CheckInput(cfg.InputPath); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return exitUsage
	}

	log.Println("Starting ETL runner in mode:", mode)

	switch mode {
	case "once":
		return RunOnce(context.Background(), cfg)
	case "scheduled":
		return RunScheduled(cfg)
	default:
		fmt.Fprintf(stderr, "unknown mode %q (available: once, scheduled)\n", mode)
		return exitUsage
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}
