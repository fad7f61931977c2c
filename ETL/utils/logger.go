package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// ETLLogger is the leveled logger of the ETL process. Every message goes to
// the daily log file and is echoed to the standard logger.
type ETLLogger struct {
	infoLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
	echo        *log.Logger
	file        io.Closer
	isVerbose   bool
}

// NewETLLogger creates a logger appending to etl_log_<date>.log in dir
func NewETLLogger(dir string, verbose bool) (*ETLLogger, error) {
	currentTime := time.Now().Format("2006-01-02")
	logFileName := filepath.Join(dir, fmt.Sprintf("etl_log_%s.log", currentTime))

	file, err := os.OpenFile(logFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", logFileName, err)
	}

	l := newETLLogger(file, log.Default(), verbose)
	l.file = file
	return l, nil
}

// NewWriterLogger creates a logger writing to w only
func NewWriterLogger(w io.Writer, verbose bool) *ETLLogger {
	return newETLLogger(w, nil, verbose)
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() *ETLLogger {
	return newETLLogger(io.Discard, nil, false)
}

func newETLLogger(w io.Writer, echo *log.Logger, verbose bool) *ETLLogger {
	flags := log.Ldate | log.Ltime | log.Lshortfile
	return &ETLLogger{
		infoLogger:  log.New(w, "INFO: ", flags),
		errorLogger: log.New(w, "ERROR: ", flags),
		debugLogger: log.New(w, "DEBUG: ", flags),
		echo:        echo,
		isVerbose:   verbose,
	}
}

// Close closes the log file, if any
func (l *ETLLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Info logs an informational message
func (l *ETLLogger) Info(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	l.infoLogger.Output(2, msg)
	if l.echo != nil {
		l.echo.Println("INFO:", msg)
	}
}

// Error logs an error message
func (l *ETLLogger) Error(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	l.errorLogger.Output(2, msg)
	if l.echo != nil {
		l.echo.Println("ERROR:", msg)
	}
}

// Debug logs a debug message (verbose mode only)
func (l *ETLLogger) Debug(format string, v ...any) {
	if !l.isVerbose {
		return
	}

	msg := fmt.Sprintf(format, v...)
	l.debugLogger.Output(2, msg)
	if l.echo != nil {
		l.echo.Println("DEBUG:", msg)
	}
}

// Timed logs how long the named phase took since start and returns the
// duration. Use with defer: defer logger.Timed("load", time.Now())
func (l *ETLLogger) Timed(name string, start time.Time) time.Duration {
	d := time.Since(start)
	l.Info("Time to solve %s: %.2f ms", name, float64(d.Microseconds())/1000)
	return d
}

// LogETLStart logs the start of a run
func (l *ETLLogger) LogETLStart(runID, inputPath string) {
	l.Info("ETL run %s started, input: %s", runID, inputPath)
}

// LogETLComplete logs the end of a successful run
func (l *ETLLogger) LogETLComplete(startTime time.Time, records, customers, emails, phones int) {
	l.Info("ETL run finished. Duration: %v", time.Since(startTime))
	l.Info("Processed: %d records, %d customers, %d emails, %d phones", records, customers, emails, phones)
}

// LogExtractComplete logs the end of the extract/transform phase
func (l *ETLLogger) LogExtractComplete(chunks, records int, duration time.Duration) {
	l.Info("Extract/Transform phase finished. Duration: %v", duration)
	l.Info("Transformed: %d records in %d chunks", records, chunks)
}
