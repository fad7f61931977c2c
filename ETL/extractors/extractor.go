package extractors

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"golang.org/x/text/transform"

	"github.com/LilVoxy/customers_etl/ETL/config"
	"github.com/LilVoxy/customers_etl/ETL/models"
	"github.com/LilVoxy/customers_etl/ETL/utils"
)

// Extractor opens the fixed-width customer extract and hands out its chunks
type Extractor struct {
	logger      *utils.ETLLogger
	widths      []int
	recordWidth int
	chunkSize   int
	encoding    string
}

// NewExtractor creates a new Extractor
func NewExtractor(cfg config.ETLConfig, logger *utils.ETLLogger) *Extractor {
	return &Extractor{
		logger:      logger,
		widths:      cfg.Widths,
		recordWidth: cfg.RecordWidth(),
		chunkSize:   cfg.ChunkSize,
		encoding:    cfg.InputEncoding,
	}
}

// ChunkFile is a ChunkSource backed by an open file
type ChunkFile struct {
	*FixedWidthReader
	file *os.File
}

// Close closes the underlying file
func (c *ChunkFile) Close() error {
	return c.file.Close()
}

// CheckInput reports ErrInputNotFound when path does not exist
func CheckInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", models.ErrInputNotFound, path)
		}
		return fmt.Errorf("stat input %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input %s is a directory", path)
	}
	return nil
}

// Open opens path and returns its chunks. The caller closes the ChunkFile.
func (e *Extractor) Open(path string) (*ChunkFile, error) {
	if err := CheckInput(path); err != nil {
		return nil, err
	}

	enc, err := config.LookupEncoding(e.encoding)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}

	var src io.Reader = file
	if e.encoding != "" && e.encoding != config.EncodingUTF8 {
		src = transform.NewReader(file, enc.NewDecoder())
	}

	reader, err := NewFixedWidthReader(src, e.widths, e.chunkSize)
	if err != nil {
		file.Close()
		return nil, err
	}

	e.logger.Debug("Reading %s (encoding %s, record width %d, chunk size %d)",
		path, e.encoding, e.recordWidth, e.chunkSize)
	return &ChunkFile{FixedWidthReader: reader, file: file}, nil
}
