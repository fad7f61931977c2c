package load

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golang/snappy"

	"github.com/LilVoxy/customers_etl/ETL/models"
)

// WriteStaging dumps the merged records as snappy-framed JSON lines
func WriteStaging(path string, records []models.TransformedRecord) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create staging file %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := snappy.NewBufferedWriter(f)
	enc := json.NewEncoder(w)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("encode staging record %d: %w", i, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("flush staging file %s: %w", path, err)
	}
	return nil
}

// ReadStaging reads back a file written by WriteStaging
func ReadStaging(path string) ([]models.TransformedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open staging file %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(snappy.NewReader(f))
	var records []models.TransformedRecord
	for {
		var rec models.TransformedRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return records, nil
			}
			return nil, fmt.Errorf("decode staging record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
}
