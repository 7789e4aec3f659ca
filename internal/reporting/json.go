package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beacon-audit/beacon/internal/models"
	"github.com/klauspost/compress/gzip"
)

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, rep *models.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// WriteReportFile writes the report as JSON to path, gzip-compressed when
// path ends in ".gz".
func WriteReportFile(path string, rep *models.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}

	if !isGzipPath(path) {
		if err := WriteJSON(f, rep); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}

	zw := gzip.NewWriter(f)
	if err := WriteJSON(zw, rep); err != nil {
		_ = zw.Close()
		_ = f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("compressing report: %w", err)
	}
	return f.Close()
}

// ReadReportFile loads a report written by WriteReportFile.
func ReadReportFile(path string) (*models.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var r io.Reader = f
	if isGzipPath(path) {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("decompressing report %s: %w", path, err)
		}
		defer zr.Close() //nolint:errcheck
		r = zr
	}

	var rep models.Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", path, err)
	}
	return &rep, nil
}

func isGzipPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}
