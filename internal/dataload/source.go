package dataload

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"yamdb-backend/internal/infrastructure/storage"
)

// ErrNoFile means neither a .csv nor an .xlsx exists for a table.
var ErrNoFile = errors.New("seed file not found")

// Extensions are tried in this order.
var extensions = []string{".csv", ".xlsx"}

// Source yields the raw rows of a seed file, header first.
type Source interface {
	Rows(ctx context.Context, name string) ([][]string, error)
}

// DirSource reads seed files from a local directory.
type DirSource struct {
	Dir string
}

func (s DirSource) Rows(_ context.Context, name string) ([][]string, error) {
	for _, ext := range extensions {
		data, err := os.ReadFile(filepath.Join(s.Dir, name+ext))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return parse(ext, data)
	}
	return nil, fmt.Errorf("%s in %s: %w", name, s.Dir, ErrNoFile)
}

// ObjectReader is the part of the object store a BucketSource needs.
type ObjectReader interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

// BucketSource reads seed files from object storage under Prefix.
type BucketSource struct {
	Store  ObjectReader
	Prefix string
}

func (s BucketSource) Rows(ctx context.Context, name string) ([][]string, error) {
	for _, ext := range extensions {
		data, err := s.Store.Download(ctx, path.Join(s.Prefix, name+ext))
		if errors.Is(err, storage.ErrObjectNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return parse(ext, data)
	}
	return nil, fmt.Errorf("%s under %q: %w", name, s.Prefix, ErrNoFile)
}

func parse(ext string, data []byte) ([][]string, error) {
	if ext == ".xlsx" {
		return parseXLSX(bytes.NewReader(data))
	}
	return parseCSV(bytes.NewReader(data))
}

func parseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\uFEFF")
	}
	return records, nil
}

// parseXLSX reads the first sheet.
func parseXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}
