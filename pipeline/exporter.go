// Package pipeline writes classified items into bucketed CSV files.
package pipeline

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/p99kit/go-scrape-items/models"
)

// Exporter writes items into per-(archetype, bucket) CSV files under a base
// directory. ExportBatch fully rewrites each destination file; AppendItem is
// a lower-level primitive for incremental persistence. The two must not be
// used on the same file concurrently, which the sequential crawl guarantees.
type Exporter struct {
	baseDir string
}

// NewExporter prepares the output directory tree.
func NewExporter(baseDir string) (*Exporter, error) {
	for _, dir := range []string{baseDir, filepath.Join(baseDir, models.Weapon.Dir()), filepath.Join(baseDir, models.Equipment.Dir())} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return &Exporter{baseDir: baseDir}, nil
}

// BaseDir returns the root of the output tree.
func (e *Exporter) BaseDir() string {
	return e.baseDir
}

// ExportBatch groups items by destination file and rewrites each file with a
// header row followed by one row per item. Buckets with no matching item in
// the batch produce no file, and re-exporting a batch never accumulates rows
// from a previous run.
func (e *Exporter) ExportBatch(items []*models.Item) error {
	groups := make(map[string][]*models.Item)
	var order []string
	for _, item := range items {
		file := item.BucketFile()
		if _, ok := groups[file]; !ok {
			order = append(order, file)
		}
		groups[file] = append(groups[file], item)
	}

	for _, file := range order {
		if err := e.writeGroup(file, groups[file]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeGroup(relFile string, items []*models.Item) error {
	path := filepath.Join(e.baseDir, relFile)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(items[0].Archetype.Fields()); err != nil {
		return fmt.Errorf("write header to %q: %w", path, err)
	}
	for _, item := range items {
		if err := writer.Write(item.Row()); err != nil {
			return fmt.Errorf("write row to %q: %w", path, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush %q: %w", path, err)
	}

	slog.Info("exported items", slog.Int("count", len(items)), slog.String("file", path))
	return nil
}

// AppendItem appends a single item row to its bucket file, creating the file
// and writing the header first when the file is currently empty.
func (e *Exporter) AppendItem(item *models.Item) error {
	path := filepath.Join(e.baseDir, item.BucketFile())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %q: %w", path, err)
	}

	writer := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := writer.Write(item.Archetype.Fields()); err != nil {
			return fmt.Errorf("write header to %q: %w", path, err)
		}
	}
	if err := writer.Write(item.Row()); err != nil {
		return fmt.Errorf("write row to %q: %w", path, err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush %q: %w", path, err)
	}
	return nil
}
