package riskmodel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	TextColumn  = "text"
	ClassColumn = "class"

	NegativeClass = "non-suicide"
	PositiveClass = "suicide"
)

// ClassNames maps label ids to class names.
var ClassNames = [2]string{NegativeClass, PositiveClass}

var ErrMissingColumn = errors.New("dataset is missing a required column")

// Example is one labeled training sample.
type Example struct {
	Text  string
	Label int
}

// DatasetStats describes what LoadDataset kept and dropped.
type DatasetStats struct {
	Rows         int
	Kept         int
	DroppedEmpty int
	DroppedClass int
}

// LabelFor maps a class name onto its label id.
func LabelFor(class string) (int, bool) {
	switch strings.TrimSpace(class) {
	case NegativeClass:
		return 0, true
	case PositiveClass:
		return 1, true
	}
	return 0, false
}

// LoadDataset reads a CSV file with a header row containing at least the text and class
// columns. Rows with an empty text or class, or an unknown class, are dropped.
func LoadDataset(path string) ([]Example, DatasetStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, DatasetStats{}, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return ReadDataset(f)
}

// ReadDataset is LoadDataset over an arbitrary reader.
func ReadDataset(r io.Reader) ([]Example, DatasetStats, error) {
	var stats DatasetStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read dataset header: %w", err)
	}

	textIdx, classIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case TextColumn:
			textIdx = i
		case ClassColumn:
			classIdx = i
		}
	}
	if textIdx < 0 {
		return nil, stats, fmt.Errorf("%w: %q", ErrMissingColumn, TextColumn)
	}
	if classIdx < 0 {
		return nil, stats, fmt.Errorf("%w: %q", ErrMissingColumn, ClassColumn)
	}

	var examples []Example
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read dataset row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++

		if textIdx >= len(record) || classIdx >= len(record) ||
			strings.TrimSpace(record[textIdx]) == "" || strings.TrimSpace(record[classIdx]) == "" {
			stats.DroppedEmpty++
			continue
		}

		label, ok := LabelFor(record[classIdx])
		if !ok {
			stats.DroppedClass++
			continue
		}

		examples = append(examples, Example{Text: record[textIdx], Label: label})
	}
	stats.Kept = len(examples)

	return examples, stats, nil
}

// WriteDataset writes examples as a CSV file with text and class columns.
func WriteDataset(w io.Writer, examples []Example) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{TextColumn, ClassColumn}); err != nil {
		return err
	}
	for _, ex := range examples {
		if ex.Label != 0 && ex.Label != 1 {
			return fmt.Errorf("invalid label %d", ex.Label)
		}
		if err := writer.Write([]string{ex.Text, ClassNames[ex.Label]}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
