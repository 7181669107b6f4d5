package series

import (
	"bufio"
	"bytes"
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/biogo/biogo/io/seqio/fai"

	"kics/internal/errs"
)

// faiColumns is the number of columns written by samtools faidx.
const faiColumns = 5

// Reader reads series from files. The zero value logs to slog.Default.
type Reader struct {
	Logger *slog.Logger
}

func (rd Reader) logger() *slog.Logger {
	if rd.Logger == nil {
		return slog.Default()
	}
	return rd.Logger
}

// ReadFile reads a series from path with the zero Reader.
func ReadFile(path, name string) (Series, error) {
	return Reader{}.ReadFile(path, name)
}

// ReadFastaIndex reads a FASTA index with the zero Reader.
func ReadFastaIndex(r io.Reader) (Series, error) {
	return Reader{}.ReadFastaIndex(r)
}

// ReadTSV reads tab-separated sizes with the zero Reader.
func ReadTSV(r io.Reader, name string) (Series, error) {
	return Reader{}.ReadTSV(r, name)
}

// ReadFile reads a series from path. Files ending in ".fai" are read as
// FASTA indices, everything else as TSV.
func (rd Reader) ReadFile(path, name string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return Series{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".fai") {
		s, err := rd.ReadFastaIndex(f)
		if err != nil {
			return Series{}, fmt.Errorf("failed to read FASTA index %s: %w", path, err)
		}
		if name != "" {
			s.Name = name
		}
		return s, nil
	}

	s, err := rd.ReadTSV(f, name)
	if err != nil {
		return Series{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s, nil
}

// ReadFastaIndex reads a samtools FASTA index. Only the sequence name and
// length are used. Entries keep file order.
//
// Indices that do not carry all five samtools columns are read with the
// two-column TSV rules.
func (rd Reader) ReadFastaIndex(r io.Reader) (Series, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Series{}, fmt.Errorf("failed to read index: %w", err)
	}

	if firstLineFields(data) < faiColumns {
		return rd.readNamedTSV(bytes.NewReader(data), ScaffoldSizes, 2)
	}

	idx, err := fai.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return Series{}, fmt.Errorf("%v: %w", err, errs.ErrParse)
	}
	if len(idx) == 0 {
		return Series{}, fmt.Errorf("empty index: %w", errs.ErrInvalidInput)
	}

	records := make([]fai.Record, 0, len(idx))
	for _, rec := range idx {
		records = append(records, rec)
	}
	slices.SortFunc(records, func(a, b fai.Record) int {
		return cmp.Compare(a.Start, b.Start)
	})

	s := Series{Name: ScaffoldSizes, Entries: make([]Entry, len(records))}
	for i, rec := range records {
		s.Entries[i] = Entry{ID: rec.Name, Size: float64(rec.Length)}
	}
	return s, nil
}

// ReadTSV reads tab-separated sizes without a header. A single column holds
// unnamed sizes, which get positional IDs. With two or more columns the
// first is the ID and the second the size; further columns are ignored.
func (rd Reader) ReadTSV(r io.Reader, name string) (Series, error) {
	return rd.readNamedTSV(r, name, 1)
}

func (rd Reader) readNamedTSV(r io.Reader, name string, minColumns int) (Series, error) {
	rows, err := readRows(r)
	if err != nil {
		return Series{}, err
	}
	if len(rows) == 0 {
		return Series{}, fmt.Errorf("empty file: %w", errs.ErrInvalidInput)
	}

	cols := len(rows[0])
	if cols < minColumns {
		return Series{}, fmt.Errorf("expected at least %d columns, got %d: %w", minColumns, cols, errs.ErrParse)
	}
	if cols > 2 {
		rd.logger().Warn("ignoring additional columns", "series", name, "columns", cols)
	}

	s := Series{Name: name, Entries: make([]Entry, 0, len(rows))}
	for i, row := range rows {
		sizeField, id := row[0], strconv.Itoa(i)
		if cols >= 2 {
			id, sizeField = row[0], row[1]
		}
		size, err := strconv.ParseFloat(strings.TrimSpace(sizeField), 64)
		if err != nil {
			return Series{}, fmt.Errorf("line %d: invalid size %q: %w", i+1, sizeField, errs.ErrParse)
		}
		s.Entries = append(s.Entries, Entry{ID: id, Size: size})
	}
	return s, nil
}

func readRows(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.Comma = '\t'
	cr.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, errs.ErrParse)
		}
		rows = append(rows, rec)
	}
}

func firstLineFields(data []byte) int {
	line, _, _ := bytes.Cut(data, []byte{'\n'})
	line = bytes.TrimRight(line, "\r")
	if len(line) == 0 {
		return 0
	}
	return bytes.Count(line, []byte{'\t'}) + 1
}
