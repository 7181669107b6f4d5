package series

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// WriteTSV writes the series as "<id>\t<size>" lines, readable by ReadTSV.
func WriteTSV(w io.Writer, s Series) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	for _, e := range s.Entries {
		if err := cw.Write([]string{e.ID, strconv.FormatFloat(e.Size, 'f', -1, 64)}); err != nil {
			return fmt.Errorf("failed to write %q: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the series to path as TSV.
func WriteFile(path string, s Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteTSV(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
