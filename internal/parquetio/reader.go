package parquetio

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
)

// Reader gives access to the metadata of a snapshot file.
type Reader struct {
	file *os.File
	pf   *parquet.File
}

// Open opens a Parquet file.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	return &Reader{file: f, pf: pf}, nil
}

// NumRows returns the total number of rows in the file.
func (r *Reader) NumRows() int64 {
	return r.pf.NumRows()
}

// Schema returns the file schema.
func (r *Reader) Schema() *parquet.Schema {
	return r.pf.Schema()
}

// Columns returns the top-level field names in schema order.
func (r *Reader) Columns() []string {
	fields := r.pf.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	return names
}

// Close releases the file.
func (r *Reader) Close() error {
	return r.file.Close()
}
