package testutil

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/require"
)

// ParquetFile is a Parquet file read back for assertions
type ParquetFile struct {
	Table     arrow.Table
	RowGroups int
	Metadata  *file.Reader
}

// ReadParquet reads a whole Parquet file into an Arrow table. The table is
// released when the test ends.
func ReadParquet(t *testing.T, path string) *ParquetFile {
	t.Helper()

	rdr, err := file.OpenParquetFile(path, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdr.Close() })

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	require.NoError(t, err)

	tbl, err := fr.ReadTable(context.Background())
	require.NoError(t, err)
	t.Cleanup(tbl.Release)

	return &ParquetFile{Table: tbl, RowGroups: rdr.NumRowGroups(), Metadata: rdr}
}

// ListParquetFiles returns the slash-separated paths of all .parquet files
// below root, sorted
func ListParquetFiles(t *testing.T, root string) []string {
	t.Helper()

	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".parquet") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(out)
	return out
}
