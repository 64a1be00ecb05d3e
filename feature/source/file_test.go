package source_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	dserrors "datarec/core/errors"
	"datarec/core/frame"
	"datarec/core/storage/mocks"
	"datarec/feature/source"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	if sheet != "" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	} else {
		sheet = "Sheet1"
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"date", "close", "volume", "note"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"2024-01-01", 1.5, 100, "a"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"2024-01-02", 2.5}))
	return f
}

func TestCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("TypedColumns", func(t *testing.T) {
		spec := priceSpec(source.TypeCSV)
		tbl, err := (&source.CSV{Path: "testdata/prices.csv", Spec: spec}).Load(ctx)
		require.NoError(t, err)

		assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, keyStrings(t, tbl))
		assert.Equal(t, []string{"close", "volume", "note"}, tbl.ColumnNames())
		assert.Equal(t, []any{1.5, 2.5, nil}, values(t, tbl, "close"))
		assert.Equal(t, []any{int64(100), nil, int64(300)}, values(t, tbl, "volume"))
		assert.Equal(t, []any{"a", nil, "c"}, values(t, tbl, "note"))
	})

	t.Run("UntypedStaysText", func(t *testing.T) {
		spec := source.Spec{Type: source.TypeCSV, Key: []string{"date"}}
		tbl, err := (&source.CSV{Path: "testdata/prices.csv", Spec: spec}).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []any{"1.5", "2.5", nil}, values(t, tbl, "close"))
	})

	t.Run("CompositeKey", func(t *testing.T) {
		spec := source.Spec{Type: source.TypeCSV, Key: []string{"date", "note"}}
		tbl, err := (&source.CSV{Path: "testdata/prices.csv", Spec: spec}).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"date", "note"}, tbl.KeyNames())
		assert.Equal(t, "(2024-01-01, a)", tbl.Keys()[0].String())
	})

	t.Run("BadCell", func(t *testing.T) {
		spec := source.Spec{Type: source.TypeCSV, Key: []string{"date"}, Types: map[string]frame.Kind{"note": frame.KindInt}}
		_, err := (&source.CSV{Path: "testdata/prices.csv", Spec: spec}).Load(ctx)
		assert.ErrorIs(t, err, dserrors.ErrInvalidInput)
		assert.ErrorContains(t, err, `row 1 column "note"`)
	})

	t.Run("UnknownTypedColumn", func(t *testing.T) {
		spec := source.Spec{Type: source.TypeCSV, Key: []string{"date"}, Types: map[string]frame.Kind{"open": frame.KindFloat}}
		_, err := (&source.CSV{Path: "testdata/prices.csv", Spec: spec}).Load(ctx)
		assert.ErrorIs(t, err, dserrors.ErrNotFound)
	})

	t.Run("MissingKeyColumn", func(t *testing.T) {
		spec := source.Spec{Type: source.TypeCSV, Key: []string{"id"}}
		_, err := (&source.CSV{Path: "testdata/prices.csv", Spec: spec}).Load(ctx)
		assert.ErrorIs(t, err, dserrors.ErrNotFound)
	})

	t.Run("DuplicateKeys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dup.csv")
		require.NoError(t, os.WriteFile(path, []byte("id,v\n1,a\n1,b\n"), 0o644))
		_, err := (&source.CSV{Path: path, Spec: source.Spec{Key: []string{"id"}}}).Load(ctx)
		assert.ErrorIs(t, err, dserrors.ErrInvalidInput)
	})

	t.Run("Empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.csv")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		_, err := (&source.CSV{Path: path, Spec: source.Spec{Key: []string{"id"}}}).Load(ctx)
		assert.ErrorIs(t, err, dserrors.ErrInvalidInput)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := (&source.CSV{Path: "testdata/nope.csv", Spec: priceSpec(source.TypeCSV)}).Load(ctx)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestXLSX(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("FirstSheetPadsShortRows", func(t *testing.T) {
		path := filepath.Join(dir, "first.xlsx")
		f := writeWorkbook(t, "")
		require.NoError(t, f.SaveAs(path))

		tbl, err := (&source.XLSX{Path: path, Spec: priceSpec(source.TypeXLSX)}).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, keyStrings(t, tbl))
		assert.Equal(t, []any{1.5, 2.5}, values(t, tbl, "close"))
		assert.Equal(t, []any{int64(100), nil}, values(t, tbl, "volume"))
		assert.Equal(t, []any{"a", nil}, values(t, tbl, "note"))
	})

	t.Run("NamedSheet", func(t *testing.T) {
		path := filepath.Join(dir, "named.xlsx")
		f := writeWorkbook(t, "Prices")
		require.NoError(t, f.SaveAs(path))

		spec := priceSpec(source.TypeXLSX)
		spec.Sheet = "Prices"
		tbl, err := (&source.XLSX{Path: path, Spec: spec}).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, tbl.NumRows())

		spec.Sheet = "Volumes"
		_, err = (&source.XLSX{Path: path, Spec: spec}).Load(ctx)
		assert.ErrorIs(t, err, dserrors.ErrNotFound)
	})
}

func TestObject(t *testing.T) {
	ctx := context.Background()
	csvData, err := os.ReadFile("testdata/prices.csv")
	require.NoError(t, err)

	t.Run("CSVByExtension", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("GetObject", mock.Anything, "data", "eod/prices.csv", minio.GetObjectOptions{}).
			Return(io.NopCloser(bytes.NewReader(csvData)), nil)

		spec := priceSpec(source.TypeObject)
		spec.Object = "eod/prices.csv"
		tbl, err := source.NewObject(m, "data", spec).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, tbl.NumRows())
		m.AssertExpectations(t)
	})

	t.Run("XLSXByFormat", func(t *testing.T) {
		buf, err := writeWorkbook(t, "").WriteToBuffer()
		require.NoError(t, err)

		m := new(mocks.Client)
		m.On("GetObject", mock.Anything, "data", "eod/latest", minio.GetObjectOptions{}).
			Return(io.NopCloser(bytes.NewReader(buf.Bytes())), nil)

		spec := priceSpec(source.TypeObject)
		spec.Object = "eod/latest"
		spec.Format = "xlsx"
		tbl, err := source.NewObject(m, "data", spec).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, keyStrings(t, tbl))
	})

	t.Run("UnknownExtension", func(t *testing.T) {
		spec := priceSpec(source.TypeObject)
		spec.Object = "eod/prices.json"
		_, err := source.NewObject(new(mocks.Client), "data", spec).Load(ctx)
		assert.ErrorIs(t, err, dserrors.ErrInvalidArgument)
	})

	t.Run("GetFails", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("GetObject", mock.Anything, "data", "eod/prices.csv", minio.GetObjectOptions{}).
			Return(nil, assert.AnError)

		spec := priceSpec(source.TypeObject)
		spec.Object = "eod/prices.csv"
		_, err := source.NewObject(m, "data", spec).Load(ctx)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
