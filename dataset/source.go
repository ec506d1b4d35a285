package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
)

// Source produces a freshly loaded Tables.
type Source interface {
	Load(ctx context.Context) (*Tables, error)
}

// FileSpec locates one CSV file and how to split it.
type FileSpec struct {
	Path    string
	Options CSVOptions
}

// FileSource reads both tables from CSV files.
type FileSource struct {
	Products FileSpec
	Sales    FileSpec
}

// NewFileSource returns a FileSource using the default file formats.
func NewFileSource(productsPath, salesPath string) *FileSource {
	return &FileSource{
		Products: FileSpec{Path: productsPath, Options: DefaultProductOptions},
		Sales:    FileSpec{Path: salesPath, Options: DefaultSaleOptions},
	}
}

// Paths returns the files backing the source.
func (fs *FileSource) Paths() []string {
	return []string{fs.Products.Path, fs.Sales.Path}
}

// Load reads both files concurrently.
func (fs *FileSource) Load(ctx context.Context) (*Tables, error) {
	tables := &Tables{Source: "csv"}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := readFile(ctx, fs.Products, ReadProducts)
		tables.Products = rows
		return err
	})
	g.Go(func() error {
		rows, err := readFile(ctx, fs.Sales, ReadSales)
		tables.Sales = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tables.LoadedAt = time.Now().UTC()
	return tables, nil
}

func readFile[T any](ctx context.Context, spec FileSpec, read func(io.Reader, CSVOptions) ([]T, error)) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", spec.Path, err)
	}
	defer f.Close()

	rows, err := read(f, spec.Options)
	if err != nil {
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			rowErr.File = spec.Path
			return nil, err
		}
		return nil, fmt.Errorf("failed to parse %s: %w", spec.Path, err)
	}
	return rows, nil
}
