package etl

import (
	"context"
	"encoding/csv"
	"os"

	"github.com/BartekS5/posts-etl/pkg/logger"
	"github.com/BartekS5/posts-etl/pkg/models"
	"github.com/pkg/errors"
)

// DefaultOutputPath is where the load step writes the posts file.
const DefaultOutputPath = "jsonplaceholder_data.csv"

// CSVLoader overwrites a file with a userId,title,body header followed by
// one row per post. The file is truncated in place, so a crash mid-write
// leaves it partial.
type CSVLoader struct {
	Path string
}

func NewCSVLoader(path string) *CSVLoader {
	return &CSVLoader{Path: path}
}

func (c *CSVLoader) Load(_ context.Context, posts []models.Post) (err error) {
	if len(posts) == 0 {
		logger.Infof("No posts to write, leaving %s untouched", c.Path)
		return nil
	}

	// os.Create truncates an existing file, so every run overwrites the
	// previous output.
	f, err := os.Create(c.Path)
	if err != nil {
		return errors.Wrapf(err, "open output file %s", c.Path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close output file %s", c.Path)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(models.CSVHeader()); err != nil {
		return errors.Wrapf(err, "write header to %s", c.Path)
	}
	for _, p := range posts {
		if err := w.Write(p.CSVRecord()); err != nil {
			return errors.Wrapf(err, "write row to %s", c.Path)
		}
	}
	// Write only buffers; Flush pushes the rows to the file and Error
	// reports anything that failed on the way.
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "flush %s", c.Path)
	}

	logger.Infof("Wrote %d posts to %s", len(posts), c.Path)
	return nil
}
