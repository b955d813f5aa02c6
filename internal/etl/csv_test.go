package etl

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/BartekS5/posts-etl/pkg/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVLoader_WritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	posts := []models.Post{
		{UserID: 1, Title: "a", Body: "b"},
		{UserID: 2, Title: "c", Body: "d"},
	}

	require.NoError(t, NewCSVLoader(path).Load(context.Background(), posts))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "userId,title,body\n1,a,b\n2,c,d\n", string(data))
}

func TestCSVLoader_TruncatesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("old line\n", 50)), 0o644))

	require.NoError(t, NewCSVLoader(path).Load(context.Background(), []models.Post{{UserID: 9, Title: "x", Body: "y"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "userId,title,body\n9,x,y\n", string(data))
}

func TestCSVLoader_NoWriteForAbsentOrEmpty(t *testing.T) {
	tests := []struct {
		name  string
		posts []models.Post
	}{
		{"absent", nil},
		{"empty", []models.Post{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			existing := filepath.Join(dir, "out.csv")
			before := []byte("userId,title,body\n7,keep,me\n")
			require.NoError(t, os.WriteFile(existing, before, 0o644))

			require.NoError(t, NewCSVLoader(existing).Load(context.Background(), tt.posts))

			data, err := os.ReadFile(existing)
			require.NoError(t, err)
			assert.Equal(t, before, data)

			missing := filepath.Join(dir, "never.csv")
			require.NoError(t, NewCSVLoader(missing).Load(context.Background(), tt.posts))
			_, err = os.Stat(missing)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestCSVLoader_LineCountAndRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	posts := make([]models.Post, 25)
	for i := range posts {
		posts[i] = models.Post{UserID: int64(i + 1), Title: "title " + strconv.Itoa(i), Body: "body " + strconv.Itoa(i)}
	}

	require.NoError(t, NewCSVLoader(path).Load(context.Background(), posts))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 1+len(posts))
	assert.Equal(t, "userId,title,body", lines[0])

	got := make([]models.Post, 0, len(posts))
	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		require.Len(t, fields, 3)
		id, err := strconv.ParseInt(fields[0], 10, 64)
		require.NoError(t, err)
		got = append(got, models.Post{UserID: id, Title: fields[1], Body: fields[2]})
	}
	if diff := cmp.Diff(posts, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVLoader_QuotesDelimitersAndNewlines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	posts := []models.Post{
		{UserID: 3, Title: "qui, est", Body: "line one\nline \"two\""},
	}

	require.NoError(t, NewCSVLoader(path).Load(context.Background(), posts))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"userId", "title", "body"},
		{"3", "qui, est", "line one\nline \"two\""},
	}, records)
}

func TestCSVLoader_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "out.csv")

	err := NewCSVLoader(path).Load(context.Background(), []models.Post{{UserID: 1, Title: "a", Body: "b"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
