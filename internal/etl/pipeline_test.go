package etl

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/BartekS5/posts-etl/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	steps []string
}

func (r *recordingRunner) RunStep(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	r.steps = append(r.steps, name)
	return fn(ctx)
}

type stubExtractor struct {
	posts []models.RawPost
	err   error
}

func (s stubExtractor) Extract(context.Context) ([]models.RawPost, error) {
	return s.posts, s.err
}

type captureLoader struct {
	calls int
	got   []models.Post
	err   error
}

func (c *captureLoader) Load(_ context.Context, posts []models.Post) error {
	c.calls++
	c.got = posts
	return c.err
}

func TestPipeline_EndToEndScenario(t *testing.T) {
	server, _ := newUpstream(t, http.StatusOK,
		`[{"userId":1,"title":"a","body":"b"},{"userId":2,"title":"c","body":"d"}]`)
	path := filepath.Join(t.TempDir(), "posts.csv")
	runner := &recordingRunner{}

	p := NewPipeline(NewHTTPExtractor(server.Client(), server.URL+"/posts"), NewCSVLoader(path))
	res, err := p.Run(context.Background(), runner)
	require.NoError(t, err)

	assert.Equal(t, []string{"extract", "transform", "load"}, runner.steps)
	assert.Equal(t, &Result{Extracted: 2, Transformed: 2, Written: 2}, res)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "userId,title,body\n1,a,b\n2,c,d\n", string(data))
}

func TestPipeline_NullTitleWritesEmptyField(t *testing.T) {
	server, _ := newUpstream(t, http.StatusOK, `[{"userId":1,"title":null,"body":"b"}]`)
	path := filepath.Join(t.TempDir(), "posts.csv")

	p := NewPipeline(NewHTTPExtractor(server.Client(), server.URL+"/posts"), NewCSVLoader(path))
	res, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "userId,title,body\n1,,b\n", string(data))
}

func TestPipeline_EmptyPayloadWritesNothing(t *testing.T) {
	for _, body := range []string{`[]`, `null`} {
		t.Run(body, func(t *testing.T) {
			server, _ := newUpstream(t, http.StatusOK, body)
			path := filepath.Join(t.TempDir(), "posts.csv")

			p := NewPipeline(NewHTTPExtractor(server.Client(), server.URL+"/posts"), NewCSVLoader(path))
			res, err := p.Run(context.Background(), nil)
			require.NoError(t, err)
			assert.Zero(t, res.Written)
			assert.Equal(t, body == "null", res.Absent)

			_, err = os.Stat(path)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestPipeline_AbsentFlowsThroughAsNil(t *testing.T) {
	loader := &captureLoader{}
	p := NewPipeline(stubExtractor{}, loader)

	res, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, res.Absent)
	assert.Equal(t, 1, loader.calls)
	assert.Nil(t, loader.got)
}

func TestPipeline_StopsAtFailingStep(t *testing.T) {
	boom := errors.New("boom")

	t.Run("extract", func(t *testing.T) {
		loader := &captureLoader{}
		runner := &recordingRunner{}
		_, err := NewPipeline(stubExtractor{err: boom}, loader).Run(context.Background(), runner)

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"extract"}, runner.steps)
		assert.Zero(t, loader.calls)
	})

	t.Run("transform", func(t *testing.T) {
		loader := &captureLoader{}
		runner := &recordingRunner{}
		ext := stubExtractor{posts: []models.RawPost{{Title: strp("no user")}}}
		_, err := NewPipeline(ext, loader).Run(context.Background(), runner)

		var missing *MissingFieldError
		assert.True(t, errors.As(err, &missing))
		assert.Equal(t, []string{"extract", "transform"}, runner.steps)
		assert.Zero(t, loader.calls)
	})

	t.Run("load", func(t *testing.T) {
		loader := &captureLoader{err: boom}
		ext := stubExtractor{posts: []models.RawPost{rawPost(1, "a", "b")}}
		res, err := NewPipeline(ext, loader).Run(context.Background(), nil)

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, res.Transformed)
		assert.Zero(t, res.Written)
	})
}

func TestSteps(t *testing.T) {
	assert.Equal(t, []string{StepExtract, StepTransform, StepLoad}, Steps())
}
