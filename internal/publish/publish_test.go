package publish

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/autoport/internal/config"
	"github.com/gyeh/autoport/internal/model"
)

func artifacts(t *testing.T) model.Artifacts {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
		return p
	}
	pdf := write("r.pdf", "%PDF")
	return model.Artifacts{
		HTMLPath:   write("r.html", "<html>"),
		PDFPath:    &pdf,
		ChartPaths: []string{write("charts/amount.png", "png")},
	}
}

func TestPublish_Local(t *testing.T) {
	base := t.TempDir()
	repo := NewLocal(base, WithLocalPrefix("archive"))

	keys, err := Publish(context.Background(), repo, zerolog.Nop(), "run-1", artifacts(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1/r.html", "run-1/r.pdf", "run-1/charts/amount.png"}, keys)

	data, err := os.ReadFile(filepath.Join(base, "archive", "run-1", "r.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(data))

	data, err = os.ReadFile(filepath.Join(base, "archive", "run-1", "charts", "amount.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestArtifactKey(t *testing.T) {
	base := "reports"
	assert.Equal(t, "r.html", artifactKey(base, filepath.Join("reports", "r.html")))
	assert.Equal(t, "charts/a.png", artifactKey(base, filepath.Join("reports", "charts", "a.png")))
	assert.Equal(t, "x.png", artifactKey(base, filepath.Join("elsewhere", "x.png")))
}

func TestPublish_ContinuesAfterMissingFile(t *testing.T) {
	a := artifacts(t)
	a.ChartPaths = append([]string{"/does/not/exist.png"}, a.ChartPaths...)

	keys, err := Publish(context.Background(), NewLocal(t.TempDir()), zerolog.Nop(), "run-2", a)
	assert.Error(t, err)
	assert.Len(t, keys, 3)
}

type fakeS3 struct {
	puts map[string]string
	cts  map[string]string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts[*in.Bucket+"/"+*in.Key] = string(body)
	if in.ContentType != nil {
		f.cts[*in.Key] = *in.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func TestPublish_S3(t *testing.T) {
	client := &fakeS3{puts: map[string]string{}, cts: map[string]string{}}
	repo, err := NewS3(context.Background(), WithBucket("bucket"), WithPrefix("reports"), WithClient(client))
	require.NoError(t, err)

	_, err = Publish(context.Background(), repo, zerolog.Nop(), "run-3", artifacts(t))
	require.NoError(t, err)
	assert.Equal(t, "<html>", client.puts["bucket/reports/run-3/r.html"])
	assert.Equal(t, "%PDF", client.puts["bucket/reports/run-3/r.pdf"])
	assert.Equal(t, "image/png", client.cts["reports/run-3/charts/amount.png"])
}

func TestFromConfig(t *testing.T) {
	repo, err := FromConfig(context.Background(), config.PublishConfig{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, repo)

	repo, err = FromConfig(context.Background(), config.PublishConfig{Target: "local", LocalPath: t.TempDir()}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Local{}, repo)

	_, err = FromConfig(context.Background(), config.PublishConfig{Target: "ftp"}, zerolog.Nop())
	assert.Error(t, err)
}
