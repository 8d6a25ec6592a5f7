package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
	fail    string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: map[string]string{}, types: map[string]string{}}
}

func (f *fakeUploader) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.fail {
		return nil, errors.New("access denied")
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+key] = string(data)
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func writeBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.json":            `{"total":1}`,
		"templates/agent.yaml":  "identity: {}\n",
		"static/index.html":     "<html></html>",
		"static/assets/logo.xx": "bin",
	}
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func TestDirUploadsEveryFile(t *testing.T) {
	up := newFakeUploader()
	objects, err := Dir(context.Background(), up, writeBundle(t), Options{Bucket: "catalog", Prefix: "/site/"})
	require.NoError(t, err)

	keys := make([]string, 0, len(objects))
	for _, o := range objects {
		keys = append(keys, o.Key)
	}
	assert.Equal(t, []string{
		"site/index.json",
		"site/static/assets/logo.xx",
		"site/static/index.html",
		"site/templates/agent.yaml",
	}, keys)
	assert.Equal(t, `{"total":1}`, up.objects["catalog/site/index.json"])
	assert.Equal(t, "application/yaml", up.types["site/templates/agent.yaml"])
	assert.Equal(t, "application/octet-stream", up.types["site/static/assets/logo.xx"])
}

func TestDirRequiresBucket(t *testing.T) {
	_, err := Dir(context.Background(), newFakeUploader(), t.TempDir(), Options{})
	require.Error(t, err)
}

func TestDirPropagatesUploadError(t *testing.T) {
	up := newFakeUploader()
	up.fail = "index.json"
	_, err := Dir(context.Background(), up, writeBundle(t), Options{Bucket: "b", Concurrency: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestKeyAndContentType(t *testing.T) {
	assert.Equal(t, "a.json", Key("", "a.json"))
	assert.Equal(t, "x/y/a.json", Key("x/y/", "a.json"))
	assert.Equal(t, "application/json", ContentType("index.json"))
	assert.Equal(t, "application/yaml", ContentType("t.YML"))
}
