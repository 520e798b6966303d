package mirror

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"docs-server/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func objects(infos ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(infos))
	for _, info := range infos {
		ch <- info
	}
	close(ch)
	return ch
}

func body(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func TestNewService_Prefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"site", "site/"},
		{"/site/docs/", "site/docs/"},
	}
	for _, tt := range tests {
		svc := NewService(new(mocks.Client), "docs", tt.in, zap.NewNop())
		assert.Equal(t, tt.want, svc.prefix, "prefix %q", tt.in)
	}
}

func TestPull(t *testing.T) {
	t.Run("DownloadsObjects", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "docs").Return(true, nil)
		client.On("ListObjects", mock.Anything, "docs", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
			return opts.Prefix == "site/" && opts.Recursive
		})).Return(objects(
			minio.ObjectInfo{Key: "site/"},
			minio.ObjectInfo{Key: "site/index.html"},
			minio.ObjectInfo{Key: "site/specs/"},
			minio.ObjectInfo{Key: "site/specs/creditrisk.json"},
		))
		client.On("GetObject", mock.Anything, "docs", "site/index.html", mock.Anything).Return(body("<html>ok</html>"), nil)
		client.On("GetObject", mock.Anything, "docs", "site/specs/creditrisk.json", mock.Anything).Return(body(`{"openapi":"3.0.0"}`), nil)

		dir := t.TempDir()
		svc := NewService(client, "docs", "site", zap.NewNop())
		result, err := svc.Pull(context.Background(), dir)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Files)
		assert.Equal(t, int64(len("<html>ok</html>")+len(`{"openapi":"3.0.0"}`)), result.Bytes)
		assert.Empty(t, result.Skipped)

		data, err := os.ReadFile(filepath.Join(dir, "index.html"))
		require.NoError(t, err)
		assert.Equal(t, "<html>ok</html>", string(data))

		data, err = os.ReadFile(filepath.Join(dir, "specs", "creditrisk.json"))
		require.NoError(t, err)
		assert.Equal(t, `{"openapi":"3.0.0"}`, string(data))

		leftovers, err := filepath.Glob(filepath.Join(dir, ".mirror-*"))
		require.NoError(t, err)
		assert.Empty(t, leftovers)
	})

	t.Run("SkipsEscapingKeys", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "docs").Return(true, nil)
		client.On("ListObjects", mock.Anything, "docs", mock.Anything).Return(objects(
			minio.ObjectInfo{Key: "../evil.sh"},
			minio.ObjectInfo{Key: "specs/../../evil.sh"},
			minio.ObjectInfo{Key: "ok.txt"},
		))
		client.On("GetObject", mock.Anything, "docs", "ok.txt", mock.Anything).Return(body("ok"), nil)

		root := t.TempDir()
		dir := filepath.Join(root, "public")
		svc := NewService(client, "docs", "", zap.NewNop())
		result, err := svc.Pull(context.Background(), dir)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Files)
		assert.ElementsMatch(t, []string{"../evil.sh", "specs/../../evil.sh"}, result.Skipped)
		assert.NoFileExists(t, filepath.Join(root, "evil.sh"))
		client.AssertNumberOfCalls(t, "GetObject", 1)
	})

	t.Run("BucketMissing", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "docs").Return(false, nil)

		svc := NewService(client, "docs", "", zap.NewNop())
		_, err := svc.Pull(context.Background(), t.TempDir())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ListError", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "docs").Return(true, nil)
		client.On("ListObjects", mock.Anything, "docs", mock.Anything).Return(objects(
			minio.ObjectInfo{Err: errors.New("access denied")},
		))

		svc := NewService(client, "docs", "", zap.NewNop())
		_, err := svc.Pull(context.Background(), t.TempDir())
		assert.ErrorContains(t, err, "access denied")
	})

	t.Run("GetObjectError", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "docs").Return(true, nil)
		client.On("ListObjects", mock.Anything, "docs", mock.Anything).Return(objects(
			minio.ObjectInfo{Key: "index.html"},
		))
		client.On("GetObject", mock.Anything, "docs", "index.html", mock.Anything).Return(nil, assert.AnError)

		dir := t.TempDir()
		svc := NewService(client, "docs", "", zap.NewNop())
		_, err := svc.Pull(context.Background(), dir)
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoFileExists(t, filepath.Join(dir, "index.html"))
	})
}

func TestPush(t *testing.T) {
	setupDir := func(t *testing.T) string {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "specs"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>ok</html>"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "specs", "creditrisk.json"), []byte("{}"), 0o644))
		return dir
	}

	t.Run("UploadsFiles", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "docs").Return(true, nil)
		client.On("ListObjects", mock.Anything, "docs", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
			return opts.Prefix == "site/" && opts.Recursive
		})).Return(objects())
		client.On("PutObject", mock.Anything, "docs", "site/index.html", mock.Anything, int64(15),
			mock.MatchedBy(func(opts minio.PutObjectOptions) bool {
				return strings.HasPrefix(opts.ContentType, "text/html")
			})).Return(minio.UploadInfo{}, nil)
		client.On("PutObject", mock.Anything, "docs", "site/specs/creditrisk.json", mock.Anything, int64(2),
			mock.MatchedBy(func(opts minio.PutObjectOptions) bool {
				return opts.ContentType == "application/json"
			})).Return(minio.UploadInfo{}, nil)

		svc := NewService(client, "docs", "site", zap.NewNop())
		result, err := svc.Push(context.Background(), setupDir(t), PushOptions{})
		require.NoError(t, err)

		assert.Equal(t, 2, result.Files)
		assert.Equal(t, int64(17), result.Bytes)
		assert.False(t, result.DryRun)
		assert.Empty(t, result.Actions)
		client.AssertExpectations(t)
		client.AssertNumberOfCalls(t, "BucketExists", 1)
	})

	t.Run("SkipsUnchangedObjects", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "docs").Return(true, nil)
		client.On("ListObjects", mock.Anything, "docs", mock.Anything).Return(objects(
			minio.ObjectInfo{Key: "index.html", Size: 15, LastModified: time.Now().Add(time.Hour)},
			minio.ObjectInfo{Key: "specs/creditrisk.json", Size: 99, LastModified: time.Now().Add(time.Hour)},
		))
		client.On("PutObject", mock.Anything, "docs", "specs/creditrisk.json", mock.Anything, int64(2), mock.Anything).Return(minio.UploadInfo{}, nil)

		svc := NewService(client, "docs", "", zap.NewNop())
		result, err := svc.Push(context.Background(), setupDir(t), PushOptions{})
		require.NoError(t, err)

		assert.Equal(t, 1, result.Files)
		assert.Equal(t, 1, result.Unchanged)
		client.AssertNumberOfCalls(t, "PutObject", 1)
	})

	t.Run("StaleObjectIsUploaded", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "docs").Return(true, nil)
		client.On("ListObjects", mock.Anything, "docs", mock.Anything).Return(objects(
			minio.ObjectInfo{Key: "index.html", Size: 15, LastModified: time.Now().Add(-24 * time.Hour)},
		))
		client.On("PutObject", mock.Anything, "docs", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

		svc := NewService(client, "docs", "", zap.NewNop())
		result, err := svc.Push(context.Background(), setupDir(t), PushOptions{})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Files)
		assert.Zero(t, result.Unchanged)
	})

	t.Run("DryRun", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "docs").Return(true, nil)
		client.On("ListObjects", mock.Anything, "docs", mock.Anything).Return(objects(
			minio.ObjectInfo{Key: "index.html", Size: 15, LastModified: time.Now().Add(time.Hour)},
		))

		svc := NewService(client, "docs", "", zap.NewNop())
		result, err := svc.Push(context.Background(), setupDir(t), PushOptions{DryRun: true})
		require.NoError(t, err)

		assert.True(t, result.DryRun)
		assert.Equal(t, 1, result.Files)
		assert.Equal(t, int64(2), result.Bytes)
		assert.Equal(t, 1, result.Unchanged)
		require.Len(t, result.Actions, 2)
		assert.Equal(t, ActionUpload, result.Actions[1].Type)
		assert.Equal(t, "new", result.Actions[1].Reason)
		client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CreatesBucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "docs").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "docs", mock.Anything).Return(nil)
		client.On("PutObject", mock.Anything, "docs", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

		svc := NewService(client, "docs", "", zap.NewNop())
		result, err := svc.Push(context.Background(), setupDir(t), PushOptions{CreateBucket: true})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Files)
		client.AssertNumberOfCalls(t, "MakeBucket", 1)
		client.AssertNotCalled(t, "ListObjects", mock.Anything, mock.Anything, mock.Anything)
		client.AssertNumberOfCalls(t, "BucketExists", 1)
	})

	t.Run("DryRunDoesNotCreateBucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "docs").Return(false, nil)

		svc := NewService(client, "docs", "", zap.NewNop())
		result, err := svc.Push(context.Background(), setupDir(t), PushOptions{CreateBucket: true, DryRun: true})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Files)
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("BucketMissing", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "docs").Return(false, nil)

		svc := NewService(client, "docs", "", zap.NewNop())
		_, err := svc.Push(context.Background(), setupDir(t), PushOptions{})
		assert.ErrorContains(t, err, "does not exist")
		client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		client.AssertNumberOfCalls(t, "BucketExists", 1)
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		client := new(mocks.Client)

		svc := NewService(client, "docs", "", zap.NewNop())
		_, err := svc.Push(context.Background(), filepath.Join(t.TempDir(), "nope"), PushOptions{})
		assert.Error(t, err)
		client.AssertNotCalled(t, "BucketExists", mock.Anything, mock.Anything)
	})

	t.Run("ListError", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "docs").Return(true, nil)
		client.On("ListObjects", mock.Anything, "docs", mock.Anything).Return(objects(
			minio.ObjectInfo{Err: errors.New("access denied")},
		))

		svc := NewService(client, "docs", "", zap.NewNop())
		_, err := svc.Push(context.Background(), setupDir(t), PushOptions{})
		assert.ErrorContains(t, err, "access denied")
	})

	t.Run("UploadError", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "docs").Return(true, nil)
		client.On("ListObjects", mock.Anything, "docs", mock.Anything).Return(objects())
		client.On("PutObject", mock.Anything, "docs", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, assert.AnError)

		svc := NewService(client, "docs", "", zap.NewNop())
		_, err := svc.Push(context.Background(), setupDir(t), PushOptions{})
		assert.ErrorIs(t, err, assert.AnError)
	})
}
