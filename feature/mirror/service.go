package mirror

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"docs-server/core/storage"

	"github.com/gofiber/fiber/v2/utils"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Result summarises a transfer.
type Result struct {
	// Files and Bytes count what was transferred, or would be on a dry run.
	Files     int      `json:"files"`
	Bytes     int64    `json:"bytes"`
	Unchanged int      `json:"unchanged,omitempty"`
	Skipped   []string `json:"skipped,omitempty"`
	DryRun    bool     `json:"dry_run,omitempty"`
	Actions   []Action `json:"actions,omitempty"`
}

// PushOptions controls Push.
type PushOptions struct {
	// CreateBucket creates a missing bucket before uploading.
	CreateBucket bool
	// DryRun plans the upload without writing anything.
	DryRun bool
}

// Service copies a documentation bundle between a bucket and a local directory.
type Service struct {
	client storage.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewService creates a new mirror service. prefix is the key prefix of the
// bundle inside the bucket and may be empty.
func NewService(client storage.Client, bucket, prefix string, logger *zap.Logger) *Service {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &Service{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

// Pull downloads every object under the prefix into dir.
// Keys that would resolve outside dir are skipped.
func (s *Service) Pull(ctx context.Context, dir string) (*Result, error) {
	if err := s.requireBucket(ctx, false); err != nil {
		return nil, err
	}

	result := &Result{}
	opts := minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	}

	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return result, fmt.Errorf("failed to list objects: %w", obj.Err)
		}

		rel := strings.TrimPrefix(obj.Key, s.prefix)
		// folder markers
		if rel == "" || strings.HasSuffix(rel, "/") {
			continue
		}

		local := filepath.FromSlash(rel)
		if !filepath.IsLocal(local) {
			s.logger.Warn("Skipping object outside of asset directory", zap.String("key", obj.Key))
			result.Skipped = append(result.Skipped, obj.Key)
			continue
		}

		n, err := s.download(ctx, obj.Key, filepath.Join(dir, local))
		if err != nil {
			return result, err
		}
		result.Files++
		result.Bytes += n
		s.logger.Debug("Downloaded object", zap.String("key", obj.Key), zap.Int64("bytes", n))
	}

	return result, nil
}

// PlanPush compares dir with the objects under the prefix and decides which
// files need uploading. Nothing is written.
func (s *Service) PlanPush(ctx context.Context, dir string) (*Plan, error) {
	plan, _, err := s.planPush(ctx, dir)
	return plan, err
}

// planPush also reports whether the bucket exists, so Push does not have to
// ask twice.
func (s *Service) planPush(ctx context.Context, dir string) (*Plan, bool, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat asset directory: %w", err)
	}
	if !info.IsDir() {
		return nil, false, fmt.Errorf("%s is not a directory", dir)
	}

	remote, exists, err := s.remoteIndex(ctx)
	if err != nil {
		return nil, false, err
	}

	plan := &Plan{}
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			plan.add(Action{Type: ActionIgnore, Path: path, Reason: "not a regular file"})
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := s.prefix + filepath.ToSlash(rel)

		local, err := d.Info()
		if err != nil {
			return err
		}

		action := Action{Type: ActionUpload, Key: key, Path: path, Size: local.Size(), Reason: "new"}
		if obj, ok := remote[key]; ok {
			if obj.Size == local.Size() && !obj.LastModified.Before(local.ModTime()) {
				action.Type = ActionSkip
				action.Reason = "unchanged"
			} else {
				action.Reason = "changed"
			}
		}
		plan.add(action)
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to scan asset directory: %w", err)
	}

	return plan, exists, nil
}

// Push uploads the new and changed files of dir under the prefix.
func (s *Service) Push(ctx context.Context, dir string, opts PushOptions) (*Result, error) {
	plan, exists, err := s.planPush(ctx, dir)
	if err != nil {
		return nil, err
	}

	result := &Result{DryRun: opts.DryRun}
	for _, action := range plan.Actions {
		if action.Type == ActionIgnore {
			result.Skipped = append(result.Skipped, action.Path)
		}
	}
	result.Unchanged = plan.Summary.Skips

	if opts.DryRun {
		result.Actions = plan.Actions
		result.Files = plan.Summary.Uploads
		result.Bytes = plan.Summary.UploadBytes
		return result, nil
	}

	if err := s.ensureBucket(ctx, exists, opts.CreateBucket); err != nil {
		return nil, err
	}

	for _, action := range plan.Actions {
		if action.Type != ActionUpload {
			continue
		}
		n, err := s.upload(ctx, action.Path, action.Key)
		if err != nil {
			return result, err
		}
		result.Files++
		result.Bytes += n
		s.logger.Debug("Uploaded object", zap.String("key", action.Key), zap.String("reason", action.Reason), zap.Int64("bytes", n))
	}

	return result, nil
}

// remoteIndex lists the objects under the prefix and reports whether the
// bucket exists. A missing bucket yields an empty index.
func (s *Service) remoteIndex(ctx context.Context) (map[string]minio.ObjectInfo, bool, error) {
	index := make(map[string]minio.ObjectInfo)

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return index, false, nil
	}

	opts := minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	}
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, false, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		index[obj.Key] = obj
	}
	return index, true, nil
}

func (s *Service) requireBucket(ctx context.Context, create bool) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	return s.ensureBucket(ctx, exists, create)
}

// ensureBucket creates the bucket when it is missing and create is set.
func (s *Service) ensureBucket(ctx context.Context, exists, create bool) error {
	if exists {
		return nil
	}
	if !create {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("Created bucket", zap.String("bucket", s.bucket))
	return nil
}

// download writes the object to a temporary file next to dst and renames it
// into place, so a failed transfer never leaves a truncated asset behind.
func (s *Service) download(ctx context.Context, key, dst string) (int64, error) {
	body, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".mirror-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to download %s: %w", key, err)
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return 0, fmt.Errorf("failed to set permissions on %s: %w", dst, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return 0, fmt.Errorf("failed to move %s into place: %w", dst, err)
	}
	return n, nil
}

func (s *Service) upload(ctx context.Context, path, key string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	opts := minio.PutObjectOptions{ContentType: contentType(path)}
	if _, err := s.client.PutObject(ctx, s.bucket, key, f, info.Size(), opts); err != nil {
		return 0, fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return info.Size(), nil
}

// contentType uses the same extension table the server answers with.
func contentType(path string) string {
	if mime := utils.GetMIME(filepath.Ext(path)); mime != "" {
		return mime
	}
	return "application/octet-stream"
}
