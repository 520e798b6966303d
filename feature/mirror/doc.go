// Package mirror copies a documentation bundle between an S3/MinIO bucket and
// the local asset directory served by docs-server.
//
// It is the one-shot counterpart of the documentation build step: Pull fills
// the asset directory before the server starts, Push publishes a locally built
// bundle. A running server never reloads assets on its own.
//
// Object keys are resolved relative to the configured prefix. Keys that would
// land outside the asset directory (absolute or containing "..") are skipped
// and reported in Result.Skipped.
//
// Push works from a Plan. Every local file is compared with the remote index
// and becomes an upload (new or changed), a skip (same size, remote copy not
// older) or an ignore (not a regular file). A dry run returns the plan's
// actions without writing to the bucket.
package mirror
