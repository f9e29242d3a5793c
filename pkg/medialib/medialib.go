// Package medialib mirrors a bucket of source videos into a local cache
// before playback starts. The playback pipeline itself never touches the
// network; main syncs the library once, then plays local files.
package medialib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"reelplay/pkg/logging"
)

const defaultDir = "assets/videos"

// downloadParallelism bounds concurrent GetObject calls during a sync.
const downloadParallelism = 4

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".avi":  true,
	".mpg":  true,
	".mpeg": true,
	".webm": true,
}

// Library is an S3 bucket/prefix mirrored into a local directory.
type Library struct {
	bucket string
	prefix string
	dir    string
	client *s3.S3
	log    zerolog.Logger
}

// FromEnv builds a library from REELPLAY_S3_BUCKET, REELPLAY_S3_PREFIX and
// REELPLAY_MEDIA_DIR plus the standard AWS credential variables. Returns
// (nil, nil) when no bucket is configured: playing purely local files needs
// no library at all.
func FromEnv() (*Library, error) {
	bucket := os.Getenv("REELPLAY_S3_BUCKET")
	if bucket == "" {
		return nil, nil
	}

	region := os.Getenv("AWS_DEFAULT_REGION")
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if region == "" || accessKey == "" || secretKey == "" {
		return nil, errors.New("medialib: AWS_DEFAULT_REGION, AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("medialib: aws session: %w", err)
	}

	dir := os.Getenv("REELPLAY_MEDIA_DIR")
	if dir == "" {
		dir = defaultDir
	}

	return &Library{
		bucket: bucket,
		prefix: os.Getenv("REELPLAY_S3_PREFIX"),
		dir:    dir,
		client: s3.New(sess),
		log:    logging.WithComponent("medialib"),
	}, nil
}

// Dir returns the local cache directory.
func (l *Library) Dir() string {
	return l.dir
}

// Sync lists the bucket prefix and downloads every video object that is
// missing locally or differs in size. Objects download in parallel; one
// failed object fails the sync. Returns the local paths of all cached
// videos, sorted.
func (l *Library) Sync(ctx context.Context) ([]string, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, fmt.Errorf("medialib: create %s: %w", l.dir, err)
	}

	type object struct {
		key  string
		size int64
	}
	var wanted []object

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(l.bucket),
		Prefix: aws.String(l.prefix),
	}
	err := l.client.ListObjectsV2PagesWithContext(ctx, input,
		func(page *s3.ListObjectsV2Output, lastPage bool) bool {
			for _, obj := range page.Contents {
				if obj.Key == nil || strings.HasSuffix(*obj.Key, "/") {
					continue
				}
				if !IsVideo(*obj.Key) {
					continue
				}
				wanted = append(wanted, object{key: *obj.Key, size: aws.Int64Value(obj.Size)})
			}
			return !lastPage
		})
	if err != nil {
		return nil, fmt.Errorf("medialib: list s3://%s/%s: %w", l.bucket, l.prefix, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadParallelism)

	var fetched int
	for _, obj := range wanted {
		local := filepath.Join(l.dir, filepath.Base(obj.key))
		if fi, err := os.Stat(local); err == nil && fi.Size() == obj.size {
			continue // already cached
		}
		fetched++
		key := obj.key
		g.Go(func() error {
			return l.download(ctx, key, local)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.log.Info().
		Str("bucket", l.bucket).
		Int("objects", len(wanted)).
		Int("downloaded", fetched).
		Msg("library synced")
	return LocalVideos(l.dir)
}

// download writes the object through a partial file so an interrupted sync
// never leaves a truncated video behind.
func (l *Library) download(ctx context.Context, key, local string) error {
	out, err := l.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("medialib: get %s: %w", key, err)
	}
	defer out.Body.Close()

	partial := local + ".partial"
	f, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("medialib: create %s: %w", partial, err)
	}

	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		os.Remove(partial)
		return fmt.Errorf("medialib: write %s: %w", partial, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(partial)
		return fmt.Errorf("medialib: close %s: %w", partial, err)
	}
	if err := os.Rename(partial, local); err != nil {
		return fmt.Errorf("medialib: finalize %s: %w", local, err)
	}

	l.log.Debug().Str("key", key).Str("path", local).Msg("downloaded")
	return nil
}

// LocalVideos lists the cached video files in dir, sorted by name.
func LocalVideos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("medialib: read %s: %w", dir, err)
	}

	var videos []string
	for _, entry := range entries {
		if entry.IsDir() || !IsVideo(entry.Name()) {
			continue
		}
		videos = append(videos, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(videos)
	return videos, nil
}

// IsVideo reports whether the file name carries a playable extension.
func IsVideo(name string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(name))]
}
