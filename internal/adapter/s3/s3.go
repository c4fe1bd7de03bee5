package s3

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/Ning0612/hfind/internal/adapter"
	"github.com/Ning0612/hfind/internal/domain"
)

// Scheme is the URI scheme served by this adapter
const Scheme = "s3"

// S3 has no directories or POSIX permissions; entries get the same
// synthetic values Hadoop's S3A connector reports.
const (
	filePerm os.FileMode = 0666
	dirPerm  os.FileMode = 0777
)

// api is the subset of *s3.Client the adapter calls
type api interface {
	s3.ListObjectsV2APIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Adapter implements adapter.Filesystem for one bucket. "/" is the bucket
// root; key prefixes ending in "/" are presented as directories.
type Adapter struct {
	client api
	bucket string
}

func newAdapter(client api, bucket string) *Adapter {
	return &Adapter{client: client, bucket: bucket}
}

// Glob implements adapter.Filesystem
func (a *Adapter) Glob(ctx context.Context, pattern string) ([]domain.Entry, error) {
	return adapter.Glob(ctx, a, pattern)
}

// List returns the objects and common prefixes directly under p, sorted by name
func (a *Adapter) List(ctx context.Context, p string) ([]domain.Entry, error) {
	prefix := keyOf(p)
	if prefix != "" {
		prefix += "/"
	}

	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket:     aws.String(a.bucket),
		Prefix:     aws.String(prefix),
		Delimiter:  aws.String("/"),
		FetchOwner: aws.Bool(true),
	})

	var result []domain.Entry
	seen := false
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapError(err)
		}

		for _, cp := range page.CommonPrefixes {
			seen = true
			result = append(result, a.dirEntry(strings.TrimSuffix(aws.ToString(cp.Prefix), "/")))
		}
		for _, obj := range page.Contents {
			seen = true
			key := aws.ToString(obj.Key)
			if key == prefix {
				continue // directory marker
			}
			result = append(result, a.objectEntry(key, aws.ToInt64(obj.Size), aws.ToTime(obj.LastModified), obj.Owner))
		}
	}

	if !seen && prefix != "" {
		// empty listing: p is either a plain object or absent
		e, err := a.Stat(ctx, p)
		if err != nil {
			return nil, err
		}
		if !e.IsDir {
			return nil, domain.ErrNotDirectory
		}
	}

	slices.SortFunc(result, func(x, y domain.Entry) int {
		return strings.Compare(x.Path, y.Path)
	})
	return result, nil
}

// Stat returns metadata for an object, or a directory entry for a key prefix
func (a *Adapter) Stat(ctx context.Context, p string) (domain.Entry, error) {
	key := keyOf(p)
	if key == "" {
		return a.dirEntry(""), nil
	}

	head, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return a.objectEntry(key, aws.ToInt64(head.ContentLength), aws.ToTime(head.LastModified), nil), nil
	}
	if err := mapError(err); !errors.Is(err, domain.ErrNotFound) {
		return domain.Entry{}, err
	}

	out, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(a.bucket),
		Prefix:  aws.String(key + "/"),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return domain.Entry{}, mapError(err)
	}
	if len(out.Contents) == 0 && len(out.CommonPrefixes) == 0 {
		return domain.Entry{}, domain.ErrNotFound
	}
	return a.dirEntry(key), nil
}

// Home returns /user/<name>, matching Hadoop's S3A connector
func (a *Adapter) Home(ctx context.Context) (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("resolve current user: %w", err)
	}
	return "/user/" + u.Username, nil
}

// DefaultReplication is 1; durability is the store's business
func (a *Adapter) DefaultReplication() int {
	return 1
}

// Close is a no-op; the SDK client holds no connections of its own
func (a *Adapter) Close() error {
	return nil
}

func (a *Adapter) objectEntry(key string, size int64, mtime time.Time, owner *types.Owner) domain.Entry {
	p := "/" + key
	e := domain.Entry{
		Path:        p,
		URI:         a.uri(p),
		Scheme:      Scheme,
		Size:        size,
		Replication: 1,
		ModTime:     mtime,
		Perm:        filePerm,
	}
	if owner != nil {
		e.Owner = aws.ToString(owner.DisplayName)
		if e.Owner == "" {
			e.Owner = aws.ToString(owner.ID)
		}
	}
	return e
}

func (a *Adapter) dirEntry(key string) domain.Entry {
	p := path.Clean("/" + key)
	return domain.Entry{
		Path:    p,
		URI:     a.uri(p),
		Scheme:  Scheme,
		IsDir:   true,
		ModTime: time.Unix(0, 0),
		Perm:    dirPerm,
	}
}

func (a *Adapter) uri(p string) string {
	return Scheme + "://" + a.bucket + p
}

// keyOf converts an absolute adapter path to an object key
func keyOf(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

// mapError converts SDK errors to domain errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var (
		noSuchKey    *types.NoSuchKey
		notFound     *types.NotFound
		noSuchBucket *types.NoSuchBucket
	)
	switch {
	case errors.As(err, &noSuchKey), errors.As(err, &notFound):
		return domain.ErrNotFound
	case errors.As(err, &noSuchBucket):
		return fmt.Errorf("%w: bucket does not exist", domain.ErrNotFound)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "Forbidden", "AllAccessDisabled":
			return domain.ErrPermissionDenied
		case "NotFound":
			return domain.ErrNotFound
		}
	}
	return err
}

var (
	_ adapter.Filesystem           = (*Adapter)(nil)
	_ adapter.ReplicationDefaulter = (*Adapter)(nil)
)
