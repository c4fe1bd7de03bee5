package gdrive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/Ning0612/hfind/internal/adapter"
	"github.com/Ning0612/hfind/internal/domain"
)

const (
	// Scheme is the URI scheme served by this adapter
	Scheme = "gdrive"

	// MimeTypeFolder is the MIME type for Google Drive folders
	MimeTypeFolder = "application/vnd.google-apps.folder"

	// PageSize is the number of files to fetch per request
	PageSize = 1000

	rootID     = "root"
	fileFields = "id, name, mimeType, size, modifiedTime, owners(displayName, emailAddress), capabilities(canEdit)"
)

// Adapter implements adapter.Filesystem for "My Drive". Paths are folder
// names from the Drive root; the first match wins when siblings share a name.
type Adapter struct {
	service *drive.Service
	cache   *idCache
}

// ref is a resolved path
type ref struct {
	id     string
	folder bool
}

// idCache caches path lookups with thread-safe access
type idCache struct {
	mu    sync.RWMutex
	paths map[string]ref
}

func newIDCache() *idCache {
	return &idCache{
		paths: map[string]ref{"/": {id: rootID, folder: true}},
	}
}

func (c *idCache) get(p string) (ref, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.paths[p]
	return r, ok
}

func (c *idCache) set(p string, r ref) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths[p] = r
}

// New creates an adapter using an OAuth2-authenticated HTTP client
func New(ctx context.Context, client *http.Client) (*Adapter, error) {
	return NewWithOptions(ctx, option.WithHTTPClient(client))
}

// NewWithOptions creates an adapter from raw client options
func NewWithOptions(ctx context.Context, opts ...option.ClientOption) (*Adapter, error) {
	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &Adapter{service: service, cache: newIDCache()}, nil
}

// Glob implements adapter.Filesystem
func (a *Adapter) Glob(ctx context.Context, pattern string) ([]domain.Entry, error) {
	return adapter.Glob(ctx, a, pattern)
}

// List returns the non-trashed children of a folder, ordered by name
func (a *Adapter) List(ctx context.Context, p string) ([]domain.Entry, error) {
	p = path.Clean("/" + p)
	r, err := a.resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if !r.folder {
		return nil, domain.ErrNotDirectory
	}

	var result []domain.Entry
	pageToken := ""

	for {
		query := fmt.Sprintf("'%s' in parents and trashed = false", escapeQueryString(r.id))
		call := a.service.Files.List().
			Q(query).
			OrderBy("name").
			PageSize(PageSize).
			Fields(googleapi.Field("nextPageToken, files(" + fileFields + ")"))

		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		fileList, err := call.Context(ctx).Do()
		if err != nil {
			return nil, mapError(err)
		}

		for _, f := range fileList.Files {
			e := entryFromDrive(path.Join(p, f.Name), f)
			a.cache.set(e.Path, ref{id: f.Id, folder: e.IsDir})
			result = append(result, e)
		}

		pageToken = fileList.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return result, nil
}

// Stat returns metadata for a single path
func (a *Adapter) Stat(ctx context.Context, p string) (domain.Entry, error) {
	p = path.Clean("/" + p)
	r, err := a.resolve(ctx, p)
	if err != nil {
		return domain.Entry{}, err
	}

	file, err := a.service.Files.Get(r.id).
		Fields(googleapi.Field(fileFields)).
		Context(ctx).Do()
	if err != nil {
		return domain.Entry{}, mapError(err)
	}

	return entryFromDrive(p, file), nil
}

// Home returns "/", the root of My Drive
func (a *Adapter) Home(ctx context.Context) (string, error) {
	return "/", nil
}

// DefaultReplication is 1; Drive does not expose its redundancy
func (a *Adapter) DefaultReplication() int {
	return 1
}

// Close releases any resources
func (a *Adapter) Close() error {
	return nil
}

// escapeQueryString escapes special characters in Drive query strings
func escapeQueryString(s string) string {
	// Escape backslash first, then single quote
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "\\'")
	return s
}

// resolve walks p from the Drive root one name at a time, caching every
// intermediate folder
func (a *Adapter) resolve(ctx context.Context, p string) (ref, error) {
	if r, ok := a.cache.get(p); ok {
		return r, nil
	}

	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	current := ref{id: rootID, folder: true}

	for i, part := range parts {
		partial := "/" + strings.Join(parts[:i+1], "/")
		if r, ok := a.cache.get(partial); ok {
			current = r
			continue
		}
		if !current.folder {
			return ref{}, domain.ErrNotFound
		}

		query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false",
			escapeQueryString(part), escapeQueryString(current.id))
		fileList, err := a.service.Files.List().
			Q(query).
			PageSize(1).
			Fields("files(id, mimeType)").
			Context(ctx).Do()
		if err != nil {
			return ref{}, mapError(err)
		}

		if len(fileList.Files) == 0 {
			return ref{}, domain.ErrNotFound
		}

		f := fileList.Files[0]
		current = ref{id: f.Id, folder: f.MimeType == MimeTypeFolder}
		a.cache.set(partial, current)
	}

	return current, nil
}

// entryFromDrive converts a Drive file to domain.Entry. Drive has no
// POSIX modes; write access is derived from capabilities.canEdit.
func entryFromDrive(p string, file *drive.File) domain.Entry {
	e := domain.Entry{
		Path:   p,
		URI:    Scheme + "://" + p,
		Scheme: Scheme,
		IsDir:  file.MimeType == MimeTypeFolder,
	}

	if file.ModifiedTime != "" {
		e.ModTime, _ = time.Parse(time.RFC3339, file.ModifiedTime)
	}

	if len(file.Owners) > 0 {
		e.Owner = file.Owners[0].EmailAddress
		if e.Owner == "" {
			e.Owner = file.Owners[0].DisplayName
		}
	}

	canEdit := file.Capabilities != nil && file.Capabilities.CanEdit
	if e.IsDir {
		e.Perm = 0555
		if canEdit {
			e.Perm = 0755
		}
	} else {
		e.Size = file.Size
		e.Replication = 1
		e.Perm = 0444
		if canEdit {
			e.Perm = 0644
		}
	}
	return e
}

// mapError converts Google API errors to domain errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return domain.ErrNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			return domain.ErrPermissionDenied
		case http.StatusTooManyRequests:
			return fmt.Errorf("rate limit exceeded: %w", err)
		}
	}

	// Fallback to string matching for non-googleapi errors
	if strings.Contains(err.Error(), "notFound") {
		return domain.ErrNotFound
	}

	return err
}

var (
	_ adapter.Filesystem           = (*Adapter)(nil)
	_ adapter.ReplicationDefaulter = (*Adapter)(nil)
)
