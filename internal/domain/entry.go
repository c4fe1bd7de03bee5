package domain

import (
	"os"
	"path"
	"strings"
	"time"
)

// Entry is one file or directory observed during traversal.
// Entries are snapshots produced by an adapter and are never mutated.
type Entry struct {
	// Path is the path component of the entry's URI (e.g. "/user/alice/data")
	Path string

	// URI is the fully qualified form (e.g. "hdfs://nn:8020/user/alice/data")
	URI string

	// Scheme of the backing store ("hdfs", "file", "s3", "gdrive")
	Scheme string

	IsDir bool

	// Size in bytes (0 for directories)
	Size int64

	Owner string
	Group string

	// Replication is the number of copies kept by the store (0 for directories)
	Replication int

	// ModTime is the last modification time
	ModTime time.Time

	// Perm holds the permission bits and, when set, os.ModeSticky
	Perm os.FileMode
}

// Name returns the last element of Path
func (e Entry) Name() string {
	return path.Base(e.Path)
}

// IsFile returns true if this is not a directory
func (e Entry) IsFile() bool {
	return !e.IsDir
}

// PermissionString renders Perm as nine rwx characters, using t/T in the
// last position for the sticky bit.
func (e Entry) PermissionString() string {
	const rwx = "rwxrwxrwx"
	buf := []byte("---------")
	for i := 0; i < 9; i++ {
		if e.Perm&(1<<uint(8-i)) != 0 {
			buf[i] = rwx[i]
		}
	}
	if e.Perm&os.ModeSticky != 0 {
		if buf[8] == 'x' {
			buf[8] = 't'
		} else {
			buf[8] = 'T'
		}
	}
	return string(buf)
}

// DisplayPath returns the path shown to the user: the full URI when
// fullURI is set, otherwise Path. Directories get a trailing slash.
func (e Entry) DisplayPath(fullURI bool) string {
	p := e.Path
	if fullURI && e.URI != "" {
		p = e.URI
	}
	if e.IsDir && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}
