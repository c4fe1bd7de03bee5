//go:build windows

package local

import "os"

// ownerCache is empty on Windows; ownership is an ACL there, not a uid/gid pair
type ownerCache struct{}

func newOwnerCache() *ownerCache { return &ownerCache{} }

func (c *ownerCache) lookup(info os.FileInfo) (string, string) {
	return "", ""
}
