//go:build !windows

package local

import (
	"os"
	"os/user"
	"strconv"
	"sync"
	"syscall"
)

// ownerCache memoises uid/gid name lookups; a walk sees the same few ids
// over and over.
type ownerCache struct {
	mu     sync.Mutex
	users  map[uint32]string
	groups map[uint32]string
}

func newOwnerCache() *ownerCache {
	return &ownerCache{
		users:  make(map[uint32]string),
		groups: make(map[uint32]string),
	}
}

func (c *ownerCache) lookup(info os.FileInfo) (string, string) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "", ""
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	uid, gid := uint32(st.Uid), uint32(st.Gid)

	owner, ok := c.users[uid]
	if !ok {
		owner = strconv.FormatUint(uint64(uid), 10)
		if u, err := user.LookupId(owner); err == nil {
			owner = u.Username
		}
		c.users[uid] = owner
	}

	group, ok := c.groups[gid]
	if !ok {
		group = strconv.FormatUint(uint64(gid), 10)
		if g, err := user.LookupGroupId(group); err == nil {
			group = g.Name
		}
		c.groups[gid] = group
	}

	return owner, group
}
