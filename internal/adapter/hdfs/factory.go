package hdfs

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/user"
	"strconv"
	"strings"

	gohdfs "github.com/colinmarc/hdfs/v2"
	"github.com/colinmarc/hdfs/v2/hadoopconf"

	"github.com/Ning0612/hfind/internal/adapter"
	"github.com/Ning0612/hfind/internal/config"
	"github.com/Ning0612/hfind/internal/logger"
)

const (
	defaultPort        = "8020"
	defaultReplication = 3
)

// Factory opens HDFS clients. Settings come from HADOOP_CONF_DIR (or
// HADOOP_HOME/etc/hadoop) and are overridden by the hdfs section of the
// hfind configuration.
type Factory struct {
	conf      hadoopconf.HadoopConf
	namenodes []string
	user      string
}

// NewFactory loads the Hadoop configuration from the environment. A
// missing or unreadable configuration directory is not fatal; roots with
// an explicit host still work.
func NewFactory(cfg config.HDFSConfig) *Factory {
	conf, err := hadoopconf.LoadFromEnvironment()
	if err != nil {
		logger.Get().Debug("hadoop configuration not loaded", "error", err)
		conf = hadoopconf.HadoopConf{}
	}
	return newFactory(conf, cfg)
}

func newFactory(conf hadoopconf.HadoopConf, cfg config.HDFSConfig) *Factory {
	if conf == nil {
		conf = hadoopconf.HadoopConf{}
	}
	return &Factory{conf: conf, namenodes: cfg.Namenodes, user: cfg.User}
}

// Supports implements adapter.Factory
func (f *Factory) Supports(scheme string) bool {
	return scheme == Scheme
}

// Open connects to the namenode(s) serving uri
func (f *Factory) Open(ctx context.Context, uri *url.URL) (adapter.Filesystem, error) {
	authority, addresses := f.resolve(uri.Host)
	if len(addresses) == 0 {
		return nil, fmt.Errorf("no namenode for %q: set fs.defaultFS or hdfs.namenodes", uri.String())
	}

	opts := gohdfs.ClientOptionsFromConf(f.conf)
	opts.Addresses = addresses
	opts.User = f.resolveUser()
	if opts.KerberosServicePrincipleName != "" {
		return nil, fmt.Errorf("kerberos authentication is not supported")
	}

	c, err := gohdfs.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", authority, err)
	}

	logger.Get().Debug("hdfs client opened", "authority", authority, "namenodes", strings.Join(addresses, ","), "user", opts.User)
	return newAdapter(c, authority, opts.User, f.DefaultReplication()), nil
}

// DefaultFS returns the fs.defaultFS URI of the Hadoop configuration, or
// nil when none is configured
func (f *Factory) DefaultFS() *url.URL {
	raw := f.conf["fs.defaultFS"]
	if raw == "" {
		raw = f.conf["fs.default.name"] // pre-2.x key
	}
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return nil
	}
	return u
}

// DefaultReplication returns dfs.replication, or 3 when unset
func (f *Factory) DefaultReplication() int {
	if n, err := strconv.Atoi(f.conf["dfs.replication"]); err == nil && n > 0 {
		return n
	}
	return defaultReplication
}

// resolve maps a URI host to the authority shown in URIs and the namenode
// addresses to dial. An empty host or the fs.defaultFS host uses the
// configured namenodes; HA nameservices resolve through hdfs-site.xml.
func (f *Factory) resolve(host string) (string, []string) {
	defaultHost := ""
	if u := f.DefaultFS(); u != nil && u.Scheme == Scheme {
		defaultHost = u.Host
	}

	if host == "" || host == defaultHost {
		if len(f.namenodes) > 0 {
			authority := defaultHost
			if authority == "" {
				authority = f.namenodes[0]
			}
			return authority, f.namenodes
		}
		if defaultHost == "" {
			return "", nil
		}
		if nn := f.nameserviceAddresses(defaultHost); len(nn) > 0 {
			return defaultHost, nn
		}
		return defaultHost, []string{withPort(defaultHost)}
	}

	if nn := f.nameserviceAddresses(host); len(nn) > 0 {
		return host, nn
	}
	return host, []string{withPort(host)}
}

// nameserviceAddresses returns dfs.namenode.rpc-address.<ns>.<nn> values
// for an HA nameservice
func (f *Factory) nameserviceAddresses(ns string) []string {
	ids := f.conf["dfs.ha.namenodes."+ns]
	if ids == "" {
		return nil
	}
	var addrs []string
	for _, id := range strings.Split(ids, ",") {
		if addr := f.conf["dfs.namenode.rpc-address."+ns+"."+strings.TrimSpace(id)]; addr != "" {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}

// resolveUser follows the Hadoop client lookup order
func (f *Factory) resolveUser() string {
	if f.user != "" {
		return f.user
	}
	if u := os.Getenv("HADOOP_USER_NAME"); u != "" {
		return u
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}

func withPort(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, defaultPort)
}

var _ adapter.Factory = (*Factory)(nil)
