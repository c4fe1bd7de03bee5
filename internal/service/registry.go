package service

import (
	"github.com/Ning0612/hfind/internal/adapter"
	"github.com/Ning0612/hfind/internal/adapter/gdrive"
	"github.com/Ning0612/hfind/internal/adapter/hdfs"
	"github.com/Ning0612/hfind/internal/adapter/local"
	"github.com/Ning0612/hfind/internal/adapter/s3"
	"github.com/Ning0612/hfind/internal/config"
)

// NewRegistry wires every supported backend. Bare paths use
// cfg.DefaultScheme, then the scheme of the Hadoop fs.defaultFS, then file.
func NewRegistry(cfg *config.Config) *adapter.Registry {
	hdfsFactory := hdfs.NewFactory(cfg.HDFS)

	scheme := cfg.DefaultScheme
	if scheme == "" {
		scheme = local.Scheme
		if u := hdfsFactory.DefaultFS(); u != nil {
			scheme = u.Scheme
		}
	}

	return adapter.NewRegistry(scheme,
		local.Factory{},
		hdfsFactory,
		s3.NewFactory(cfg.S3),
		gdrive.NewFactory(cfg.GDrive),
	)
}
