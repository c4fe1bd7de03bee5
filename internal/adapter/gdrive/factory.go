package gdrive

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Ning0612/hfind/internal/adapter"
	"github.com/Ning0612/hfind/internal/config"
	"github.com/Ning0612/hfind/internal/logger"
)

// Factory opens the Drive adapter for gdrive:// URIs
type Factory struct {
	cfg config.GDriveConfig
}

// NewFactory creates a Drive factory
func NewFactory(cfg config.GDriveConfig) *Factory {
	return &Factory{cfg: cfg}
}

// Supports implements adapter.Factory
func (f *Factory) Supports(scheme string) bool {
	return scheme == Scheme
}

// Open authenticates and returns an adapter rooted at My Drive
func (f *Factory) Open(ctx context.Context, uri *url.URL) (adapter.Filesystem, error) {
	if f.cfg.ClientID == "" || f.cfg.ClientSecret == "" {
		return nil, fmt.Errorf("gdrive.client_id and gdrive.client_secret must be configured")
	}

	auth := NewAuthenticator(f.cfg.ClientID, f.cfg.ClientSecret, f.cfg.TokenPath)
	token, err := auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	logger.Get().Debug("gdrive token loaded", "file", auth.TokenPath(), "expiry", token.Expiry)
	return New(ctx, auth.Config().Client(ctx, token))
}

var _ adapter.Factory = (*Factory)(nil)
