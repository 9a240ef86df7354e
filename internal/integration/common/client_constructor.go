package common

import (
	"github.com/futig/ba-assistant/internal/config"
	pkgHTTP "github.com/futig/ba-assistant/pkg/http"
	"go.uber.org/zap"
)

// NewBaseConnector builds a JSON connector from the shared client settings.
// extra options are applied after the defaults, e.g. a different auth scheme.
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger, extra ...pkgHTTP.HttpOpts) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
	}
	if cfg.Token != "" {
		opts = append(opts, pkgHTTP.WithAuthToken(cfg.Token))
	}

	return pkgHTTP.NewConnector(connCfg, append(opts, extra...)...)
}
