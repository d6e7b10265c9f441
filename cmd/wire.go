package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/bnema/gstin-gateway/internal/adapters/cache"
	"github.com/bnema/gstin-gateway/internal/adapters/metrics"
	"github.com/bnema/gstin-gateway/internal/adapters/provider/knowyourgst"
	"github.com/bnema/gstin-gateway/internal/adapters/render/keystate"
	tomlrepo "github.com/bnema/gstin-gateway/internal/adapters/repo/toml"
	chainstore "github.com/bnema/gstin-gateway/internal/adapters/secrets/chain"
	"github.com/bnema/gstin-gateway/internal/application"
	"github.com/bnema/gstin-gateway/internal/config"
	"github.com/bnema/gstin-gateway/internal/domain"
	"github.com/bnema/gstin-gateway/internal/log"
	"github.com/bnema/gstin-gateway/internal/ports"
)

const secretsConfigDir = ".config/gstgw/secrets"

type app struct {
	cfg                  config.Config
	credentials          *application.CredentialService
	credentialsPath      string
	keyStateRenderer     func(application.KeyStateReport, keystate.RenderOptions) (string, error)
	verificationRenderer func(application.Verification) (string, error)
	httpClient           *http.Client
	now                  func() time.Time
}

// appLoader defers wiring until a command runs, so the persistent --config flag is
// parsed first and commands like version never touch configuration.
type appLoader struct {
	configFile string
	app        *app
}

func (l *appLoader) load() (*app, error) {
	if l.app != nil {
		return l.app, nil
	}

	a, err := wireApp(l.configFile)
	if err != nil {
		return nil, err
	}
	l.app = a
	return a, nil
}

func wireApp(configFile string) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	repoCfg := viper.New()
	if cfg.CredentialsFile != "" {
		repoCfg.Set(tomlrepo.CredentialsPathKey, cfg.CredentialsFile)
	}
	repo, err := tomlrepo.NewCredentialRepository(repoCfg)
	if err != nil {
		return nil, fmt.Errorf("wire credentials repository: %w", err)
	}

	secretsDir := cfg.SecretsDir
	if secretsDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		secretsDir = filepath.Join(homeDir, secretsConfigDir)
	}

	secretStore, err := chainstore.NewPassFirstWithFileFallback(secretsDir)
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	return &app{
		cfg:                  cfg,
		credentials:          application.NewCredentialService(repo, secretStore, ports.SystemClock{}),
		credentialsPath:      repo.Path(),
		keyStateRenderer:     keystate.Render,
		verificationRenderer: keystate.RenderVerification,
		httpClient:           http.DefaultClient,
		now:                  time.Now,
	}, nil
}

// logContext returns ctx carrying a logger configured from cfg.Log.
func (a *app) logContext(ctx context.Context, w io.Writer) (context.Context, error) {
	level, err := log.ParseLevel(a.cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := log.ParseFormat(a.cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return log.NewContext(ctx, level, format, w), nil
}

// gateway is the verification pipeline: pool, provider client, cache and metrics.
type gateway struct {
	pool    *domain.CredentialPool
	service *application.VerificationService
	metrics *metrics.Metrics
	closers []io.Closer
}

func (a *app) buildGateway(ctx context.Context) (*gateway, error) {
	credentials, err := a.credentials.Load(ctx, a.cfg.Keys)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	pool := domain.NewCredentialPool(credentials)

	scheme, err := knowyourgst.ParseAuthScheme(a.cfg.Provider.AuthScheme)
	if err != nil {
		return nil, err
	}
	client, err := knowyourgst.New(knowyourgst.Config{
		BaseURL:        a.cfg.Provider.BaseURL,
		AuthScheme:     scheme,
		AuthParam:      a.cfg.Provider.AuthParam,
		StrictStatus:   a.cfg.Provider.StrictStatus,
		RequestTimeout: a.cfg.RequestTimeout,
		HTTPClient:     a.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("wire provider client: %w", err)
	}

	gw := &gateway{pool: pool, metrics: metrics.New()}

	clock := ports.SystemClock{}
	var resultCache ports.ResultCache
	switch a.cfg.Cache.Provider {
	case config.CacheProviderRedis:
		rdb, err := cache.Open(ctx, a.cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		gw.closers = append(gw.closers, rdb)
		resultCache = cache.NewRedis(rdb)
	default:
		resultCache = cache.NewMemory(clock)
	}

	rotator := application.NewRotator(pool, client, clock, a.cfg.KeyCooldown, gw.metrics)
	gw.service = application.NewVerificationService(resultCache, rotator, pool, clock, a.cfg.CacheTTL, gw.metrics)

	return gw, nil
}

// closeGateway releases gateway resources and logs a failure instead of
// returning it.
func closeGateway(ctx context.Context, gw *gateway) {
	if err := gw.Close(); err != nil {
		log.Error(ctx, "close gateway resources", err)
	}
}

func (g *gateway) Close() error {
	var firstErr error
	for _, c := range g.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
