// Package remote talks to an external decision provider over HTTP.
//
// Protocol:
//
//	GET  {endpoint}/version -> {"version": "1.1.0"}
//	POST {endpoint}/decide  <- {"context": DecisionContext, "config": StrategyConfig}
//	                        -> Decision
package remote

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rxtech-lab/argo-gate/internal/logger"
	"github.com/rxtech-lab/argo-gate/internal/types"
	"github.com/rxtech-lab/argo-gate/internal/utils"
	"github.com/rxtech-lab/argo-gate/internal/version"
	"github.com/rxtech-lab/argo-gate/pkg/errors"
	"go.uber.org/zap"
)

const providerName = "remote"

const (
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 200 * time.Millisecond
)

type Config struct {
	Endpoint string `yaml:"endpoint" json:"endpoint" validate:"required,url"`
	APIKey   string `yaml:"api_key" json:"apiKey"`
	// MaxAttempts bounds retries of transient failures within one Decide call.
	MaxAttempts    int           `yaml:"max_attempts" json:"maxAttempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff" json:"initialBackoff"`
}

type decideRequest struct {
	Context types.DecisionContext `json:"context"`
	Config  types.StrategyConfig  `json:"config"`
}

type versionResponse struct {
	Version string `json:"version"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Provider implements decision.DecisionProvider against an HTTP endpoint.
type Provider struct {
	client *resty.Client
	cfg    Config
	log    *logger.Logger

	mu             sync.Mutex
	versionChecked bool
	versionErr     error
}

func NewProvider(cfg Config, log *logger.Logger) *Provider {
	if log == nil {
		log = logger.NewNopLogger()
	}

	client := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "argo-gate/"+version.GetVersion())

	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &Provider{
		client:         client,
		cfg:            cfg,
		log:            log.Named("remote-provider"),
		mu:             sync.Mutex{},
		versionChecked: false,
		versionErr:     nil,
	}
}

func (p *Provider) Name() string {
	return providerName
}

// Decide checks protocol compatibility once, then posts the step and returns the provider's decision.
// Server errors and transport failures are retried with exponential backoff.
func (p *Provider) Decide(ctx context.Context, dctx types.DecisionContext, cfg types.StrategyConfig) (types.Decision, error) {
	if err := p.checkVersion(ctx); err != nil {
		return types.Decision{}, err
	}

	var decision types.Decision

	policy := utils.RetryPolicy{
		MaxAttempts:     max(p.cfg.MaxAttempts, 1),
		InitialInterval: p.cfg.InitialBackoff,
		MaxInterval:     0,
	}

	_, err := utils.Retry(ctx, policy, func(int) error {
		var failure errorResponse

		resp, err := p.client.R().
			SetContext(ctx).
			SetBody(decideRequest{Context: dctx, Config: cfg}).
			SetResult(&decision).
			SetError(&failure).
			Post("/decide")
		if err != nil {
			return err
		}

		return statusError(resp.StatusCode(), failure.Error)
	}, func(err error, wait time.Duration) {
		p.log.Debug("Retrying decision request", zap.Error(err), zap.Duration("wait", wait))
	})
	if err != nil {
		return types.Decision{}, err
	}

	return decision, nil
}

// checkVersion remembers a successful or incompatible handshake; transport failures are retried on the next call.
func (p *Provider) checkVersion(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.versionChecked {
		return p.versionErr
	}

	var v versionResponse

	resp, err := p.client.R().SetContext(ctx).SetResult(&v).Get("/version")
	if err != nil {
		return errors.Wrap(errors.ErrCodeProviderFailed, "failed to query provider version", err)
	}

	if resp.IsError() {
		return errors.Newf(errors.ErrCodeProviderFailed, "provider version endpoint returned %d", resp.StatusCode())
	}

	p.versionChecked = true

	if err := version.CheckProtocolCompatibility(version.ProtocolVersion, v.Version); err != nil {
		p.versionErr = errors.Wrap(errors.ErrCodeProviderFailed, "incompatible decision provider", err)

		return p.versionErr
	}

	p.log.Info("Decision provider connected", zap.String("endpoint", p.cfg.Endpoint), zap.String("version", v.Version))

	return nil
}

// statusError maps HTTP status codes: 2xx is success, 4xx is permanent, anything else is retried.
func statusError(status int, message string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status >= 400 && status < 500 && status != http.StatusTooManyRequests:
		return utils.Permanent(errors.Newf(errors.ErrCodeProviderFailed, "provider rejected request (%d): %s", status, message))
	default:
		return fmt.Errorf("provider returned status %d: %s", status, message)
	}
}
