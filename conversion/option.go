package conversion

import (
	"time"

	"github.com/dszqbsm/gascan/limiter"
	"github.com/dszqbsm/gascan/proxy"
	"go.uber.org/zap"
)

const DefaultEndPoint = "https://api.calltrackingmetrics.com/api/v1/"

type options struct {
	logger     *zap.Logger
	endPoint   string
	agencyID   int
	accessCode string
	secret     string
	timeout    time.Duration
	limit      limiter.RateLimiter
	proxy      proxy.ProxyFunc
}

var defaultOptions = options{
	logger:   zap.NewNop(),
	endPoint: DefaultEndPoint,
	timeout:  10 * time.Second,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithEndPoint(endPoint string) Option {
	return func(opts *options) {
		opts.endPoint = endPoint
	}
}

func WithAgencyID(id int) Option {
	return func(opts *options) {
		opts.agencyID = id
	}
}

// 接口的Basic认证凭据
func WithCredentials(accessCode, secret string) Option {
	return func(opts *options) {
		opts.accessCode = accessCode
		opts.secret = secret
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		if timeout > 0 {
			opts.timeout = timeout
		}
	}
}

func WithLimit(l limiter.RateLimiter) Option {
	return func(opts *options) {
		opts.limit = l
	}
}

func WithProxy(p proxy.ProxyFunc) Option {
	return func(opts *options) {
		opts.proxy = p
	}
}
