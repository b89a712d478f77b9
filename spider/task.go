package spider

import (
	"time"

	"github.com/dszqbsm/gascan/limiter"
	"github.com/dszqbsm/gascan/proxy"
	"go.uber.org/zap"
)

// 配置文件中的任务配置
type TaskConfig struct {
	Name     string        `yaml:"name"`
	URLs     []string      `yaml:"urls"`
	Cookie   string        `yaml:"cookie"`
	WaitTime int64         `yaml:"waitTime"` // 秒
	Reload   bool          `yaml:"reload"`
	MaxDepth int           `yaml:"maxDepth"`
	Fetcher  string        `yaml:"fetcher"`
	Limits   []LimitConfig `yaml:"limits"`
}

type LimitConfig struct {
	EventCount int `yaml:"eventCount"`
	EventDur   int `yaml:"eventDur"` // 秒
	Bucket     int `yaml:"bucket"`   // 桶大小
}

// 将配置中的限速规则转换为限速器，没有有效规则时返回nil
func NewLimiter(cfgs []LimitConfig) limiter.RateLimiter {
	rules := make([]limiter.Rule, 0, len(cfgs))
	for _, l := range cfgs {
		rules = append(rules, limiter.Rule{
			EventCount: l.EventCount,
			EventDur:   time.Duration(l.EventDur) * time.Second,
			Bucket:     l.Bucket,
		})
	}
	return limiter.FromRules(rules...)
}

// 一个任务实例
type Task struct {
	Rule RuleTree // 任务的解析规则
	Options
}

/*
输入一个或多个配置，输出一个任务实例

该方法用于创建一个新的任务实例，根据传入的配置信息初始化任务实例的属性，并返回任务实例的指针。
*/
func NewTask(opts ...Option) *Task {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	d := &Task{}
	d.Options = options

	return d
}

type Options struct {
	Name     string // 任务名称，应保证唯一性，同时作为存储表名
	URLs     []string
	Cookie   string
	WaitTime int64 // 随机休眠时间，秒
	Reload   bool  // 网站是否可以重复爬取
	MaxDepth int
	Timeout  time.Duration // http超时时间
	Proxy    proxy.ProxyFunc
	Fetcher  Fetcher
	Storage  DataRepository
	Limit    limiter.RateLimiter
	Logger   *zap.Logger
}

var defaultOptions = Options{
	Logger:   zap.NewNop(),
	WaitTime: 0,
	Reload:   false,
	MaxDepth: 0,
	Timeout:  5 * time.Second,
}

type Option func(opts *Options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

func WithName(name string) Option {
	return func(opts *Options) {
		opts.Name = name
	}
}

func WithURLs(urls ...string) Option {
	return func(opts *Options) {
		opts.URLs = urls
	}
}

func WithCookie(cookie string) Option {
	return func(opts *Options) {
		opts.Cookie = cookie
	}
}

func WithWaitTime(waitTime int64) Option {
	return func(opts *Options) {
		opts.WaitTime = waitTime
	}
}

func WithReload(reload bool) Option {
	return func(opts *Options) {
		opts.Reload = reload
	}
}

func WithFetcher(f Fetcher) Option {
	return func(opts *Options) {
		opts.Fetcher = f
	}
}

func WithStorage(s DataRepository) Option {
	return func(opts *Options) {
		opts.Storage = s
	}
}

func WithMaxDepth(maxDepth int) Option {
	return func(opts *Options) {
		opts.MaxDepth = maxDepth
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

func WithProxy(proxy proxy.ProxyFunc) Option {
	return func(opts *Options) {
		opts.Proxy = proxy
	}
}

func WithLimit(l limiter.RateLimiter) Option {
	return func(opts *Options) {
		opts.Limit = l
	}
}
