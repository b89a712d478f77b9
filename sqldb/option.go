package sqldb

// 函数式选项模式

import (
	"go.uber.org/zap"
)

type options struct {
	logger   *zap.Logger
	sqlURL   string
	maxConns int
}

var defaultOptions = options{
	logger:   zap.NewNop(),
	maxConns: 64,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithConnURL(sqlURL string) Option {
	return func(opts *options) {
		opts.sqlURL = sqlURL
	}
}

// 最大打开连接数与最大空闲连接数，非正数时保留默认值
func WithMaxConns(n int) Option {
	return func(opts *options) {
		if n > 0 {
			opts.maxConns = n
		}
	}
}
