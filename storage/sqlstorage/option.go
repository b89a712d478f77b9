package sqlstorage

// 用于配置sql存储相关的选项

import (
	"go.uber.org/zap"
)

type options struct {
	logger     *zap.Logger
	sqlURL     string
	maxConns   int
	BatchCount int // 批量数
}

var defaultOptions = options{
	logger:     zap.NewNop(),
	BatchCount: 1,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// 配置数据库的链接url
func WithSqlURL(sqlURL string) Option {
	return func(opts *options) {
		opts.sqlURL = sqlURL
	}
}

// 数据库连接池大小，0表示使用sqldb的默认值
func WithMaxConns(n int) Option {
	return func(opts *options) {
		opts.maxConns = n
	}
}

func WithBatchCount(batchCount int) Option {
	return func(opts *options) {
		opts.BatchCount = batchCount
	}
}
