package crawl

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dszqbsm/gascan/config"
	"github.com/dszqbsm/gascan/engine"
	"github.com/dszqbsm/gascan/log"
	"github.com/dszqbsm/gascan/proxy"
	"github.com/dszqbsm/gascan/spider"
	"github.com/dszqbsm/gascan/storage/sqlstorage"
	"github.com/dszqbsm/gascan/tasklib/analytics"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var CrawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "crawl sites and scan every page.",
	Long:  "crawl the configured sites, scan every page for analytics ids and store the queue records.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return Run(ctx, configPath)
	},
}

func init() {
	CrawlCmd.Flags().StringVar(&configPath, "config", "config.yaml", "set config file path")
}

var configPath string

func Run(ctx context.Context, path string) (err error) {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	logger, closer, err := log.Setup(cfg.LogLevel, cfg.LogFile, log.NewStdoutPlugin)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
		err = multierr.Append(err, closer.Close())
	}()
	logger.Info("log init end")
	zap.ReplaceGlobals(logger)

	// 采集器配置
	var p proxy.ProxyFunc
	if len(cfg.Fetcher.Proxy) > 0 {
		if p, err = proxy.RoundRobinProxySwitcher(cfg.Fetcher.Proxy...); err != nil {
			logger.Error("RoundRobinProxySwitcher failed", zap.Error(err))
			return err
		}
	}
	logger.Sugar().Info("proxy list: ", cfg.Fetcher.Proxy, " timeout: ", cfg.Fetcher.Timeout)
	f := spider.NewFetchService(spider.ParseFetchType(cfg.Fetcher.Type))

	// 存储器配置，未配置数据库时结果输出到日志
	var storage spider.DataRepository
	if cfg.Storage.SqlURL != "" {
		s, serr := sqlstorage.New(
			sqlstorage.WithSqlURL(cfg.Storage.SqlURL),
			sqlstorage.WithLogger(logger.Named("sqlDB")),
			sqlstorage.WithBatchCount(cfg.Storage.BatchCount),
			sqlstorage.WithMaxConns(cfg.Storage.MaxConns),
		)
		if serr != nil {
			logger.Error("create sqlstorage failed", zap.Error(serr))
			return serr
		}
		defer func() {
			if e := s.Close(); e != nil {
				logger.Error("close sqlstorage failed", zap.Error(e))
				err = multierr.Append(err, e)
			}
		}()
		storage = s
	}

	seeds := ParseTaskConfig(logger, f, storage, p, time.Duration(cfg.Fetcher.Timeout)*time.Millisecond, cfg.Tasks)

	e := engine.NewEngine(
		engine.WithFetcher(f),
		engine.WithLogger(logger),
		engine.WithWorkCount(cfg.WorkCount),
		engine.WithSeeds(seeds),
		engine.WithScheduler(engine.NewSchedule()),
	)
	if err = e.Run(ctx); err != nil {
		logger.Warn("crawl stopped", zap.Error(err))
		return err
	}
	logger.Info("crawl finished")
	return nil
}

// 将配置文件中的任务配置解析为可执行的任务实例，为每个任务设置规则树、限速器、代理与存储器
func ParseTaskConfig(
	logger *zap.Logger,
	f spider.Fetcher,
	s spider.DataRepository,
	p proxy.ProxyFunc,
	timeout time.Duration,
	cfgs []spider.TaskConfig,
) []*spider.Task {
	tasks := make([]*spider.Task, 0, len(cfgs))
	for _, cfg := range cfgs {
		t := spider.NewTask(
			spider.WithName(cfg.Name),
			spider.WithURLs(cfg.URLs...),
			spider.WithReload(cfg.Reload),
			spider.WithCookie(cfg.Cookie),
			spider.WithWaitTime(cfg.WaitTime),
			spider.WithMaxDepth(cfg.MaxDepth),
			spider.WithLogger(logger.Named(cfg.Name)),
			spider.WithStorage(s),
			spider.WithProxy(p),
			spider.WithFetcher(f),
		)
		if timeout > 0 {
			t.Timeout = timeout
		}
		if cfg.Fetcher != "" {
			t.Fetcher = spider.NewFetchService(spider.ParseFetchType(cfg.Fetcher))
		}

		t.Limit = spider.NewLimiter(cfg.Limits)

		t.Rule = analytics.NewRuleTree(cfg.URLs)
		tasks = append(tasks, t)
	}
	return tasks
}
