package imports

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/dszqbsm/gascan/config"
	"github.com/dszqbsm/gascan/conversion"
	"github.com/dszqbsm/gascan/log"
	"github.com/dszqbsm/gascan/proxy"
	"github.com/dszqbsm/gascan/spider"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var ImportCmd = &cobra.Command{
	Use:   "import <conversions.csv|backup.json>",
	Short: "push offline conversions to the call tracking api.",
	Long:  "read conversions from a csv file and attach them as sales to the matching calls, or restore the calls saved in a json backup.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return Run(ctx, configPath, args[0])
	},
}

func init() {
	ImportCmd.Flags().StringVar(&configPath, "config", "config.yaml", "set config file path")
}

var configPath string

var ErrUnknownInput = errors.New("input must be a .csv or .json file")

/*
输入一个上下文、配置文件路径和输入文件路径，输出一个error

csv文件回传转化并在有通话被修改时保存备份，json文件为之前保存的备份，用于恢复通话原有的成交信息
*/
func Run(ctx context.Context, path, input string) (err error) {
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

	client, err := NewClient(logger, cfg)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(input)) {
	case ".csv":
		return update(ctx, logger, client, cfg.Callbox, input)
	case ".json":
		calls, err := conversion.LoadBackup(input)
		if err != nil {
			return err
		}
		logger.Info("restoring backup", zap.String("file", input), zap.Int("calls", len(calls)))
		return client.Restore(ctx, calls)
	default:
		return fmt.Errorf("%s: %w", input, ErrUnknownInput)
	}
}

// 根据配置创建接口客户端，复用采集器的代理配置
func NewClient(logger *zap.Logger, cfg config.Config) (*conversion.Client, error) {
	cb := cfg.Callbox
	if cb.AccessCode == "" || cb.Secret == "" {
		return nil, errors.New("callbox access code and secret are required")
	}
	opts := []conversion.Option{
		conversion.WithLogger(logger.Named("callbox")),
		conversion.WithEndPoint(cb.EndPoint),
		conversion.WithAgencyID(cb.AgencyID),
		conversion.WithCredentials(cb.AccessCode, cb.Secret),
		conversion.WithTimeout(time.Duration(cb.Timeout) * time.Millisecond),
		conversion.WithLimit(spider.NewLimiter(cb.Limits)),
	}
	if len(cfg.Fetcher.Proxy) > 0 {
		p, err := proxy.RoundRobinProxySwitcher(cfg.Fetcher.Proxy...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, conversion.WithProxy(p))
	}
	return conversion.NewClient(opts...), nil
}

func update(ctx context.Context, logger *zap.Logger, client *conversion.Client, cb config.CallboxConfig, input string) error {
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()

	delimiter := ','
	if cb.Delimiter != "" {
		delimiter, _ = utf8.DecodeRuneInString(cb.Delimiter)
	}
	convs, err := conversion.LoadCSV(f, delimiter)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	logger.Info("updating calls", zap.Int("conversions", len(convs)))

	backup, err := client.Update(ctx, convs)
	if len(backup) > 0 {
		file, serr := conversion.SaveBackup(cb.BackupDir, backup, time.Now())
		if serr != nil {
			return multierr.Append(err, serr)
		}
		logger.Info("backup saved", zap.String("file", file), zap.Int("calls", len(backup)))
	}
	return err
}
