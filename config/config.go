package config

// crawl与import命令的配置，从yaml文件加载

import (
	"fmt"
	"os"

	"github.com/dszqbsm/gascan/spider"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel  string              `yaml:"logLevel"`
	LogFile   string              `yaml:"logFile"`
	WorkCount int                 `yaml:"workCount"`
	Fetcher   FetcherConfig       `yaml:"fetcher"`
	Storage   StorageConfig       `yaml:"storage"`
	Tasks     []spider.TaskConfig `yaml:"tasks"`
	Callbox   CallboxConfig       `yaml:"callbox"`
}

type FetcherConfig struct {
	Type    string   `yaml:"type"`    // base 或 browser
	Timeout int      `yaml:"timeout"` // 毫秒
	Proxy   []string `yaml:"proxy"`
}

type StorageConfig struct {
	SqlURL     string `yaml:"sqlURL"` // 为空时结果只输出到日志
	BatchCount int    `yaml:"batchCount"`
	MaxConns   int    `yaml:"maxConns"` // 数据库连接池大小
}

// 电话跟踪平台接口配置，供import命令回传线下转化
type CallboxConfig struct {
	EndPoint   string               `yaml:"endPoint"`
	AgencyID   int                  `yaml:"agencyID"`
	AccessCode string               `yaml:"accessCode"`
	Secret     string               `yaml:"secret"`
	Timeout    int                  `yaml:"timeout"` // 毫秒
	Delimiter  string               `yaml:"delimiter"`
	BackupDir  string               `yaml:"backupDir"`
	Limits     []spider.LimitConfig `yaml:"limits"`
}

func Default() Config {
	return Config{
		LogLevel:  "INFO",
		WorkCount: 5,
		Fetcher: FetcherConfig{
			Type:    "browser",
			Timeout: 5000,
		},
		Storage: StorageConfig{
			BatchCount: 2,
			MaxConns:   64,
		},
		Callbox: CallboxConfig{
			EndPoint:  "https://api.calltrackingmetrics.com/api/v1/",
			Timeout:   10000,
			Delimiter: ",",
			BackupDir: ".",
		},
	}
}

/*
输入配置文件内容，输出配置和一个error

未出现在文件中的字段保留默认值，任务名和种子URL不能为空
*/
func Parse(b []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	names := make(map[string]struct{}, len(cfg.Tasks))
	for i, t := range cfg.Tasks {
		if t.Name == "" {
			return Config{}, fmt.Errorf("task %d: empty name", i)
		}
		if _, ok := names[t.Name]; ok {
			return Config{}, fmt.Errorf("task %s: duplicate name", t.Name)
		}
		names[t.Name] = struct{}{}
		if len(t.URLs) == 0 {
			return Config{}, fmt.Errorf("task %s: no urls", t.Name)
		}
	}
	return cfg, nil
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(b)
}
