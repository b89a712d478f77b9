package scan

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dszqbsm/gascan/dom"
	"github.com/dszqbsm/gascan/log"
	"github.com/dszqbsm/gascan/scanner"
	"github.com/dszqbsm/gascan/tasklib/analytics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ScanCmd = &cobra.Command{
	Use:   "scan [file|-]...",
	Short: "scan local html pages.",
	Long:  "load each html page, scan its inline scripts and print the records pushed to the global event queue.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closer, err := log.Setup(logLevel, "", log.NewStderrPlugin)
		if err != nil {
			return err
		}
		defer closer.Close()
		zap.ReplaceGlobals(logger)

		if len(args) == 0 {
			args = []string{"-"}
		}
		return Run(cmd.OutOrStdout(), cmd.InOrStdin(), args, Flags{XPath: useXPath, Host: host})
	},
}

func init() {
	ScanCmd.Flags().BoolVar(&useXPath, "xpath", false, "select script elements with xpath instead of css selectors")
	ScanCmd.Flags().StringVar(&logLevel, "log-level", "WARN", "set log level")
	ScanCmd.Flags().StringVar(&host, "host", HostJS, "page host: js runs a javascript window, memory keeps the queue in process")
}

var (
	useXPath bool
	logLevel string
	host     string
)

const (
	HostJS     = "js"
	HostMemory = "memory"
)

// scan命令的选项
type Flags struct {
	XPath bool   // 使用XPath选择script元素
	Host  string // 页面宿主，js或memory
}

// 一个输入页面的扫描结果
type Result struct {
	Source  string           `json:"source"`
	Records []scanner.Record `json:"records"`
}

/*
输入结果输出目标、标准输入、页面来源列表和选项，输出一个error

每个来源视为一次独立的页面加载，结果以每行一个json对象的形式输出；"-"表示标准输入
*/
func Run(w io.Writer, stdin io.Reader, sources []string, flags Flags) error {
	if flags.Host == "" {
		flags.Host = HostJS
	}
	if flags.Host != HostJS && flags.Host != HostMemory {
		return fmt.Errorf("unknown host %q", flags.Host)
	}
	enc := json.NewEncoder(w)
	for _, src := range sources {
		res, err := scanSource(src, stdin, flags)
		if err != nil {
			return fmt.Errorf("scan %s: %w", src, err)
		}
		if err := enc.Encode(res); err != nil {
			return err
		}
	}
	return nil
}

func scanSource(src string, stdin io.Reader, flags Flags) (*Result, error) {
	r := stdin
	if src != "-" {
		f, err := os.Open(src)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var (
		doc scanner.Document
		err error
	)
	if flags.XPath {
		doc, err = dom.ParseXPath(r)
	} else {
		doc, err = dom.Parse(r)
	}
	if err != nil {
		return nil, err
	}

	var records []scanner.Record
	if flags.Host == HostMemory {
		records, err = analytics.ScanPageIn(src, doc, &scanner.MemoryWindow{})
	} else {
		records, err = analytics.ScanPage(src, doc)
	}
	if err != nil {
		return nil, err
	}
	return &Result{Source: src, Records: records}, nil
}
