package cmd

import (
	"os"

	"github.com/dszqbsm/gascan/cmd/crawl"
	"github.com/dszqbsm/gascan/cmd/imports"
	"github.com/dszqbsm/gascan/cmd/scan"
	"github.com/dszqbsm/gascan/version"
	"github.com/spf13/cobra"
)

// scan扫描本地HTML文件或标准输入，crawl按配置抓取站点并扫描每个页面，import回传线下转化，version打印版本信息

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version.",
	Long:  "print version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version.Printer(cmd.OutOrStdout())
	},
}

func Execute() {
	var rootCmd = &cobra.Command{
		Use:          "gascan",
		Short:        "find Google Analytics ids in inline page scripts.",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(scan.ScanCmd, crawl.CrawlCmd, imports.ImportCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
