package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dzjyyds666/tomlfmt/parse/toml"
)

// Version 由构建时通过 -ldflags 注入
var Version = "v0.1.0-dev"

type RootParams struct {
	Verbose     int    `json:"verbose"`      // 日志详细程度, 可重复
	LogFile     string `json:"log_file"`     // 日志文件, 为空时输出到标准错误
	TomlVersion string `json:"toml_version"` // 按哪个 TOML 版本解析
}

var rootParams = &RootParams{}

var rootCmd = &cobra.Command{
	Use:           "tomlfmt",
	Short:         "tomlfmt formats and checks TOML files.",
	Long:          "tomlfmt is a lossless TOML formatter. It keeps comments and layout it does not own, reports syntax errors with their position and can run as a language server.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var path *string
		if rootParams.LogFile != "" {
			path = &rootParams.LogFile
		}
		commonlog.Configure(rootParams.Verbose, path)
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tomlfmt",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tomlfmt", Version)
	},
}

// parseOptions 根据 --toml-version 生成解析选项
func parseOptions() (toml.Options, error) {
	var opts toml.Options
	if rootParams.TomlVersion == "" {
		return opts, nil
	}
	v, err := toml.ParseVersion(rootParams.TomlVersion)
	if err != nil {
		return opts, err
	}
	opts.Version = v
	return opts, nil
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&rootParams.Verbose, "verbose", "v", "log verbosity, repeat for more")
	rootCmd.PersistentFlags().StringVar(&rootParams.LogFile, "log-file", "", "write logs to this file")
	rootCmd.PersistentFlags().StringVar(&rootParams.TomlVersion, "toml-version", "", "TOML version to parse, 1.0 or 1.1 (default 1.1)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(lspCmd)
}
