package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dzjyyds666/tomlfmt/format"
	"github.com/dzjyyds666/tomlfmt/lsp"
)

type LspParams struct {
	Config string `json:"config"` // 格式化使用的配置文件
}

var lspParams = &LspParams{}

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the language server on stdin and stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := formatOptions(nil, lspParams.Config)
		if err != nil {
			return err
		}
		popts, err := parseOptions()
		if err != nil {
			return err
		}
		log.Infof("starting language server %s", Version)
		return lsp.NewServer(Version, opts, popts).RunStdio()
	},
}

func init() {
	lspCmd.Flags().StringVarP(&lspParams.Config, "config", "c", "", "config file (default "+format.ConfigFileName+" when present)")
}
