package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dzjyyds666/tomlfmt/parse"
	"github.com/dzjyyds666/tomlfmt/parse/toml"
	"github.com/dzjyyds666/tomlfmt/pkg"
)

type CheckParams struct {
	Syntax bool `json:"syntax"` // 只检查语法, 不检查重复的键等语义错误
}

var checkParams = &CheckParams{}

var checkCmd = &cobra.Command{
	Use:   "check [files or directories...]",
	Short: "Report TOML errors as file:line:col: message",
	RunE:  checkRun,
}

func init() {
	checkCmd.Flags().BoolVar(&checkParams.Syntax, "syntax-only", false, "skip semantic checks such as duplicate keys")
}

func checkRun(cmd *cobra.Command, args []string) error {
	popts, err := parseOptions()
	if err != nil {
		return err
	}
	files := []string{"-"}
	if len(args) > 0 {
		if files, err = pkg.CollectTomlFiles(args); err != nil {
			return err
		}
	}

	problems := 0
	for _, file := range files {
		content, err := pkg.ReadInput(file)
		if err != nil {
			return err
		}
		name := file
		if name == "-" {
			name = "<stdin>"
		}
		problems += checkSource(cmd.OutOrStdout(), name, content, popts, !checkParams.Syntax)
	}
	if problems > 0 {
		return fmt.Errorf("%d problems found", problems)
	}
	return nil
}

// checkSource 打印 source 中的错误, 返回错误个数
func checkSource(w io.Writer, name, source string, opts toml.Options, semantic bool) int {
	doc := parse.New(name, source, opts)
	diags, err := doc.Problems(semantic)
	if err != nil {
		fmt.Fprintf(w, "%s: %s\n", name, err)
		return 1
	}
	for _, d := range diags {
		line, col := doc.Position(d.Offset())
		fmt.Fprintf(w, "%s:%d:%d: %s\n", name, line, col, d.Message)
	}
	return len(diags)
}
