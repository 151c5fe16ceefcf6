package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dzjyyds666/tomlfmt/parse/toml"
	"github.com/dzjyyds666/tomlfmt/pkg"
)

type TomlParams struct {
	Find   string `json:"find"`   // 查找的key, 用 . 分隔
	Input  string `json:"input"`  // 输入文件路径
	Output string `json:"output"` // 输出文件地址
}

var params *TomlParams

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print a value of a TOML file",
	Long:  "Print the value under a dotted key. Strings and other scalars are printed as is, tables and arrays as JSON.",
	RunE:  getRun,
}

func init() {
	params = &TomlParams{}
	getCmd.Flags().StringVarP(&params.Find, "find", "f", "", "dotted key to look up, empty for the whole document")
	getCmd.Flags().StringVarP(&params.Input, "input", "i", "", "input file path, - for stdin")
	getCmd.Flags().StringVarP(&params.Output, "output", "o", "", "output path")
}

func getRun(cmd *cobra.Command, args []string) error {
	if len(params.Input) == 0 {
		return fmt.Errorf("no input file path")
	}
	if params.Input != "-" {
		exist, err := pkg.CheckFileExist(params.Input)
		if err != nil {
			return fmt.Errorf("check file exist error: %w", err)
		}
		if !exist {
			return fmt.Errorf("input file %s not exist", params.Input)
		}
	}
	content, err := pkg.ReadInput(params.Input)
	if err != nil {
		return err
	}
	root, err := toml.DecodeString(content)
	if err != nil {
		return err
	}

	var path []string
	if params.Find != "" {
		path = strings.Split(params.Find, ".")
	}
	node, ok := toml.Get(root, path...)
	if !ok {
		return fmt.Errorf("key %q not found", params.Find)
	}
	out, err := render(node)
	if err != nil {
		return err
	}

	if params.Output != "" {
		return os.WriteFile(params.Output, []byte(out+"\n"), 0o644)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// render 标量直接输出, 表和数组输出为 JSON
func render(n toml.Node) (string, error) {
	if v, ok := n.(*toml.Value); ok {
		return scalarText(v), nil
	}
	data, err := json.MarshalIndent(toml.ToUntypedWith(n, jsonScalar), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// jsonScalar 把 encoding/json 无法表示的值转成文本
func jsonScalar(v *toml.Value) any {
	switch x := v.V.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return scalarText(v)
		}
	case time.Time:
		return scalarText(v)
	}
	return v.V
}

func scalarText(v *toml.Value) string {
	switch x := v.V.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		switch {
		case math.IsNaN(x):
			return "nan"
		case math.IsInf(x, 1):
			return "inf"
		case math.IsInf(x, -1):
			return "-inf"
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		switch v.Kind() {
		case "local_date":
			return x.Format(time.DateOnly)
		case "local_time":
			return x.Format("15:04:05.999999999")
		case "local_datetime":
			return x.Format("2006-01-02T15:04:05.999999999")
		}
		return x.Format(time.RFC3339Nano)
	}
	return fmt.Sprint(v.V)
}
