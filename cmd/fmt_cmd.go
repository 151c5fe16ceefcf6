package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dzjyyds666/tomlfmt/format"
	"github.com/dzjyyds666/tomlfmt/parse"
	"github.com/dzjyyds666/tomlfmt/parse/toml"
	"github.com/dzjyyds666/tomlfmt/pkg"
)

var log = commonlog.GetLogger("tomlfmt")

type FmtParams struct {
	Write  bool   `json:"write"`  // 把结果写回文件
	List   bool   `json:"list"`   // 只列出格式不一致的文件
	Watch  bool   `json:"watch"`  // 文件变化时重新格式化
	Config string `json:"config"` // 配置文件路径

	Options format.Options `json:"options"` // 命令行给出的格式选项, 优先于配置文件
}

var fmtParams = &FmtParams{}

var fmtCmd = &cobra.Command{
	Use:   "fmt [files or directories...]",
	Short: "Format TOML files, reading stdin when no file is given",
	RunE:  fmtRun,
}

// optionFlags 命令行选项名到配置字段的映射
var optionFlags = map[string]func(dst *format.Options, src format.Options){
	"compact-entries":           func(d *format.Options, s format.Options) { d.CompactEntries = s.CompactEntries },
	"compact-commas":            func(d *format.Options, s format.Options) { d.CompactCommas = s.CompactCommas },
	"pad-arrays":                func(d *format.Options, s format.Options) { d.PadArrays = s.PadArrays },
	"compact-inline-tables":     func(d *format.Options, s format.Options) { d.CompactInlineTables = s.CompactInlineTables },
	"omit-array-trailing-comma": func(d *format.Options, s format.Options) { d.OmitArrayTrailingComma = s.OmitArrayTrailingComma },
	"indent-tables":             func(d *format.Options, s format.Options) { d.IndentTables = s.IndentTables },
	"indent-entries":            func(d *format.Options, s format.Options) { d.IndentEntries = s.IndentEntries },
	"indent-string":             func(d *format.Options, s format.Options) { d.IndentString = s.IndentString },
	"max-blank-lines":           func(d *format.Options, s format.Options) { d.MaxBlankLines = s.MaxBlankLines },
	"omit-final-newline":        func(d *format.Options, s format.Options) { d.OmitFinalNewline = s.OmitFinalNewline },
}

func init() {
	f := fmtCmd.Flags()
	f.BoolVarP(&fmtParams.Write, "write", "w", false, "write the result back to the file")
	f.BoolVarP(&fmtParams.List, "list", "l", false, "list files whose formatting differs")
	f.BoolVar(&fmtParams.Watch, "watch", false, "keep running and reformat files when they change")
	f.StringVarP(&fmtParams.Config, "config", "c", "", "config file (default "+format.ConfigFileName+" when present)")

	o := &fmtParams.Options
	f.BoolVar(&o.CompactEntries, "compact-entries", false, "write key=value without spaces")
	f.BoolVar(&o.CompactCommas, "compact-commas", false, "no space after commas")
	f.BoolVar(&o.PadArrays, "pad-arrays", false, "pad single-line arrays: [ 1, 2 ]")
	f.BoolVar(&o.CompactInlineTables, "compact-inline-tables", false, "no padding inside inline tables")
	f.BoolVar(&o.OmitArrayTrailingComma, "omit-array-trailing-comma", false, "do not add trailing commas to multi-line arrays")
	f.BoolVar(&o.IndentTables, "indent-tables", false, "indent table headers by depth")
	f.BoolVar(&o.IndentEntries, "indent-entries", false, "indent entries under their header")
	f.StringVar(&o.IndentString, "indent-string", "  ", "one level of indentation")
	f.IntVar(&o.MaxBlankLines, "max-blank-lines", 2, "maximum consecutive blank lines, negative removes them")
	f.BoolVar(&o.OmitFinalNewline, "omit-final-newline", false, "do not end the output with a newline")
}

// formatOptions 合并配置文件和命令行给出的格式选项
func formatOptions(cmd *cobra.Command, configPath string) (format.Options, error) {
	opts := format.DefaultOptions()
	if configPath == "" {
		exist, err := pkg.CheckFileExist(format.ConfigFileName)
		if err != nil {
			return opts, err
		}
		if exist {
			configPath = format.ConfigFileName
		}
	}
	if configPath != "" {
		loaded, err := format.LoadOptions(configPath)
		if err != nil {
			return opts, err
		}
		opts = loaded
		log.Debugf("loaded options from %s", configPath)
	}
	if cmd == nil {
		return opts, nil
	}
	for name, apply := range optionFlags {
		if cmd.Flags().Changed(name) {
			apply(&opts, fmtParams.Options)
		}
	}
	return opts, nil
}

func fmtRun(cmd *cobra.Command, args []string) error {
	opts, err := formatOptions(cmd, fmtParams.Config)
	if err != nil {
		return err
	}
	popts, err := parseOptions()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if fmtParams.Write || fmtParams.Watch {
			return errors.New("--write and --watch need file arguments")
		}
		doc, err := parse.Load("-", popts)
		if err != nil {
			return err
		}
		out, _ := doc.Format(opts)
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}

	files, err := pkg.CollectTomlFiles(args)
	if err != nil {
		return err
	}
	var failed error
	for _, file := range files {
		if err := formatFile(cmd, file, opts, popts); err != nil {
			failed = errors.Join(failed, err)
		}
	}
	if !fmtParams.Watch {
		return failed
	}
	if failed != nil {
		log.Errorf("%s", failed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return pkg.Watch(ctx, files, func(path string) {
		if err := formatFile(cmd, path, opts, popts); err != nil {
			log.Errorf("%s", err)
		}
	})
}

// formatFile 格式化单个文件, 按参数决定写回, 列出还是打印
func formatFile(cmd *cobra.Command, path string, opts format.Options, popts toml.Options) error {
	doc, err := parse.Load(path, popts)
	if err != nil {
		return err
	}
	if !doc.OK() {
		log.Warningf("%s: %d syntax errors, broken lines are kept as written", path, len(doc.Diagnostics))
	}
	out, changed := doc.Format(opts)

	switch {
	case fmtParams.List:
		if changed {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
	case fmtParams.Write || fmtParams.Watch:
		if !changed {
			return nil
		}
		if err := pkg.WriteFileKeepMode(path, out); err != nil {
			return err
		}
		log.Infof("formatted %s", path)
	default:
		fmt.Fprint(cmd.OutOrStdout(), out)
	}
	return nil
}
