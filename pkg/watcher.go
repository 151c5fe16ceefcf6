package pkg

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("tomlfmt.watch")

// Watch 监听文件变化, 文件被写入或重新创建时调用 onChange, 直到 ctx 结束
//
// 编辑器常用重命名的方式保存文件, 所以监听的是文件所在目录
func Watch(ctx context.Context, files []string, onChange func(path string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := make(map[string]string, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		watched[abs] = f
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return err
		}
		dirs[dir] = true
	}
	log.Infof("watching %d files", len(watched))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			name, ok := watched[abs]
			if !ok {
				continue
			}
			log.Debugf("%s: %s", ev.Op, name)
			onChange(name)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warningf("watch: %s", err)
		}
	}
}
