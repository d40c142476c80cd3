package integrity

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// fsnotify watches are not recursive, so every directory gets one.
func (e *Engine) addWatches(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root,
		func(pathname string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !entry.IsDir() {
				return nil
			}
			e.logger.Debugf(1, "watching: %s\n", pathname)
			return watcher.Add(pathname)
		})
}

func (e *Engine) watch(stop <-chan struct{}, quiet time.Duration) error {
	if _, err := e.loadBaseline(); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := e.addWatches(watcher, e.config.Root); err != nil {
		return err
	}
	e.logger.Printf("watching %s\n", e.config.Root)
	var settled <-chan time.Time
	for {
		select {
		case <-stop:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			e.logger.Debugf(0, "event: %s\n", event)
			if event.Has(fsnotify.Create) {
				if fi, err := os.Lstat(event.Name); err == nil && fi.IsDir() {
					if err := e.addWatches(watcher, event.Name); err != nil {
						e.logger.Println("error adding watch:", err)
					}
				}
			}
			settled = time.After(quiet)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Println("error with watcher:", err)
		case <-settled:
			settled = nil
			report, err := e.verify(false)
			if err != nil {
				e.logger.Println(err)
				continue
			}
			if err := report.Err(); err != nil {
				e.logger.Println(err)
			} else {
				e.logger.Printf("%s unchanged (%d files)\n", report.Root,
					report.Checked)
			}
		}
	}
}
