package main

import (
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/fsnotify.v1"
)

// watchConfigFile calls onChange whenever path is written or replaced.
// The directory is watched since editors tend to replace files.
func watchConfigFile(path string, onChange func()) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	err = watcher.Add(filepath.Dir(path))
	if err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				log.Debugf("config file event: %s", ev)
				onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("config watcher: %v", err)
			}
		}
	}()

	log.Infof("Watching %s for changes", path)
	return nil
}
