package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apictl/packages/output"
)

// WatchDebounceDelay is the debounce delay for file watch events
const WatchDebounceDelay = 300 * time.Millisecond

// watchTests runs the tests once and again after every change to the config
// or the env file, until the command's context is cancelled.
func watchTests(cmd *cobra.Command, patterns []string, report output.ReportFormat) error {
	logger := loggerFromCmd(cmd)
	out := cmd.OutOrStdout()

	rerun := func() {
		if _, err := runTests(cmd, patterns, report); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
		fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range watchDirs(configFlag, envFileFlag) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	rerun()

	var (
		debounce *time.Timer
		fire     <-chan time.Time
		changed  string
	)

	for {
		select {
		case <-cmd.Context().Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !isWatched(event.Name, configFlag, envFileFlag) {
				continue
			}
			changed = event.Name
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(WatchDebounceDelay)
			fire = debounce.C

		case <-fire:
			fire = nil
			fmt.Fprintf(out, "\n\nFile changed: %s\nRe-running tests...\n\n", changed)
			rerun()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// watchDirs returns the directories holding the config and the env file.
func watchDirs(configPath, envFile string) []string {
	seen := map[string]bool{}
	var dirs []string
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	if info, err := os.Stat(configPath); err == nil && info.IsDir() {
		add(configPath)
	} else {
		add(filepath.Dir(configPath))
	}
	if envFile != "" {
		add(filepath.Dir(envFile))
	}
	return dirs
}

// isWatched reports whether a change to name can affect a test run.
func isWatched(name, configPath, envFile string) bool {
	name = filepath.Clean(name)
	if envFile != "" && name == filepath.Clean(envFile) {
		return true
	}
	if info, err := os.Stat(configPath); err == nil && info.IsDir() {
		if filepath.Dir(name) != filepath.Clean(configPath) {
			return false
		}
		ext := strings.ToLower(filepath.Ext(name))
		return ext == ".yaml" || ext == ".yml"
	}
	return name == filepath.Clean(configPath)
}
