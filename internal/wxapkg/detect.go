package wxapkg

import (
	"sort"
	"strings"
)

const (
	// EntryScript is the application entry script at the main package root,
	// and the file a split subpackage carries under its own root segment.
	EntryScript = "app-service.js"
	appConfig   = "app-config.json"
	// pluginScript marks an archive carrying an embedded plugin.
	pluginScript = "plugin.js"
)

// classify inspects the extracted file list and sets the main-package,
// plugin, and split-subpackage markers on the result.
func classify(result *Result) {
	names := make(map[string]struct{}, len(result.Files))
	for _, rel := range result.Files {
		names[rel] = struct{}{}
	}

	if _, ok := names[pluginScript]; ok {
		result.Plugin = true
	}
	_, hasEntry := names[EntryScript]
	_, hasConfig := names[appConfig]
	if hasEntry || hasConfig {
		result.IsMain = true
		return
	}

	result.Split = findSplit(result.Files)
}

// findSplit returns the shallowest nested entry script, if any. Depth ties
// resolve lexically so classification is stable across index orderings.
func findSplit(files []string) *Split {
	candidates := make([]string, 0, 1)
	for _, rel := range files {
		if strings.HasSuffix(rel, "/"+EntryScript) {
			candidates = append(candidates, rel)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		di := strings.Count(candidates[i], "/")
		dj := strings.Count(candidates[j], "/")
		if di != dj {
			return di < dj
		}
		return candidates[i] < candidates[j]
	})
	entry := candidates[0]
	root := entry[:strings.Index(entry, "/")]
	return &Split{EntryScript: entry, Root: root}
}
