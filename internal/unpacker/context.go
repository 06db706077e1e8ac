package unpacker

import (
	"log/slog"

	"wxunpack/internal/logging"
	"wxunpack/internal/wxapkg"
)

// SubpackageRequest asks for a decoded split package's content to be
// relocated under the main package. At most one request is pending at a
// time; the pipeline's non-overlapping decodes keep a request from being
// overwritten before the realigner consumes it.
type SubpackageRequest struct {
	// EntryScript is the split entry script relative to EntryDir.
	EntryScript string
	// EntryDir is the unpack directory of the split archive.
	EntryDir string
	// Root is the first path segment of EntryScript; the relocation target
	// is Root joined to the main package directory.
	Root string
}

// Context carries the state shared across one unpack invocation. It is an
// explicit value threaded through the pipeline rather than ambient state, so
// each stage's inputs stay visible.
type Context struct {
	// MainPackage is the unpack directory of the main package, set by the
	// first decode that reports one and never overwritten.
	MainPackage string
	// PluginDetected records whether any decode reported an embedded plugin.
	PluginDetected bool

	processed []string
	pending   *SubpackageRequest
	seen      map[string]struct{}
}

// NewContext returns an empty per-invocation context.
func NewContext() *Context {
	return &Context{seen: make(map[string]struct{})}
}

// absorb folds one decode result into the context.
func (c *Context) absorb(archivePath string, result wxapkg.Result, logger *slog.Logger) {
	c.processed = append(c.processed, archivePath)
	if result.IsMain && c.MainPackage == "" {
		c.MainPackage = result.Dir
	}
	if result.Plugin {
		c.PluginDetected = true
	}
	if result.Split != nil {
		if c.pending != nil && logger != nil {
			// Only the most recent request is tracked; see SubpackageRequest.
			logger.Warn("unconsumed subpackage request overwritten",
				logging.String("dropped_entry", c.pending.EntryScript),
				logging.String("new_entry", result.Split.EntryScript),
			)
		}
		c.pending = &SubpackageRequest{
			EntryScript: result.Split.EntryScript,
			EntryDir:    result.Dir,
			Root:        result.Split.Root,
		}
	}
}

// Processed returns the successfully decoded archive paths in decode order.
func (c *Context) Processed() []string {
	return c.processed
}

// TakeSubpackage returns the pending subpackage request, clearing it. Nil
// when the most recent decode reported none.
func (c *Context) TakeSubpackage() *SubpackageRequest {
	req := c.pending
	c.pending = nil
	return req
}

// MarkSeen records that dir has been merged or realigned.
func (c *Context) MarkSeen(dir string) {
	c.seen[dir] = struct{}{}
}

// Seen reports whether dir was already merged or realigned.
func (c *Context) Seen(dir string) bool {
	_, ok := c.seen[dir]
	return ok
}
