package unpacker

import (
	"context"
	"log/slog"

	"wxunpack/internal/logging"
	"wxunpack/internal/wxapkg"
)

// Decoder extracts one archive into a directory and classifies the result.
type Decoder interface {
	Decode(ctx context.Context, archivePath, destDir string) (wxapkg.Result, error)
}

// Hooks are the caller-visible lifecycle callbacks of a pipeline run. Every
// field is optional.
type Hooks struct {
	// BeforeUnpack receives the candidate list before processing starts and
	// may return a replacement; nil means use the list as given.
	BeforeUnpack func(candidates []string) []string
	// BeforeProcess fires before each decode. It may rename the candidate
	// (return a different path) or veto it entirely (return false); vetoed
	// candidates are never decoded or announced.
	BeforeProcess func(archivePath string) (string, bool)
	// Processed announces a successfully decoded archive. The announcement
	// is delayed by one step: it fires immediately before the next decode
	// starts, or at exhaustion for the final archive. A non-nil error
	// aborts the run.
	Processed func(archivePath string) error
	// Completed fires exactly once when the queue is exhausted. ok is true
	// when at least one archive was decoded.
	Completed func(ok bool)
}

// Pipeline decodes a queue of candidate archives sequentially, consuming
// from the tail. It owns a Context for the duration of one Run call.
type Pipeline struct {
	decoder Decoder
	hooks   Hooks
	logger  *slog.Logger
	uctx    *Context
}

// NewPipeline constructs a pipeline around the given decoder and hooks.
func NewPipeline(decoder Decoder, hooks Hooks, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		decoder: decoder,
		hooks:   hooks,
		logger:  logging.NewComponentLogger(logger, "pipeline"),
		uctx:    NewContext(),
	}
}

// Context returns the invocation state accumulated by Run.
func (p *Pipeline) Context() *Context {
	return p.uctx
}

// Run decodes every candidate, LIFO, firing hooks between steps. It returns
// true when at least one archive was decoded. Decode and hook errors abort
// the run unrecovered; the candidate slice is not mutated.
func (p *Pipeline) Run(ctx context.Context, candidates []string) (bool, error) {
	if p.hooks.BeforeUnpack != nil {
		if replaced := p.hooks.BeforeUnpack(candidates); replaced != nil {
			candidates = replaced
		}
	}

	queue := append([]string(nil), candidates...)
	staged := ""
	decoded := 0

	for len(queue) > 0 {
		current := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		// Announce previous, stage current. Realignment for the staged
		// archive runs inside the processed hook, so it must finish before
		// this iteration's decode can overwrite the pending request.
		if staged != "" {
			if err := p.announce(staged); err != nil {
				return false, err
			}
			staged = ""
		}

		name := current
		if p.hooks.BeforeProcess != nil {
			renamed, ok := p.hooks.BeforeProcess(name)
			if !ok {
				p.logger.Info("candidate vetoed", logging.String("archive", name))
				continue
			}
			if renamed != "" {
				name = renamed
			}
		}

		result, err := p.decoder.Decode(ctx, name, wxapkg.UnpackDir(name))
		if err != nil {
			return false, err
		}
		p.uctx.absorb(name, result, p.logger)
		staged = name
		decoded++
	}

	if staged != "" {
		if err := p.announce(staged); err != nil {
			return false, err
		}
	}

	ok := decoded > 0
	if p.hooks.Completed != nil {
		p.hooks.Completed(ok)
	}
	p.logger.Info("queue exhausted", logging.Int("decoded", decoded))
	return ok, nil
}

func (p *Pipeline) announce(archivePath string) error {
	p.logger.Debug("archive processed", logging.String("archive", archivePath))
	if p.hooks.Processed == nil {
		return nil
	}
	return p.hooks.Processed(archivePath)
}
