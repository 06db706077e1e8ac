package unpacker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"wxunpack/internal/config"
	"wxunpack/internal/discovery"
	"wxunpack/internal/logging"
	"wxunpack/internal/preflight"
	"wxunpack/internal/wxapkg"
)

const lockFileName = "wxunpack.lock"

// Report summarizes one completed unpack invocation.
type Report struct {
	SessionID   string
	Root        string
	MainPackage string
	Plugin      bool
	Archives    []string
	Elapsed     time.Duration
	OK          bool
}

// Service drives a full unpack invocation: discovery, decoding, subpackage
// realignment, merge into the main package, and post-processing.
type Service struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewService constructs a service around the loaded configuration.
func NewService(cfg *config.Config, logger *slog.Logger) *Service {
	return &Service{cfg: cfg, logger: logging.NewComponentLogger(logger, "unpacker")}
}

// Run unpacks every archive reachable from root. Concurrent invocations are
// excluded with a lock file under the log directory.
func (s *Service) Run(ctx context.Context, root string) (*Report, error) {
	started := time.Now()
	sessionID := uuid.NewString()
	logger := s.logger.With(logging.String("session_id", sessionID))

	if err := s.cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(s.cfg.Paths.LogDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another unpack run is active (lock %s held)", lock.Path())
	}
	defer lock.Unlock()

	if res := preflight.CheckDirectoryAccess("Unpack target", filepath.Dir(root)); !res.Passed {
		return nil, fmt.Errorf("preflight failed: %s", res.Detail)
	}

	candidates, err := discovery.Discover(root, s.cfg.Unpack.FilterFramework)
	if err != nil {
		if !errors.Is(err, discovery.ErrRootNotFound) {
			return nil, err
		}
		logger.Warn("root path not found", logging.String("root", root))
		candidates = nil
	}
	logger.Info("discovery finished",
		logging.String("root", root),
		logging.Int("candidates", len(candidates)),
	)

	var realigner *Realigner
	hooks := Hooks{
		BeforeProcess: func(archivePath string) (string, bool) {
			if s.cfg.Unpack.CleanOld {
				if err := removeStaleUnpackDir(archivePath, logger); err != nil {
					logger.Warn("could not remove stale unpack directory",
						logging.String("archive", archivePath),
						logging.Error(err),
					)
				}
			}
			return archivePath, true
		},
		Processed: func(string) error {
			return realigner.Apply(realigner.uctx.TakeSubpackage())
		},
		Completed: func(ok bool) {
			logger.Info("pipeline completed", logging.Bool("ok", ok))
		},
	}
	pipe := NewPipeline(wxapkg.NewDecoder(logger), hooks, logger)
	realigner = NewRealigner(pipe.Context(), logger)

	ok, err := pipe.Run(ctx, candidates)
	if err != nil {
		return nil, err
	}

	uctx := pipe.Context()
	if uctx.MainPackage != "" {
		if err := NewMerger(uctx, logger).Merge(); err != nil {
			return nil, err
		}
		if uctx.PluginDetected {
			if err := InjectPlugin(uctx.MainPackage, logger); err != nil {
				return nil, err
			}
		}
		if err := WriteProjectConfig(uctx.MainPackage, logger); err != nil {
			return nil, err
		}
	} else if ok {
		logger.Warn("no main package among decoded archives; skipping post-processing")
	}

	report := &Report{
		SessionID:   sessionID,
		Root:        root,
		MainPackage: uctx.MainPackage,
		Plugin:      uctx.PluginDetected,
		Archives:    uctx.Processed(),
		Elapsed:     time.Since(started),
		OK:          ok,
	}
	logger.Info("unpack run finished",
		logging.Bool("ok", report.OK),
		logging.Int("archives", len(report.Archives)),
		logging.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

func removeStaleUnpackDir(archivePath string, logger *slog.Logger) error {
	dir := wxapkg.UnpackDir(archivePath)
	removed, err := removeDirIfPresent(dir)
	if err != nil {
		return err
	}
	if removed {
		logger.Info("stale unpack directory removed", logging.String("dir", dir))
	}
	return nil
}

func removeDirIfPresent(dir string) (bool, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, err
	}
	return true, nil
}
