package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"faultline/internal/logger"
	"faultline/internal/observ"
	"faultline/internal/report"
)

// FileResult is the outcome for one snapshot file.
type FileResult struct {
	Path  string
	Lines []string
	Err   error
}

// Batch composes reports for many snapshot files.
type Batch struct {
	FS       afero.Fs
	Composer *report.Composer
	Options  report.Options
	Jobs     int // 0 means GOMAXPROCS
	Timer    *observ.Timer
	Log      logger.Logger // nil means the logger carried by the Run context
}

// ExpandPaths replaces directories with the snapshot files below them,
// sorted for a deterministic order.
func ExpandPaths(fsys afero.Fs, paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := fsys.Stat(p)
		if err != nil || !info.IsDir() {
			out = append(out, p)
			continue
		}
		files, err := listSnapshotFiles(fsys, p)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

// listSnapshotFiles возвращает отсортированный список *.mp и *.json файлов в директории
func listSnapshotFiles(fsys afero.Fs, dir string) ([]string, error) {
	var files []string
	err := afero.Walk(fsys, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !info.IsDir() && (ext == ".mp" || ext == ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Run decodes and composes every file in parallel. Results keep the input
// order; a failing file only fails its own result. The returned error is
// non-nil only when ctx is cancelled.
func (b *Batch) Run(ctx context.Context, files []string) ([]FileResult, error) {
	results := make([]FileResult, len(files))
	if len(files) == 0 {
		return results, nil
	}
	jobs := b.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	log := b.Log
	if log == nil {
		log = logger.FromContext(ctx)
	}
	timer := b.Timer
	if timer == nil {
		timer = observ.NewTimer()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			// индекс i уникален для горутины, мьютекс не нужен
			results[i].Path = path
			done := timer.Track("decode " + path)
			v, err := LoadSnapshot(b.FS, path)
			done("")
			if err != nil {
				log.Warn("snapshot skipped", "file", path, "error", err)
				results[i].Err = err
				return nil
			}

			done = timer.Track("compose " + path)
			results[i].Lines = b.Composer.Compose(report.FromValue(v), b.Options)
			done("")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
