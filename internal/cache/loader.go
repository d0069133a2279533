package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Loader loads transcript snapshots from JSON or YAML files, or from DuckDB
// databases written by DuckDBLoader. Each file holds a list of transcripts;
// directories are scanned for *.json, *.yaml, *.yml and *.duckdb.
type Loader struct {
	paths   []string
	workers int
	logger  *zap.Logger

	files   []string
	skipped int
}

// NewLoader creates a new snapshot loader over files and/or directories.
func NewLoader(paths ...string) *Loader {
	return &Loader{paths: paths, workers: 4, logger: zap.NewNop()}
}

// SetLogger sets the logger that reports rejected transcripts.
func (l *Loader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Files returns the snapshot files read by the last Load.
func (l *Loader) Files() []string {
	return l.files
}

// Skipped returns how many transcripts the last Load rejected.
func (l *Loader) Skipped() int {
	return l.skipped
}

// SetWorkers sets how many files are decoded concurrently.
func (l *Loader) SetWorkers(n int) {
	if n > 0 {
		l.workers = n
	}
}

// Load decodes every snapshot file and adds its transcripts to the cache.
// A transcript failing structural validation is logged and skipped; the
// rest of its file still loads. Unreadable files fail the whole load.
func (l *Loader) Load(c *Cache) error {
	files, err := l.expand()
	if err != nil {
		return err
	}
	l.files, l.skipped = files, 0

	decoded := make([][]*Transcript, len(files))
	var g errgroup.Group
	g.SetLimit(l.workers)
	for i, f := range files {
		g.Go(func() error {
			load := loadFile
			if IsDuckDB(f) {
				load = loadDuckDB
			}
			transcripts, err := load(f)
			if err != nil {
				return fmt.Errorf("load %s: %w", f, err)
			}
			decoded[i] = transcripts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, transcripts := range decoded {
		for _, t := range transcripts {
			if err := t.Validate(); err != nil {
				l.logger.Warn("skipping invalid transcript",
					zap.String("file", files[i]),
					zap.String("transcript", t.ID),
					zap.Error(err))
				l.skipped++
				continue
			}
			c.AddTranscript(t)
		}
	}
	return nil
}

// expand turns directories into the snapshot files they contain.
func (l *Loader) expand() ([]string, error) {
	var files []string
	for _, p := range l.paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat transcript source: %w", err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("read transcript directory: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && (snapshotFormat(e.Name()) != "" || strings.HasSuffix(e.Name(), ".duckdb")) {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
	}
	return files, nil
}

func snapshotFormat(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// loadFile decodes the transcripts in one snapshot file.
func loadFile(path string) ([]*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var transcripts []*Transcript
	switch snapshotFormat(path) {
	case "yaml":
		err = yaml.Unmarshal(data, &transcripts)
	default:
		err = json.Unmarshal(data, &transcripts)
	}
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	for _, t := range transcripts {
		prepare(t)
	}
	return transcripts, nil
}

// loadDuckDB reads the transcripts of a DuckDB snapshot.
func loadDuckDB(path string) ([]*Transcript, error) {
	l, err := NewDuckDBLoader(path)
	if err != nil {
		return nil, err
	}
	defer l.Close()
	return l.LoadAll()
}

// prepare normalizes a decoded transcript. Validation is left to the caller.
func prepare(t *Transcript) {
	t.Sequence = strings.ToUpper(t.Sequence)
	t.Chrom = NormalizeChrom(t.Chrom)
	t.Finalize()
}
