package duckdb

import (
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime().UTC().Truncate(time.Microsecond),
	}, nil
}

// StatFiles fingerprints every path.
func StatFiles(paths []string) ([]FileFingerprint, error) {
	fps := make([]FileFingerprint, 0, len(paths))
	for _, p := range paths {
		fp, err := StatFile(p)
		if err != nil {
			return nil, err
		}
		fps = append(fps, fp)
	}
	return fps, nil
}

// SourceMatches reports whether the stored results were produced from
// exactly the transcript files described by fps. A store with no recorded
// source matches nothing.
func (s *Store) SourceMatches(fps []FileFingerprint) (bool, error) {
	rows, err := s.db.Query("SELECT path, size, mod_time FROM transcript_source")
	if err != nil {
		return false, fmt.Errorf("read transcript source: %w", err)
	}
	defer rows.Close()

	stored := make(map[string]FileFingerprint)
	for rows.Next() {
		var fp FileFingerprint
		if err := rows.Scan(&fp.Path, &fp.Size, &fp.ModTime); err != nil {
			return false, fmt.Errorf("scan transcript source: %w", err)
		}
		stored[fp.Path] = fp
	}
	if err := rows.Err(); err != nil {
		return false, err
	}

	if len(stored) == 0 || len(stored) != len(fps) {
		return false, nil
	}
	for _, fp := range fps {
		got, ok := stored[fp.Path]
		if !ok || got.Size != fp.Size || !got.ModTime.Equal(fp.ModTime.UTC().Truncate(time.Microsecond)) {
			return false, nil
		}
	}
	return true, nil
}

// SetSource records the transcript files the stored results come from,
// replacing any earlier record.
func (s *Store) SetSource(fps []FileFingerprint) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM transcript_source"); err != nil {
		return fmt.Errorf("clear transcript source: %w", err)
	}
	for _, fp := range fps {
		if _, err := tx.Exec("INSERT INTO transcript_source VALUES (?, ?, ?)",
			fp.Path, fp.Size, fp.ModTime.UTC().Truncate(time.Microsecond)); err != nil {
			return fmt.Errorf("write transcript source: %w", err)
		}
	}
	return tx.Commit()
}
