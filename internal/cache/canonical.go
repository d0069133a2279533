package cache

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// CanonicalOverrides maps gene symbol -> canonical transcript ID (unversioned).
type CanonicalOverrides map[string]string

// LoadCanonicalOverrides loads canonical transcript overrides from a TSV file.
func LoadCanonicalOverrides(path string) (CanonicalOverrides, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open canonical overrides file: %w", err)
	}
	defer f.Close()

	return parseCanonicalOverrides(f)
}

// parseCanonicalOverrides parses the TSV content. The first line is a header.
// Genome Nexus biomart exports carry hgnc_symbol in column 0 and the
// canonical transcript in column 4; two-column files (gene, transcript) are
// accepted too.
func parseCanonicalOverrides(reader io.Reader) (CanonicalOverrides, error) {
	overrides := make(CanonicalOverrides)
	scanner := bufio.NewScanner(reader)

	// Skip header line
	if !scanner.Scan() {
		return overrides, scanner.Err()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		var gene, transcript string
		switch {
		case len(fields) >= 5:
			gene, transcript = fields[0], fields[4]
		case len(fields) >= 2:
			gene, transcript = fields[0], fields[1]
		default:
			continue
		}

		if gene == "" || transcript == "" || transcript == "nan" {
			continue
		}
		overrides[gene] = stripVersion(transcript)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan canonical overrides: %w", err)
	}

	return overrides, nil
}

// ApplyCanonicalOverrides marks the listed transcript of each gene as
// canonical and clears the flag on the gene's other transcripts. Genes not
// in the overrides keep their snapshot flags. It returns the number of
// genes whose listed transcript was found.
func (c *Cache) ApplyCanonicalOverrides(o CanonicalOverrides) int {
	matched := make(map[string]bool)
	for _, transcripts := range c.transcripts {
		for _, t := range transcripts {
			want, ok := o[t.GeneName]
			if !ok {
				continue
			}
			t.IsCanonical = stripVersion(t.ID) == want
			if t.IsCanonical {
				matched[t.GeneName] = true
			}
		}
	}
	return len(matched)
}

func stripVersion(id string) string {
	if i := strings.IndexByte(id, '.'); i >= 0 {
		return id[:i]
	}
	return id
}
