package cache

import "sort"

// Cache holds transcript snapshots indexed by chromosome. After BuildIndex
// the cache is read-only and safe for concurrent lookups.
type Cache struct {
	transcripts map[string][]*Transcript
	trees       map[string]*IntervalTree
	flank       int64
}

// New creates a new empty cache.
func New() *Cache {
	return &Cache{
		transcripts: make(map[string][]*Transcript),
	}
}

// AddTranscript adds a transcript to the cache. Any built index is dropped.
func (c *Cache) AddTranscript(t *Transcript) {
	chrom := NormalizeChrom(t.Chrom)
	c.transcripts[chrom] = append(c.transcripts[chrom], t)
	c.trees = nil
}

// BuildIndex builds per-chromosome interval trees. Transcript spans are
// padded by flank bases so upstream/downstream variants are returned too.
func (c *Cache) BuildIndex(flank int64) {
	c.flank = flank
	c.trees = make(map[string]*IntervalTree, len(c.transcripts))
	for chrom, transcripts := range c.transcripts {
		c.trees[chrom] = BuildIntervalTree(transcripts, flank)
	}
}

// FindTranscripts returns all transcripts whose span (padded by the index
// flank) overlaps the genomic range [start, end].
func (c *Cache) FindTranscripts(chrom string, start, end int64) []*Transcript {
	chrom = NormalizeChrom(chrom)
	if c.trees != nil {
		tree, ok := c.trees[chrom]
		if !ok {
			return nil
		}
		return tree.FindRange(start, end)
	}

	var result []*Transcript
	for _, t := range c.transcripts[chrom] {
		if end >= t.Start-c.flank && start <= t.End+c.flank {
			result = append(result, t)
		}
	}
	return result
}

// GetTranscript returns a specific transcript by ID, or nil if not found.
func (c *Cache) GetTranscript(id string) *Transcript {
	for _, transcripts := range c.transcripts {
		for _, t := range transcripts {
			if t.ID == id {
				return t
			}
		}
	}
	return nil
}

// TranscriptCount returns the total number of transcripts in the cache.
func (c *Cache) TranscriptCount() int {
	count := 0
	for _, transcripts := range c.transcripts {
		count += len(transcripts)
	}
	return count
}

// Chromosomes returns a sorted list of chromosomes in the cache.
func (c *Cache) Chromosomes() []string {
	chroms := make([]string, 0, len(c.transcripts))
	for chrom := range c.transcripts {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// FindTranscriptsByChrom returns all transcripts for a chromosome.
func (c *Cache) FindTranscriptsByChrom(chrom string) []*Transcript {
	return c.transcripts[NormalizeChrom(chrom)]
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func NormalizeChrom(chrom string) string {
	if len(chrom) > 3 && chrom[:3] == "chr" {
		return chrom[3:]
	}
	return chrom
}
