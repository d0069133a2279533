package cache

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bgzf"
)

// Genome holds chromosome sequences read from a reference FASTA. It serves
// the reference check for variants that extend past the transcript
// sequence into introns or flanks.
type Genome struct {
	seqs map[string]string
}

// LoadGenome reads a plain, gzip or bgzip FASTA file into memory.
func LoadGenome(path string) (*Genome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	r, err := decompress(f)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return ReadGenome(r)
}

// decompress wraps f by its magic bytes. BGZF members set the FEXTRA flag.
func decompress(f *os.File) (io.ReadCloser, error) {
	br := bufio.NewReader(f)
	magic, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read FASTA header: %w", err)
	}
	if len(magic) < 4 || magic[0] != 0x1f || magic[1] != 0x8b {
		return io.NopCloser(br), nil
	}
	if magic[3]&0x04 != 0 {
		r, err := bgzf.NewReader(br, 1)
		if err != nil {
			return nil, fmt.Errorf("create bgzf reader: %w", err)
		}
		return r, nil
	}
	r, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	return r, nil
}

// ReadGenome parses FASTA records. The record name is the first word of
// the header line, with any "chr" prefix removed.
func ReadGenome(r io.Reader) (*Genome, error) {
	g := &Genome{seqs: make(map[string]string)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var name string
	var seq strings.Builder
	flush := func() {
		if name != "" {
			g.seqs[name] = strings.ToUpper(seq.String())
		}
		seq.Reset()
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line[0] == '>' {
			flush()
			fields := strings.Fields(line[1:])
			if len(fields) == 0 {
				return nil, fmt.Errorf("FASTA record without a name")
			}
			name = NormalizeChrom(fields[0])
			continue
		}
		if name == "" {
			return nil, fmt.Errorf("sequence before first FASTA header")
		}
		seq.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	flush()

	return g, nil
}

// Fetch returns the bases at 1-based inclusive positions start..end.
func (g *Genome) Fetch(chrom string, start, end int64) (string, error) {
	seq, ok := g.seqs[NormalizeChrom(chrom)]
	if !ok {
		return "", fmt.Errorf("chromosome %s not in reference", chrom)
	}
	if start < 1 || end < start || end > int64(len(seq)) {
		return "", fmt.Errorf("range %s:%d-%d outside reference (length %d)", chrom, start, end, len(seq))
	}
	return seq[start-1 : end], nil
}

// Len returns the length of a chromosome, or 0 if it is unknown.
func (g *Genome) Len(chrom string) int64 {
	return int64(len(g.seqs[NormalizeChrom(chrom)]))
}

// ChromosomeCount returns the number of loaded sequences.
func (g *Genome) ChromosomeCount() int {
	return len(g.seqs)
}
