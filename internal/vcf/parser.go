package vcf

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
)

// Parser reads variants from a VCF stream.
type Parser struct {
	reader     *bufio.Reader
	closers    []io.Closer // closed in reverse order
	lineNumber int
	header     []string
}

// NewParser opens a VCF file, or stdin when path is "-".
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}
	p, err := newParser(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	p.closers = append([]io.Closer{file}, p.closers...)
	return p, nil
}

// NewParserFromReader creates a parser over r. Plain, gzip and bgzip
// (BGZF) input are detected from the leading bytes.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	return newParser(r)
}

func newParser(r io.Reader) (*Parser, error) {
	p := &Parser{}
	if err := p.open(r); err != nil {
		p.Close()
		return nil, err
	}
	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// open wraps r in the decompressor its magic bytes call for.
func (p *Parser) open(r io.Reader) error {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read vcf header: %w", err)
	}

	// gzip magic 1f 8b; BGZF members set FEXTRA
	isGzip := len(magic) == 4 && magic[0] == 0x1f && magic[1] == 0x8b
	switch {
	case isGzip && magic[3]&0x04 != 0:
		bz, err := bgzf.NewReader(br, 1)
		if err != nil {
			return fmt.Errorf("create bgzf reader: %w", err)
		}
		p.closers = append(p.closers, bz)
		p.reader = bufio.NewReader(bz)
	case isGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return fmt.Errorf("create gzip reader: %w", err)
		}
		p.closers = append(p.closers, gz)
		p.reader = bufio.NewReader(gz)
	default:
		p.reader = br
	}
	return nil
}

// readLine returns the next line without its terminator. A final line
// with no newline is returned; io.EOF follows it.
func (p *Parser) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	p.lineNumber++
	return strings.TrimRight(line, "\r\n"), nil
}

// parseHeader reads the ## meta lines and the #CHROM line.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.readLine()
		if errors.Is(err, io.EOF) {
			return &ParseError{Line: p.lineNumber, Message: "no #CHROM header line found"}
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}

		switch {
		case strings.HasPrefix(line, "##"):
			p.header = append(p.header, line)
		case strings.HasPrefix(line, "#CHROM"):
			p.header = append(p.header, line)
			return nil
		default:
			return &ParseError{Line: p.lineNumber, Message: "expected #CHROM header line"}
		}
	}
}

// Next reads the next variant. Blank lines are skipped.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*Variant, error) {
	for {
		line, err := p.readLine()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		if line != "" {
			return p.parseLine(line)
		}
	}
}

// parseLine parses a single VCF data line into a Variant.
func (p *Parser) parseLine(line string) (*Variant, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, p.errorf("expected at least 8 columns, found %d", len(fields))
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || pos < 1 {
		return nil, p.errorf("invalid position: %s", fields[1])
	}
	if fields[3] == "" || fields[4] == "" {
		return nil, p.errorf("empty REF or ALT")
	}

	qual := 0.0
	if fields[5] != "." {
		qual, _ = strconv.ParseFloat(fields[5], 64)
	}

	v := &Variant{
		Chrom:   fields[0],
		Pos:     pos,
		ID:      fields[2],
		Ref:     fields[3],
		Alt:     fields[4],
		Qual:    qual,
		Filter:  fields[6],
		Info:    parseInfo(fields[7]),
		RawInfo: fields[7],
	}
	if len(fields) > 8 {
		v.SampleColumns = strings.Join(fields[8:], "\t")
	}
	return v, nil
}

func (p *Parser) errorf(format string, args ...interface{}) *ParseError {
	return &ParseError{Line: p.lineNumber, Message: fmt.Sprintf(format, args...)}
}

// parseInfo parses the INFO field into a map. Keys without a value are
// flags and map to true.
func parseInfo(info string) map[string]interface{} {
	result := make(map[string]interface{})
	if info == "." || info == "" {
		return result
	}

	for _, kv := range strings.Split(info, ";") {
		if key, val, ok := strings.Cut(kv, "="); ok {
			result[key] = val
		} else if kv != "" {
			result[kv] = true
		}
	}
	return result
}

// SplitMultiAllelic splits a multi-allelic record into one variant per ALT.
// The copies share the INFO map, which must be treated as read-only.
func SplitMultiAllelic(v *Variant) []*Variant {
	alts := strings.Split(v.Alt, ",")
	if len(alts) == 1 {
		return []*Variant{v}
	}

	variants := make([]*Variant, len(alts))
	for i, alt := range alts {
		c := *v
		c.Alt = alt
		variants[i] = &c
	}
	return variants
}

// Header returns the header lines, ## meta lines followed by #CHROM.
func (p *Parser) Header() []string {
	return p.header
}

// LineNumber returns the number of the last line read.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the decompressors and the underlying file, if any.
func (p *Parser) Close() error {
	var err error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if cerr := p.closers[i].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	p.closers = nil
	return err
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
