// Package output writes search matches.
//
// A Sink receives matches from any number of goroutines. Writes are buffered; Flush
// must be called once the search is done.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/search"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Format selects the output encoding.
type Format uint8

const (
	FormatIDs Format = iota
	FormatFASTA
	FormatJSONL
)

func (f Format) String() string {
	switch f {
	case FormatIDs:
		return "ids"
	case FormatFASTA:
		return "fasta"
	case FormatJSONL:
		return "jsonl"
	default:
		return "unknown"
	}
}

// ParseFormat parses "ids", "fasta" or "jsonl".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "ids", "id":
		return FormatIDs, nil
	case "fasta", "fa":
		return FormatFASTA, nil
	case "jsonl", "json":
		return FormatJSONL, nil
	default:
		return FormatIDs, fmt.Errorf("%w: unknown output format %q", errs.ErrInvalidConfig, name)
	}
}

// Sink consumes matches. Implementations are safe for concurrent use.
type Sink interface {
	Write(m search.Match) error
	Flush() error
}

// New creates the sink for format writing to w.
func New(format Format, w io.Writer) (Sink, error) {
	switch format {
	case FormatIDs:
		return NewIDs(w), nil
	case FormatFASTA:
		return NewFASTA(w, 0), nil
	case FormatJSONL:
		return NewJSONL(w), nil
	default:
		return nil, fmt.Errorf("%w: output format %d", errs.ErrInvalidConfig, format)
	}
}

type lineWriter struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func (l *lineWriter) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.w.Flush()
}

// IDs writes one fragment identifier per line.
type IDs struct {
	lineWriter
}

// NewIDs creates an IDs sink.
func NewIDs(w io.Writer) *IDs {
	return &IDs{lineWriter{w: bufio.NewWriter(w)}}
}

func (s *IDs) Write(m search.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.w.WriteString(m.FragmentID + "\n")

	return err
}

// FASTA writes one record per match: a ">fragment-id" header followed by the bases of
// the fragment.
type FASTA struct {
	lineWriter
	width int
}

// NewFASTA creates a FASTA sink wrapping sequence lines at width bases. A width of
// zero or less writes each sequence on one line.
func NewFASTA(w io.Writer, width int) *FASTA {
	return &FASTA{lineWriter: lineWriter{w: bufio.NewWriter(w)}, width: width}
}

func (s *FASTA) Write(m search.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.WriteString(">" + m.FragmentID + "\n"); err != nil {
		return err
	}

	bases := m.Bases
	for len(bases) > 0 {
		n := len(bases)
		if s.width > 0 {
			n = min(n, s.width)
		}
		if _, err := s.w.Write(bases[:n]); err != nil {
			return err
		}
		if err := s.w.WriteByte('\n'); err != nil {
			return err
		}
		bases = bases[n:]
	}

	return nil
}

// Record is the JSON form of a match.
type Record struct {
	Accession  string `json:"accession"`
	FragmentID string `json:"fragment_id"`
	Position   int    `json:"position"`
	Bases      string `json:"bases,omitempty"`
}

// JSONL writes one JSON object per line.
type JSONL struct {
	lineWriter
	enc *jsoniter.Encoder
}

// NewJSONL creates a JSONL sink.
func NewJSONL(w io.Writer) *JSONL {
	s := &JSONL{lineWriter: lineWriter{w: bufio.NewWriter(w)}}
	s.enc = json.NewEncoder(s.w)

	return s
}

func (s *JSONL) Write(m search.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enc.Encode(Record{
		Accession:  m.Accession,
		FragmentID: m.FragmentID,
		Position:   m.Position,
		Bases:      string(m.Bases),
	})
}

// Collector keeps matches in memory, in arrival order.
type Collector struct {
	mu      sync.Mutex
	matches []search.Match
}

func (c *Collector) Write(m search.Match) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.matches = append(c.matches, m)

	return nil
}

func (c *Collector) Flush() error { return nil }

// Matches returns a copy of the collected matches.
func (c *Collector) Matches() []search.Match {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]search.Match(nil), c.matches...)
}

// IDs returns the fragment identifiers of the collected matches.
func (c *Collector) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, len(c.matches))
	for i, m := range c.matches {
		ids[i] = m.FragmentID
	}

	return ids
}
