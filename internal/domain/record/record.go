// Package record is the in-memory form of one directory's watched ledger.
//
// Ledger text is one base name per LF-terminated line. Parsing trims a
// trailing CR, skips blank lines, counts a final line that lacks its
// terminator, and keeps only the first occurrence of a repeated name.
// Encoding always writes "name\n".
package record

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/corey/lastwatched/internal/ports"
)

// Record is an ordered, duplicate-free list of watched file names.
// Order carries no meaning but is preserved across rewrites.
type Record struct {
	entries []string
}

// New returns a record holding names, dropping repeats.
func New(names ...string) *Record {
	r := &Record{entries: make([]string, 0, len(names))}
	for _, n := range names {
		r.Add(n)
	}
	return r
}

// Parse decodes ledger bytes. Fails with ports.ErrEncoding if data is not
// valid UTF-8; nothing is silently dropped.
func Parse(data []byte) (*Record, error) {
	if !utf8.Valid(data) {
		return nil, &ports.OpError{Op: "parse ledger", Kind: ports.ErrEncoding}
	}
	r := &Record{}
	for len(data) > 0 {
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			data = nil
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) == 0 {
			continue
		}
		r.Add(string(line))
	}
	return r, nil
}

// ValidName reports whether name can be stored as a single ledger line.
func ValidName(name string) bool {
	return name != "" && !strings.ContainsAny(name, "\r\n")
}

// Contains is an exact, case-sensitive membership test.
func (r *Record) Contains(name string) bool {
	for _, e := range r.entries {
		if e == name {
			return true
		}
	}
	return false
}

// Add appends name if absent. Returns false when name was already present.
func (r *Record) Add(name string) bool {
	if r.Contains(name) {
		return false
	}
	r.entries = append(r.entries, name)
	return true
}

// Without returns a copy of r with every occurrence of name removed, and
// whether anything was removed. r itself is not modified.
func (r *Record) Without(name string) (*Record, bool) {
	out := &Record{entries: make([]string, 0, len(r.entries))}
	for _, e := range r.entries {
		if e != name {
			out.entries = append(out.entries, e)
		}
	}
	return out, len(out.entries) != len(r.entries)
}

// Entries returns a copy of the names in insertion order.
func (r *Record) Entries() []string {
	out := make([]string, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of recorded names.
func (r *Record) Len() int {
	return len(r.entries)
}

// WriteTo encodes every entry as one LF-terminated line.
func (r *Record) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, e := range r.entries {
		m, err := w.Write(Line(e))
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Line returns the encoded ledger line for name.
func Line(name string) []byte {
	b := make([]byte, 0, len(name)+1)
	b = append(b, name...)
	return append(b, '\n')
}
