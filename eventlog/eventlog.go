// Package eventlog is the simulation's append-only diagnostic ring buffer.
package eventlog

import "fmt"

// MaxEntries bounds the ring buffer; the oldest entry is overwritten once
// full.
const MaxEntries = 4096

// MaxLength truncates any single entry, prefix included.
const MaxLength = 200

// Stamp is the season/time prefix attached to every entry, supplied by the
// caller (worldtime/weather) rather than read from a global clock so this
// package stays dependency-free and unit-testable in isolation.
type Stamp struct {
	SeasonAbbr   string // 3-letter season abbreviation, e.g. "Spr"
	DayInSeason  int    // 1-based
	Hour, Minute int
}

func (s Stamp) prefix() string {
	return fmt.Sprintf("[%s D%d %02d:%02d] ", s.SeasonAbbr, s.DayInSeason, s.Hour, s.Minute)
}

// Log is a fixed-capacity append-only ring buffer of timestamped strings.
type Log struct {
	entries [MaxEntries]string
	head    int // next write position
	count   int // total entries, capped at MaxEntries
}

// New returns an empty Log.
func New() *Log { return &Log{} }

// Append formats msg (fmt.Sprintf style) with stamp's prefix and appends
// it, evicting the oldest entry if the buffer is full.
func (l *Log) Append(stamp Stamp, format string, args ...interface{}) {
	entry := stamp.prefix() + fmt.Sprintf(format, args...)
	if len(entry) > MaxLength {
		entry = entry[:MaxLength]
	}
	l.entries[l.head] = entry
	l.head = (l.head + 1) % MaxEntries
	if l.count < MaxEntries {
		l.count++
	}
}

// AppendRaw appends entry verbatim, with no prefix applied and no length
// truncation — used when restoring previously formatted entries from a
// save stream.
func (l *Log) AppendRaw(entry string) {
	l.entries[l.head] = entry
	l.head = (l.head + 1) % MaxEntries
	if l.count < MaxEntries {
		l.count++
	}
}

// Clear empties the log.
func (l *Log) Clear() {
	l.head = 0
	l.count = 0
}

// Count returns the number of entries currently held.
func (l *Log) Count() int { return l.count }

// Get returns the entry at index (0 = oldest) and true, or "", false if
// index is out of range.
func (l *Log) Get(index int) (string, bool) {
	if index < 0 || index >= l.count {
		return "", false
	}
	start := 0
	if l.count == MaxEntries {
		start = l.head
	}
	return l.entries[(start+index)%MaxEntries], true
}

// All returns every entry, oldest first.
func (l *Log) All() []string {
	out := make([]string, 0, l.count)
	for i := 0; i < l.count; i++ {
		e, _ := l.Get(i)
		out = append(out, e)
	}
	return out
}
