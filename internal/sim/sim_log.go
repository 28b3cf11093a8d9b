package sim

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// SimLogEntry is one recorded simulation event.
type SimLogEntry struct {
	Tick     int
	Unit     string  // ID label e.g. "G1", "G1.4", or "--" for global events
	Category string  // goal, agent, world, snapshot
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] G1     goal      pop              move(100,0 -> 1.00,0.00)
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-6s %-9s %-16s %s",
		e.Tick, e.Unit, e.Category, e.Key, e.Value)
}

// SimLog collects structured events from the world and its groups. It keeps
// everything unless WithLimit is set; the viewer keeps its own ring buffer.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
	logger  *zap.Logger
	limit   int
	dropped int // entries trimmed by limit
}

// NewSimLog creates a SimLog. If verbose is true, per-agent arrival entries
// are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// WithLogger mirrors every recorded entry to l at debug level.
func (sl *SimLog) WithLogger(l *zap.Logger) *SimLog {
	sl.logger = l
	return sl
}

// WithLimit caps the number of retained entries; older ones are dropped.
// Zero means unbounded.
func (sl *SimLog) WithLimit(n int) *SimLog {
	sl.limit = n
	return sl
}

// Add records a new entry. Agent-level entries are dropped unless verbose.
func (sl *SimLog) Add(tick int, unit, category, key, value string, numVal float64) {
	if category == "agent" && !sl.verbose {
		return
	}
	e := SimLogEntry{
		Tick:     tick,
		Unit:     unit,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	}
	sl.entries = append(sl.entries, e)
	if sl.limit > 0 && len(sl.entries) > sl.limit {
		over := len(sl.entries) - sl.limit
		sl.entries = append(sl.entries[:0], sl.entries[over:]...)
		sl.dropped += over
	}
	if sl.logger != nil {
		sl.logger.Debug(category+"."+key,
			zap.Int("tick", tick),
			zap.String("unit", unit),
			zap.String("value", value),
			zap.Float64("num", numVal),
		)
	}
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Total returns how many entries have ever been recorded, trimmed ones
// included. It is the cursor to pass to Since.
func (sl *SimLog) Total() int {
	return sl.dropped + len(sl.entries)
}

// Since returns the retained entries recorded after the first n, where n
// counts every entry ever recorded.
func (sl *SimLog) Since(n int) []SimLogEntry {
	i := max(n-sl.dropped, 0)
	if i >= len(sl.entries) {
		return nil
	}
	return sl.entries[i:]
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterUnit returns entries for a specific unit label.
func (sl *SimLog) FilterUnit(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Unit == label {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the world.
func (sl *SimLog) Summary(w *World) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", w.Tick())
	for _, g := range w.Groups() {
		moving := 0
		for _, s := range g.Entities().State {
			if s == Marching {
				moving++
			}
		}
		fmt.Fprintf(&sb, "%-4s goal=%-28s center=(%.1f,%.1f) r=%.1f spread=%.1f marching=%d/%d\n",
			g.ID(), g.ActiveGoal(), g.Center().X, g.Center().Y, g.Radius(), g.Spread(), moving, g.Len())
	}
	fmt.Fprintf(&sb, "Goal pops: %d  holds: %d\n", sl.CountCategory("goal", "pop"), sl.CountCategory("goal", "hold"))
	return sb.String()
}
