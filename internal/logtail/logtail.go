package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const stdTimeLayout = "2006/01/02 15:04:05"

// Read returns at most maxLines from the end of the file at path; zero or
// a negative maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count, idx := 0, 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed activity log line.
type Entry struct {
	Time    time.Time
	Source  string            // "syncer", "sim", ...
	Fields  map[string]string // key=value pairs, quotes removed
	Message string            // text that is not a key=value pair
	Raw     string
}

// Failed reports whether the entry carries an err field.
func (e Entry) Failed() bool {
	_, ok := e.Fields["err"]
	return ok
}

// Parse splits a line written by the standard logger with "source: k=v"
// content. Lines that do not follow the layout keep their text in Message.
func Parse(line string) Entry {
	e := Entry{Raw: line, Fields: map[string]string{}}
	rest := line
	if len(rest) >= len(stdTimeLayout) {
		if ts, err := time.ParseInLocation(stdTimeLayout, rest[:len(stdTimeLayout)], time.Local); err == nil {
			e.Time = ts
			rest = strings.TrimSpace(rest[len(stdTimeLayout):])
		}
	}
	if src, after, ok := strings.Cut(rest, ": "); ok && !strings.ContainsAny(src, " =") {
		e.Source = src
		rest = after
	}

	var words []string
	for _, tok := range splitFields(rest) {
		key, value, ok := strings.Cut(tok, "=")
		if !ok || key == "" {
			words = append(words, tok)
			continue
		}
		if unquoted, err := strconv.Unquote(value); err == nil {
			value = unquoted
		}
		e.Fields[key] = value
	}
	e.Message = strings.Join(words, " ")
	return e
}

// splitFields splits on spaces outside double quotes.
func splitFields(s string) []string {
	var (
		out     []string
		cur     strings.Builder
		quoted  bool
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quoted:
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == ' ' && !quoted:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// Filter keeps the entries whose raw text contains query, ignoring case.
// An empty query keeps everything.
func Filter(entries []Entry, query string) []Entry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Raw), query) {
			out = append(out, e)
		}
	}
	return out
}
