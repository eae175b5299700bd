package cargo

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
)

// Selection is the tie-break applied when several candidate records or
// lines announce a binary. Cargo gives no ordering guarantee, so the choice
// is explicit configuration rather than an accident of iteration order.
type Selection string

const (
	SelectFirst Selection = "first"
	SelectLast  Selection = "last"
)

// NormalizeSelection maps user input to a valid Selection, empty if invalid.
func NormalizeSelection(s string) Selection {
	switch Selection(strings.ToLower(strings.TrimSpace(s))) {
	case SelectFirst:
		return SelectFirst
	case SelectLast:
		return SelectLast
	}
	return ""
}

// compilerMessage is the JSON wire shape of a cargo `--message-format=json`
// artifact record, reduced to the fields extraction needs. It owns the
// serialization contract independently of cargo's full message schema.
type compilerMessage struct {
	Reason    string   `json:"reason"`
	Profile   *profile `json:"profile"`
	Filenames []string `json:"filenames"`
}

type profile struct {
	Test bool `json:"test"`
}

// ExtractFromMessages scans line-delimited JSON compiler messages for
// artifacts built with the test profile and returns the selected artifact's
// first filename, trimmed. found is false when no record matches. Lines not
// starting with '{' are skipped: cargo interleaves human-readable progress
// on stderr and this scanner receives the combined stream. A line that does
// start a record but is not valid JSON yields ErrMalformedRecord.
func ExtractFromMessages(output string, sel Selection) (path string, found bool, err error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] != '{' {
			continue
		}
		var msg compilerMessage
		if jerr := json.Unmarshal([]byte(line), &msg); jerr != nil {
			return "", false, fmt.Errorf("%w: line %d: %w", ErrMalformedRecord, lineNo, jerr)
		}
		if msg.Profile == nil || !msg.Profile.Test || len(msg.Filenames) == 0 {
			continue
		}
		path = strings.TrimSpace(msg.Filenames[0])
		found = true
		if sel != SelectLast {
			return path, true, nil
		}
	}
	if serr := scanner.Err(); serr != nil {
		return "", false, fmt.Errorf("scan output: %w", serr)
	}
	return path, found, nil
}

// DefaultMarker is the substring announcing a produced executable in plain
// (non-JSON) cargo output, e.g. `Executable unittests src/lib.rs (target/..)`.
const DefaultMarker = "Executable"

// ExtractFromLog scans plain log output for lines containing the marker
// word and returns the selected line's last whitespace token, normalized.
// This mode never fails; absence of a match is ("", false).
func ExtractFromLog(output, marker string, sel Selection) (path string, found bool) {
	if marker == "" {
		marker = DefaultMarker
	}
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, marker) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		candidate := normalizeCandidate(fields[len(fields)-1])
		if candidate == "" {
			continue
		}
		path = candidate
		found = true
		if sel != SelectLast {
			return path, true
		}
	}
	return path, found
}

// normalizeCandidate trims whitespace and strips a single enclosing pair of
// parentheses, then quotes or backticks. Applying it twice yields the same
// result.
func normalizeCandidate(s string) string {
	s = strings.TrimSpace(s)
	s = stripPair(s, '(', ')')
	s = stripPair(s, '"', '"')
	s = stripPair(s, '`', '`')
	return strings.TrimSpace(s)
}

func stripPair(s string, open, closing byte) string {
	if len(s) >= 2 && s[0] == open && s[len(s)-1] == closing {
		return s[1 : len(s)-1]
	}
	return s
}
