package resolve

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"

	json "github.com/segmentio/encoding/json"

	"github.com/harvx/rewrite/internal/plan"
)

// rgRecord mirrors the subset of an external match-producer's (ripgrep
// --json-style) NDJSON record shapes this decoder recognizes. Records whose
// "type" is not "begin" or "match" do not advance the edit and are ignored.
type rgRecord struct {
	Type string       `json:"type"`
	Data rgRecordData `json:"data"`
}

type rgRecordData struct {
	Path         *rgArbitraryData `json:"path,omitempty"`
	LineNumber   *int64           `json:"line_number,omitempty"`
	AbsOffset    *int64           `json:"absolute_offset,omitempty"`
	Submatches   []rgSubmatch     `json:"submatches,omitempty"`
}

// rgArbitraryData is either UTF-8 text or a losslessly-decoded byte
// sequence, matching how the upstream tool encodes paths that may not be
// valid UTF-8.
type rgArbitraryData struct {
	Text  *string `json:"text,omitempty"`
	Bytes *string `json:"bytes,omitempty"` // base64-encoded
}

// Resolve returns the opaque platform byte string this value represents,
// decoding losslessly. Paths retain these original bytes for filesystem
// syscalls regardless of UTF-8 validity.
func (a rgArbitraryData) Resolve() ([]byte, error) {
	if a.Text != nil {
		return []byte(*a.Text), nil
	}
	if a.Bytes != nil {
		decoded, err := base64.StdEncoding.DecodeString(*a.Bytes)
		if err != nil {
			return nil, fmt.Errorf("decoding byte-sequence path: %w", err)
		}
		return decoded, nil
	}
	return nil, fmt.Errorf("arbitrary data record has neither text nor bytes")
}

type rgSubmatch struct {
	Match rgArbitraryData `json:"match"`
	Start int64           `json:"start"`
	End   int64           `json:"end"`
}

// DecodeMatchStream parses a newline-delimited JSON match-producer stream
// from r into InputItems. Malformed JSON lines cause the whole run to fail
// with an input error before any write. Records that are not "begin" or
// "match" are ignored. A "begin" record establishes
// the current path for subsequent "match" records until the next "begin".
func DecodeMatchStream(r io.Reader) ([]plan.InputItem, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var items []plan.InputItem
	var currentPath []byte
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec rgRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("malformed match-stream record at line %d: %w", lineNo, err)
		}

		switch rec.Type {
		case "begin":
			if rec.Data.Path == nil {
				return nil, fmt.Errorf("begin record at line %d missing path", lineNo)
			}
			pathBytes, err := rec.Data.Path.Resolve()
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			currentPath = pathBytes
		case "match":
			if len(currentPath) == 0 {
				if rec.Data.Path == nil {
					return nil, fmt.Errorf("match record at line %d has no path (missing begin record)", lineNo)
				}
				pathBytes, err := rec.Data.Path.Resolve()
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				currentPath = pathBytes
			}
			if len(rec.Data.Submatches) == 0 {
				// No concrete span to act on; ignore, matches the
				// "records that do not advance the edit are ignored" rule.
				continue
			}
			if rec.Data.AbsOffset == nil || rec.Data.LineNumber == nil {
				return nil, fmt.Errorf("match record at line %d missing absolute_offset or line_number", lineNo)
			}
			sm := rec.Data.Submatches[0]
			// absolute_offset is the byte offset of the start of the
			// matched line; submatch start/end are relative to that line.
			// Their sum is the match's byte offset relative to file start.
			items = append(items, plan.InputItem{
				Kind:             plan.ItemMatchSpan,
				AbsPath:          string(currentPath),
				OriginalSpelling: string(currentPath),
				ByteOffset:       *rec.Data.AbsOffset + sm.Start,
				ByteLength:       sm.End - sm.Start,
				LineNumber:       int(*rec.Data.LineNumber),
			})
		default:
			// "end", "summary", "context", and any unrecognized category:
			// ignored, they do not advance the edit.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading match stream: %w", err)
	}

	return items, nil
}
