package animfile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
)

// FileStats is the result of a quick pre-scan, used to size progress reporting
type FileStats struct {
	Lines   int
	Records int
	Anim    int
	Static  int
}

// Header is a record header found by ScanHeaders. Block contents are not read.
type Header struct {
	Line   int
	Record domain.AnimationRecord
}

// ScanHeaders calls fn for every well-formed record header in r, in file order.
// Headers whose fields do not parse are skipped like any other non-record line.
func ScanHeaders(r io.Reader, fn func(Header) error) (FileStats, error) {
	var stats FileStats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		stats.Lines++
		tok := classify(scanner.Text(), stats.Lines)
		if !tok.isRecordHeader() {
			continue
		}
		rec, err := headerRecord(tok)
		if err != nil {
			continue
		}

		stats.Records++
		if rec.Kind == domain.RecordAnimated {
			stats.Anim++
		} else {
			stats.Static++
		}

		if fn != nil {
			if err := fn(Header{Line: tok.line, Record: rec}); err != nil {
				return stats, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("failed to scan animation file: %w", err)
	}
	return stats, nil
}

// Stat counts lines and well-formed record headers without parsing blocks
func Stat(r io.Reader) (FileStats, error) {
	return ScanHeaders(r, nil)
}
