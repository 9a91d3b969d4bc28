package animfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
)

// ItemKind tells what an Item carries
type ItemKind int

const (
	ItemSceneUnit ItemKind = iota
	ItemRecord
)

// Item is one outer construct of a file: a scene unit declaration or a full record
type Item struct {
	Kind ItemKind
	// Line is the line number of the header that started the item
	Line   int
	Unit   string
	Record domain.AnimationRecord
}

// SyntaxError reports a line the decoder could not make sense of inside a block
type SyntaxError struct {
	Line int
	Msg  string
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

type decodeState int

const (
	stateTop decodeState = iota
	stateAnimData
	stateKeys
)

// Decoder reads items from an animation file one at a time
type Decoder struct {
	scanner *bufio.Scanner
	line    int
	pending *token
	state   decodeState
}

// NewDecoder creates a decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Decoder{scanner: scanner}
}

// Line returns the number of physical lines consumed so far
func (d *Decoder) Line() int {
	return d.line
}

func (d *Decoder) next() (token, bool, error) {
	if d.pending != nil {
		tok := *d.pending
		d.pending = nil
		return tok, true, nil
	}
	if !d.scanner.Scan() {
		return token{}, false, d.scanner.Err()
	}
	d.line++
	return classify(d.scanner.Text(), d.line), true, nil
}

func (d *Decoder) unread(tok token) {
	d.pending = &tok
}

// Next returns the next item, or io.EOF once the input is exhausted.
// Headers with a field count other than 6 or 7 are skipped like any other
// non-record line.
func (d *Decoder) Next() (*Item, error) {
	d.state = stateTop
	for {
		tok, ok, err := d.next()
		if err != nil {
			return nil, fmt.Errorf("failed to read animation file: %w", err)
		}
		if !ok {
			return nil, io.EOF
		}

		switch tok.kind {
		case tokSceneUnit:
			unit := tok.value()
			if unit == "" {
				continue
			}
			return &Item{Kind: ItemSceneUnit, Line: tok.line, Unit: unit}, nil

		case tokStaticHeader:
			if !tok.isRecordHeader() {
				continue
			}
			rec, err := headerRecord(tok)
			if err != nil {
				return nil, err
			}
			value, err := ParseNumber(tok.fields[5])
			if err != nil {
				return nil, &SyntaxError{Line: tok.line, Msg: "bad static value", Err: err}
			}
			rec.StaticValue = value
			return &Item{Kind: ItemRecord, Line: tok.line, Record: rec}, nil

		case tokAnimHeader:
			if !tok.isRecordHeader() {
				continue
			}
			rec, err := headerRecord(tok)
			if err != nil {
				return nil, err
			}
			rec.Anim = &domain.AnimData{}
			if err := d.readAnimBlock(&rec); err != nil {
				return nil, err
			}
			return &Item{Kind: ItemRecord, Line: tok.line, Record: rec}, nil
		}
	}
}

// readAnimBlock consumes the animData block following an anim header.
// The record ends when the animData block closes or when another header
// shows up first.
func (d *Decoder) readAnimBlock(rec *domain.AnimationRecord) error {
	d.state = stateAnimData
	for {
		tok, ok, err := d.next()
		if err != nil {
			return fmt.Errorf("failed to read animation file: %w", err)
		}
		if !ok {
			if rec.HasKeysBlock && d.state == stateAnimData {
				// keys closed, only the animData brace is missing
				d.state = stateTop
				return nil
			}
			return &SyntaxError{Line: d.line, Msg: "unterminated anim block", Err: io.ErrUnexpectedEOF}
		}

		switch d.state {
		case stateAnimData:
			switch tok.kind {
			case tokWeighted:
				weighted, err := ParseBool(tok.value())
				if err != nil {
					return &SyntaxError{Line: tok.line, Msg: "bad weighted flag", Err: err}
				}
				rec.Anim.Weighted = weighted
			case tokPreInfinity:
				rec.Anim.PreInfinity = tok.value()
			case tokPostInfinity:
				rec.Anim.PostInfinity = tok.value()
			case tokKeysOpen:
				rec.HasKeysBlock = true
				d.state = stateKeys
			case tokClose:
				d.state = stateTop
				return nil
			case tokAnimHeader, tokStaticHeader, tokSceneUnit:
				d.unread(tok)
				d.state = stateTop
				return nil
			}

		case stateKeys:
			switch tok.kind {
			case tokClose:
				d.state = stateAnimData
			case tokBlank:
				continue
			default:
				key, err := parseKey(tok)
				if err != nil {
					return err
				}
				rec.Anim.Keys = append(rec.Anim.Keys, key)
			}
		}
	}
}

func headerRecord(tok token) (domain.AnimationRecord, error) {
	hasParent, err := ParseBool(tok.fields[4])
	if err != nil {
		return domain.AnimationRecord{}, &SyntaxError{Line: tok.line, Msg: "bad parent flag", Err: err}
	}
	kind := domain.RecordAnimated
	if tok.kind == tokStaticHeader {
		kind = domain.RecordStatic
	}
	node := trimTerminator(tok.fields[3])
	if node == "" {
		return domain.AnimationRecord{}, &SyntaxError{Line: tok.line, Msg: "empty node path"}
	}
	return domain.AnimationRecord{
		Kind:           kind,
		ShortAttribute: tok.fields[1],
		LongAttribute:  tok.fields[2],
		NodePath:       node,
		HasParent:      hasParent,
	}, nil
}

// parseKey reads "<time> <value> <in> <out> <tanLock> <weightLock> <breakdown>"
// followed by the in pair when the in tangent is fixed, then the out pair when
// the out tangent is fixed
func parseKey(tok token) (domain.Keyframe, error) {
	fields := make([]string, 0, len(tok.fields))
	for _, f := range tok.fields {
		if f = trimTerminator(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) < 7 {
		return domain.Keyframe{}, &SyntaxError{Line: tok.line, Msg: fmt.Sprintf("key needs at least 7 fields, got %d", len(fields))}
	}

	var key domain.Keyframe
	var err error
	bad := func(what string, err error) error {
		return &SyntaxError{Line: tok.line, Msg: "bad " + what, Err: err}
	}

	if key.Time, err = ParseNumber(fields[0]); err != nil {
		return key, bad("time", err)
	}
	if key.Value, err = ParseNumber(fields[1]); err != nil {
		return key, bad("value", err)
	}
	key.InTangentType = fields[2]
	key.OutTangentType = fields[3]
	if key.TangentsLocked, err = ParseBool(fields[4]); err != nil {
		return key, bad("tangent lock", err)
	}
	if key.WeightLocked, err = ParseBool(fields[5]); err != nil {
		return key, bad("weight lock", err)
	}
	if key.Breakdown, err = ParseBool(fields[6]); err != nil {
		return key, bad("breakdown flag", err)
	}

	rest := fields[7:]
	pair := func(side string) (float64, float64, error) {
		if len(rest) < 2 {
			return 0, 0, bad(side+" tangent", errors.New("missing angle/weight pair"))
		}
		angle, err := ParseNumber(rest[0])
		if err != nil {
			return 0, 0, bad(side+" angle", err)
		}
		weight, err := ParseNumber(rest[1])
		if err != nil {
			return 0, 0, bad(side+" weight", err)
		}
		rest = rest[2:]
		return angle, weight, nil
	}

	if key.HasFixedIn() {
		if key.InAngle, key.InWeight, err = pair("in"); err != nil {
			return key, err
		}
	}
	if key.HasFixedOut() {
		if key.OutAngle, key.OutWeight, err = pair("out"); err != nil {
			return key, err
		}
	}
	return key, nil
}

// ReadAll decodes every item of r
func ReadAll(r io.Reader) ([]Item, error) {
	dec := NewDecoder(r)
	var items []Item
	for {
		item, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return items, err
		}
		items = append(items, *item)
	}
}
