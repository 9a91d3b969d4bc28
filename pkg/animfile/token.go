package animfile

import (
	"strings"
)

// tokenKind classifies one physical line
type tokenKind int

const (
	tokOther tokenKind = iota
	tokBlank
	tokSceneUnit
	tokAnimHeader
	tokStaticHeader
	tokAnimData
	tokWeighted
	tokPreInfinity
	tokPostInfinity
	tokKeysOpen
	tokClose
)

func (k tokenKind) String() string {
	switch k {
	case tokBlank:
		return "blank"
	case tokSceneUnit:
		return "sceneUnit"
	case tokAnimHeader:
		return "anim"
	case tokStaticHeader:
		return "static"
	case tokAnimData:
		return "animData"
	case tokWeighted:
		return "weighted"
	case tokPreInfinity:
		return "preInfinity"
	case tokPostInfinity:
		return "postInfinity"
	case tokKeysOpen:
		return "keys"
	case tokClose:
		return "close"
	default:
		return "other"
	}
}

type token struct {
	kind   tokenKind
	line   int
	text   string
	fields []string
}

// classify tokenizes a line. Outer keywords are only recognized at column zero;
// block keywords may be indented by any amount.
func classify(text string, line int) token {
	tok := token{kind: tokOther, line: line, text: text}

	switch {
	case strings.HasPrefix(text, keywordAnim):
		tok.kind = tokAnimHeader
		tok.fields = splitFields(text)
		return tok
	case strings.HasPrefix(text, keywordStatic):
		tok.kind = tokStaticHeader
		tok.fields = splitFields(text)
		return tok
	case strings.HasPrefix(text, keywordSceneUnit):
		tok.kind = tokSceneUnit
		tok.fields = splitFields(text)
		return tok
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		tok.kind = tokBlank
		return tok
	}
	tok.fields = strings.Fields(trimmed)

	switch {
	case trimmed == "}":
		tok.kind = tokClose
	case strings.HasPrefix(trimmed, "animData"):
		tok.kind = tokAnimData
	case strings.HasPrefix(trimmed, "weighted "):
		tok.kind = tokWeighted
	case strings.HasPrefix(trimmed, "preIn"):
		tok.kind = tokPreInfinity
	case strings.HasPrefix(trimmed, "postIn"):
		tok.kind = tokPostInfinity
	case strings.HasPrefix(trimmed, "keys {"):
		tok.kind = tokKeysOpen
	}
	return tok
}

// isRecordHeader reports whether a header token has an accepted field count
func (t token) isRecordHeader() bool {
	if t.kind != tokAnimHeader && t.kind != tokStaticHeader {
		return false
	}
	return len(t.fields) == 6 || len(t.fields) == 7
}

// value returns the second field without its terminator
func (t token) value() string {
	if len(t.fields) < 2 {
		return ""
	}
	return trimTerminator(t.fields[1])
}
