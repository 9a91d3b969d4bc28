package animfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
)

// Encoder writes records in file order. Call Flush when done.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder creates an encoder writing to w
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// WriteHeader writes the comment block that opens every exported file
func (e *Encoder) WriteHeader(sceneFile string) error {
	_, err := fmt.Fprintf(e.w, "#Generated by dkanim\n#Written out of %s\n#\n\n", sceneFile)
	return err
}

// WriteSceneUnit declares the linear unit the values were written in
func (e *Encoder) WriteSceneUnit(unit string) error {
	_, err := fmt.Fprintf(e.w, "%s%s\n\n", keywordSceneUnit, unit)
	return err
}

// WriteRecord writes an anim block or a static line depending on the record kind
func (e *Encoder) WriteRecord(rec domain.AnimationRecord) error {
	if rec.Kind == domain.RecordStatic {
		_, err := fmt.Fprintf(e.w, "%s%s %s %s %s %s\n",
			keywordStatic, rec.ShortAttribute, rec.LongAttribute, rec.NodePath,
			FormatBit(rec.HasParent), FormatFloat(rec.StaticValue))
		return err
	}

	if rec.Anim == nil {
		return fmt.Errorf("anim record %s has no curve data", domain.ChannelKey(rec.NodePath, rec.Attribute()))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s %s %s %s 0 0;\n",
		keywordAnim, rec.ShortAttribute, rec.LongAttribute, rec.NodePath, FormatBit(rec.HasParent))
	b.WriteString("animData {\n")
	fmt.Fprintf(&b, "  weighted %s;\n", FormatBool(rec.Anim.Weighted))
	fmt.Fprintf(&b, "  preInfinity %s;\n", rec.Anim.PreInfinity)
	fmt.Fprintf(&b, "  postInfinity %s;\n", rec.Anim.PostInfinity)
	b.WriteString("  keys {\n")
	for _, key := range rec.Anim.Keys {
		b.WriteString("    ")
		b.WriteString(FormatKey(key))
		b.WriteString(";\n")
	}
	b.WriteString("  }\n")
	b.WriteString("}\n")

	_, err := e.w.WriteString(b.String())
	return err
}

// FormatKey renders the fields of one key line without indentation or terminator
func FormatKey(key domain.Keyframe) string {
	fields := []string{
		FormatFloat(key.Time),
		FormatFloat(key.Value),
		key.InTangentType,
		key.OutTangentType,
		FormatBool(key.TangentsLocked),
		FormatBool(key.WeightLocked),
		FormatBit(key.Breakdown),
	}
	if key.HasFixedIn() {
		fields = append(fields, FormatFloat(key.InAngle), FormatFloat(key.InWeight))
	}
	if key.HasFixedOut() {
		fields = append(fields, FormatFloat(key.OutAngle), FormatFloat(key.OutWeight))
	}
	return strings.Join(fields, " ")
}

// Flush writes any buffered output
func (e *Encoder) Flush() error {
	return e.w.Flush()
}
