// Package animfile reads and writes the .dkanim animation interchange format.
//
// A file is line oriented. Outside of a block only three line kinds carry data:
//
//	sceneUnit <unit>
//	anim <attr> <attr> <node> <hasParent> 0 0;      followed by an animData block
//	static <attr> <attr> <node> <hasParent> <value>
//
// Every other outer line (comments, blank lines, stray braces) is ignored.
package animfile

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

// Extension is the canonical file extension
const Extension = ".dkanim"

const (
	keywordSceneUnit = "sceneUnit "
	keywordAnim      = "anim "
	keywordStatic    = "static "
)

// FormatFloat prints a number in its shortest round-trip form.
// Integral values keep a ".0" suffix so they read as floats.
func FormatFloat(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// FormatBool prints a boolean the way the file format expects ("True"/"False")
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// FormatBit prints a boolean as 0 or 1
func FormatBit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ParseBool accepts True/False in any case and 0/1
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSuffix(s, ";")) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// ParseNumber parses a float field. Boolean attribute values written as
// True/False are read as 1 and 0.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSuffix(s, ";")
	switch strings.ToLower(s) {
	case "true":
		return 1, nil
	case "false":
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// splitFields tokenizes a line the way a shell would, falling back to plain
// whitespace splitting when quoting is unbalanced
func splitFields(line string) []string {
	fields, err := shlex.Split(line)
	if err != nil {
		return strings.Fields(line)
	}
	return fields
}

// trimTerminator strips the trailing ';' of a statement field
func trimTerminator(s string) string {
	return strings.TrimSuffix(s, ";")
}
