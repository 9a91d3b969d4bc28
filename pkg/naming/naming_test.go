package naming

import (
	"testing"
)

func TestCompileWildcard(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		candidate string
		want      bool
	}{
		{"star matches everything", "*", "pCube1.translateX", true},
		{"star matches empty", "*", "", true},
		{"question mark single char", "Arm?.rotateX", "Arm1.rotateX", true},
		{"question mark second candidate", "Arm?.rotateX", "Arm2.rotateX", true},
		{"substring semantics ignore leading chars", "Arm?.rotateX", "Arm10.rotateX", true},
		{"substring anywhere", "pCube1.*", "foo.pCube1.translateX", true},
		{"case insensitive", "PCUBE1.TRANSLATE*", "|grp|pCube1.translateX", true},
		{"dot is literal", "a.b", "axb", false},
		{"pipe is literal", "|root", "root", false},
		{"no match", "spine*", "arm.rotateX", false},
		{"brackets escaped", "[x]", "attr[x]", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompileWildcard(tt.pattern).MatchString(tt.candidate)
			if got != tt.want {
				t.Errorf("CompileWildcard(%q).MatchString(%q) = %v, want %v", tt.pattern, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestWildcardToRegexp(t *testing.T) {
	if got := WildcardToRegexp("a*b?c.d"); got != `a.*b.c\.d` {
		t.Errorf("WildcardToRegexp() = %q", got)
	}
}

func TestTransform(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		path      string
		hasParent bool
		want      string
	}{
		{
			name: "no options keeps path",
			opts: Options{LoadPaths: true},
			path: "|root|mid|leaf",
			want: "|root|mid|leaf",
		},
		{
			name: "collapse when paths are not loaded",
			opts: Options{LoadPaths: false},
			path: "|root|mid|leaf",
			want: "leaf",
		},
		{
			name: "search and replace in full path",
			opts: Options{UseSearchReplace: true, Search: "L_", Replace: "R_", LoadPaths: true},
			path: "|rig|L_arm|L_hand",
			want: "|rig|R_arm|R_hand",
		},
		{
			name: "search ignored when disabled",
			opts: Options{UseSearchReplace: false, Search: "L_", Replace: "R_", LoadPaths: true},
			path: "|rig|L_arm",
			want: "|rig|L_arm",
		},
		{
			name: "empty search is a no-op",
			opts: Options{UseSearchReplace: true, Search: "", Replace: "R_", LoadPaths: true},
			path: "|rig|L_arm",
			want: "|rig|L_arm",
		},
		{
			name: "prefix every segment",
			opts: Options{Prefix: "grp_", LoadPaths: true},
			path: "|root|mid|leaf",
			want: "|grp_root|grp_mid|grp_leaf",
		},
		{
			name: "prefix bare name",
			opts: Options{Prefix: "grp_", LoadPaths: true},
			path: "leaf",
			want: "grp_leaf",
		},
		{
			name:      "top nodes only, root record",
			opts:      Options{Prefix: "grp_", TopNodesOnly: true, LoadPaths: true},
			path:      "|root",
			hasParent: false,
			want:      "|grp_root",
		},
		{
			name:      "top nodes only, child record prefixes first segment only",
			opts:      Options{Prefix: "grp_", TopNodesOnly: true, LoadPaths: true},
			path:      "|root|mid|leaf",
			hasParent: true,
			want:      "|grp_root|mid|leaf",
		},
		{
			name:      "top nodes only, bare root name",
			opts:      Options{Prefix: "grp_", TopNodesOnly: true, LoadPaths: true},
			path:      "root",
			hasParent: false,
			want:      "grp_root",
		},
		{
			name:      "top nodes only, bare child name untouched",
			opts:      Options{Prefix: "grp_", TopNodesOnly: true, LoadPaths: true},
			path:      "leaf",
			hasParent: true,
			want:      "leaf",
		},
		{
			name:      "replace then prefix then collapse",
			opts:      Options{UseSearchReplace: true, Search: "old", Replace: "new", Prefix: "p_", LoadPaths: false},
			path:      "|old_root|old_leaf",
			hasParent: true,
			want:      "p_new_leaf",
		},
		{
			name:      "top nodes only then collapse drops prefix of root",
			opts:      Options{Prefix: "p_", TopNodesOnly: true, LoadPaths: false},
			path:      "|root|leaf",
			hasParent: true,
			want:      "leaf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTransformer(tt.opts).Transform(tt.path, tt.hasParent)
			if got != tt.want {
				t.Errorf("Transform(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

type fakeScope map[string]bool

func (s fakeScope) IsSelected(key string) bool { return s[key] }

func TestRemap(t *testing.T) {
	tr := NewTransformer(Options{LoadPaths: false})

	res := tr.Remap("|root|mid|leaf", "rotateX", true, nil)
	if res.Skip || res.Node != "leaf" || res.Attribute != "rotateX" {
		t.Errorf("Remap without scope = %+v", res)
	}

	scope := fakeScope{"leaf.rotateX": true}
	if res := tr.Remap("|root|mid|leaf", "rotateX", true, scope); res.Skip {
		t.Error("expected leaf.rotateX to be in scope")
	}
	if res := tr.Remap("|root|mid|leaf", "rotateY", true, scope); !res.Skip {
		t.Error("expected leaf.rotateY to be skipped")
	}
}

func TestCollapse(t *testing.T) {
	cases := map[string]string{
		"|root|mid|leaf": "leaf",
		"leaf":           "leaf",
		"mid|leaf":       "leaf",
		"|":              "",
	}
	for in, want := range cases {
		if got := Collapse(in); got != want {
			t.Errorf("Collapse(%q) = %q, want %q", in, got, want)
		}
	}
}
