package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
	"github.com/kamal-hamza/dkanim-cli/pkg/config"
	"github.com/kamal-hamza/dkanim-cli/pkg/paths"
)

// transferFlags are the remapping flags shared by import, channels and plot
type transferFlags struct {
	input         string
	search        string
	replace       string
	prefix        string
	topNodesOnly  bool
	explicitPaths bool
	unkeyed       bool
}

func addTransferFlags(cmd *cobra.Command, f *transferFlags) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Animation file to read (default from config)")
	cmd.Flags().StringVar(&f.search, "search", "", "Text to replace in node paths")
	cmd.Flags().StringVar(&f.replace, "replace", "", "Replacement for --search")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "Prefix added to node names")
	cmd.Flags().BoolVar(&f.topNodesOnly, "top-nodes-only", false, "Only prefix the top-most node of each path")
	cmd.Flags().BoolVar(&f.explicitPaths, "explicit-paths", true, "Match nodes by full path instead of short name")
	cmd.Flags().BoolVar(&f.unkeyed, "unkeyed", false, "Also load static (unkeyed) values")
}

// resolve layers the flags the user actually set over the configured defaults
func (f *transferFlags) resolve(cmd *cobra.Command, cfg *config.Config) domain.TransferConfiguration {
	tc := cfg.Transfer()
	flags := cmd.Flags()

	if flags.Changed("input") {
		tc.InputFile = f.input
	}
	tc.InputFile = paths.WithAnimExtension(tc.InputFile)

	if flags.Changed("search") {
		tc.Search = f.search
		tc.UseSearchReplace = true
	}
	if flags.Changed("replace") {
		tc.Replace = f.replace
		tc.UseSearchReplace = true
	}
	if flags.Changed("prefix") {
		tc.Prefix = f.prefix
	}
	if flags.Changed("top-nodes-only") {
		tc.TopNodesOnly = f.topNodesOnly
	}
	if flags.Changed("explicit-paths") {
		tc.LoadExplicitPaths = f.explicitPaths
	}
	if flags.Changed("unkeyed") {
		tc.LoadUnkeyed = f.unkeyed
	}
	return tc
}
