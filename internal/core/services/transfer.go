package services

import (
	"context"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
	"github.com/kamal-hamza/dkanim-cli/internal/core/ports"
	"github.com/kamal-hamza/dkanim-cli/pkg/naming"
)

// RemapOptions builds the path transformer options from a transfer configuration
func RemapOptions(cfg domain.TransferConfiguration) naming.Options {
	return naming.Options{
		Search:           cfg.Search,
		Replace:          cfg.Replace,
		UseSearchReplace: cfg.UseSearchReplace,
		Prefix:           cfg.Prefix,
		TopNodesOnly:     cfg.TopNodesOnly,
		LoadPaths:        cfg.LoadExplicitPaths,
	}
}

// cancelled polls both the progress sink and the context
func cancelled(ctx context.Context, progress ports.ProgressSink) bool {
	return ctx.Err() != nil || progress.IsCancelled()
}

// distinct returns items without duplicates, keeping first occurrence order
func distinct(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
