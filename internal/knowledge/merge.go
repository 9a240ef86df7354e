package knowledge

import (
	"strings"

	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/pkg/textnorm"
)

// MaxItems caps every category of the knowledge base.
const MaxItems = 400

// Merge returns the union of base and delta per category. Items already in
// base keep their order, novel delta items are appended in order, duplicates
// are dropped case- and whitespace-insensitively and each category keeps its
// first MaxItems entries.
func Merge(base, delta entity.KnowledgeBase) entity.KnowledgeBase {
	var merged entity.KnowledgeBase
	for _, c := range entity.Categories {
		merged.SetItems(c, union(base.Items(c), delta.Items(c)))
	}
	merged.Facts = union(base.Facts, delta.Facts)
	return merged
}

func union(lists ...[]string) []string {
	var (
		out  []string
		seen = make(map[string]struct{})
	)
	for _, list := range lists {
		for _, item := range list {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			key := textnorm.Key(item)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, item)
			if len(out) == MaxItems {
				return out
			}
		}
	}
	return out
}
