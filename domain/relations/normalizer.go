package relations

import (
	"fmt"
)

// NormalizedResponse is the response envelope: primary data plus every entity
// it references. Relations is nil when nothing was referenced.
type NormalizedResponse struct {
	Data      any          `json:"data"`
	Relations RelationsMap `json:"relations"`
}

// Normalizer decorates primary data and relations with their links.
type Normalizer struct {
	links *LinkBuilder
}

// NewNormalizer creates a normalizer.
func NewNormalizer(links *LinkBuilder) *Normalizer {
	return &Normalizer{links: links}
}

// Normalize builds the envelope for data, which is nil, an Entity or a slice of
// entities sharing one variant. Inputs are not modified: every entity in the
// result is a decorated copy, and links are computed against rels as given.
func (n *Normalizer) Normalize(data any, rels RelationsMap) (*NormalizedResponse, error) {
	out := &NormalizedResponse{}

	switch v := data.(type) {
	case nil:
	case Entity:
		out.Data = v.decorate(n.links, rels)
	case []Entity:
		if err := homogeneous(v); err != nil {
			return nil, err
		}
		decorated := make([]Entity, len(v))
		for i, e := range v {
			decorated[i] = e.decorate(n.links, rels)
		}
		out.Data = decorated
	default:
		return nil, ErrInvalidData.WithDetails(map[string]any{"type": fmt.Sprintf("%T", data)})
	}

	if rels != nil {
		out.Relations = make(RelationsMap, len(rels))
		for collection, byID := range rels {
			decorated := make(map[string]Entity, len(byID))
			for id, e := range byID {
				decorated[id] = e.decorate(n.links, rels)
			}
			out.Relations[collection] = decorated
		}
	}
	return out, nil
}

func homogeneous(entities []Entity) error {
	for i, e := range entities {
		if e == nil {
			return ErrInvalidData.WithDetails(map[string]any{"index": i})
		}
		if i > 0 && !sameVariant(entities[0], e) {
			return ErrInvalidData.WithMessage("Data entities must share one type").WithDetails(map[string]any{
				"index":    i,
				"expected": entities[0].Collection(),
				"got":      e.Collection(),
			})
		}
	}
	return nil
}
