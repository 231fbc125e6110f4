package legacy

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Identify resolves the product a filename belongs to. Only the basename is
// considered so directory names never influence the match. Exactly one
// product must own a token present in the name.
func Identify(filename string) (Descriptor, error) {
	base := filepath.Base(filename)

	var matches []Descriptor
	for _, desc := range registry {
		for _, token := range desc.Tokens {
			if strings.Contains(base, token) {
				matches = append(matches, desc)
				break
			}
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return Descriptor{}, fmt.Errorf("%w: %s (valid product ids: %s)", ErrUnsupportedProduct, filename, joinIDs(IDs()))
	default:
		ids := make([]ProductID, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, m.ID)
		}
		return Descriptor{}, fmt.Errorf("%w: %s matches %s", ErrAmbiguousProduct, filename, joinIDs(ids))
	}
}

func joinIDs(ids []ProductID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
