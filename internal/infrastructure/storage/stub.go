package storage

import (
	"context"
	"strings"

	catalogapp "github.com/shopflux/storefront/internal/application/catalog"
)

// StaticImageResolver serves image references without object storage.
// Object keys are joined onto BaseURL, or returned unchanged when BaseURL is empty.
type StaticImageResolver struct {
	BaseURL string
}

// NewStaticImageResolver creates a resolver for images hosted under baseURL
func NewStaticImageResolver(baseURL string) *StaticImageResolver {
	return &StaticImageResolver{BaseURL: strings.TrimRight(baseURL, "/")}
}

var _ catalogapp.ImageResolver = (*StaticImageResolver)(nil)

// ResolveImageURL never fails
func (r *StaticImageResolver) ResolveImageURL(_ context.Context, ref string) (string, error) {
	if ref == "" || IsDirectURL(ref) || r.BaseURL == "" {
		return ref, nil
	}
	return r.BaseURL + "/" + strings.TrimLeft(ref, "/"), nil
}
