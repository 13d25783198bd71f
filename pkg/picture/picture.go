// Package picture resolves and fetches product picture references.
package picture

import (
	"context"
	"fmt"
	"strings"

	"adforge/pkg/imageutil"
	"adforge/pkg/request"
)

// Image is a normalized product image ready for model submission.
type Image struct {
	Bytes    []byte
	MIMEType string
}

// Resolver turns a catalog picture reference into a fetchable URL.
// References may be absolute URLs or site-relative paths; the convention is
// environment-specific, so resolution is pluggable.
type Resolver interface {
	Resolve(ref string) string
}

// PrefixResolver resolves references that start with a known site-relative
// prefix against a base URL, and passes everything else through unchanged.
type PrefixResolver struct {
	Prefix  string
	BaseURL string
}

func (r *PrefixResolver) Resolve(ref string) string {
	if r.Prefix != "" && strings.HasPrefix(ref, r.Prefix) {
		return strings.TrimSuffix(r.BaseURL, "/") + ref
	}
	return ref
}

// Fetcher downloads picture references and normalizes them to JPEG.
type Fetcher struct {
	rc       *request.Client
	resolver Resolver
}

// NewFetcher creates a Fetcher.
func NewFetcher(rc *request.Client, resolver Resolver) *Fetcher {
	return &Fetcher{rc: rc, resolver: resolver}
}

// Fetch retrieves and normalizes the image behind a picture reference.
// An empty reference yields (nil, nil). Errors here are expected to be
// treated as "no image" by the caller; a missing picture never blocks a job.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (*Image, error) {
	if ref == "" {
		return nil, nil
	}

	u := f.resolver.Resolve(ref)
	body, err := f.rc.Get(ctx, u, "img:"+u)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image %s: %w", u, err)
	}

	data, mime, err := imageutil.ToJPEG(body)
	if err != nil {
		return nil, fmt.Errorf("failed to process image %s: %w", u, err)
	}

	return &Image{Bytes: data, MIMEType: mime}, nil
}
