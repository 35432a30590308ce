package mock

import (
	"context"

	"github.com/fwojciec/locrag"
)

var (
	_ locrag.PostWriter     = (*PostWriter)(nil)
	_ locrag.ImageGenerator = (*ImageGenerator)(nil)
)

// PostWriter is a mock implementation of locrag.PostWriter.
type PostWriter struct {
	WritePostsFn func(ctx context.Context, storeID string, req *locrag.PostRequest) (string, error)
}

func (w *PostWriter) WritePosts(ctx context.Context, storeID string, req *locrag.PostRequest) (string, error) {
	return w.WritePostsFn(ctx, storeID, req)
}

// ImageGenerator is a mock implementation of locrag.ImageGenerator.
type ImageGenerator struct {
	GenerateImagesFn func(ctx context.Context, topic, tone string, count int) ([]*locrag.Image, error)
}

func (g *ImageGenerator) GenerateImages(ctx context.Context, topic, tone string, count int) ([]*locrag.Image, error) {
	return g.GenerateImagesFn(ctx, topic, tone, count)
}
