package domain

import (
	"context"
	"image"
)

// ProductCache caches built product profiles by barcode
type ProductCache interface {
	Get(ctx context.Context, barcode string) (*ProductProfile, error)
	Set(ctx context.Context, barcode string, profile *ProductProfile) error
	Delete(ctx context.Context, barcode string) error
}

// ProductFetcher looks a barcode up in the public food database
type ProductFetcher interface {
	FetchProduct(ctx context.Context, barcode string) (*RawProductRecord, error)
}

// ReasoningClient sends a prompt to the reasoning service and returns its text
type ReasoningClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// BarcodeDecoder finds every barcode in an image
type BarcodeDecoder interface {
	Decode(img image.Image) ([]string, error)
}

// UploadStore archives uploaded images and returns where they were stored
type UploadStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
}
