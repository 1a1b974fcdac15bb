package ports

import (
	"context"
	"errors"
	"io"

	"dispatch/internal/core/domain/model/kernel"
)

// Goods-image validation errors.
var (
	// ErrImageTypeNotAllowed is returned for file extensions outside the
	// allow-list.
	ErrImageTypeNotAllowed = errors.New("image type is not allowed")
	// ErrImageTooLarge is returned when the upload exceeds the size limit.
	ErrImageTooLarge = errors.New("image exceeds the maximum allowed size")
)

// GoodsImageStore validates and stores the photo of the goods attached to
// an order, returning the path under which the image was stored.
type GoodsImageStore interface {
	Store(ctx context.Context, orderID kernel.UUID, filename string, content io.Reader, size int64) (string, error)
}
