// Package uploads stores goods images on the local filesystem. Files are
// renamed to an order-derived name so uploads cannot collide or traverse
// outside the upload directory.
package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// MaxImageSize is the upper bound for one goods image, in bytes.
const MaxImageSize int64 = 5 << 20

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// GoodsImageStore implements ports.GoodsImageStore on top of a local
// directory.
type GoodsImageStore struct {
	dir string
}

// NewGoodsImageStore creates a store rooted at dir, creating the
// directory if needed.
func NewGoodsImageStore(dir string) (*GoodsImageStore, error) {
	if dir == "" {
		return nil, errs.NewValueIsRequiredError("dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &GoodsImageStore{dir: dir}, nil
}

// Store saves one goods image and returns the path it was stored under.
// The declared size is checked against MaxImageSize before reading, and
// enforced again while copying in case the caller undersold it.
func (s *GoodsImageStore) Store(
	ctx context.Context,
	orderID kernel.UUID,
	filename string,
	content io.Reader,
	size int64,
) (string, error) {
	if err := orderID.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ports.ErrImageTypeNotAllowed, ext)
	}
	if size > MaxImageSize {
		return "", fmt.Errorf("%w: %d bytes", ports.ErrImageTooLarge, size)
	}

	path := filepath.Join(s.dir, "goods_"+orderID.String()+ext)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}

	written, err := io.Copy(file, io.LimitReader(content, MaxImageSize+1))
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written > MaxImageSize {
		err = fmt.Errorf("%w: over %d bytes", ports.ErrImageTooLarge, MaxImageSize)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}

	return path, nil
}
