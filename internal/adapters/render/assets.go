package render

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/okian/labsite/pkg/fsutil"
	"github.com/okian/labsite/pkg/logger"
)

// CopyAssets mirrors the assets directory into <output>/assets.
func (e *Engine) CopyAssets(ctx context.Context, src string) error {
	e.log.Info(ctx, "copying assets", logger.String("from", src))
	if !fsutil.Exists(src) {
		return fmt.Errorf("%w: assets directory not found: %s", ErrAssets, src)
	}
	dst := filepath.Join(e.outputDir, "assets")
	n, err := fsutil.CopyTree(ctx, src, dst)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAssets, err)
	}
	e.log.Info(ctx, "assets copied", logger.String("to", dst), logger.Int("files", n))
	return nil
}
