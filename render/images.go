package render

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/disintegration/imaging"
)

var pageImageRe = regexp.MustCompile(`^sanitised(?:-page(\d+))?\.png$`)

// CollectPageImages finds the rendered page rasters in dir and renames
// them to zero-padded names so lexical order is page order.
func CollectPageImages(dir string, log *slog.Logger) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var images []string
	for _, entry := range entries {
		m := pageImageRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		page := 1
		if m[1] != "" {
			page, _ = strconv.Atoi(m[1])
		}
		newName := fmt.Sprintf("sanitised-page%04d.png", page)
		newPath := filepath.Join(dir, newName)
		if newName != entry.Name() {
			if err := os.Rename(filepath.Join(dir, entry.Name()), newPath); err != nil {
				return nil, fmt.Errorf("rename page image: %w", err)
			}
			log.Debug("renamed page image", "from", entry.Name(), "to", newName)
		}
		images = append(images, newPath)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("no rendered page images found in %s", dir)
	}
	sort.Strings(images)
	return images, nil
}

// ImageWidth returns the pixel width of the first page raster. All
// pages are assumed to share it.
func ImageWidth(path string) (int, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	return img.Bounds().Dx(), nil
}
