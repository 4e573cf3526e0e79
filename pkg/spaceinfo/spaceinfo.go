// Package spaceinfo reports disk usage for store data directories.
package spaceinfo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/disk"
	"github.com/sirupsen/logrus"
)

// FreeSpace returns the free bytes on the volume holding path.
func FreeSpace(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, fmt.Errorf("disk usage for %s: %w", path, err)
	}
	return usage.Free, nil
}

// CalculateDirectorySize calculates the total size of files within a directory
func CalculateDirectorySize(path string) (size int64, err error) {
	err = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return
}

// DisplayDiskUsage logs the disk usage of every configured path.
func DisplayDiskUsage(paths []string, log *logrus.Logger) error {
	if len(paths) == 0 {
		return fmt.Errorf("no path provided in configuration")
	}

	for _, path := range paths {
		usage, err := disk.Usage(path)
		if err != nil {
			return fmt.Errorf("disk usage stats for %s: %w", path, err)
		}

		pathSize, err := CalculateDirectorySize(path)
		if err != nil {
			return fmt.Errorf("directory size for %s: %w", path, err)
		}

		log.WithFields(logrus.Fields{
			"path":       path,
			"total_gb":   fmt.Sprintf("%.2f", float64(usage.Total)/1e9),
			"used_gb":    fmt.Sprintf("%.2f", float64(usage.Used)/1e9),
			"free_gb":    fmt.Sprintf("%.2f", float64(usage.Free)/1e9),
			"path_usage": fmt.Sprintf("%.2f", float64(pathSize)/1e9),
		}).Info("Disk usage for store path")
	}

	return nil
}
