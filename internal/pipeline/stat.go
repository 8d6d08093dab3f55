package pipeline

import (
	"os"
	"time"
)

type fileInfo struct {
	size    int64
	modTime time.Time
}

func statFile(path string) (fileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileInfo{}, err
	}
	return fileInfo{size: info.Size(), modTime: info.ModTime()}, nil
}
