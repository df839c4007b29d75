package inline

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"
)

var zipSignature = []byte{'P', 'K', 0x03, 0x04}

// isArchiveFile checks file content, not extension - old collections often
// carry zip archives under arbitrary names.
func isArchiveFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	magic := make([]byte, len(zipSignature))
	if _, err := io.ReadFull(f, magic); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			// too short to be an archive
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(magic, zipSignature), nil
}

func isDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// collectDirEntries returns regular files under dir in natural name order, so
// "page2.html" sorts before "page10.html".
func collectDirEntries(dir string, log *zap.Logger) []string {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if info.Mode().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		log.Warn("Unable to finish directory walk", zap.String("dir", dir), zap.Error(err))
	}
	sort.Sort(natural.StringSlice(files))
	return files
}
