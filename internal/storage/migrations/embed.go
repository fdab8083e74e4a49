// Package migrations embeds the payout store schemas and applies them at
// startup. Files run in lexical order and are written to be idempotent.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed postgres/*.sql
var postgresFS embed.FS

//go:embed clickhouse/*.sql
var clickhouseFS embed.FS

// sqlFiles lists the .sql entries under dir in apply order, paths
// relative to the embed root.
func sqlFiles(fsys embed.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		files = append(files, dir+"/"+e.Name())
	}
	sort.Strings(files)
	return files, nil
}
