package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/TheCrazyGM/mining-arc/internal/storage/postgres"
)

// RunPostgresMigrations applies the embedded attempt and run schemas.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := sqlFiles(postgresFS, "postgres")
	if err != nil {
		return err
	}

	for _, name := range files {
		sql, err := fs.ReadFile(postgresFS, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if strings.TrimSpace(string(sql)) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}

	return nil
}
