package migrations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	chstore "github.com/TheCrazyGM/mining-arc/internal/storage/clickhouse"
)

// RunClickhouseMigrations creates the history database if needed and
// applies the embedded schema files. The returned connection is bound to
// the target database and ready for the aggregate store.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, error) {
	dbName, err := databaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}

	if err := bootstrapDatabase(ctx, dsn, dbName); err != nil {
		return nil, err
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse db: %w", err)
	}

	files, err := sqlFiles(clickhouseFS, "clickhouse")
	if err != nil {
		conn.Close()
		return nil, err
	}

	for _, name := range files {
		if err := applyClickhouseFile(ctx, conn, name); err != nil {
			conn.Close()
			return nil, err
		}
	}

	return conn, nil
}

// bootstrapDatabase issues CREATE DATABASE over a connection with no
// database selected; the target may not exist yet.
func bootstrapDatabase(ctx context.Context, dsn, dbName string) error {
	admin, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return fmt.Errorf("connect clickhouse admin: %w", err)
	}
	defer admin.Close()

	if err := admin.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", dbName)); err != nil {
		return fmt.Errorf("create database %s: %w", dbName, err)
	}
	return nil
}

func applyClickhouseFile(ctx context.Context, conn *chstore.Conn, name string) error {
	data, err := fs.ReadFile(clickhouseFS, name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}
	sql := string(data)

	if err := checkNoQuotedSemicolons(sql); err != nil {
		return fmt.Errorf("validate migration %s: %w", name, err)
	}

	// The driver rejects multi-statement Exec; run them one at a time.
	for _, stmt := range splitStatements(sql) {
		if err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

// splitStatements breaks a migration file on semicolons after dropping
// blank and comment lines. checkNoQuotedSemicolons must pass first: the
// split is a plain byte scan with no quote awareness.
func splitStatements(sql string) []string {
	var kept strings.Builder
	for _, line := range strings.Split(sql, "\n") {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "--") {
			continue
		}
		kept.WriteString(line)
		kept.WriteByte('\n')
	}

	var stmts []string
	for _, chunk := range strings.Split(kept.String(), ";") {
		if s := strings.TrimSpace(chunk); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// checkNoQuotedSemicolons rejects SQL with a semicolon inside a
// single-quoted literal, which the statement splitter cannot handle.
// Doubled quotes are the literal's escape form.
func checkNoQuotedSemicolons(sql string) error {
	quoted := false
	for i := 0; i < len(sql); i++ {
		switch sql[i] {
		case '\'':
			if quoted && i+1 < len(sql) && sql[i+1] == '\'' {
				i++
				continue
			}
			quoted = !quoted
		case ';':
			if quoted {
				return errors.New("semicolon inside string literal")
			}
		}
	}
	return nil
}

func databaseFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		return "", errors.New("clickhouse dsn missing database")
	}
	return db, nil
}
