package db

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

//go:embed schema.sql
var schema string

// SchemaStatements returns the schema split into single statements.
func SchemaStatements() []string {
	var statements []string
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		statements = append(statements, stmt)
	}
	return statements
}

// Migrate creates the tables and indexes that don't exist yet.
func Migrate(ctx context.Context, conn Conn) error {
	statements := SchemaStatements()
	for i, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	log.Debugf("db schema applied, %d statements", len(statements))
	return nil
}
