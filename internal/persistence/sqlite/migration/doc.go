// Package migration applies versioned SQL files to a SQLite database.
//
// Migration files live in an fs.FS (normally an embed.FS compiled into the
// binary) and are named {version}_{description}.sql, for example
// "001_initial_schema.sql". Applied versions are recorded in the
// schema_migrations table so each file runs exactly once.
//
// Example usage:
//
//	manager := migration.NewManager(migration.NewFileScanner(files, "migrations"), migration.NewSQLiteExecutor(db), logger)
//	if err := manager.Run(ctx); err != nil {
//		return err
//	}
package migration
