package data

import (
	"context"
	"database/sql"

	"github.com/StefanUPB/tng-gtk-common/internal/migrate"
)

// RunMigrations creates the process_records schema by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}
