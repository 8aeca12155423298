package migrations

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the registered migration set, applied by `authd db migrate`
var Migrations = migrate.NewMigrations()
