package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	auth "github.com/goliatone/go-authd"
)

func init() {
	Migrations.MustRegister(up_20260901000001, down_20260901000001)
}

// up_20260901000001 creates the users table. The email column carries
// the unique constraint concurrent sign-ups rely on.
func up_20260901000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating users table...")

	_, err := db.NewCreateTable().
		Model((*auth.User)(nil)).
		IfNotExists().
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	_, err = db.NewCreateIndex().
		Model((*auth.User)(nil)).
		Index("idx_users_created_at").
		Column("created_at").
		IfNotExists().
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to create users created_at index: %w", err)
	}

	fmt.Println(" OK")
	return nil
}

// down_20260901000001 drops the users table
func down_20260901000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping users table...")

	_, err := db.NewDropTable().
		Model((*auth.User)(nil)).
		IfExists().
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to drop users table: %w", err)
	}

	fmt.Println(" OK")
	return nil
}
