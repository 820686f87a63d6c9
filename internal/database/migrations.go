package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// migration is a named, idempotent schema step.
type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "create_restaurants",
		sql: `
			CREATE TABLE IF NOT EXISTS restaurants (
				id BIGSERIAL PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				country TEXT NOT NULL DEFAULT '',
				city TEXT NOT NULL DEFAULT '',
				address TEXT NOT NULL DEFAULT '',
				postal_code TEXT NOT NULL DEFAULT '',
				active_menu_id BIGINT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
	},
	{
		name: "create_users",
		sql: `
			CREATE TABLE IF NOT EXISTS users (
				id BIGSERIAL PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				firstname TEXT NOT NULL,
				lastname TEXT NOT NULL,
				employer_id BIGINT REFERENCES restaurants(id) ON DELETE SET NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
	},
	{
		name: "create_menus",
		sql: `
			CREATE TABLE IF NOT EXISTS menus (
				id BIGSERIAL PRIMARY KEY,
				restaurant_id BIGINT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				currency CHAR(3) NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_menus_restaurant_id ON menus(restaurant_id);
			CREATE UNIQUE INDEX IF NOT EXISTS uq_menus_one_active_per_restaurant
				ON menus(restaurant_id) WHERE is_active`,
	},
	{
		name: "link_restaurant_active_menu",
		sql: `
			DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint WHERE conname = 'fk_restaurants_active_menu'
				) THEN
					ALTER TABLE restaurants
						ADD CONSTRAINT fk_restaurants_active_menu
						FOREIGN KEY (active_menu_id) REFERENCES menus(id) ON DELETE SET NULL;
				END IF;
			END $$`,
	},
	{
		name: "create_images",
		sql: `
			CREATE TABLE IF NOT EXISTS images (
				id BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				url TEXT NOT NULL,
				menu_id BIGINT REFERENCES menus(id) ON DELETE CASCADE,
				table_id INTEGER CHECK (table_id > 0),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_images_menu_id ON images(menu_id)`,
	},
	{
		name: "create_categories",
		sql: `
			CREATE TABLE IF NOT EXISTS categories (
				id BIGSERIAL PRIMARY KEY,
				menu_id BIGINT NOT NULL REFERENCES menus(id),
				restaurant_id BIGINT NOT NULL REFERENCES restaurants(id),
				name TEXT NOT NULL,
				currency CHAR(3) NOT NULL,
				image_id BIGINT REFERENCES images(id),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_categories_menu_id ON categories(menu_id)`,
	},
	{
		name: "create_products",
		sql: `
			CREATE TABLE IF NOT EXISTS products (
				id BIGSERIAL PRIMARY KEY,
				category_id BIGINT NOT NULL REFERENCES categories(id),
				restaurant_id BIGINT NOT NULL REFERENCES restaurants(id),
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				price NUMERIC(10,2) NOT NULL CHECK (price >= 0),
				currency CHAR(3) NOT NULL,
				image_id BIGINT REFERENCES images(id),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_products_category_id ON products(category_id);
			CREATE INDEX IF NOT EXISTS idx_products_restaurant_id ON products(restaurant_id)`,
	},
	{
		name: "create_orders",
		sql: `
			CREATE TABLE IF NOT EXISTS orders (
				id BIGSERIAL PRIMARY KEY,
				restaurant_id BIGINT NOT NULL REFERENCES restaurants(id),
				user_id BIGINT NOT NULL REFERENCES users(id),
				table_id INTEGER NOT NULL CHECK (table_id > 0),
				total_price NUMERIC(12,2) NOT NULL CHECK (total_price >= 0),
				currency CHAR(3) NOT NULL,
				employer_name TEXT NOT NULL,
				customer_name TEXT NOT NULL,
				employee_name TEXT,
				accepted_at TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_orders_restaurant_id ON orders(restaurant_id, created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id, created_at DESC)`,
	},
	{
		name: "create_ordered_products",
		sql: `
			CREATE TABLE IF NOT EXISTS ordered_products (
				id BIGSERIAL PRIMARY KEY,
				order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
				product_id BIGINT NOT NULL,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				quantity INTEGER NOT NULL CHECK (quantity > 0),
				price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
				image_url TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_ordered_products_order_id ON ordered_products(order_id)`,
	},
}

// Migrate applies the schema. Every step is idempotent, so it is safe to run
// on each startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			logger.Error().Err(err).Str("migration", m.name).Msg("failed to apply migration")
			return fmt.Errorf("failed to apply migration %s: %w", m.name, err)
		}
		logger.Debug().Str("migration", m.name).Msg("migration applied")
	}

	logger.Info().Int("count", len(migrations)).Msg("database schema is up to date")
	return nil
}
