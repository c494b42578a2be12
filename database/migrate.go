package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate applies the idempotent constraint pass on top of AutoMigrate:
// - Money column types (NUMERIC(12,2))
// - The partial unique index enforcing at most one DRAFT quotation per
//   (user_id, network_id) — the race-safe backstop for find-or-create
// - Basic CHECK constraints (non-negative amounts, positive quantities)
// These statements are Postgres-specific; tests run against sqlite and
// exercise the service-level guards instead.
func Migrate() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		// --- Enforce money columns as NUMERIC(12,2) (idempotent ALTERs) ---
		alters := []string{
			`ALTER TABLE products        ALTER COLUMN public_price TYPE numeric(12,2)`,
			`ALTER TABLE product_prices  ALTER COLUMN amount       TYPE numeric(12,2)`,
			`ALTER TABLE quotations      ALTER COLUMN total_amount TYPE numeric(12,2)`,
			`ALTER TABLE quotation_items ALTER COLUMN unit_price   TYPE numeric(12,2)`,
			`ALTER TABLE orders          ALTER COLUMN total_amount TYPE numeric(12,2)`,
			`ALTER TABLE order_lines     ALTER COLUMN unit_price   TYPE numeric(12,2)`,
			`ALTER TABLE payments        ALTER COLUMN amount       TYPE numeric(12,2)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Partial unique index: one DRAFT per (user, network) ---
		if err := tx.Exec(
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_quotations_one_draft
			 ON quotations (user_id, network_id) WHERE status = 'DRAFT'`,
		).Error; err != nil {
			return fmt.Errorf("draft uniqueness index failed: %w", err)
		}

		// --- Helpful indexes (idempotent) ---
		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_quotation_items_quotation ON quotation_items (quotation_id)`,
			`CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines (order_id)`,
			`CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders (user_id, created_at)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Basic CHECK constraints (idempotent) ---
		checks := []string{
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'product_prices'::regclass
					  AND conname  = 'chk_product_prices_amount_nonneg'
				) THEN
					ALTER TABLE product_prices
					ADD CONSTRAINT chk_product_prices_amount_nonneg
					CHECK (amount >= 0);
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'quotation_items'::regclass
					  AND conname  = 'chk_quotation_items_quantity_pos'
				) THEN
					ALTER TABLE quotation_items
					ADD CONSTRAINT chk_quotation_items_quantity_pos
					CHECK (quantity >= 1);
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'order_lines'::regclass
					  AND conname  = 'chk_order_lines_quantity_pos'
				) THEN
					ALTER TABLE order_lines
					ADD CONSTRAINT chk_order_lines_quantity_pos
					CHECK (quantity >= 1);
				END IF;
			END $$;`,
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'payments'::regclass
					  AND conname  = 'chk_payments_amount_nonneg'
				) THEN
					ALTER TABLE payments
					ADD CONSTRAINT chk_payments_amount_nonneg
					CHECK (amount >= 0);
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}
