package migrations

import (
	"database/sql"
	"time"
)

var tables = []string{
	`
	CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'customer'
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS menu_items (
		id INT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		price BIGINT NOT NULL,
		categories VARCHAR(500) NOT NULL DEFAULT '',
		type VARCHAR(20) NOT NULL DEFAULT 'other',
		available BOOLEAN NOT NULL DEFAULT TRUE
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS orders (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		promo_code VARCHAR(32) NOT NULL DEFAULT '',
		points_redeemed INT NOT NULL DEFAULT 0,
		order_total BIGINT NOT NULL,
		discount_amount BIGINT NOT NULL,
		final_total BIGINT NOT NULL,
		status VARCHAR(20) NOT NULL,
		method VARCHAR(20) NOT NULL,
		hidden BOOLEAN NOT NULL DEFAULT FALSE,
		idempotent_key VARCHAR(255) NULL UNIQUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS order_items (
		id INT AUTO_INCREMENT PRIMARY KEY,
		order_id INT NOT NULL,
		item_id INT NOT NULL,
		title VARCHAR(255) NOT NULL,
		quantity INT NOT NULL,
		unit_price BIGINT NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS order_status_history (
		id INT AUTO_INCREMENT PRIMARY KEY,
		order_id INT NOT NULL,
		status VARCHAR(20) NOT NULL,
		changed_by VARCHAR(20) NOT NULL,
		changed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS promo_codes (
		id INT AUTO_INCREMENT PRIMARY KEY,
		code VARCHAR(32) NOT NULL UNIQUE,
		type VARCHAR(20) NOT NULL,
		value BIGINT NOT NULL,
		valid_from TIMESTAMP NULL DEFAULT NULL,
		valid_until TIMESTAMP NULL DEFAULT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS reward_accounts (
		user_id INT PRIMARY KEY,
		balance INT NOT NULL DEFAULT 0,
		CHECK (balance >= 0)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS favorites (
		user_id INT NOT NULL,
		item_id INT NOT NULL,
		PRIMARY KEY (user_id, item_id)
	);
	`,
}

// AutoMigrate creates all tables if they do not exist, retrying each
// statement while the database is still coming up.
func AutoMigrate(db *sql.DB, retries int) error {
	for _, query := range tables {
		_, err := db.Exec(query)
		for i := 0; err != nil && i < retries; i++ {
			time.Sleep(1 * time.Second)
			_, err = db.Exec(query)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
