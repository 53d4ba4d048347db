package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema lists the CREATE statements of the five tables, in creation order.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id CHAR(36) NOT NULL PRIMARY KEY,
	email VARCHAR(255) NOT NULL UNIQUE,
	username VARCHAR(100) NOT NULL,
	role VARCHAR(16) NOT NULL DEFAULT 'user',
	profile JSON NULL,
	password_hash VARCHAR(255) NOT NULL,
	created_at DATETIME NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS annonces (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	titre VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	auteur_id CHAR(36) NOT NULL,
	auteur_username VARCHAR(100) NULL,
	date_creation DATETIME(3) NOT NULL,
	type_bien VARCHAR(16) NOT NULL,
	adresse VARCHAR(255) NOT NULL DEFAULT '',
	ville VARCHAR(120) NOT NULL DEFAULT '',
	surface DOUBLE NOT NULL DEFAULT 0,
	pieces INT NOT NULL DEFAULT 1,
	date_disponibilite VARCHAR(10) NOT NULL DEFAULT '',
	meuble BOOLEAN NOT NULL DEFAULT FALSE,
	parking BOOLEAN NOT NULL DEFAULT FALSE,
	chauffage VARCHAR(32) NOT NULL DEFAULT '',
	source_energie VARCHAR(32) NOT NULL DEFAULT '',
	dpe_conso DOUBLE NOT NULL DEFAULT 0,
	dpe_lettre CHAR(1) NOT NULL DEFAULT 'D',
	ges_emission DOUBLE NOT NULL DEFAULT 0,
	ges_lettre CHAR(1) NOT NULL DEFAULT 'D',
	conso_finale DOUBLE NOT NULL DEFAULT 0,
	cout_energie_min DOUBLE NOT NULL DEFAULT 0,
	cout_energie_max DOUBLE NOT NULL DEFAULT 0,
	date_indexation_energie VARCHAR(10) NOT NULL DEFAULT '',
	photos LONGTEXT NULL,
	plan LONGTEXT NULL,
	loyer_base DOUBLE NULL,
	charges DOUBLE NULL,
	depot_garantie DOUBLE NULL,
	encadrement_loyers BOOLEAN NOT NULL DEFAULT FALSE,
	loyer_reference_majore DOUBLE NULL,
	INDEX idx_annonces_date (date_creation)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	"CREATE TABLE IF NOT EXISTS messages (\n" +
		"\tid BIGINT AUTO_INCREMENT PRIMARY KEY,\n" +
		"\tsender VARCHAR(100) NOT NULL,\n" +
		"\tcontent TEXT NOT NULL,\n" +
		"\ttimestamp DATETIME(3) NOT NULL,\n" +
		"\t`read` BOOLEAN NOT NULL DEFAULT FALSE,\n" +
		"\tINDEX idx_messages_ts (timestamp)\n" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
	`CREATE TABLE IF NOT EXISTS tasks (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	assigned_to VARCHAR(100) NOT NULL,
	is_done BOOLEAN NOT NULL DEFAULT FALSE,
	due_date DATETIME NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS expenses (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	amount DOUBLE NOT NULL,
	paid_by VARCHAR(100) NOT NULL,
	date DATETIME(3) NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing table. Existing tables are left untouched.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
