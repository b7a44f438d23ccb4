package persistence

import "database/sql"

type OrderRow struct {
	ID string
}

type SqlOrderStore struct {
	db *sql.DB
}

func (s *SqlOrderStore) Insert(row OrderRow) error { return nil }
