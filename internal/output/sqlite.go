// Copyright 2018 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package output

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/hartwigmedical/hmftools-sub094/internal/genomics"
)

const sqliteDriver = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS window_counts (
	chromosome TEXT    NOT NULL,
	ordinal    INTEGER NOT NULL,
	position   INTEGER NOT NULL,
	count      INTEGER NOT NULL,
	PRIMARY KEY (chromosome, position)
);
`

// SQLite stores window counts in a SQLite database.  Chromosomes keep their
// table order through the ordinal column.
type SQLite struct {
	db      *sql.DB
	ordinal int
}

// OpenSQLite creates (or reuses) the database at path and records the
// window size.
func OpenSQLite(path string, windowSize int64) (*SQLite, error) {
	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %v", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema in %s: %v", path, err)
	}
	if _, err := db.Exec(`INSERT OR REPLACE INTO metadata (key, value) VALUES ('windowSize', ?)`,
		strconv.FormatInt(windowSize, 10)); err != nil {
		db.Close()
		return nil, fmt.Errorf("recording window size: %v", err)
	}
	return &SQLite{db: db}, nil
}

// Append stores the counts of one chromosome in a single transaction.
func (s *SQLite) Append(chromosome string, counts []genomics.ReadCount) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %v", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO window_counts (chromosome, ordinal, position, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %v", err)
	}
	defer stmt.Close()
	for _, count := range counts {
		if _, err := stmt.Exec(chromosome, s.ordinal, count.Position, count.Count); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting %s: %v", count, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %v", chromosome, err)
	}
	s.ordinal++
	return nil
}

// Counts returns the stored counts of chromosome in position order.
func (s *SQLite) Counts(chromosome string) ([]genomics.ReadCount, error) {
	rows, err := s.db.Query(`SELECT position, count FROM window_counts WHERE chromosome = ? ORDER BY position`, chromosome)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %v", chromosome, err)
	}
	defer rows.Close()
	var counts []genomics.ReadCount
	for rows.Next() {
		count := genomics.ReadCount{Chromosome: chromosome}
		if err := rows.Scan(&count.Position, &count.Count); err != nil {
			return nil, fmt.Errorf("scanning %s: %v", chromosome, err)
		}
		counts = append(counts, count)
	}
	return counts, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
