package main

import (
	"database/sql"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// user and book are the toy facts seed.go plants in badger before
// materializing them into the sqlite demo database.
type user struct {
	id   int
	name string
}

type book struct {
	id     int
	userID int
	name   string
	year   int
}

var demoUsers = []user{
	{id: 1, name: "John Smith"},
	{id: 2, name: "Jane Doe"},
}

var demoBooks = []book{
	{id: 1, userID: 1, name: "The Go Programming Language", year: 2015},
	{id: 2, userID: 1, name: "Effective Go", year: 2018},
	{id: 3, userID: 1, name: "Concurrency in Go", year: 2017},
	{id: 4, userID: 2, name: "The Pragmatic Programmer", year: 1999},
}

// openBadger opens an in-memory badger instance. The demo has no need for
// the fact store to outlive one run, so it skips build-testdb's on-disk
// path entirely and asks badger for an ephemeral one instead.
func openBadger() (*badger.DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return badger.Open(opts)
}

// seedBadger writes every demo user and book as a flat key/value fact,
// mirroring build-testdb's "assert rows, then read them back" shape
// without pulling in the teacher's full datom/index machinery.
func seedBadger(db *badger.DB) error {
	return db.Update(func(txn *badger.Txn) error {
		for _, u := range demoUsers {
			key := []byte(fmt.Sprintf("user:%d:name", u.id))
			if err := txn.Set(key, []byte(u.name)); err != nil {
				return err
			}
		}
		for _, b := range demoBooks {
			prefix := fmt.Sprintf("book:%d:", b.id)
			if err := txn.Set([]byte(prefix+"user_id"), []byte(fmt.Sprintf("%d", b.userID))); err != nil {
				return err
			}
			if err := txn.Set([]byte(prefix+"name"), []byte(b.name)); err != nil {
				return err
			}
			if err := txn.Set([]byte(prefix+"year"), []byte(fmt.Sprintf("%d", b.year))); err != nil {
				return err
			}
		}
		return nil
	})
}

// materializeSQLite reads the facts back out of badger and loads them into
// an in-memory sqlite database, the demo's stand-in for the production
// table a real deployment's sqlfn.SQLQuery rules would query directly.
// Reading back rather than writing from demoUsers/demoBooks directly keeps
// badger genuinely in the loop instead of decorative.
func materializeSQLite(badgerDB *badger.DB, sqlDB *sql.DB) error {
	schema := `
		CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
		CREATE TABLE books (id INTEGER PRIMARY KEY, user_id INTEGER NOT NULL, name TEXT NOT NULL, year INTEGER NOT NULL);
	`
	if _, err := sqlDB.Exec(schema); err != nil {
		return fmt.Errorf("graphcore-demo: creating schema: %w", err)
	}

	return badgerDB.View(func(txn *badger.Txn) error {
		users := map[int]string{}
		books := map[int]map[string]string{}

		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())
			var value string
			if err := item.Value(func(v []byte) error {
				value = string(v)
				return nil
			}); err != nil {
				return err
			}

			var id int
			var field string
			kind := ""
			if n, _ := fmt.Sscanf(key, "user:%d:%s", &id, &field); n == 2 {
				kind = "user"
			} else if n, _ := fmt.Sscanf(key, "book:%d:%s", &id, &field); n == 2 {
				kind = "book"
			}

			switch kind {
			case "user":
				users[id] = value
			case "book":
				if books[id] == nil {
					books[id] = map[string]string{}
				}
				books[id][field] = value
			}
		}

		for id, name := range users {
			if _, err := sqlDB.Exec(`INSERT INTO users (id, name) VALUES (?, ?)`, id, name); err != nil {
				return err
			}
		}
		for id, fields := range books {
			if _, err := sqlDB.Exec(`INSERT INTO books (id, user_id, name, year) VALUES (?, ?, ?, ?)`,
				id, fields["user_id"], fields["name"], fields["year"]); err != nil {
				return err
			}
		}
		return nil
	})
}
