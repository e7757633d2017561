package main

import (
	"database/sql"

	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/rule"
	"github.com/wbrown/graphcore/graphcore/sqlfn"
)

// buildRegistry declares the demo's rule set: user.name and the
// user.books.* fan-out are answered by sqlfn.SQLQuery against the
// materialized sqlite tables, and user.abbreviation is a plain Go
// function layered on top, the same mix of SQL-backed and native rules
// spec.md's Concrete Scenarios assume.
func buildRegistry(db *sql.DB) *rule.Registry {
	driver := sqlfn.NewSQLDriver(db)
	builder := sqlfn.NewSquirrelBuilder()
	r := rule.NewRegistry()

	userName := sqlfn.NewSQLQuery(
		[]gcpath.Path{gcpath.New("user.id")}, []string{"users.id"},
		[]gcpath.Path{gcpath.New("user.name")},
		[]string{"users"}, []string{"users.name"},
		nil, driver, builder,
	)
	userName.OneColumn, userName.First = true, true
	registerSQL(r, userName, "user.name")

	booksID := sqlfn.NewSQLQuery(
		[]gcpath.Path{gcpath.New("user.id")}, []string{"books.user_id"},
		[]gcpath.Path{gcpath.New("user.books.id")},
		[]string{"books"}, []string{"books.id"},
		nil, driver, builder,
	)
	booksID.OneColumn = true
	registerSQLMany(r, booksID, "user.books.id")

	booksName := sqlfn.NewSQLQuery(
		[]gcpath.Path{gcpath.New("user.books.id")}, []string{"books.id"},
		[]gcpath.Path{gcpath.New("user.books.name")},
		[]string{"books"}, []string{"books.name"},
		nil, driver, builder,
	)
	booksName.OneColumn, booksName.First = true, true
	registerSQL(r, booksName, "user.books.name")

	booksYear := sqlfn.NewSQLQuery(
		[]gcpath.Path{gcpath.New("user.books.id")}, []string{"books.id"},
		[]gcpath.Path{gcpath.New("user.books.year")},
		[]string{"books"}, []string{"books.year"},
		nil, driver, builder,
	)
	booksYear.OneColumn, booksYear.First = true, true
	registerSQL(r, booksYear, "user.books.year")

	_, _ = r.Register([]string{"user.name"}, "user.abbreviation", rule.One, func(a rule.Args) (interface{}, error) {
		return initials(a["name"].(string)), nil
	})

	return r
}

func registerSQL(r *rule.Registry, q *sqlfn.SQLQuery, output string) {
	rl, _ := r.Register(inputNames(q), output, rule.One, q.Function())
	rl.Native = q
}

func registerSQLMany(r *rule.Registry, q *sqlfn.SQLQuery, output string) {
	rl, _ := r.Register(inputNames(q), output, rule.Many, q.Function())
	rl.Native = q
}

func inputNames(q *sqlfn.SQLQuery) []string {
	names := make([]string, 0, len(q.InputPaths))
	for _, p := range q.InputPaths {
		names = append(names, p.String())
	}
	return names
}

func initials(name string) string {
	out := ""
	word := true
	for _, ch := range name {
		if ch == ' ' {
			word = true
			continue
		}
		if word {
			out += string(ch)
			word = false
		}
	}
	return out
}
