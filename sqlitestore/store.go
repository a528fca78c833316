// Package sqlitestore loads signal definitions from a SQLite database.
//
// Expected schema:
//
//	CREATE TABLE signal_definition (
//	    id             TEXT PRIMARY KEY,
//	    object_type    TEXT NOT NULL,
//	    event          TEXT NOT NULL,
//	    subject        TEXT NOT NULL DEFAULT '',
//	    plain_body     TEXT NOT NULL DEFAULT '',
//	    html_body      TEXT NOT NULL DEFAULT '',
//	    from_address   TEXT NOT NULL DEFAULT '',
//	    recipients     TEXT NOT NULL DEFAULT '',
//	    recipients_opt TEXT NOT NULL DEFAULT '',
//	    template       TEXT NOT NULL DEFAULT ''
//	);
//
//	CREATE TABLE signal_constraint (
//	    definition_id TEXT NOT NULL REFERENCES signal_definition(id),
//	    param_1       TEXT NOT NULL,
//	    param_2       TEXT,
//	    comparison    TEXT NOT NULL
//	);
//
// Recipients are stored as a comma-separated list. Rows are read in rowid
// order, so constraints are evaluated in the order they were inserted.
package sqlitestore

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/ezachrisen/mailsignal"
)

// Load reads all signal definitions and their constraints from the
// database. Import a SQLite driver such as github.com/mattn/go-sqlite3 to
// open the *sql.DB.
func Load(db *sql.DB) ([]*mailsignal.Definition, error) {
	rows, err := db.Query(`SELECT id, object_type, event, subject, plain_body, html_body, from_address, recipients, recipients_opt, template FROM signal_definition ORDER BY rowid`)
	if err != nil {
		return nil, errors.Wrap(err, "querying definitions")
	}
	defer rows.Close()

	var defs []*mailsignal.Definition
	index := map[string]*mailsignal.Definition{}

	for rows.Next() {
		var d mailsignal.Definition
		var event, recipients string
		err := rows.Scan(&d.ID, &d.ObjectType, &event, &d.Subject, &d.PlainBody, &d.HTMLBody, &d.From, &recipients, &d.RecipientsOpt, &d.Template)
		if err != nil {
			return nil, errors.Wrap(err, "scanning definition")
		}
		d.Event, err = mailsignal.ParseEventKind(event)
		if err != nil {
			return nil, errors.Wrapf(err, "definition %s", d.ID)
		}
		if recipients != "" {
			d.Recipients = strings.Split(recipients, ",")
		}
		defs = append(defs, &d)
		index[d.ID] = &d
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "reading definitions")
	}

	crows, err := db.Query(`SELECT definition_id, param_1, param_2, comparison FROM signal_constraint ORDER BY rowid`)
	if err != nil {
		return nil, errors.Wrap(err, "querying constraints")
	}
	defer crows.Close()

	for crows.Next() {
		var defID, param1, comparison string
		var param2 sql.NullString
		if err := crows.Scan(&defID, &param1, &param2, &comparison); err != nil {
			return nil, errors.Wrap(err, "scanning constraint")
		}
		d, ok := index[defID]
		if !ok {
			return nil, errors.Errorf("constraint references unknown definition %s", defID)
		}
		c := mailsignal.Constraint{Param1: param1, Comparison: comparison}
		if param2.Valid {
			v := param2.String
			c.Param2 = &v
		}
		d.Constraints = append(d.Constraints, c)
	}
	if err := crows.Err(); err != nil {
		return nil, errors.Wrap(err, "reading constraints")
	}
	return defs, nil
}
