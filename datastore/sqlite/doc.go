/*
Package sqlite provides an embedded datastore.Client on SQLite, using the
pure-Go modernc.org/sqlite driver.

All namespaces and sets share one table, keyed by (namespace, set_name,
id_kind, id_key). Integer and string ids are kept apart by id_kind; integer
ids are stored in a sortable hex form so scans return records in id order.
Bins are stored as a JSON document, so filters and projections are applied
in Go after each page is read.

	client, err := sqlite.New("records.db")
	if err != nil {
	    return err
	}
	defer client.Close()

Use ":memory:" for a private in-memory database.
*/
package sqlite
