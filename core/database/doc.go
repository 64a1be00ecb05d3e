// Package database handles database connections and schema inspection.
//
// It wraps GORM to open MySQL or SQLite connections from the application's
// configuration. sql sources use the connection to run their queries.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns so a source defined by table name
// can build an explicit column list and derive value kinds from the declared
// column types. QuoteIdentifier quotes names for the connected dialect.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	columns, err := database.GetTableColumns(db, "prices")
package database
