// Package job reads reconciliation job files.
//
// A job is a YAML document naming the two sources, the clip column, the
// presence switches and an ordered mapping of per-column rules:
//
//	name: eod-prices
//	baseline:
//	  type: csv
//	  path: baseline.csv
//	  key: [date]
//	candidate:
//	  type: sql
//	  table: prices
//	  key: [date]
//	order_by: date
//	columns:
//	  note: skip
//	  volume: equal
//	  close: {check: abs_tol, tol: 0.01, sort: desc}
//	  "^px_": {check: rel_tol, tol: 0.001, regex: true}
//
// Column rules keep their file order, which is the order checks run in.
package job
