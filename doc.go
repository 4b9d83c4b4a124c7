// Package tradehistory builds a single trade history ledger out of the
// exports of several brokers and a currency transfer service.
//
// Each export format has its own columns, encoding and preamble. The package
// turns them into one canonical CSV, auditable row by row:
//   - Adapters: one per export format, mapping native columns to canonical
//     ones and remembering the raw row each transaction comes from.
//   - Normalizers: dates, amounts, trade types, currencies and account types
//     written in many ways become canonical values, or null.
//   - Merge: all adapted tables become one ledger sorted by trade date.
//   - Join: FX rates, a name to code crosswalk and code corrections are
//     applied to the ledger, misses are reported, never fatal.
//   - Valuation: every transaction gets a JPY amount, or a reason why not.
//
// Problems that do not stop a run are returned as Diagnostics next to the
// ledger. Positions, chart data and summaries are computed from the ledger
// and an adjusted close price table.
//
// This package is the logic of the `trh` command-line tool.
package tradehistory
