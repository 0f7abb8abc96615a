// Package contracts describes the boundaries of the kanban board: the
// persisted slot layout and the summarization call. Nothing here is
// compiled into the binary; internal/store and internal/ai implement it.
package contracts

// Persisted board layout.
//
// Slot:
//   One string value under a configurable key (default "gothamTasks").
//   SQLite: row in the slots table (key TEXT PRIMARY KEY, value TEXT).
//   Redis:  plain string key.
//
// Value:
//   JSON array of task records, in board order:
//   [
//     { "id": "uuid", "name": "Repair Batmobile", "description": "...",
//       "dueDate": "2026-10-16T00:00:00Z", "priority": "Medium",
//       "status": "InProgress", "tags": ["maintenance"] }
//   ]
//   dueDate is omitted when unset. Readers also accept "YYYY-MM-DD".
//   Unknown fields are ignored.
//
// Load rules:
//   absent or blank slot        -> demo seed (six tasks, dates relative to today)
//   "[]"                        -> empty board
//   not an array, null record,
//   unknown priority/status,
//   missing id or name,
//   duplicate id                -> seed, warning logged
//   backend unreachable         -> seed in the board, error from CLI commands
//
// Write rules:
//   Every mutation writes the full snapshot. The interactive board coalesces
//   writes on a background goroutine and drains them on exit; CLI commands
//   write synchronously and fail on a write error.
