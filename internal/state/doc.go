// Package state holds the task collection shown by the UI.
//
// # Overview
//
// The Store is the single source of truth for the tasks on screen. Only the
// synchronization layer writes to it, and only after the backend confirmed
// a call. The UI reads copies through Snapshot.
//
//	Writer (syncer):                  Reader (UI):
//	┌──────────────────┐             ┌──────────────────┐
//	│ service call ok  │             │                  │
//	│       ↓          │             │                  │
//	│ store.AddTask()  │────────────→│ store.Snapshot() │
//	│ store.UpdateTask │  (RWMutex)  │       ↓          │
//	│ store.DeleteTask │             │  render list     │
//	└──────────────────┘             └──────────────────┘
//
// # Transformations
//
// The collection changes only through five functions, each returning a new
// slice and never writing to its input:
//
//	ReplaceAll(tasks)       whole collection after a load
//	Prepend(tasks, t)       confirmed create, newest first
//	ReplaceByID(tasks, t)   confirmed update, whole object
//	RemoveByID(tasks, id)   confirmed delete
//	ClearAll()              empty collection
//
// Prepend and ReplaceAll drop duplicate identifiers, so the collection never
// holds two tasks with the same id.
//
// # Load And Error Flags
//
// Besides the tasks, a Snapshot carries:
//
//   - Loading: a list call is outstanding
//   - Loaded: at least one list call succeeded
//   - LastError: the latest failure, kept until the next successful load
//   - Status: the transient "Please wait, ..." message
//
// Snapshot.Phase folds these into the four things the list can show:
// loading, error with zero tasks, loaded with zero tasks, and tasks.
//
// # Status Tokens
//
// SetStatus returns a token. ClearStatus only clears the message if no other
// operation replaced it in the meantime, so a finishing operation never
// hides the message of one that started after it.
//
// # Zero Value
//
// The zero Store is ready to use and reports PhaseLoading until the first
// FinishLoad.
package state
