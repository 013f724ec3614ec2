// Package todo defines task records and their persisted representation.
//
// The stored form of a task list is a bare JSON array, one object per task,
// in list order:
//
//	[
//	  {"id": "1718031234567", "text": "Buy milk", "completed": false},
//	  {"id": "1718031240112", "text": "Call mum", "completed": true}
//	]
//
// There is no envelope and no version field. Lists written by earlier
// versions of the app decode unchanged.
//
// # Validation
//
// Decode validates in three passes and reports the first failing pass as a
// *DeserializationError:
//
//  1. JSON syntax.
//  2. JSON Schema (draft 2020-12). The embedded tasks.schema.json is used
//     unless a Validator was built from a user supplied schema file.
//  3. Minimal checks that a schema cannot express: every id is non-empty
//     and ids are unique within the list.
//
// # Identifiers
//
// Task ids are opaque strings. The default generator issues decimal
// milliseconds since the Unix epoch and never issues the same value twice,
// even when the clock stalls or moves backwards. The uuid7 scheme issues
// time-ordered UUIDs instead.
package todo
