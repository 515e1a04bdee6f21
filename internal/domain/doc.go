// Package domain defines the value types shared by the roster pipeline, the
// processing service and the HTTP layer.
//
// Types in this package are pure value objects with no behavior beyond small
// predicates, no database dependencies, and no HTTP concerns.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - JSON tags are allowed (they're metadata, not behavior)
//   - Constants and enums belong here
package domain
