// Package project defines the project records kept in the deck.
//
// Project Representation:
//
// Each project is a local folder with display metadata:
//   - Stable ID derived once from name and normalized path
//   - Display name
//   - Absolute filesystem path (unique within the deck)
//   - Optional color and environment URLs (production, staging, dev, management)
//
// Optional fields are tri-state: absent ("never set"), null ("use the
// default") or a value. Nullable models the three states and Patch models
// partial updates as an explicit Keep / Set / Clear union per field.
//
// Collection:
//
// A Collection is the ordered list of projects. Order is chosen by the user
// and is preserved by every operation except an explicit reorder.
//
// Lookups:
//   - ByID: exact id match
//   - ByPath: normalized path match
//   - Resolve: id first, then path for records addressed the legacy way
package project
