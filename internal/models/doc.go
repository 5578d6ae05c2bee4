// Package models defines domain entities and persistence interfaces for the encore recommendation service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): value types constructed from upstream catalog responses
//   - [Track] : song metadata (id, name, credited artists, album, artwork)
//   - [Artist] : artist metadata (id, name, artwork)
//
// DTOs are never mutated after construction; the recommendation core treats them as values.
//
// 2. Persistent Entities: database-backed models with full lifecycle management
//   - [Listener] : a listener account that credentials, taste rows, and history hang off
//   - [Recommendation] : a recorded track recommendation produced for a listener
//
// All persistent entities implement the [Model] interface providing ID generation, timestamps, validation, and soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
package models
