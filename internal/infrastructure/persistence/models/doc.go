// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: shared columns (BaseModel, SoftDeleteModel, AggregateModel)
//   - sequence.go: per-prefix identifier sequences
//   - partner.go: vendors and warehouses
//   - catalog.go: inventory items referenced by line items
//   - purchase.go: purchase transactions, their items and the serial number claims
package models
