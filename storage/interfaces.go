package storage

import "airbnb-etl/models"

// NamedTable pairs a table with the name it is exported under.
type NamedTable struct {
	Name  string
	Table *models.Table
}

// FinalWriter persists the merged analytical table.
type FinalWriter interface {
	Write(final *models.Table) error
	Verify(expected int) error
	Close() error
}

// SheetWriter persists the intermediate cleaned tables for review.
type SheetWriter interface {
	Write(tables []NamedTable) error
	Verify() error
}
