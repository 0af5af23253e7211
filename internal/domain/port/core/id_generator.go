package core

// IDGenerator produces unique, lexically sortable identifiers for new records
type IDGenerator interface {
	NewID() string
}
