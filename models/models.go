package models

// All lists every model migrated at startup
func All() []interface{} {
	return []interface{}{
		&User{},
		&Customer{},
		&Product{},
		&Order{},
		&OrderItem{},
		&Sale{},
		&Notification{},
		&Setting{},
	}
}
