package models

// All returns every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Company{},
		&Permission{},
		&Profile{},
		&User{},
		&Client{},
		&Contact{},
		&Document{},
		&LineItem{},
		&Invitation{},
		&DocumentSequence{},
		&MetricSample{},
	}
}
