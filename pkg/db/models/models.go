package models

// All lists every model in dependency order for schema creation.
func All() []any {
	return []any{
		&Customer{},
		&Product{},
		&RepairOrder{},
		&ExchangeRate{},
		&CartSlot{},
		&Sale{},
		&SaleLine{},
	}
}
