package entities

import "time"

// Category groups posts. Names are not unique.
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CategorySchema defines the database schema for categories
var CategorySchema = &Schema{
	TableName: "categories",
	Fields: map[string]FieldSchema{
		"id":         {Type: "int64", PrimaryKey: true},
		"name":       {Type: "string", MaxLength: 100},
		"created_at": {Type: "time"},
	},
}
