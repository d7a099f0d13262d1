package entities

import "time"

// User is an account that can log in and author posts.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsStaff      bool      `json:"is_staff" db:"is_staff"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	DateJoined   time.Time `json:"date_joined" db:"date_joined"`
}

// UserSchema defines the database schema for users
var UserSchema = &Schema{
	TableName: "users",
	Fields: map[string]FieldSchema{
		"id":            {Type: "int64", PrimaryKey: true},
		"username":      {Type: "string", MaxLength: 150, Unique: true},
		"email":         {Type: "string", MaxLength: 254},
		"first_name":    {Type: "string", MaxLength: 150},
		"last_name":     {Type: "string", MaxLength: 150},
		"password_hash": {Type: "string"},
		"is_staff":      {Type: "bool"},
		"is_active":     {Type: "bool"},
		"date_joined":   {Type: "time"},
	},
	Indexes: []Index{
		{Name: "idx_users_username", Columns: []string{"username"}, Unique: true},
	},
}
