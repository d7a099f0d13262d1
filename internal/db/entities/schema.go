package entities

// Schema describes a table for documentation, migrations and the memory backend.
type Schema struct {
	TableName string
	Fields    map[string]FieldSchema
	Indexes   []Index
}

// FieldSchema represents a column definition
type FieldSchema struct {
	Type       string // "int64", "string", "text", "bool", "time"
	Nullable   bool
	MaxLength  int
	Unique     bool
	PrimaryKey bool
	ForeignKey *ForeignKey
}

// ForeignKey represents a foreign key constraint
type ForeignKey struct {
	Table    string
	Column   string
	OnDelete string // CASCADE, SET_NULL, RESTRICT
}

// Index represents a database index
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Dependents returns the schemas whose foreign keys cascade from table.
func Dependents(table string, schemas []*Schema) []*Schema {
	var out []*Schema
	for _, s := range schemas {
		for _, f := range s.Fields {
			if f.ForeignKey != nil && f.ForeignKey.Table == table && f.ForeignKey.OnDelete == "CASCADE" {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// All returns every schema in dependency order (parents first).
func All() []*Schema {
	return []*Schema{
		UserSchema,
		CategorySchema,
		PostSchema,
		CommentSchema,
	}
}
