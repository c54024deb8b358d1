package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlTable is the on-disk YAML representation of a table declaration.
type yamlTable struct {
	// Name is the table name.
	Name string `yaml:"table"`

	// Columns lists the application columns in SQL column order.
	Columns []yamlColumn `yaml:"columns"`

	// Uniques lists advisory unique column combinations.
	Uniques [][]string `yaml:"uniques,omitempty"`

	// Timestamps enables engine-managed created_at/updated_at columns.
	Timestamps bool `yaml:"timestamps,omitempty"`

	// SoftDeletes enables the deleted_at column and soft-delete semantics.
	SoftDeletes bool `yaml:"soft_deletes,omitempty"`
}

// yamlColumn is the on-disk representation of a single column.
type yamlColumn struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Storage  string `yaml:"storage,omitempty"`
	Required bool   `yaml:"required,omitempty"`

	// Unique marks the column as a single-column unique constraint.
	Unique bool `yaml:"unique,omitempty"`

	// Check is a validation rule expression (validator tag syntax),
	// e.g. "min=2,max=64".
	Check string `yaml:"check,omitempty"`

	// Default is a literal default value.
	Default any `yaml:"default,omitempty"`
}

// ParseYAML decodes a YAML table declaration. The result is parsed but not
// validated; callers run Validate separately to collect all errors.
func ParseYAML(data []byte) (*Table, error) {
	var yt yamlTable
	if err := yaml.Unmarshal(data, &yt); err != nil {
		return nil, fmt.Errorf("parse schema yaml: %w", err)
	}

	table := &Table{
		Name:        yt.Name,
		Uniques:     yt.Uniques,
		Timestamps:  yt.Timestamps,
		SoftDeletes: yt.SoftDeletes,
	}

	for _, yc := range yt.Columns {
		col := Column{
			Name:     yc.Name,
			Type:     ColumnType(yc.Type),
			Storage:  StorageType(yc.Storage),
			Required: yc.Required,
		}
		if yc.Required {
			col.Constraints = append(col.Constraints, Constraint{Kind: ConstraintNotNull})
		}
		if yc.Unique {
			col.Constraints = append(col.Constraints, Constraint{Kind: ConstraintUnique})
		}
		if yc.Check != "" {
			col.Constraints = append(col.Constraints, Constraint{Kind: ConstraintCheck, Value: yc.Check})
		}
		if yc.Default != nil {
			col.Constraints = append(col.Constraints, Constraint{Kind: ConstraintDefault, Value: yc.Default})
		}
		table.Columns = append(table.Columns, col)
	}

	return table, nil
}

// LoadYAML reads and decodes a YAML table declaration from path.
func LoadYAML(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return ParseYAML(data)
}
