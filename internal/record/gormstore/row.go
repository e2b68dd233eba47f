package gormstore

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ohler55/ojg/oj"
)

// Values holds the attribute values of one record as a JSON document.
type Values map[string]any

// Value implements the driver.Valuer interface.
func (v Values) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}

	b, err := oj.Marshal(map[string]any(v))
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

// Scan implements the sql.Scanner interface.
func (v *Values) Scan(value any) error {
	var raw []byte

	switch val := value.(type) {
	case nil:
		*v = Values{}
		return nil
	case []byte:
		raw = val
	case string:
		raw = []byte(val)
	default:
		return fmt.Errorf("failed to unmarshal record values: %T", value)
	}

	parsed, err := oj.Parse(raw)
	if err != nil {
		return fmt.Errorf("failed to unmarshal record values: %w", err)
	}

	m, ok := parsed.(map[string]any)
	if !ok {
		return fmt.Errorf("failed to unmarshal record values: %T is not an object", parsed)
	}

	*v = m

	return nil
}

// recordRow is one record of any record type.
type recordRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Model     string    `gorm:"type:varchar(128);index;not null"`
	Seq       int64     `gorm:"index;not null"` // creation order
	Data      Values    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for recordRow
func (recordRow) TableName() string {
	return "records"
}
