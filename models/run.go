package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gora/domain/core"
)

// Stats is a model's statistics bag stored as a JSONB column.
type Stats map[string]float64

// Value implements driver.Valuer interface
func (s Stats) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner interface
func (s *Stats) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		*s = make(Stats)
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Stats", value)
	}

	result := make(Stats)
	if len(bytes) > 0 {
		if err := json.Unmarshal(bytes, &result); err != nil {
			return err
		}
	}
	*s = result
	return nil
}

// ModelResult is one model reported by a run.
type ModelResult struct {
	RunID      core.RunID `json:"-" db:"run_id"`
	Position   int        `json:"position" db:"position"`
	ModelID    int        `json:"model_id" db:"model_id"`
	Name       string     `json:"name" db:"name"`
	Level      int        `json:"level" db:"level"`
	Progenitor string     `json:"progenitor,omitempty" db:"progenitor"`
	Stats      Stats      `json:"stats" db:"stats"`
}

// Run is a finished fit or search together with its rendered report.
type Run struct {
	ID        core.RunID    `json:"id" db:"id"`
	Kind      core.RunKind  `json:"kind" db:"kind"`
	InputName string        `json:"input_name" db:"input_name"`
	DataHash  core.Hash     `json:"data_hash" db:"data_hash"`
	RefModel  string        `json:"reference_model" db:"reference_model"`
	Report    string        `json:"report" db:"report"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	Models    []ModelResult `json:"models" db:"-"`
}
