package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// SystemLog represents a record in system_logs table
type SystemLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	PoolID     uint      `gorm:"column:pool_id;default:0" json:"pool_id"`
	Level      string    `gorm:"column:level;size:10;not null" json:"level"` // DEBUG, INFO, WARN, ERROR, FATAL
	Message    string    `gorm:"column:message;type:text;not null" json:"message"`
	Module     string    `gorm:"column:module;size:100" json:"module"`
	ErrorStack string    `gorm:"column:error_stack;type:text" json:"error_stack"`
	Meta       JSONMap   `gorm:"column:meta;type:jsonb" json:"meta"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (SystemLog) TableName() string {
	return "system_logs"
}

// JSONMap is a custom type for JSONB columns
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to assert JSONB value to []byte")
	}

	return json.Unmarshal(bytes, &j)
}
