package model

import "time"

// KVEntry is one row of the key-value table backing request persistence.
type KVEntry struct {
	Key       string    `gorm:"column:entry_key;type:varchar(191);primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
