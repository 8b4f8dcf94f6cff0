package model

import (
	"encoding/json"
	"time"
)

// Interaction is one generated answer with its provenance. Rows are
// append-only: repeated questions may produce multiple entries, and lookups
// take the most recent one.
type Interaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"size:64;not null;index:idx_interactions_key" json:"username"`
	Question      string    `gorm:"size:512;not null;index:idx_interactions_key" json:"question"`
	Answer        string    `gorm:"type:text;not null" json:"answer"`
	DocumentsUsed string    `gorm:"type:text" json:"documents_used"` // JSON array of filenames
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// Filenames returns the parsed provenance list; empty on parse error.
func (i *Interaction) Filenames() []string {
	if i.DocumentsUsed == "" {
		return nil
	}
	var names []string
	_ = json.Unmarshal([]byte(i.DocumentsUsed), &names)
	return names
}

// SetFilenames stores the provenance list as JSON, preserving order.
func (i *Interaction) SetFilenames(names []string) {
	if len(names) == 0 {
		i.DocumentsUsed = "[]"
		return
	}
	b, _ := json.Marshal(names)
	i.DocumentsUsed = string(b)
}
