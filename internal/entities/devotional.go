package entities

// Devotional is one daily study for a program, keyed by the id the remote API assigns.
type Devotional struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Program   string `gorm:"type:text;index:idx_devotionals_program_date,priority:1" json:"program"`
	Date      string `gorm:"type:text;index:idx_devotionals_program_date,priority:2" json:"date"`
	Topic     string `gorm:"type:text" json:"topic"`
	Content   string `gorm:"type:text" json:"content"`
	CreatedAt string `gorm:"column:created_at;type:text;autoCreateTime:false" json:"created_at"`
}

func (Devotional) TableName() string {
	return "devotionals"
}

// Program is a ministry published by the remote API. Programs are not cached locally.
type Program struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}
