package models

// Option autoload flags
const (
	AutoloadYes = "yes"
	AutoloadNo  = "no"
)

// Option is a single named row of the options table. Transients live here as
// a value row plus an optional expiration row.
//
// Option does not embed gorm.Model: soft deletes would keep swept rows alive.
type Option struct {
	ID       uint   `json:"id" gorm:"primaryKey;column:option_id"`
	Name     string `json:"name" gorm:"column:option_name;size:191;not null;uniqueIndex"`
	Value    []byte `json:"value" gorm:"column:option_value;not null"`
	Autoload string `json:"autoload" gorm:"column:autoload;size:20;not null;default:'yes'"`
}

// TableName specifies the table name for Option Model
func (Option) TableName() string {
	return "options"
}
