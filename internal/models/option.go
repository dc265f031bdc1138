package models

// OptionModel is a generic key-value row. The persisted application config
// lives under the name "configs" as a JSON document.
type OptionModel struct {
	Base
	Name  string `json:"name"  gorm:"uniqueIndex;not null"`
	Value string `json:"value" gorm:"type:longtext"`
}

func (OptionModel) TableName() string { return "options" }
