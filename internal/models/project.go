package models

// StudyProjectModel stores one piece of user-submitted study material.
// The id is supplied by the client; the table and column names match the
// schema shared with the web frontend.
type StudyProjectModel struct {
	ID            int64  `json:"id"            gorm:"column:id;primaryKey;autoIncrement:false"`
	Title         string `json:"title"         gorm:"column:title;type:varchar(100)"`
	StudyMaterial string `json:"studyMaterial" gorm:"column:studyMaterial;type:text"`
}

func (StudyProjectModel) TableName() string { return "posts" }
