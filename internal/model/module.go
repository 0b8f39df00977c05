package model

// Module is one chapter of a course. Position gives a total order inside the course;
// gaps are allowed and positions are reassigned wholesale on reorder.
// swagger:model Module
type Module struct {
	UUIDBase
	Title           string      `gorm:"size:255;not null" json:"title"`
	Description     string      `gorm:"type:text" json:"description"`
	VideoURL        string      `gorm:"size:512" json:"videoUrl"`
	VideoDuration   float64     `gorm:"default:0" json:"videoDuration"`
	VideoTranscript string      `gorm:"type:text" json:"videoTranscript"`
	Position        int         `gorm:"index;not null" json:"position"`
	IsPublished     bool        `gorm:"default:false" json:"isPublished"`
	IsEnabled       bool        `gorm:"default:false" json:"isEnabled"` // free preview for non-enrolled users
	CourseID        string      `gorm:"type:varchar(36);index;not null" json:"courseId"`
	Evaluation      *Evaluation `gorm:"foreignKey:ModuleID" json:"evaluation,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

// UserProgress is keyed by (UserID, ModuleID).
// swagger:model UserProgress
type UserProgress struct {
	UUIDBase
	UserID      string `gorm:"size:64;uniqueIndex:idx_progress_user_module;not null" json:"userId"`
	ModuleID    string `gorm:"type:varchar(36);uniqueIndex:idx_progress_user_module;not null" json:"moduleId"`
	IsCompleted bool   `gorm:"default:false" json:"isCompleted"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}
