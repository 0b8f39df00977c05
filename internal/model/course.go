package model

// swagger:model Category
type Category struct {
	UUIDBase
	Name string `gorm:"size:120;uniqueIndex;not null" json:"name"`
}

func (Category) TableName() string {
	return "categories"
}

// Course is owned by exactly one author (UserID). Whether it may be published is evaluated
// from its fields on demand, see CourseService.Publish.
// swagger:model Course
type Course struct {
	UUIDBase
	UserID          string       `gorm:"size:64;index;not null" json:"userId"`
	Title           string       `gorm:"size:255;not null" json:"title"`
	Description     string       `gorm:"type:text" json:"description"`
	ImageURL        string       `gorm:"size:512" json:"imageUrl"`
	Price           *float64     `json:"price"`
	Level           string       `gorm:"size:50" json:"level"`
	PreviousSkills  string       `gorm:"type:text" json:"previousSkills"`
	DevelopedSkills string       `gorm:"type:text" json:"developedSkills"`
	IsPublished     bool         `gorm:"default:false" json:"isPublished"`
	CategoryID      *string      `gorm:"type:varchar(36);index" json:"categoryId"`
	Category        *Category    `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Modules         []Module     `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
	Attachments     []Attachment `gorm:"foreignKey:CourseID" json:"attachments,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// IsFree reports whether enrollment needs no checkout.
func (c *Course) IsFree() bool {
	return c.Price == nil || *c.Price == 0
}

// swagger:model Attachment
type Attachment struct {
	UUIDBase
	Name     string `gorm:"size:255;not null" json:"name"`
	URL      string `gorm:"size:512;not null" json:"url"`
	CourseID string `gorm:"type:varchar(36);index;not null" json:"courseId"`
}

func (Attachment) TableName() string {
	return "attachments"
}

// Registration links a user to a course. Its existence is the enrollment predicate.
// swagger:model Registration
type Registration struct {
	UUIDBase
	UserID   string  `gorm:"size:64;uniqueIndex:idx_registration_user_course;not null" json:"userId"`
	CourseID string  `gorm:"type:varchar(36);uniqueIndex:idx_registration_user_course;not null" json:"courseId"`
	Course   *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Registration) TableName() string {
	return "registrations"
}
