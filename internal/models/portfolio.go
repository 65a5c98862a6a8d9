package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Achievement is a single entry of a portfolio's achievements section.
type Achievement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Year        string `json:"year"`
}

// Experience is a single entry of a portfolio's experience section.
type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Period      string `json:"period"`
	Description string `json:"description"`
}

// Project is a single entry of a portfolio's projects section.
type Project struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Link        string `json:"link"`
}

// Education is a single entry of a portfolio's education section.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
	Description string `json:"description"`
}

// SocialLinks holds the owner's profile links.
type SocialLinks struct {
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
	Twitter  string `json:"twitter"`
}

const (
	DefaultTemplate = "1"
	DefaultTheme    = "dark"
)

// Portfolio is a user-owned document rendered at a public URL once published.
// FullName, ProfileImage, Email, Phone and Location are a snapshot of the owner
// taken on every create and update.
type Portfolio struct {
	ID               string                           `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	UserID           string                           `json:"user" gorm:"type:varchar(36);not null;index:idx_portfolios_owner_title"`
	Title            string                           `json:"title" gorm:"type:varchar(255)"`
	TitleKey         string                           `json:"-" gorm:"type:varchar(255);index:idx_portfolios_owner_title"`
	Profession       string                           `json:"profession" gorm:"type:varchar(255)"`
	Bio              string                           `json:"bio" gorm:"type:text"`
	Skills           datatypes.JSONSlice[string]      `json:"skills"`
	Achievements     datatypes.JSONSlice[Achievement] `json:"achievements"`
	Experiences      datatypes.JSONSlice[Experience]  `json:"experiences"`
	Projects         datatypes.JSONSlice[Project]     `json:"projects"`
	Education        datatypes.JSONSlice[Education]   `json:"education"`
	SocialLinks      datatypes.JSONType[SocialLinks]  `json:"socialLinks"`
	SelectedTemplate string                           `json:"selectedTemplate" gorm:"type:varchar(32)"`
	SelectedTheme    string                           `json:"selectedTheme" gorm:"type:varchar(32)"`
	IsPublished      bool                             `json:"isPublished" gorm:"not null;default:false;index"`

	FullName     string `json:"fullName" gorm:"type:varchar(255)"`
	ProfileImage string `json:"profileImage" gorm:"type:text"`
	Email        string `json:"email" gorm:"type:varchar(255)"`
	Phone        string `json:"phone" gorm:"type:varchar(64)"`
	Location     string `json:"location" gorm:"type:varchar(255)"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeSave refreshes the title lookup key and fills empty sections so that
// they serialize as [] rather than null.
func (p *Portfolio) BeforeSave(tx *gorm.DB) error {
	p.TitleKey = NormalizeKey(p.Title)
	if p.Skills == nil {
		p.Skills = datatypes.JSONSlice[string]{}
	}
	if p.Achievements == nil {
		p.Achievements = datatypes.JSONSlice[Achievement]{}
	}
	if p.Experiences == nil {
		p.Experiences = datatypes.JSONSlice[Experience]{}
	}
	if p.Projects == nil {
		p.Projects = datatypes.JSONSlice[Project]{}
	}
	if p.Education == nil {
		p.Education = datatypes.JSONSlice[Education]{}
	}
	return nil
}

// Links returns the social links triple.
func (p *Portfolio) Links() SocialLinks {
	return p.SocialLinks.Data()
}
