package models

// Profile is the display record owned by the profile directory.
// The relationship core only reads it.
type Profile struct {
	ID        string `gorm:"primaryKey;type:varchar(64)" json:"id" yaml:"id"`
	Username  string `gorm:"type:varchar(100);index" json:"username" yaml:"username"`
	FullName  string `gorm:"type:varchar(200)" json:"full_name" yaml:"full_name"`
	Email     string `gorm:"type:varchar(255)" json:"-" yaml:"email"`
	AvatarURL string `json:"avatar_url" yaml:"avatar_url"`
	Bio       string `json:"bio" yaml:"bio"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// SearchResult is a directory hit annotated with the caller's friendship.
type SearchResult struct {
	Profile
	IsFriend bool `json:"isFriend"`
}
