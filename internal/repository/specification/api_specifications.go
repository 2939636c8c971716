package specification

import "gorm.io/gorm"

type ByUserID struct {
	UserID string
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByApiURL struct {
	ApiURL string
}

func (s ByApiURL) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("api_url = ?", s.ApiURL)
}
