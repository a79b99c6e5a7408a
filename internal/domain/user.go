package domain

import "time"

const (
	DefaultPlatform = "unknown"
	DefaultImageURL = "https://cdn-icons-png.flaticon.com/512/9187/9187604.png"
)

type User struct {
	ID           string    `json:"id" db:"id"`
	UserUUID     string    `json:"userUUID" db:"user_uuid"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	MobileNumber string    `json:"mobileNumber" db:"mobile_number"`
	Platform     string    `json:"platform" db:"platform"`
	ImageURL     string    `json:"imageUrl" db:"image_url"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Profile is the display subset of a user attached to enriched views.
type Profile struct {
	UserUUID     string `json:"userUUID" db:"user_uuid"`
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	MobileNumber string `json:"mobileNumber" db:"mobile_number"`
	Platform     string `json:"platform" db:"platform"`
	ImageURL     string `json:"imageUrl" db:"image_url"`
}

func (u *User) Profile() Profile {
	return Profile{
		UserUUID:     u.UserUUID,
		Name:         u.Name,
		Email:        u.Email,
		MobileNumber: u.MobileNumber,
		Platform:     u.Platform,
		ImageURL:     u.ImageURL,
	}
}
