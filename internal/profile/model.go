package profile

import "time"

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) IsValid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

type Profile struct {
	UserID    string    `json:"user_id"`
	Name      *string   `json:"name,omitempty"`
	PhotoURL  *string   `json:"photo_url,omitempty"`
	Timezone  *string   `json:"timezone,omitempty"`
	Theme     Theme     `json:"theme"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateProfileInput leaves nil fields unchanged.
type UpdateProfileInput struct {
	Name     *string `json:"name"`
	PhotoURL *string `json:"photo_url"`
	Timezone *string `json:"timezone"`
	Theme    *Theme  `json:"theme"`
}
