package link

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Language string

const (
	Arabic  Language = "ar"
	English Language = "en"
)

type ViewLayout string

const (
	LayoutGrid    ViewLayout = "grid"
	LayoutList    ViewLayout = "list"
	LayoutCompact ViewLayout = "compact"
)

// Settings are the persisted user preferences.
type Settings struct {
	DarkMode    bool       `json:"darkMode" yaml:"dark_mode"`
	Language    Language   `json:"language" yaml:"language"`
	ViewLayout  ViewLayout `json:"viewLayout" yaml:"view_layout"`
	CurrentView string     `json:"currentView" yaml:"current_view"`
}

// DefaultSettings returns the settings of a fresh installation.
func DefaultSettings() Settings {
	return Settings{
		DarkMode:    false,
		Language:    Arabic,
		ViewLayout:  LayoutGrid,
		CurrentView: ViewAll,
	}
}

func (l Language) Valid() bool {
	return l == Arabic || l == English
}

func (v ViewLayout) Valid() bool {
	return v == LayoutGrid || v == LayoutList || v == LayoutCompact
}

// Validate checks the enum fields and the view selector.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Language, validation.Required, validation.In(Arabic, English)),
		validation.Field(&s.ViewLayout, validation.Required, validation.In(LayoutGrid, LayoutList, LayoutCompact)),
		validation.Field(&s.CurrentView, validation.Required, validation.By(func(value interface{}) error {
			_, err := ParseView(value.(string))
			return err
		})),
	)
}
