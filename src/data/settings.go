package data

import (
	"sync"

	"gorm.io/gorm"
)

// Setting is one name/value configuration row. Provider keys, base URLs and
// engine tunables live here so they can change without a redeploy.
type Setting struct {
	ID    uint32 `gorm:"primaryKey"`
	Name  string `gorm:"size:64;uniqueIndex;not null"`
	Value string `gorm:"size:512;not null"`
}

var (
	settingsCache map[string]string
	settingsMu    sync.RWMutex
)

// LoadSettings loads all settings from the database into cache
func LoadSettings(db *gorm.DB) error {
	var settings []Setting
	if err := db.Find(&settings).Error; err != nil {
		return err
	}

	settingsMu.Lock()
	defer settingsMu.Unlock()

	settingsCache = make(map[string]string)
	for _, s := range settings {
		settingsCache[s.Name] = s.Value
	}

	return nil
}

// GetSetting retrieves a setting value by name
func GetSetting(name string) string {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return settingsCache[name]
}

// RefreshSettings reloads settings from the database
func RefreshSettings(db *gorm.DB) error {
	return LoadSettings(db)
}
