package module

import (
	"time"

	"recordsync/internal/platform/config"
)

// Options holds classifier rules read from the root env
type Options struct {
	SecretToken          string
	MinDurationMinutes   int
	SkipPlaylistContains []string
	SkipUserMails        []string
	StorageDir           string
	DescriptionLocation  *time.Location
}

// FromConfig reads the ZOOM_* rules, STORAGE_DIRPATH and DESCRIPTION_TIMEZONE
func FromConfig(cfg config.Conf) Options {
	z := cfg.Prefix("ZOOM_")
	return Options{
		SecretToken:          z.MustString("WEBHOOK_SECRET_TOKEN"),
		MinDurationMinutes:   z.MayInt("SKIP_MINIMAL_DURATION_MINUTES", 0),
		SkipPlaylistContains: z.MayCSV("SKIP_TOPIC_PLAYLIST_CONTAINS", nil),
		SkipUserMails:        z.MayCSVLower("SKIP_USERS_MAILS", nil),
		StorageDir:           cfg.MustString("STORAGE_DIRPATH"),
		DescriptionLocation:  cfg.MayLocation("DESCRIPTION_TIMEZONE", "Europe/Moscow"),
	}
}
