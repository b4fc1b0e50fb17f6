package service

import (
	"time"

	"recordsync/internal/platform/config"
	"recordsync/internal/services/quota/domain"
)

// Config holds the budget, the cost table and the reset timezone
type Config struct {
	Budget   int
	Costs    domain.Costs
	Location *time.Location
}

// DefaultCosts are the published YouTube Data API costs
func DefaultCosts() domain.Costs {
	return domain.Costs{
		domain.OpList:            1,
		domain.OpPlaylistCreate:  50,
		domain.OpPlaylistAddItem: 50,
		domain.OpVideoUpload:     1600,
	}
}

// FromConfig reads QUOTA_ keys
func FromConfig(root config.Conf) Config {
	q := root.Prefix("QUOTA_")
	def := DefaultCosts()
	return Config{
		Budget: q.MayInt("DAILY_BUDGET", 10000),
		Costs: domain.Costs{
			domain.OpList:            q.MayInt("COST_LIST", def[domain.OpList]),
			domain.OpPlaylistCreate:  q.MayInt("COST_PLAYLIST_CREATE", def[domain.OpPlaylistCreate]),
			domain.OpPlaylistAddItem: q.MayInt("COST_PLAYLIST_ADD_ITEM", def[domain.OpPlaylistAddItem]),
			domain.OpVideoUpload:     q.MayInt("COST_VIDEO_UPLOAD", def[domain.OpVideoUpload]),
		},
		Location: q.MayLocation("RESET_TIMEZONE", "America/Los_Angeles"),
	}
}
