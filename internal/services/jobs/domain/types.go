// Package domain defines events, jobs and the singleton settings the pipeline persists
package domain

import (
	"encoding/json"
	"time"
)

// EventState is the classification outcome of an incoming webhook
type EventState string

// Event states
const (
	EventReady     EventState = "ready"
	EventRejected  EventState = "rejected"
	EventProcessed EventState = "processed"
)

// LoadState tracks the source media download
type LoadState string

// Load states
const (
	LoadReady   LoadState = "ready"
	LoadSuccess LoadState = "success"
	LoadFailed  LoadState = "failed"
)

// PublishState tracks the remote publish
type PublishState string

// Publish states
const (
	PublishReady      PublishState = "ready"
	PublishProcessing PublishState = "processing"
	PublishUnfinally  PublishState = "unfinally"
	PublishSuccess    PublishState = "success"
	PublishFailed     PublishState = "failed"
)

// PublishAction is the last publish step that completed
type PublishAction string

// Publish actions
const (
	ActionNone     PublishAction = ""
	ActionUpload   PublishAction = "upload"
	ActionPlaylist PublishAction = "playlist"
)

// Event is a persisted webhook delivery
type Event struct {
	ID        int64           `json:"id"`
	State     EventState      `json:"state"`
	Reason    string          `json:"reason"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Topic is the parsed "theme;speaker;playlist" meeting topic
type Topic struct {
	Theme    string `json:"theme"`
	Speaker  string `json:"speaker"`
	Playlist string `json:"playlist"`
	IsParsed bool   `json:"isParsed"`
}

// Meta holds everything needed to download and publish one recording
type Meta struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	PlaylistTitle     string `json:"playlistTitle"`
	LocalFilePath     string `json:"localFilePath"`
	RemoteURL         string `json:"remoteUrl"`
	RemoteVideoID     string `json:"remoteVideoId"`
	GeneratedFilename string `json:"generatedFilename"`
	Date              string `json:"date"`
	SourceID          string `json:"sourceId"`
	Topic             Topic  `json:"topic"`
}

// RecordingFile is the provider descriptor of a single recorded file
type RecordingFile struct {
	ID             string `json:"id"`
	MeetingID      string `json:"meeting_id,omitempty"`
	RecordingStart string `json:"recording_start,omitempty"`
	RecordingEnd   string `json:"recording_end,omitempty"`
	FileType       string `json:"file_type,omitempty"`
	FileSize       int64  `json:"file_size,omitempty"`
	FileExtension  string `json:"file_extension"`
	DownloadURL    string `json:"download_url"`
	Status         string `json:"status"`
	RecordingType  string `json:"recording_type"`
}

// JobData is the jsonb document stored with every job
type JobData struct {
	Meta          Meta          `json:"meta"`
	File          RecordingFile `json:"file"`
	DownloadURL   string        `json:"downloadUrl"`
	DownloadToken string        `json:"downloadToken"`
}

// Job is one recording moving through download and publish
type Job struct {
	ID                int64         `json:"id"`
	EventID           int64         `json:"eventId"`
	LoadSourceState   LoadState     `json:"loadSourceState"`
	LoadSourceError   string        `json:"loadSourceError"`
	PublishState      PublishState  `json:"publishState"`
	LastPublishAction PublishAction `json:"lastPublishAction"`
	PublishError      string        `json:"publishError"`
	IsSourceRemoved   bool          `json:"isSourceRemoved"`
	Data              JobData       `json:"data"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// Resumable reports whether the video is already uploaded and only the playlist step remains
func (j Job) Resumable() bool {
	return j.LastPublishAction == ActionPlaylist && j.Data.Meta.RemoteVideoID != ""
}

// Settings keys
const (
	SettingCredential = "credential"
	SettingQuota      = "quota"
)
