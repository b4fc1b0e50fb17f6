// Package domain defines the webhook payloads and the classifier contract
package domain

import (
	"context"
	"encoding/json"
	"strings"

	jobs "recordsync/internal/services/jobs/domain"
)

// Event types the webhook understands
const (
	EventURLValidation     = "endpoint.url_validation"
	EventRecordingComplete = "recording.completed"
)

// Recording file filters
const (
	RecordingTypeSpeakerView = "shared_screen_with_speaker_view"
	RecordingStatusCompleted = "completed"
)

// OtherPlaylist collects recordings whose topic could not be parsed
const OtherPlaylist = "Other"

// Skip reasons, exact wording is part of the API
const (
	ReasonTooShort      = "Video is too short"
	ReasonTopic         = "Video topic not parsed or contains stop-words in playlist part"
	ReasonUserExcluded  = "User excluded for video downloading"
	ReasonVideoNotFound = "Video not found"
)

// Body is the webhook envelope, extra provider fields are ignored
type Body struct {
	Event         string  `json:"event" validate:"required"`
	EventTS       int64   `json:"event_ts"`
	Payload       Payload `json:"payload"`
	DownloadToken string  `json:"download_token"`
}

// Payload carries either the validation token or the recording object
type Payload struct {
	AccountID  string `json:"account_id,omitempty"`
	PlainToken string `json:"plainToken,omitempty"`
	Object     Object `json:"object"`
}

// Object describes a finished meeting recording
type Object struct {
	ID             int64                `json:"id"`
	UUID           string               `json:"uuid"`
	HostID         string               `json:"host_id"`
	HostEmail      string               `json:"host_email"`
	Topic          string               `json:"topic"`
	StartTime      string               `json:"start_time"`
	Timezone       string               `json:"timezone,omitempty"`
	Duration       int                  `json:"duration"`
	RecordingFiles []jobs.RecordingFile `json:"recording_files"`
}

// VideoFiles returns the completed speaker view files, the only ones published
func (o Object) VideoFiles() []jobs.RecordingFile {
	var out []jobs.RecordingFile
	for _, f := range o.RecordingFiles {
		if f.RecordingType == RecordingTypeSpeakerView && f.Status == RecordingStatusCompleted {
			out = append(out, f)
		}
	}
	return out
}

// ParseTopic splits "theme;speaker;playlist", fewer than three parts is unparsed
func ParseTopic(topic string) jobs.Topic {
	parts := strings.Split(topic, ";")
	if len(parts) < 3 {
		return jobs.Topic{}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return jobs.Topic{Theme: parts[0], Speaker: parts[1], Playlist: parts[2], IsParsed: true}
}

// ValidationReply answers the endpoint ownership challenge
type ValidationReply struct {
	PlainToken     string `json:"plainToken"`
	EncryptedToken string `json:"encryptedToken"`
}

// Reply is the acknowledgement for recording events
type Reply struct {
	Message string `json:"message"`
	Params  any    `json:"params"`
}

// Classifier accepts webhook deliveries and derives jobs from them
type Classifier interface {
	// Validate signs the challenge token
	Validate(plainToken string) (ValidationReply, error)
	// Reasons returns every skip rule the recording trips, empty when it qualifies
	Reasons(o Object) []string
	// Record persists the event and schedules job creation when it qualifies
	Record(ctx context.Context, body Body, raw json.RawMessage) (Reply, error)
	// Drain waits for scheduled job creation to finish or ctx to end
	Drain(ctx context.Context) error
}
