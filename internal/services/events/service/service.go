// Package service implements the webhook classifier and job derivation
package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"recordsync/internal/platform/alert"
	perr "recordsync/internal/platform/errors"
	"recordsync/internal/platform/logger"
	str "recordsync/internal/platform/strings"
	ptime "recordsync/internal/platform/time"
	"recordsync/internal/services/events/domain"
	jobs "recordsync/internal/services/jobs/domain"

	"github.com/google/uuid"
)

const titleMax = 50

// Config carries classifier rules and storage layout
type Config struct {
	SecretToken string

	MinDurationMinutes   int
	SkipPlaylistContains []string
	// SkipUserMails must already be trimmed and lowercased
	SkipUserMails []string

	StorageDir string
	// DescriptionLocation renders the recording date, UTC when nil
	DescriptionLocation *time.Location
}

// Store is the persistence the classifier needs
type Store interface {
	jobs.EventStore
	jobs.JobStore
}

// Svc implements domain.Classifier
type Svc struct {
	store Store
	cfg   Config
	log   logger.Logger

	now   func() time.Time
	newID func() string

	wg sync.WaitGroup
}

var _ domain.Classifier = (*Svc)(nil)

// New constructs the classifier
func New(store Store, cfg Config) *Svc {
	if store == nil {
		panic("events.Service requires a store")
	}
	if cfg.DescriptionLocation == nil {
		cfg.DescriptionLocation = time.UTC
	}
	return &Svc{
		store: store,
		cfg:   cfg,
		log:   *logger.Named("events"),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Validate signs plainToken with the webhook secret
func (s *Svc) Validate(plainToken string) (domain.ValidationReply, error) {
	if plainToken == "" {
		return domain.ValidationReply{}, perr.WithField(perr.Validationf("plainToken is required"), "payload.plainToken")
	}
	mac := hmac.New(sha256.New, []byte(s.cfg.SecretToken))
	mac.Write([]byte(plainToken))
	return domain.ValidationReply{
		PlainToken:     plainToken,
		EncryptedToken: hex.EncodeToString(mac.Sum(nil)),
	}, nil
}

// Reasons runs every skip rule in order and collects the ones that match
func (s *Svc) Reasons(o domain.Object) []string {
	var reasons []string

	if o.Duration < s.cfg.MinDurationMinutes {
		reasons = append(reasons, domain.ReasonTooShort)
	}

	t := domain.ParseTopic(strings.TrimSpace(o.Topic))
	if !t.IsParsed || str.ContainsAny(t.Playlist, s.cfg.SkipPlaylistContains) {
		reasons = append(reasons, domain.ReasonTopic)
	}

	mail := strings.ToLower(strings.TrimSpace(o.HostEmail))
	for _, m := range s.cfg.SkipUserMails {
		if m == mail {
			reasons = append(reasons, domain.ReasonUserExcluded)
			break
		}
	}

	if len(o.VideoFiles()) == 0 {
		reasons = append(reasons, domain.ReasonVideoNotFound)
	}
	return reasons
}

// Record persists the event and, when it qualifies, derives its jobs in the background
func (s *Svc) Record(ctx context.Context, body domain.Body, raw json.RawMessage) (domain.Reply, error) {
	reasons := s.Reasons(body.Payload.Object)
	state := jobs.EventReady
	if len(reasons) > 0 {
		state = jobs.EventRejected
	}

	ev, err := s.store.InsertEvent(ctx, state, strings.Join(reasons, ";"), raw)
	if err != nil {
		return domain.Reply{}, err
	}

	log := s.log.With().Int64("event_id", ev.ID).Str("state", string(state)).Logger()
	if state == jobs.EventRejected {
		log.Info().Strs("reasons", reasons).Msg("event rejected")
		return domain.Reply{Message: "Event rejected for processing", Params: reasons}, nil
	}
	log.Info().Msg("event accepted")

	// job creation outlives the request but not the drain
	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.deriveJobs(bg, ev.ID, body); err != nil {
			log.Error().Err(err).Msg("derive jobs failed")
			alert.Capture(bg, err, map[string]string{
				"component": "events",
				"event_id":  strconv.FormatInt(ev.ID, 10),
			})
		}
	}()

	return domain.Reply{Message: "All done", Params: struct{}{}}, nil
}

// Drain blocks until background job creation is done or ctx ends
func (s *Svc) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Svc) deriveJobs(ctx context.Context, eventID int64, body domain.Body) error {
	o := body.Payload.Object
	for _, f := range o.VideoFiles() {
		data := s.jobData(o, f, body.DownloadToken)
		if _, err := s.store.InsertJob(ctx, eventID, data); err != nil {
			return perr.WithOp(err, "events.insert_job")
		}
	}
	if err := s.store.MarkEventProcessed(ctx, eventID); err != nil {
		return perr.WithOp(err, "events.mark_processed")
	}
	s.log.Debug().Int64("event_id", eventID).Msg("event processed")
	return nil
}

// jobData builds the publish metadata for one qualifying file
func (s *Svc) jobData(o domain.Object, f jobs.RecordingFile, token string) jobs.JobData {
	prepared := strings.TrimSpace(o.Topic)
	topic := domain.ParseTopic(prepared)
	date := s.date(o.StartTime)

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), s.newID())
	ext := strings.ToLower(f.FileExtension)
	if ext == "" {
		ext = "mp4"
	}

	meta := jobs.Meta{
		GeneratedFilename: name,
		LocalFilePath:     filepath.Join(s.cfg.StorageDir, "videos", name+"."+ext),
		Date:              date,
		SourceID:          o.HostID,
		Topic:             topic,
	}

	var lines []string
	if topic.IsParsed {
		meta.Title = str.Truncate(topic.Theme, titleMax, "…")
		meta.PlaylistTitle = topic.Playlist
		lines = append(lines, "* Full title: "+topic.Theme, "* Date: "+date)
		if topic.Speaker != "" {
			lines = append(lines, "* Speaker: "+topic.Speaker)
		}
		lines = append(lines, "* Playlist: "+topic.Playlist)
	} else {
		meta.Title = str.Truncate(prepared, titleMax, "…")
		meta.PlaylistTitle = domain.OtherPlaylist
		lines = append(lines, "* Full title: "+prepared, "* Date: "+date)
	}
	lines = append(lines, "* Source id: "+o.HostID)
	meta.Description = strings.Join(lines, "\n")

	return jobs.JobData{
		Meta:          meta,
		File:          f,
		DownloadURL:   f.DownloadURL,
		DownloadToken: token,
	}
}

func (s *Svc) date(startTime string) string {
	t, err := time.Parse(time.RFC3339, startTime)
	if err != nil {
		s.log.Warn().Str("start_time", startTime).Msg("unparseable start time, date left empty")
		return ""
	}
	return ptime.DMY(t, s.cfg.DescriptionLocation)
}
