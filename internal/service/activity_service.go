package service

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/internal/repository"
)

const (
	defaultFeedLimit = 50
	maxFeedLimit     = 200
)

// ActivityService reconstructs one chronological feed for a sender out of the
// four independent event categories: sends, first views, reactions, and
// recipient notes.
type ActivityService struct {
	activityRepo *repository.ActivityRepository
}

func NewActivityService(activityRepo *repository.ActivityRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// Feed merges all four categories for the sender, sorted strictly descending
// by timestamp (ties stable) and truncated to the limit. Events come back
// denormalized: dump note, thumbnail, recipient name are all in place.
func (s *ActivityService) Feed(senderID uuid.UUID, limit int) (*model.ActivityFeedResponse, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	sent, err := s.activityRepo.SentEvents(senderID, limit)
	if err != nil {
		return nil, err
	}
	views, err := s.activityRepo.ViewEvents(senderID, limit)
	if err != nil {
		return nil, err
	}
	reactions, err := s.activityRepo.ReactionEvents(senderID, limit)
	if err != nil {
		return nil, err
	}
	notes, err := s.activityRepo.NoteEvents(senderID, limit)
	if err != nil {
		return nil, err
	}

	events := make([]model.ActivityEvent, 0, len(sent)+len(views)+len(reactions)+len(notes))
	events = append(events, sent...)
	events = append(events, views...)
	events = append(events, reactions...)
	events = append(events, notes...)

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	if len(events) > limit {
		events = events[:limit]
	}

	if err := s.fillThumbnails(events); err != nil {
		return nil, err
	}

	return &model.ActivityFeedResponse{
		Events:  events,
		Buckets: bucketize(events, time.Now()),
	}, nil
}

func (s *ActivityService) fillThumbnails(events []model.ActivityEvent) error {
	seen := make(map[uuid.UUID]struct{})
	var dumpIDs []uuid.UUID
	for _, e := range events {
		if _, ok := seen[e.DumpID]; ok {
			continue
		}
		seen[e.DumpID] = struct{}{}
		dumpIDs = append(dumpIDs, e.DumpID)
	}
	urls, err := s.activityRepo.FirstMemeURLs(dumpIDs)
	if err != nil {
		return err
	}
	for i := range events {
		events[i].ThumbnailURL = urls[events[i].DumpID]
	}
	return nil
}

// bucketize groups already-sorted events into relative time sections for
// display. Purely presentational; the ordering contract lives in Events.
func bucketize(events []model.ActivityEvent, now time.Time) []model.ActivityBucket {
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfYesterday := startOfToday.AddDate(0, 0, -1)
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, -1, 0)

	labelFor := func(t time.Time) string {
		switch {
		case !t.Before(startOfToday):
			return "Today"
		case !t.Before(startOfYesterday):
			return "Yesterday"
		case t.After(weekAgo):
			return "This Week"
		case t.After(monthAgo):
			return "This Month"
		default:
			return "Earlier"
		}
	}

	var buckets []model.ActivityBucket
	for _, e := range events {
		label := labelFor(e.Timestamp)
		if len(buckets) == 0 || buckets[len(buckets)-1].Label != label {
			buckets = append(buckets, model.ActivityBucket{Label: label})
		}
		buckets[len(buckets)-1].Events = append(buckets[len(buckets)-1].Events, e)
	}
	return buckets
}
