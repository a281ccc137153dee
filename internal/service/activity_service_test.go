package service

import (
	"testing"
	"time"

	"github.com/quangdng/memedump/internal/model"
)

func TestFeedMergesCategoriesInDescendingOrder(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")

	dump, resp := env.createSentDump(t, sender.ID, "Alice")
	token := resp.Sent[0].Token

	if _, err := env.engagement.View(token); err != nil {
		t.Fatalf("view failed: %v", err)
	}
	memes, err := env.dumpRepo.GetMemes(dump.ID)
	if err != nil {
		t.Fatalf("failed to load memes: %v", err)
	}
	if err := env.engagement.React(token, model.ReactRequest{MemeID: memes[0].ID, Emoji: "😂"}); err != nil {
		t.Fatalf("react failed: %v", err)
	}
	if err := env.engagement.Note(token, "killed me"); err != nil {
		t.Fatalf("note failed: %v", err)
	}

	// Space the timestamps out so the merge order is unambiguous
	now := time.Now()
	if err := env.db.Model(&model.Dump{}).Where("id = ?", dump.ID).
		Update("created_at", now.Add(-3*time.Hour)).Error; err != nil {
		t.Fatalf("failed to backdate dump: %v", err)
	}
	if err := env.db.Model(&model.DumpRecipient{}).Where("id = ?", resp.Sent[0].ID).
		Update("viewed_at", now.Add(-2*time.Hour)).Error; err != nil {
		t.Fatalf("failed to backdate view: %v", err)
	}
	if err := env.db.Model(&model.Reaction{}).Where("dump_recipient_id = ?", resp.Sent[0].ID).
		Update("created_at", now.Add(-1*time.Hour)).Error; err != nil {
		t.Fatalf("failed to backdate reaction: %v", err)
	}

	feed, err := env.activity.Feed(sender.ID, 0)
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}

	// Notes ride on viewed_at, so view and note tie at -2h; reaction at -1h
	// leads, sent at -3h trails
	if len(feed.Events) != 4 {
		t.Fatalf("expected 4 events, got %d: %+v", len(feed.Events), feed.Events)
	}
	if feed.Events[0].Type != model.ActivityEventReaction {
		t.Errorf("expected reaction first, got %s", feed.Events[0].Type)
	}
	if feed.Events[3].Type != model.ActivityEventSent {
		t.Errorf("expected sent last, got %s", feed.Events[3].Type)
	}
	for i := 1; i < len(feed.Events); i++ {
		if feed.Events[i].Timestamp.After(feed.Events[i-1].Timestamp) {
			t.Errorf("events out of order at %d: %v after %v", i, feed.Events[i].Timestamp, feed.Events[i-1].Timestamp)
		}
	}

	// Every event is denormalized against its dump
	for _, e := range feed.Events {
		if e.DumpID != dump.ID {
			t.Errorf("event bound to wrong dump: %+v", e)
		}
		if e.ThumbnailURL != memes[0].URL {
			t.Errorf("expected first-meme thumbnail, got %q", e.ThumbnailURL)
		}
	}
	for _, e := range feed.Events {
		if e.Type == model.ActivityEventReaction && e.Emoji != "😂" {
			t.Errorf("reaction event missing emoji: %+v", e)
		}
		if e.Type == model.ActivityEventNote && e.Note != "killed me" {
			t.Errorf("note event missing text: %+v", e)
		}
	}
}

func TestFeedIncludesNotesWrittenBeforeFirstView(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")

	_, resp := env.createSentDump(t, sender.ID, "Alice")

	// A note can arrive through the note endpoint without the page ever
	// being opened; it must still reach the sender's feed
	if err := env.engagement.Note(resp.Sent[0].Token, "saving these for later"); err != nil {
		t.Fatalf("note failed: %v", err)
	}

	feed, err := env.activity.Feed(sender.ID, 0)
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}

	var note *model.ActivityEvent
	for i := range feed.Events {
		if feed.Events[i].Type == model.ActivityEventNote {
			note = &feed.Events[i]
		}
	}
	if note == nil {
		t.Fatalf("expected a note event, got %+v", feed.Events)
	}
	if note.Note != "saving these for later" || note.RecipientName != "Alice" {
		t.Errorf("unexpected note event: %+v", note)
	}
	if note.Timestamp.IsZero() {
		t.Error("note event must carry a timestamp even without a view")
	}
}

func TestFeedScopedToSender(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")
	other := env.createUser(t, "Other")

	env.createSentDump(t, sender.ID, "Alice")
	env.createSentDump(t, other.ID, "Bob")

	feed, err := env.activity.Feed(sender.ID, 0)
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if len(feed.Events) != 1 {
		t.Fatalf("expected only the sender's event, got %d", len(feed.Events))
	}
}

func TestFeedHonorsLimit(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")

	for i := 0; i < 5; i++ {
		env.createSentDump(t, sender.ID, "Alice")
	}

	feed, err := env.activity.Feed(sender.ID, 3)
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if len(feed.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(feed.Events))
	}
}

func TestBucketizeLabels(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)
	events := []model.ActivityEvent{
		{Type: model.ActivityEventSent, Timestamp: now.Add(-1 * time.Hour)},           // Today
		{Type: model.ActivityEventView, Timestamp: now.Add(-20 * time.Hour)},          // Yesterday
		{Type: model.ActivityEventReaction, Timestamp: now.AddDate(0, 0, -3)},         // This Week
		{Type: model.ActivityEventNote, Timestamp: now.AddDate(0, 0, -10)},            // This Month
		{Type: model.ActivityEventSent, Timestamp: now.AddDate(0, -2, 0)},             // Earlier
		{Type: model.ActivityEventView, Timestamp: now.AddDate(0, -2, 0).Add(-time.Hour)}, // Earlier again
	}

	buckets := bucketize(events, now)

	wantLabels := []string{"Today", "Yesterday", "This Week", "This Month", "Earlier"}
	if len(buckets) != len(wantLabels) {
		t.Fatalf("expected %d buckets, got %d: %+v", len(wantLabels), len(buckets), buckets)
	}
	for i, want := range wantLabels {
		if buckets[i].Label != want {
			t.Errorf("bucket %d: expected %q, got %q", i, want, buckets[i].Label)
		}
	}
	if len(buckets[4].Events) != 2 {
		t.Errorf("consecutive same-label events should share a bucket, got %d", len(buckets[4].Events))
	}
}

func TestBucketizeEmpty(t *testing.T) {
	if buckets := bucketize(nil, time.Now()); len(buckets) != 0 {
		t.Fatalf("expected no buckets, got %+v", buckets)
	}
}
