package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/pkg/apperr"
)

func TestSendDumpIssuesClaimCodes(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")

	dump, resp := env.createSentDump(t, sender.ID, "Alice, bob@example.com")

	if len(resp.Sent) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(resp.Sent))
	}
	for _, recipient := range resp.Sent {
		if recipient.Token == "" {
			t.Errorf("recipient %s has no view token", recipient.Name)
		}
		if recipient.ClaimCode == nil || *recipient.ClaimCode == "" {
			t.Errorf("recipient %s has no claim code", recipient.Name)
		}
		if recipient.UserID != nil {
			t.Errorf("recipient %s should not be linked to an account", recipient.Name)
		}
	}

	// The draft flag flips on first send
	fresh, err := env.dumpRepo.FindByID(dump.ID)
	if err != nil {
		t.Fatalf("failed to reload dump: %v", err)
	}
	if fresh.IsDraft {
		t.Error("dump should no longer be a draft after send")
	}

	// The emailed recipient gets a claim invite; the nameless one does not
	if len(env.mailer.invites) != 1 {
		t.Fatalf("expected 1 claim invite, got %d", len(env.mailer.invites))
	}
	invite := env.mailer.invites[0]
	if invite.To != "bob@example.com" || invite.Sender != "Sender" || invite.MemeCount != 2 {
		t.Errorf("unexpected invite: %+v", invite)
	}

	// Nobody is connected yet, so no pushes
	if len(env.notifier.sends) != 0 {
		t.Errorf("expected no pushes, got %d", len(env.notifier.sends))
	}
}

func TestSendDumpPushesToClaimedConnections(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")
	friend := env.createUser(t, "Friend")

	// Friend previously claimed a code from this sender
	if err := env.connRepo.MarkConnected(nil, sender.ID, "Friend", friend.ID, time.Now()); err != nil {
		t.Fatalf("failed to connect ledger entry: %v", err)
	}

	_, resp := env.createSentDump(t, sender.ID, "Friend")

	if len(resp.Sent) != 1 {
		t.Fatalf("expected 1 recipient, got %d", len(resp.Sent))
	}
	recipient := resp.Sent[0]
	if recipient.UserID == nil || *recipient.UserID != friend.ID {
		t.Fatalf("recipient should be linked to friend's account, got %+v", recipient.UserID)
	}
	if recipient.ClaimCode != nil {
		t.Error("connected recipient must not get a fresh claim code")
	}
	if !recipient.Notified {
		t.Error("recipient should be marked notified")
	}

	if len(env.notifier.sends) != 1 {
		t.Fatalf("expected 1 push, got %d", len(env.notifier.sends))
	}
	if env.notifier.sends[0].UserID != friend.ID {
		t.Errorf("push went to wrong user: %s", env.notifier.sends[0].UserID)
	}
}

func TestSendDumpSurvivesPushFailure(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")
	friend := env.createUser(t, "Friend")

	if err := env.connRepo.MarkConnected(nil, sender.ID, "Friend", friend.ID, time.Now()); err != nil {
		t.Fatalf("failed to connect ledger entry: %v", err)
	}
	env.notifier.fail = true

	_, resp := env.createSentDump(t, sender.ID, "Friend")

	if len(resp.Sent) != 1 {
		t.Fatalf("expected recipient despite push failure, got %d sent, %d failed", len(resp.Sent), len(resp.Failed))
	}
	if resp.Sent[0].Notified {
		t.Error("failed push must leave notified=false")
	}
}

func TestResendSkipsExistingRecipients(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")

	dump, first := env.createSentDump(t, sender.ID, "Alice, Bob")
	if len(first.Sent) != 2 {
		t.Fatalf("expected 2 recipients on first send, got %d", len(first.Sent))
	}

	// Resend with an overlap; only the new name is added
	second, err := env.dumps.Send(context.Background(), sender.ID, dump.ID, model.RecipientInput{
		Manual: "alice, Carol",
	})
	if err != nil {
		t.Fatalf("resend failed: %v", err)
	}
	if len(second.Sent) != 1 || second.Sent[0].Name != "Carol" {
		t.Fatalf("expected only Carol sent, got %+v", second.Sent)
	}
	if len(second.Skipped) != 1 || second.Skipped[0] != "alice" {
		t.Fatalf("expected alice skipped, got %+v", second.Skipped)
	}

	all, err := env.recipientRepo.ListForDump(dump.ID)
	if err != nil {
		t.Fatalf("failed to list recipients: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 recipients total, got %d", len(all))
	}
}

func TestSendDumpPreconditions(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")
	stranger := env.createUser(t, "Stranger")

	memeIDs := env.createMemes(t, sender.ID, 1)
	dump, err := env.dumps.Create(sender.ID, model.CreateDumpRequest{MemeIDs: memeIDs})
	if err != nil {
		t.Fatalf("failed to create dump: %v", err)
	}
	empty, err := env.dumps.Create(sender.ID, model.CreateDumpRequest{})
	if err != nil {
		t.Fatalf("failed to create empty dump: %v", err)
	}

	input := model.RecipientInput{Manual: "Alice"}

	// Someone else's dump reads as missing, not forbidden
	if _, err := env.dumps.Send(context.Background(), stranger.ID, dump.ID, input); apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Errorf("expected NOT_FOUND for foreign dump, got %v", err)
	}
	if _, err := env.dumps.Send(context.Background(), sender.ID, empty.ID, input); apperr.CodeOf(err) != apperr.CodeInvalidArgument {
		t.Errorf("expected INVALID_ARGUMENT for memeless dump, got %v", err)
	}
	if _, err := env.dumps.Send(context.Background(), sender.ID, dump.ID, model.RecipientInput{}); apperr.CodeOf(err) != apperr.CodeInvalidArgument {
		t.Errorf("expected INVALID_ARGUMENT for empty recipients, got %v", err)
	}

	// Failed preconditions leave the draft untouched
	fresh, err := env.dumpRepo.FindByID(dump.ID)
	if err != nil {
		t.Fatalf("failed to reload dump: %v", err)
	}
	if !fresh.IsDraft {
		t.Error("precondition failure must not flip the draft flag")
	}
}

func TestNoteFreezesAfterSend(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")

	memeIDs := env.createMemes(t, sender.ID, 1)
	dump, err := env.dumps.Create(sender.ID, model.CreateDumpRequest{Note: "draft note", MemeIDs: memeIDs})
	if err != nil {
		t.Fatalf("failed to create dump: %v", err)
	}

	// Drafts are freely editable
	if err := env.dumps.UpdateNote(sender.ID, dump.ID, "final note"); err != nil {
		t.Fatalf("draft note update failed: %v", err)
	}

	if _, err := env.dumps.Send(context.Background(), sender.ID, dump.ID, model.RecipientInput{Manual: "Alice"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	// Sending freezes the note; only membership stays appendable
	if err := env.dumps.UpdateNote(sender.ID, dump.ID, "edited after send"); apperr.CodeOf(err) != apperr.CodeConflict {
		t.Fatalf("expected CONFLICT editing a sent dump's note, got %v", err)
	}

	fresh, err := env.dumpRepo.FindByID(dump.ID)
	if err != nil {
		t.Fatalf("failed to reload dump: %v", err)
	}
	if fresh.Note != "final note" {
		t.Fatalf("sent dump's note must be unchanged, got %q", fresh.Note)
	}
}

func TestNoteFreezesAfterShareLink(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")

	dump, err := env.dumps.Create(sender.ID, model.CreateDumpRequest{Note: "shared", MemeIDs: env.createMemes(t, sender.ID, 1)})
	if err != nil {
		t.Fatalf("failed to create dump: %v", err)
	}
	if _, err := env.dumps.GenerateShareToken(sender.ID, dump.ID); err != nil {
		t.Fatalf("failed to generate share token: %v", err)
	}

	// Minting a share link commits the dump like a send does
	if err := env.dumps.UpdateNote(sender.ID, dump.ID, "too late"); apperr.CodeOf(err) != apperr.CodeConflict {
		t.Fatalf("expected CONFLICT editing a shared dump's note, got %v", err)
	}
}

func TestShareTokenIsStable(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")

	memeIDs := env.createMemes(t, sender.ID, 3)
	dump, err := env.dumps.Create(sender.ID, model.CreateDumpRequest{MemeIDs: memeIDs})
	if err != nil {
		t.Fatalf("failed to create dump: %v", err)
	}

	first, err := env.dumps.GenerateShareToken(sender.ID, dump.ID)
	if err != nil {
		t.Fatalf("failed to generate share token: %v", err)
	}
	second, err := env.dumps.GenerateShareToken(sender.ID, dump.ID)
	if err != nil {
		t.Fatalf("failed on repeat call: %v", err)
	}
	if first == "" || first != second {
		t.Fatalf("share token must be stable: %q vs %q", first, second)
	}

	// Minting a share link commits the dump like a send does
	fresh, err := env.dumpRepo.FindByID(dump.ID)
	if err != nil {
		t.Fatalf("failed to reload dump: %v", err)
	}
	if fresh.IsDraft {
		t.Error("dump should no longer be a draft after share link")
	}

	preview, err := env.dumps.SharePreview(first)
	if err != nil {
		t.Fatalf("failed to load share preview: %v", err)
	}
	if preview.SenderName != "Sender" || preview.MemeCount != 3 {
		t.Errorf("unexpected preview: %+v", preview)
	}
}

func TestShareTokenRequiresMemes(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")

	dump, err := env.dumps.Create(sender.ID, model.CreateDumpRequest{})
	if err != nil {
		t.Fatalf("failed to create dump: %v", err)
	}
	if _, err := env.dumps.GenerateShareToken(sender.ID, dump.ID); apperr.CodeOf(err) != apperr.CodeInvalidArgument {
		t.Errorf("expected INVALID_ARGUMENT for empty dump, got %v", err)
	}
}

func TestAppendMemesContinuesOrdering(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")

	initial := env.createMemes(t, sender.ID, 2)
	dump, err := env.dumps.Create(sender.ID, model.CreateDumpRequest{MemeIDs: initial})
	if err != nil {
		t.Fatalf("failed to create dump: %v", err)
	}

	extra := env.createMemes(t, sender.ID, 2)
	if err := env.dumps.AppendMemes(sender.ID, dump.ID, extra); err != nil {
		t.Fatalf("failed to append memes: %v", err)
	}

	memes, err := env.dumpRepo.GetMemes(dump.ID)
	if err != nil {
		t.Fatalf("failed to load memes: %v", err)
	}
	want := append(append([]uuid.UUID{}, initial...), extra...)
	if len(memes) != len(want) {
		t.Fatalf("expected %d memes, got %d", len(want), len(memes))
	}
	for i, m := range memes {
		if m.ID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], m.ID)
		}
	}
}

func TestAppendMemesRejectsForeignMemes(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")
	other := env.createUser(t, "Other")

	dump, err := env.dumps.Create(sender.ID, model.CreateDumpRequest{MemeIDs: env.createMemes(t, sender.ID, 1)})
	if err != nil {
		t.Fatalf("failed to create dump: %v", err)
	}
	foreign := env.createMemes(t, other.ID, 1)
	if err := env.dumps.AppendMemes(sender.ID, dump.ID, foreign); apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Errorf("expected NOT_FOUND for foreign meme, got %v", err)
	}
}

func TestAddCollectionSkipsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")

	memeIDs := env.createMemes(t, sender.ID, 3)
	collection := &model.Collection{OwnerID: sender.ID, Name: "classics"}
	if err := env.db.Create(collection).Error; err != nil {
		t.Fatalf("failed to create collection: %v", err)
	}
	for i, id := range memeIDs {
		if err := env.db.Create(&model.CollectionMeme{
			CollectionID: collection.ID,
			MemeID:       id,
			SortOrder:    i + 1,
		}).Error; err != nil {
			t.Fatalf("failed to add meme to collection: %v", err)
		}
	}

	// The dump already holds the first meme of the collection
	dump, err := env.dumps.Create(sender.ID, model.CreateDumpRequest{MemeIDs: memeIDs[:1]})
	if err != nil {
		t.Fatalf("failed to create dump: %v", err)
	}
	if err := env.dumps.AddCollection(sender.ID, dump.ID, collection.ID); err != nil {
		t.Fatalf("failed to add collection: %v", err)
	}

	memes, err := env.dumpRepo.GetMemes(dump.ID)
	if err != nil {
		t.Fatalf("failed to load memes: %v", err)
	}
	if len(memes) != 3 {
		t.Fatalf("expected 3 memes after merge, got %d", len(memes))
	}
	for i, m := range memes {
		if m.ID != memeIDs[i] {
			t.Errorf("position %d: expected %s, got %s", i, memeIDs[i], m.ID)
		}
	}
}
