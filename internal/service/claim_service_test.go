package service

import (
	"strings"
	"testing"

	"github.com/quangdng/memedump/pkg/apperr"
)

func TestClaimLinksRecipientAndLedger(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")
	claimer := env.createUser(t, "Claimer")

	dump, resp := env.createSentDump(t, sender.ID, "Claimer")
	code := *resp.Sent[0].ClaimCode

	result, err := env.claims.Claim(claimer.ID, code)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if result.SenderName != "Sender" || result.DumpID != dump.ID {
		t.Errorf("unexpected claim response: %+v", result)
	}
	if result.Token != resp.Sent[0].Token {
		t.Error("claim must hand back the recipient's view token")
	}

	recipient, err := env.recipientRepo.FindByToken(result.Token)
	if err != nil {
		t.Fatalf("failed to reload recipient: %v", err)
	}
	if recipient.ClaimedAt == nil {
		t.Error("claimed recipient must carry a claim timestamp")
	}
	if recipient.UserID == nil || *recipient.UserID != claimer.ID {
		t.Errorf("recipient should be linked to the claiming account, got %+v", recipient.UserID)
	}

	// The ledger entry turns (Sender, "Claimer") into a connection
	conn, err := env.connRepo.FindClaimed(sender.ID, "claimer")
	if err != nil {
		t.Fatalf("expected claimed ledger entry: %v", err)
	}
	if conn.ConnectedUserID == nil || *conn.ConnectedUserID != claimer.ID {
		t.Errorf("ledger should point at the claiming account, got %+v", conn.ConnectedUserID)
	}

	// The next send to the same name takes the push branch
	_, resend := env.createSentDump(t, sender.ID, "Claimer")
	if resend.Sent[0].ClaimCode != nil {
		t.Error("connected recipient must not get a fresh claim code")
	}
	if resend.Sent[0].UserID == nil || *resend.Sent[0].UserID != claimer.ID {
		t.Error("connected recipient should be linked immediately")
	}
}

func TestClaimRejectsBadCodes(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")
	claimer := env.createUser(t, "Claimer")
	other := env.createUser(t, "Other")

	_, resp := env.createSentDump(t, sender.ID, "Claimer")
	code := *resp.Sent[0].ClaimCode

	if _, err := env.claims.Claim(claimer.ID, "ZZZZZZ"); apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Errorf("expected NOT_FOUND for unknown code, got %v", err)
	}
	if _, err := env.claims.Claim(claimer.ID, ""); apperr.CodeOf(err) != apperr.CodeInvalidArgument {
		t.Errorf("expected INVALID_ARGUMENT for empty code, got %v", err)
	}

	// The sender cannot claim a slot on their own dump
	if _, err := env.claims.Claim(sender.ID, code); apperr.CodeOf(err) != apperr.CodeConflict {
		t.Errorf("expected CONFLICT for own dump, got %v", err)
	}

	if _, err := env.claims.Claim(claimer.ID, code); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	// Single use: a second redemption fails, even from another account
	if _, err := env.claims.Claim(other.ID, code); apperr.CodeOf(err) != apperr.CodeConflict {
		t.Errorf("expected CONFLICT for reused code, got %v", err)
	}
}

func TestClaimAcceptsLowercaseInput(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")
	claimer := env.createUser(t, "Claimer")

	_, resp := env.createSentDump(t, sender.ID, "Claimer")
	code := *resp.Sent[0].ClaimCode

	if _, err := env.claims.Claim(claimer.ID, "  "+strings.ToLower(code)+" "); err != nil {
		t.Fatalf("claim should normalize case and whitespace: %v", err)
	}
}

func TestClaimBeforeViewDoesNotStampView(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "Sender")
	claimer := env.createUser(t, "Claimer")

	_, resp := env.createSentDump(t, sender.ID, "Claimer")

	result, err := env.claims.Claim(claimer.ID, *resp.Sent[0].ClaimCode)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	recipient, err := env.recipientRepo.FindByToken(result.Token)
	if err != nil {
		t.Fatalf("failed to reload recipient: %v", err)
	}
	if recipient.ViewedAt != nil || recipient.ViewCount != 0 {
		t.Error("claiming is not viewing")
	}

	// Viewing afterwards works as usual and no longer prompts for a claim
	view, err := env.engagement.View(result.Token)
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if view.NeedsClaim {
		t.Error("claimed recipient must not be prompted to claim again")
	}
}
