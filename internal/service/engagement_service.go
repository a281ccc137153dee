package service

import (
	"errors"
	"strings"
	"time"

	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/internal/repository"
	"github.com/quangdng/memedump/pkg/apperr"
	"gorm.io/gorm"
)

// EngagementService is the recipient-facing side: everything reachable
// through a private view token — views, reactions, and the free-text note
// back to the sender.
type EngagementService struct {
	recipientRepo *repository.RecipientRepository
	dumpRepo      *repository.DumpRepository
	userRepo      *repository.UserRepository
}

func NewEngagementService(
	recipientRepo *repository.RecipientRepository,
	dumpRepo *repository.DumpRepository,
	userRepo *repository.UserRepository,
) *EngagementService {
	return &EngagementService{
		recipientRepo: recipientRepo,
		dumpRepo:      dumpRepo,
		userRepo:      userRepo,
	}
}

// View records one view and returns everything the recipient page needs.
// The first view stamps viewed_at; every view increments view_count. Both
// happen in one guarded update, so racing duplicate requests cannot stamp
// viewed_at twice or lose a count.
func (s *EngagementService) View(viewToken string) (*model.RecipientViewResponse, error) {
	rows, err := s.recipientRepo.RegisterView(viewToken, time.Now())
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, apperr.NotFound("recipient not found")
	}

	recipient, err := s.recipientRepo.FindByToken(viewToken)
	if err != nil {
		return nil, err
	}
	dump, err := s.dumpRepo.FindByID(recipient.DumpID)
	if err != nil {
		return nil, err
	}
	sender, err := s.userRepo.FindByID(dump.SenderID)
	if err != nil {
		return nil, err
	}
	memes, err := s.dumpRepo.GetMemes(dump.ID)
	if err != nil {
		return nil, err
	}
	reactions, err := s.recipientRepo.GetReactions(recipient.ID)
	if err != nil {
		return nil, err
	}

	return &model.RecipientViewResponse{
		Recipient:  *recipient,
		SenderName: sender.Name,
		Note:       dump.Note,
		Memes:      memes,
		Reactions:  reactions,
		NeedsClaim: recipient.ClaimCode != nil && !recipient.IsClaimed(),
	}, nil
}

// React upserts or removes the recipient's single emoji on one meme of their
// dump. A non-empty emoji replaces whatever was there; an empty one removes
// the reaction entirely.
func (s *EngagementService) React(viewToken string, req model.ReactRequest) error {
	recipient, err := s.recipientRepo.FindByToken(viewToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("recipient not found")
		}
		return err
	}

	inDump, err := s.dumpRepo.ContainsMeme(recipient.DumpID, req.MemeID)
	if err != nil {
		return err
	}
	if !inDump {
		return apperr.NotFound("meme not found")
	}

	emoji := strings.TrimSpace(req.Emoji)
	if emoji == "" {
		return s.recipientRepo.DeleteReaction(recipient.ID, req.MemeID)
	}
	return s.recipientRepo.UpsertReaction(recipient.ID, req.MemeID, emoji)
}

// Note overwrites the recipient's free-text note. No history; last write wins.
func (s *EngagementService) Note(viewToken string, note string) error {
	recipient, err := s.recipientRepo.FindByToken(viewToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("recipient not found")
		}
		return err
	}
	return s.recipientRepo.UpdateNote(recipient.ID, note)
}
