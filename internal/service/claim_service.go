package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/internal/repository"
	"github.com/quangdng/memedump/pkg/apperr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClaimService converts a one-time claim code into a permanent ledger entry.
// Once a recipient claims, every future send from the same sender to the same
// name takes the silent-push branch.
type ClaimService struct {
	db            *gorm.DB
	recipientRepo *repository.RecipientRepository
	connRepo      *repository.ConnectionRepository
	userRepo      *repository.UserRepository
	logger        *zap.Logger
}

func NewClaimService(
	db *gorm.DB,
	recipientRepo *repository.RecipientRepository,
	connRepo *repository.ConnectionRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *ClaimService {
	return &ClaimService{
		db:            db,
		recipientRepo: recipientRepo,
		connRepo:      connRepo,
		userRepo:      userRepo,
		logger:        logger,
	}
}

// Claim validates a claim code and, on success, stamps the recipient slot and
// links (sender, recipient name) to the claiming account in the ledger.
// Validation order: unknown code, already redeemed, sender claiming their own
// dump. The stamp is guarded so a code redeems at most once under concurrency.
func (s *ClaimService) Claim(claimingUserID uuid.UUID, code string) (*model.ClaimResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperr.InvalidArg("claim code required")
	}

	recipient, err := s.recipientRepo.FindByClaimCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("invalid claim code")
		}
		return nil, err
	}
	if recipient.IsClaimed() {
		return nil, apperr.Conflict("claim code already used")
	}
	if recipient.Dump.SenderID == claimingUserID {
		return nil, apperr.Conflict("cannot claim a recipient slot on your own dump")
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		rows, err := s.recipientRepo.MarkClaimed(tx, recipient.ID, claimingUserID, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Lost the race to another redeem attempt
			return apperr.Conflict("claim code already used")
		}
		return s.connRepo.MarkConnected(tx, recipient.Dump.SenderID, recipient.Name, claimingUserID, now)
	})
	if err != nil {
		return nil, err
	}

	sender, err := s.userRepo.FindByID(recipient.Dump.SenderID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("claim code redeemed",
		zap.String("dump_id", recipient.DumpID.String()),
		zap.String("recipient", recipient.Name),
		zap.String("claiming_user", claimingUserID.String()))

	return &model.ClaimResponse{
		SenderName: sender.Name,
		DumpID:     recipient.DumpID,
		Token:      recipient.Token,
	}, nil
}
