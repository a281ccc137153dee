package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/internal/repository"
	"github.com/quangdng/memedump/pkg/apperr"
	"github.com/quangdng/memedump/pkg/token"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	tokenGenAttempts = 5
	sharePreviewCap  = 4
)

// Notifier is the outbound push contract. A send that reaches zero devices
// reports delivered=false without error.
type Notifier interface {
	Send(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string) (bool, error)
}

// InviteMailer delivers claim invites to recipients resolved with an email
// address. Best-effort, like push.
type InviteMailer interface {
	SendClaimInvite(toEmail, recipientName, senderName, viewURL, claimCode string, memeCount int) error
}

// DumpService owns the dump lifecycle (draft, membership, share token) and
// the per-recipient distribution decision when a dump is sent.
type DumpService struct {
	dumpRepo      *repository.DumpRepository
	memeRepo      *repository.MemeRepository
	recipientRepo *repository.RecipientRepository
	connRepo      *repository.ConnectionRepository
	userRepo      *repository.UserRepository
	resolver      *ResolverService
	notifier      Notifier
	mailer        InviteMailer
	publicURL     string
	logger        *zap.Logger
}

func NewDumpService(
	dumpRepo *repository.DumpRepository,
	memeRepo *repository.MemeRepository,
	recipientRepo *repository.RecipientRepository,
	connRepo *repository.ConnectionRepository,
	userRepo *repository.UserRepository,
	resolver *ResolverService,
	notifier Notifier,
	mailer InviteMailer,
	publicURL string,
	logger *zap.Logger,
) *DumpService {
	return &DumpService{
		dumpRepo:      dumpRepo,
		memeRepo:      memeRepo,
		recipientRepo: recipientRepo,
		connRepo:      connRepo,
		userRepo:      userRepo,
		resolver:      resolver,
		notifier:      notifier,
		mailer:        mailer,
		publicURL:     publicURL,
		logger:        logger,
	}
}

// Create starts a new draft dump, optionally seeded with memes and/or the
// contents of a collection
func (s *DumpService) Create(senderID uuid.UUID, req model.CreateDumpRequest) (*model.Dump, error) {
	memeIDs := req.MemeIDs
	if len(memeIDs) > 0 {
		if _, err := s.memeRepo.FindOwned(senderID, memeIDs); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("meme not found")
			}
			return nil, err
		}
	}

	if req.CollectionID != nil {
		collection, err := s.memeRepo.FindCollection(senderID, *req.CollectionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("collection not found")
			}
			return nil, err
		}
		present := make(map[uuid.UUID]struct{}, len(memeIDs))
		for _, id := range memeIDs {
			present[id] = struct{}{}
		}
		for _, cm := range collection.Memes {
			if _, ok := present[cm.MemeID]; ok {
				continue
			}
			present[cm.MemeID] = struct{}{}
			memeIDs = append(memeIDs, cm.MemeID)
		}
	}

	dump := &model.Dump{
		SenderID: senderID,
		Note:     req.Note,
		IsDraft:  true,
	}
	if err := s.dumpRepo.Create(dump); err != nil {
		return nil, err
	}
	if len(memeIDs) > 0 {
		if err := s.dumpRepo.AppendMemes(dump.ID, memeIDs); err != nil {
			return nil, err
		}
	}
	return dump, nil
}

// List returns the sender's dumps
func (s *DumpService) List(senderID uuid.UUID) ([]model.Dump, error) {
	return s.dumpRepo.ListBySender(senderID)
}

// Get returns one owned dump with its memes in order and its recipients
func (s *DumpService) Get(senderID, dumpID uuid.UUID) (*model.Dump, error) {
	dump, err := s.dumpRepo.FindOwned(dumpID, senderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("dump not found")
		}
		return nil, err
	}
	memes, err := s.dumpRepo.GetMemes(dumpID)
	if err != nil {
		return nil, err
	}
	recipients, err := s.recipientRepo.ListForDump(dumpID)
	if err != nil {
		return nil, err
	}
	dump.Recipients = recipients
	dump.Memes = make([]model.DumpMeme, 0, len(memes))
	for i, m := range memes {
		dump.Memes = append(dump.Memes, model.DumpMeme{
			DumpID:    dumpID,
			MemeID:    m.ID,
			SortOrder: i + 1,
			Meme:      m,
		})
	}
	return dump, nil
}

// UpdateNote overwrites the sender's note. Only drafts are editable; sending
// or minting a share link freezes the note.
func (s *DumpService) UpdateNote(senderID, dumpID uuid.UUID, note string) error {
	if _, err := s.dumpRepo.FindOwned(dumpID, senderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("dump not found")
		}
		return err
	}
	rows, err := s.dumpRepo.UpdateNote(dumpID, note)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.Conflict("cannot edit the note of a sent dump")
	}
	return nil
}

// AppendMemes adds memes to the end of a dump. Works on drafts and on
// already-sent dumps alike; prior ordering is never disturbed.
func (s *DumpService) AppendMemes(senderID, dumpID uuid.UUID, memeIDs []uuid.UUID) error {
	if _, err := s.dumpRepo.FindOwned(dumpID, senderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("dump not found")
		}
		return err
	}
	if len(memeIDs) == 0 {
		return apperr.InvalidArg("no memes given")
	}
	if _, err := s.memeRepo.FindOwned(senderID, memeIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("meme not found")
		}
		return err
	}
	return s.dumpRepo.AppendMemes(dumpID, memeIDs)
}

// AddCollection appends a collection's memes to a dump, skipping memes the
// dump already contains
func (s *DumpService) AddCollection(senderID, dumpID, collectionID uuid.UUID) error {
	if _, err := s.dumpRepo.FindOwned(dumpID, senderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("dump not found")
		}
		return err
	}
	collection, err := s.memeRepo.FindCollection(senderID, collectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("collection not found")
		}
		return err
	}
	existing, err := s.dumpRepo.GetMemes(dumpID)
	if err != nil {
		return err
	}
	present := make(map[uuid.UUID]struct{}, len(existing))
	for _, m := range existing {
		present[m.ID] = struct{}{}
	}
	var toAdd []uuid.UUID
	for _, cm := range collection.Memes {
		if _, ok := present[cm.MemeID]; ok {
			continue
		}
		present[cm.MemeID] = struct{}{}
		toAdd = append(toAdd, cm.MemeID)
	}
	return s.dumpRepo.AppendMemes(dumpID, toAdd)
}

// Send distributes a dump to its resolved recipients. Preconditions (at least
// one meme, at least one resolved recipient) are checked before any mutation.
// The draft flag flips before recipient creation starts, so a crash mid-loop
// leaves a sent dump with a partial recipient set that a resend completes:
// recipients already on the dump are skipped, everyone else is added.
func (s *DumpService) Send(ctx context.Context, senderID, dumpID uuid.UUID, input model.RecipientInput) (*model.SendDumpResponse, error) {
	dump, err := s.dumpRepo.FindOwned(dumpID, senderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("dump not found")
		}
		return nil, err
	}

	memeCount, err := s.dumpRepo.CountMemes(dumpID)
	if err != nil {
		return nil, err
	}
	if memeCount == 0 {
		return nil, apperr.InvalidArg("dump has no memes")
	}

	resolved, err := s.resolver.Resolve(senderID, input)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, apperr.InvalidArg("no recipients resolved")
	}

	sender, err := s.userRepo.FindByID(senderID)
	if err != nil {
		return nil, err
	}

	// Flip before the loop; a partial failure must still read as sent
	if err := s.dumpRepo.MarkSent(dumpID); err != nil {
		return nil, err
	}
	dump.IsDraft = false

	existingNames, err := s.recipientRepo.NamesForDump(dumpID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]struct{}, len(existingNames))
	for _, name := range existingNames {
		taken[model.NormalizeName(name)] = struct{}{}
	}

	resp := &model.SendDumpResponse{Dump: *dump}
	for _, recipient := range resolved {
		nameKey := model.NormalizeName(recipient.Name)
		if _, ok := taken[nameKey]; ok {
			resp.Skipped = append(resp.Skipped, recipient.Name)
			continue
		}
		taken[nameKey] = struct{}{}

		row, err := s.distribute(ctx, sender, dump, recipient, int(memeCount))
		if err != nil {
			s.logger.Warn("recipient creation failed",
				zap.String("dump_id", dumpID.String()),
				zap.String("recipient", recipient.Name),
				zap.Error(err))
			resp.Failed = append(resp.Failed, model.RecipientFailure{
				Name:   recipient.Name,
				Reason: err.Error(),
			})
			continue
		}
		resp.Sent = append(resp.Sent, *row)
	}

	s.logger.Info("dump sent",
		zap.String("dump_id", dumpID.String()),
		zap.Int("recipients", len(resp.Sent)),
		zap.Int("skipped", len(resp.Skipped)),
		zap.Int("failed", len(resp.Failed)))

	return resp, nil
}

// distribute creates one DumpRecipient, choosing silent push for recipients
// already claimed in the sender's ledger and a claim code for everyone else
func (s *DumpService) distribute(ctx context.Context, sender *model.User, dump *model.Dump, recipient model.ResolvedRecipient, memeCount int) (*model.DumpRecipient, error) {
	viewToken, err := s.uniqueViewToken()
	if err != nil {
		return nil, err
	}

	conn, err := s.connRepo.FindClaimed(sender.ID, recipient.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if conn != nil {
		// Already connected: silent push, never a fresh claim code
		row := &model.DumpRecipient{
			DumpID: dump.ID,
			Name:   recipient.Name,
			Email:  recipient.Email,
			Token:  viewToken,
			UserID: conn.ConnectedUserID,
		}
		if err := s.recipientRepo.Create(row); err != nil {
			return nil, err
		}

		title := "New meme dump"
		body := fmt.Sprintf("%s sent you %d meme(s)", sender.Name, memeCount)
		delivered, err := s.notifier.Send(ctx, *conn.ConnectedUserID, title, body, map[string]string{
			"dump_id": dump.ID.String(),
		})
		if err != nil {
			// Delivery is best-effort; the recipient row stands
			s.logger.Warn("push delivery failed",
				zap.String("dump_id", dump.ID.String()),
				zap.String("recipient", recipient.Name),
				zap.Error(err))
			delivered = false
		}
		if err := s.recipientRepo.SetNotified(row.ID, delivered); err != nil {
			return nil, err
		}
		row.Notified = delivered
		return row, nil
	}

	// Not connected: issue a single-use claim code alongside the view token
	claimCode, err := s.uniqueClaimCode()
	if err != nil {
		return nil, err
	}
	row := &model.DumpRecipient{
		DumpID:    dump.ID,
		Name:      recipient.Name,
		Email:     recipient.Email,
		Token:     viewToken,
		ClaimCode: &claimCode,
	}
	if err := s.recipientRepo.Create(row); err != nil {
		return nil, err
	}

	if recipient.Email != "" && s.mailer != nil {
		viewURL := fmt.Sprintf("%s/r/%s", s.publicURL, viewToken)
		if err := s.mailer.SendClaimInvite(recipient.Email, recipient.Name, sender.Name, viewURL, claimCode, memeCount); err != nil {
			s.logger.Warn("claim invite email failed",
				zap.String("dump_id", dump.ID.String()),
				zap.String("recipient", recipient.Name),
				zap.Error(err))
		}
	}
	return row, nil
}

// GenerateShareToken returns the dump's public preview token, minting it on
// first call. An existing token is returned unchanged, never regenerated.
// Minting also flips the draft flag.
func (s *DumpService) GenerateShareToken(senderID, dumpID uuid.UUID) (string, error) {
	dump, err := s.dumpRepo.FindOwned(dumpID, senderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFound("dump not found")
		}
		return "", err
	}
	if dump.ShareToken != nil {
		return *dump.ShareToken, nil
	}

	memeCount, err := s.dumpRepo.CountMemes(dumpID)
	if err != nil {
		return "", err
	}
	if memeCount == 0 {
		return "", apperr.InvalidArg("dump has no memes")
	}

	var shareToken string
	for attempt := 0; attempt < tokenGenAttempts; attempt++ {
		candidate, err := token.NewToken()
		if err != nil {
			return "", err
		}
		exists, err := s.dumpRepo.ShareTokenExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			shareToken = candidate
			break
		}
	}
	if shareToken == "" {
		return "", apperr.Internal("could not generate a unique share token")
	}

	if err := s.dumpRepo.SetShareToken(dumpID, shareToken); err != nil {
		return "", err
	}

	// A concurrent call may have won the guarded update; theirs is the token
	fresh, err := s.dumpRepo.FindOwned(dumpID, senderID)
	if err != nil {
		return "", err
	}
	return *fresh.ShareToken, nil
}

// SharePreview resolves a public share token into the recipient-agnostic
// preview: the sender, the note, and the first few memes
func (s *DumpService) SharePreview(shareToken string) (*model.SharePreviewResponse, error) {
	dump, err := s.dumpRepo.FindByShareToken(shareToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("dump not found")
		}
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
	preview := memes
	if len(preview) > sharePreviewCap {
		preview = preview[:sharePreviewCap]
	}
	return &model.SharePreviewResponse{
		SenderName: sender.Name,
		Note:       dump.Note,
		MemeCount:  len(memes),
		Preview:    preview,
		CanClaim:   true,
	}, nil
}

func (s *DumpService) uniqueViewToken() (string, error) {
	for attempt := 0; attempt < tokenGenAttempts; attempt++ {
		candidate, err := token.NewToken()
		if err != nil {
			return "", err
		}
		exists, err := s.recipientRepo.TokenExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", apperr.Internal("could not generate a unique recipient token")
}

func (s *DumpService) uniqueClaimCode() (string, error) {
	for attempt := 0; attempt < tokenGenAttempts; attempt++ {
		candidate, err := token.NewClaimCode()
		if err != nil {
			return "", err
		}
		exists, err := s.recipientRepo.ClaimCodeExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", apperr.Internal("could not generate a unique claim code")
}
