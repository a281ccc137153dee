package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/internal/repository"
)

// ResolverService turns a send request's group selections, connection
// selections and free-text entries into one ordered, deduplicated recipient
// list. First occurrence wins; later duplicates are dropped silently.
type ResolverService struct {
	groupRepo *repository.GroupRepository
	connRepo  *repository.ConnectionRepository
}

func NewResolverService(
	groupRepo *repository.GroupRepository,
	connRepo *repository.ConnectionRepository,
) *ResolverService {
	return &ResolverService{
		groupRepo: groupRepo,
		connRepo:  connRepo,
	}
}

// Resolve produces the deduplicated recipient list in group, then connection,
// then manual-entry order. The dedup key is the lowercased email where one is
// known (group members, manual emails) and the normalized name otherwise.
// An empty result is valid resolver output; the send operation decides
// whether that is an error.
func (s *ResolverService) Resolve(senderID uuid.UUID, input model.RecipientInput) ([]model.ResolvedRecipient, error) {
	seen := make(map[string]struct{})
	var out []model.ResolvedRecipient

	add := func(key string, r model.ResolvedRecipient) {
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}

	// Groups, in request order
	for _, groupID := range input.GroupIDs {
		members, err := s.groupRepo.MembersOfGroup(senderID, groupID)
		if err != nil {
			return nil, err
		}
		for _, member := range members {
			name := strings.TrimSpace(member.Name)
			if name == "" {
				continue
			}
			key := model.NormalizeName(name)
			if member.Email != "" {
				key = strings.ToLower(strings.TrimSpace(member.Email))
			}
			add(key, model.ResolvedRecipient{
				Name:   name,
				Email:  strings.TrimSpace(member.Email),
				Source: model.RecipientSourceGroup,
			})
		}
	}

	// Ledger connections, in request order
	if len(input.ConnectionIDs) > 0 {
		conns, err := s.connRepo.FindOwned(senderID, input.ConnectionIDs)
		if err != nil {
			return nil, err
		}
		for _, conn := range conns {
			add(model.NormalizeName(conn.Name), model.ResolvedRecipient{
				Name:   conn.Name,
				Source: model.RecipientSourceConnection,
			})
		}
	}

	// Free-text entries, comma or newline separated
	for _, entry := range splitManual(input.Manual) {
		if strings.Contains(entry, "@") {
			email := strings.ToLower(entry)
			add(email, model.ResolvedRecipient{
				Name:   displayNameFromEmail(entry),
				Email:  entry,
				Source: model.RecipientSourceManual,
			})
			continue
		}
		add(model.NormalizeName(entry), model.ResolvedRecipient{
			Name:   entry,
			Source: model.RecipientSourceManual,
		})
	}

	return out, nil
}

func splitManual(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func displayNameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
