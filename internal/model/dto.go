package model

import (
	"time"

	"github.com/google/uuid"
)

// ========== Auth DTOs ==========

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// DevicePairRequest pairs an anonymous device with an account,
// creating one on first contact
type DevicePairRequest struct {
	DeviceID string `json:"device_id" binding:"required,max=255"`
	Name     string `json:"name" binding:"max=100"`
}

type AttachEmailRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// UpdateProfileRequest changes display fields; empty fields are left untouched
type UpdateProfileRequest struct {
	Name   string `json:"name" binding:"omitempty,min=2,max=100"`
	Avatar string `json:"avatar" binding:"omitempty,max=500"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type RegisterDeviceRequest struct {
	FCMToken   string `json:"fcm_token" binding:"required"`
	DeviceType string `json:"device_type" binding:"required"`
}

// ========== Dump DTOs ==========

type CreateDumpRequest struct {
	Note         string      `json:"note"`
	MemeIDs      []uuid.UUID `json:"meme_ids"`
	CollectionID *uuid.UUID  `json:"collection_id"`
}

type UpdateDumpRequest struct {
	Note string `json:"note" binding:"max=2000"`
}

type AppendMemesRequest struct {
	MemeIDs []uuid.UUID `json:"meme_ids" binding:"required,min=1"`
}

type AddCollectionRequest struct {
	CollectionID uuid.UUID `json:"collection_id" binding:"required"`
}

// RecipientInput carries the three recipient sources of a send: whole groups,
// existing ledger connections, and free-text names or emails separated by
// commas or newlines.
type RecipientInput struct {
	GroupIDs      []uuid.UUID `json:"group_ids"`
	ConnectionIDs []uuid.UUID `json:"connection_ids"`
	Manual        string      `json:"manual"`
}

// RecipientSource labels where a resolved recipient came from
type RecipientSource string

const (
	RecipientSourceGroup      RecipientSource = "group"
	RecipientSourceConnection RecipientSource = "connection"
	RecipientSourceManual     RecipientSource = "manual"
)

// ResolvedRecipient is one deduplicated entry produced by the recipient resolver
type ResolvedRecipient struct {
	Name   string          `json:"name"`
	Email  string          `json:"email,omitempty"`
	Source RecipientSource `json:"source"`
}

type SendDumpRequest struct {
	Recipients RecipientInput `json:"recipients"`
}

// RecipientFailure reports one recipient that could not be created during a
// send; the rest of the batch is unaffected
type RecipientFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type SendDumpResponse struct {
	Dump    Dump               `json:"dump"`
	Sent    []DumpRecipient    `json:"sent"`
	Skipped []string           `json:"skipped,omitempty"` // names already on the dump
	Failed  []RecipientFailure `json:"failed,omitempty"`
}

type ShareTokenResponse struct {
	ShareToken string `json:"share_token"`
}

// ========== Recipient view DTOs ==========

// RecipientViewResponse is everything a recipient needs to render their
// private dump page in one round trip
type RecipientViewResponse struct {
	Recipient  DumpRecipient `json:"recipient"`
	SenderName string        `json:"sender_name"`
	Note       string        `json:"note"`
	Memes      []Meme        `json:"memes"`
	Reactions  []Reaction    `json:"reactions"`
	NeedsClaim bool          `json:"needs_claim"`
}

type ReactRequest struct {
	MemeID uuid.UUID `json:"meme_id" binding:"required"`
	Emoji  string    `json:"emoji" binding:"max=16"` // empty removes the reaction
}

type RecipientNoteRequest struct {
	Note string `json:"note" binding:"max=2000"`
}

// SharePreviewResponse is the public, recipient-agnostic preview of a dump
type SharePreviewResponse struct {
	SenderName string `json:"sender_name"`
	Note       string `json:"note"`
	MemeCount  int    `json:"meme_count"`
	Preview    []Meme `json:"preview"`
	CanClaim   bool   `json:"can_claim"`
}

// ========== Claim DTOs ==========

type ClaimRequest struct {
	Code string `json:"code" binding:"required,min=4,max=16"`
}

type ClaimResponse struct {
	SenderName string    `json:"sender_name"`
	DumpID     uuid.UUID `json:"dump_id"`
	Token      string    `json:"token"` // recipient view token for the claimed slot
}

// ========== Connection DTOs ==========

type CreateConnectionRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// ========== Group DTOs ==========

type CreateGroupRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type AddGroupMemberRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
}

// ========== Activity feed DTOs ==========

// ActivityEventType is one of the four disjoint feed categories
type ActivityEventType string

const (
	ActivityEventSent     ActivityEventType = "sent"
	ActivityEventView     ActivityEventType = "view"
	ActivityEventReaction ActivityEventType = "reaction"
	ActivityEventNote     ActivityEventType = "note"
)

// ActivityEvent is one denormalized feed entry, renderable without further
// lookups
type ActivityEvent struct {
	Type          ActivityEventType `json:"type"`
	Timestamp     time.Time         `json:"timestamp"`
	DumpID        uuid.UUID         `json:"dump_id"`
	DumpNote      string            `json:"dump_note"`
	ThumbnailURL  string            `json:"thumbnail_url,omitempty"` // first meme of the dump
	RecipientName string            `json:"recipient_name,omitempty"`
	Emoji         string            `json:"emoji,omitempty"`
	Note          string            `json:"note,omitempty"`
}

// ActivityBucket groups feed events into relative time sections for display
type ActivityBucket struct {
	Label  string          `json:"label"` // Today, Yesterday, This Week, This Month, Earlier
	Events []ActivityEvent `json:"events"`
}

type ActivityFeedResponse struct {
	Events  []ActivityEvent  `json:"events"`
	Buckets []ActivityBucket `json:"buckets"`
}

// ========== Common ==========

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
