package service

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.UserDevice{},
		&model.Meme{},
		&model.Dump{},
		&model.DumpMeme{},
		&model.DumpRecipient{},
		&model.Reaction{},
		&model.UserConnection{},
		&model.Group{},
		&model.GroupMember{},
		&model.Collection{},
		&model.CollectionMeme{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

// testEnv bundles the repositories and services most tests need
type testEnv struct {
	db       *gorm.DB
	notifier *fakeNotifier
	mailer   *fakeMailer

	userRepo      *repository.UserRepository
	memeRepo      *repository.MemeRepository
	dumpRepo      *repository.DumpRepository
	recipientRepo *repository.RecipientRepository
	connRepo      *repository.ConnectionRepository
	groupRepo     *repository.GroupRepository
	activityRepo  *repository.ActivityRepository

	resolver   *ResolverService
	dumps      *DumpService
	engagement *EngagementService
	claims     *ClaimService
	activity   *ActivityService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	env := &testEnv{
		db:            db,
		notifier:      &fakeNotifier{delivered: true},
		mailer:        &fakeMailer{},
		userRepo:      repository.NewUserRepository(db),
		memeRepo:      repository.NewMemeRepository(db),
		dumpRepo:      repository.NewDumpRepository(db),
		recipientRepo: repository.NewRecipientRepository(db),
		connRepo:      repository.NewConnectionRepository(db),
		groupRepo:     repository.NewGroupRepository(db),
		activityRepo:  repository.NewActivityRepository(db),
	}
	env.resolver = NewResolverService(env.groupRepo, env.connRepo)
	env.dumps = NewDumpService(
		env.dumpRepo, env.memeRepo, env.recipientRepo, env.connRepo, env.userRepo,
		env.resolver, env.notifier, env.mailer, "http://test.local", zap.NewNop(),
	)
	env.engagement = NewEngagementService(env.recipientRepo, env.dumpRepo, env.userRepo)
	env.claims = NewClaimService(db, env.recipientRepo, env.connRepo, env.userRepo, zap.NewNop())
	env.activity = NewActivityService(env.activityRepo)
	return env
}

func (e *testEnv) createUser(t *testing.T, name string) *model.User {
	t.Helper()
	email := model.NormalizeName(name) + "@test.local"
	user := &model.User{Name: name, Email: &email}
	if err := e.userRepo.Create(user); err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return user
}

func (e *testEnv) createMemes(t *testing.T, ownerID uuid.UUID, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		meme := &model.Meme{OwnerID: ownerID, URL: "http://cdn.test.local/" + uuid.NewString()}
		if err := e.memeRepo.Create(meme); err != nil {
			t.Fatalf("failed to create meme: %v", err)
		}
		ids = append(ids, meme.ID)
	}
	return ids
}

// createSentDump builds a dump with memes and sends it to the given manual
// recipients, returning the dump and the send response
func (e *testEnv) createSentDump(t *testing.T, senderID uuid.UUID, manual string) (*model.Dump, *model.SendDumpResponse) {
	t.Helper()
	memeIDs := e.createMemes(t, senderID, 2)
	dump, err := e.dumps.Create(senderID, model.CreateDumpRequest{MemeIDs: memeIDs})
	if err != nil {
		t.Fatalf("failed to create dump: %v", err)
	}
	resp, err := e.dumps.Send(context.Background(), senderID, dump.ID, model.RecipientInput{Manual: manual})
	if err != nil {
		t.Fatalf("failed to send dump: %v", err)
	}
	return dump, resp
}

// fakeNotifier records pushes instead of talking to FCM
type fakeNotifier struct {
	delivered bool
	fail      bool
	sends     []fakeSend
}

type fakeSend struct {
	UserID uuid.UUID
	Title  string
	Body   string
	Data   map[string]string
}

func (f *fakeNotifier) Send(_ context.Context, userID uuid.UUID, title, body string, data map[string]string) (bool, error) {
	if f.fail {
		return false, errors.New("push backend unavailable")
	}
	f.sends = append(f.sends, fakeSend{UserID: userID, Title: title, Body: body, Data: data})
	return f.delivered, nil
}

// fakeMailer records claim invites
type fakeMailer struct {
	fail    bool
	invites []fakeInvite
}

type fakeInvite struct {
	To        string
	Recipient string
	Sender    string
	ViewURL   string
	ClaimCode string
	MemeCount int
}

func (f *fakeMailer) SendClaimInvite(toEmail, recipientName, senderName, viewURL, claimCode string, memeCount int) error {
	if f.fail {
		return errors.New("smtp unavailable")
	}
	f.invites = append(f.invites, fakeInvite{
		To:        toEmail,
		Recipient: recipientName,
		Sender:    senderName,
		ViewURL:   viewURL,
		ClaimCode: claimCode,
		MemeCount: memeCount,
	})
	return nil
}
