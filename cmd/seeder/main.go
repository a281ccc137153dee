package main

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/config"
	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/pkg/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// Load config
	cfg := config.Load()

	// Force DB logging off to avoid noise
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to Database")

	// Common password for all users
	password := "password123"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	// Create 5 users
	log.Println("🌱 Seeding 5 users...")

	for i := 1; i <= 5; i++ {
		username := fmt.Sprintf("user%d", i)
		email := fmt.Sprintf("user%d@memedump.local", i)

		// Check if exists
		var existing model.User
		if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
			continue
		}

		user := model.User{
			ID:       uuid.New(),
			Name:     fmt.Sprintf("User Number %d", i),
			Email:    &email,
			Password: string(hashedPassword),
			Avatar:   fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", username),
		}

		if err := db.Create(&user).Error; err != nil {
			log.Printf("❌ Failed to create user %s: %v", username, err)
		} else {
			log.Printf("✅ Created user: %s | Email: %s | Pass: %s", username, email, password)
		}
	}

	seedDemoDump(db)

	log.Println("🎉 Seeding completed!")
}

// seedDemoDump creates a sent dump from user1 with a group, a handful of
// memes and a mixed set of recipients: one already claimed by user2, the
// rest carrying unredeemed claim codes.
func seedDemoDump(db *gorm.DB) {
	var users []model.User
	if err := db.Order("email").Limit(3).Find(&users).Error; err != nil || len(users) < 3 {
		return
	}

	sender := users[0]
	claimer := users[1]

	// Check if demo dump exists
	var count int64
	db.Model(&model.Dump{}).Where("sender_id = ?", sender.ID).Count(&count)
	if count > 0 {
		return
	}

	// Seed memes for the sender
	var memes []model.Meme
	for i := 1; i <= 4; i++ {
		m := model.Meme{
			ID:       uuid.New(),
			OwnerID:  sender.ID,
			URL:      fmt.Sprintf("https://picsum.photos/seed/meme%d/600/600", i),
			MimeType: "image/jpeg",
		}
		if err := db.Create(&m).Error; err != nil {
			log.Printf("❌ Failed to create meme: %v", err)
			return
		}
		memes = append(memes, m)
	}

	// Group of recurring recipients
	group := model.Group{
		ID:      uuid.New(),
		OwnerID: sender.ID,
		Name:    "Meme Squad",
	}
	if err := db.Create(&group).Error; err != nil {
		log.Printf("❌ Failed to create group: %v", err)
		return
	}
	for _, m := range []model.GroupMember{
		{GroupID: group.ID, Name: "Alice", Email: "alice@example.com"},
		{GroupID: group.ID, Name: "Bob", Email: "bob@example.com"},
	} {
		db.Create(&m)
	}

	// A sent dump containing all memes
	dump := model.Dump{
		ID:       uuid.New(),
		SenderID: sender.ID,
		Note:     "Friday dump 🔥",
		IsDraft:  false,
	}
	if err := db.Create(&dump).Error; err != nil {
		log.Printf("❌ Failed to create dump: %v", err)
		return
	}
	for i, m := range memes {
		db.Create(&model.DumpMeme{
			DumpID:    dump.ID,
			MemeID:    m.ID,
			SortOrder: i + 1,
		})
	}

	now := time.Now()

	// Claimed recipient: user2 already redeemed a code from this sender, so
	// their slot carries a user_id and a ledger entry marks them connected
	claimedName := claimer.Name
	db.Create(&model.DumpRecipient{
		DumpID:    dump.ID,
		Name:      claimedName,
		Token:     mustToken(token.NewToken()),
		UserID:    &claimer.ID,
		ClaimedAt: &now,
		Notified:  true,
	})
	db.Create(&model.UserConnection{
		ConnectorID:     sender.ID,
		Name:            claimedName,
		NameKey:         model.NormalizeName(claimedName),
		ConnectedUserID: &claimer.ID,
		ConnectedAt:     &now,
	})

	// Unclaimed recipients with live claim codes
	for _, name := range []string{"Alice", "Bob"} {
		code := mustToken(token.NewClaimCode())
		db.Create(&model.DumpRecipient{
			DumpID:    dump.ID,
			Name:      name,
			Email:     model.NormalizeName(name) + "@example.com",
			Token:     mustToken(token.NewToken()),
			ClaimCode: &code,
		})
		log.Printf("🎟️  Claim code for %s: %s", name, code)
	}

	log.Println("✅ Created demo dump with 4 memes and 3 recipients")
}

func mustToken(s string, err error) string {
	if err != nil {
		log.Fatalf("❌ Failed to generate token: %v", err)
	}
	return s
}
