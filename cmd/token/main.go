// Command token mints bearer tokens for the festival service.
//
// Usage:
//
//	token -member <id> [-role member|organizer]
//	token -name "Olga" -role organizer   # creates the member first
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mmynk/myfestival/internal/auth"
	"github.com/mmynk/myfestival/internal/config"
	"github.com/mmynk/myfestival/internal/models"
	"github.com/mmynk/myfestival/internal/storage/backend"
	"github.com/mmynk/myfestival/pkg/logging"
)

func main() {
	memberID := flag.String("member", "", "ID of an existing member")
	name := flag.String("name", "", "create a member with this name and mint a token for it")
	role := flag.String("role", auth.RoleMember, "role carried by the token (member or organizer)")
	flag.Parse()

	if err := run(*memberID, *name, *role); err != nil {
		slog.Error("token failed", "error", err)
		os.Exit(1)
	}
}

func run(memberID, name, role string) error {
	if (memberID == "") == (name == "") {
		return fmt.Errorf("exactly one of -member and -name is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx := context.Background()
	store, err := backend.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	if name != "" {
		member := &models.Member{Name: name}
		if err := store.CreateMember(ctx, member); err != nil {
			return err
		}
		memberID = member.ID
		slog.Info("Member created", "member_id", memberID, "name", name)
	} else if _, err := store.GetMember(ctx, memberID); err != nil {
		return err
	}

	token, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration).Generate(memberID, role)
	if err != nil {
		return err
	}

	fmt.Printf("member_id=%s\ntoken=%s\n", memberID, token)
	return nil
}
