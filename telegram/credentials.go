// Copyright (c) 2025 BVK Chaitanya

package telegram

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

type Secrets struct {
	BotToken string `json:"token" yaml:"token"`

	OwnerID string `json:"owner" yaml:"owner"`

	AdminID string `json:"admin" yaml:"admin"`

	OtherIDs []string `json:"others" yaml:"others"`
}

// SecretsFromEnv reads the bot secrets from TELEGRAM_BOT_TOKEN,
// TELEGRAM_OWNER, TELEGRAM_ADMIN and the comma separated TELEGRAM_OTHERS
// environment variables. It returns nil when no bot token is set.
func SecretsFromEnv() *Secrets {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if len(token) == 0 {
		return nil
	}
	s := &Secrets{
		BotToken: token,
		OwnerID:  os.Getenv("TELEGRAM_OWNER"),
		AdminID:  os.Getenv("TELEGRAM_ADMIN"),
	}
	for _, id := range strings.Split(os.Getenv("TELEGRAM_OTHERS"), ",") {
		if id = strings.TrimSpace(id); len(id) != 0 {
			s.OtherIDs = append(s.OtherIDs, id)
		}
	}
	return s
}

func (v *Secrets) Check() error {
	if len(v.BotToken) == 0 {
		return fmt.Errorf("bot token cannot be empty")
	}
	if len(v.OwnerID) == 0 {
		return fmt.Errorf("owner id cannot be empty")
	}
	if slices.Contains(v.OtherIDs, "") {
		return fmt.Errorf("empty string in other ids is not a valid id")
	}
	if len(v.AdminID) != 0 && slices.Contains(v.OtherIDs, v.AdminID) {
		return fmt.Errorf("admin id should not be repeated in other ids")
	}
	if slices.Contains(v.OtherIDs, v.OwnerID) {
		return fmt.Errorf("owner id should not be repeated in other ids")
	}
	return nil
}

func (v *Secrets) Clone() *Secrets {
	return &Secrets{
		BotToken: v.BotToken,
		OwnerID:  v.OwnerID,
		AdminID:  v.AdminID,
		OtherIDs: slices.Clone(v.OtherIDs),
	}
}
