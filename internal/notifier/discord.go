package notifier

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/grupo123/gameday-api/internal/config"
	"github.com/grupo123/gameday-api/internal/models"
)

type Notifier interface {
	NotifyGameCreated(sport models.Sport, game models.Game) error
	NotifyPromotion(user models.User, sport models.Sport, game models.Game) error
	NotifyWaitingListProcessed(sport models.Sport, game models.Game, promoted int) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(cfg *config.Config) (*DiscordNotifier, error) {
	if cfg.DiscordBotToken == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		return nil, err
	}
	return &DiscordNotifier{
		session:   session,
		channelID: cfg.DiscordNotificationsChannelID,
	}, nil
}

func (n *DiscordNotifier) send(message string) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}
	return nil
}

func (n *DiscordNotifier) NotifyGameCreated(sport models.Sport, game models.Game) error {
	message := fmt.Sprintf("%s **New %s game!**\n**Date:** %s at %s\n**Location:** %s\n**Slots:** %d",
		sport.Icon,
		sport.Name,
		game.Date.Format("2006-01-02"),
		game.Time,
		game.Location,
		game.MaxPlayers,
	)
	return n.send(message)
}

func (n *DiscordNotifier) NotifyPromotion(user models.User, sport models.Sport, game models.Game) error {
	message := fmt.Sprintf("🎉 **Waiting list update**\n**%s** got a slot in the %s game on %s!",
		user.FullName,
		sport.Name,
		game.Date.Format("2006-01-02"),
	)
	return n.send(message)
}

func (n *DiscordNotifier) NotifyWaitingListProcessed(sport models.Sport, game models.Game, promoted int) error {
	message := fmt.Sprintf("📋 **Waiting list processed** for the %s game on %s: %d player(s) confirmed",
		sport.Name,
		game.Date.Format("2006-01-02"),
		promoted,
	)
	return n.send(message)
}
