package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"github.com/web3voice/voice-dao/src/config"
	"github.com/web3voice/voice-dao/src/data"
	"github.com/web3voice/voice-dao/src/types"
	"gorm.io/gorm"
)

type NotifierBot struct {
	session   *discordgo.Session
	db        *gorm.DB
	rdb       *redis.Client
	channelID string
}

type StreamEvent struct {
	Type       string
	ProposalID uint64
	Proposer   string
	Title      string
	Kind       string
	Voter      string
	Support    string
	Power      uint64
	Executor   string
	Success    bool
	Result     string
}

func NewNotifierBot(token, channelID string, db *gorm.DB, rdb *redis.Client) (*NotifierBot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	bot := &NotifierBot{
		session:   dg,
		db:        db,
		rdb:       rdb,
		channelID: channelID,
	}

	dg.AddHandler(bot.handleReady)
	dg.Identify.Intents = discordgo.IntentsGuildMessages

	return bot, nil
}

func (b *NotifierBot) Start() error {
	return b.session.Open()
}

func (b *NotifierBot) Stop() error {
	return b.session.Close()
}

func (b *NotifierBot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("Notifier bot logged in as %s", event.User.Username)
}

func (b *NotifierBot) listenForEvents(ctx context.Context) {
	// Start from new entries only; old events were already announced.
	lastID := "$"

	for {
		select {
		case <-ctx.Done():
			return
		default:
			streams, err := b.rdb.XRead(ctx, &redis.XReadArgs{
				Streams: []string{data.EventStream(), lastID},
				Count:   10,
				Block:   5 * time.Second,
			}).Result()

			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					log.Printf("Error reading stream: %v", err)
				}
				continue
			}

			for _, stream := range streams {
				for _, msg := range stream.Messages {
					ev := parseStreamEvent(msg.Values)
					if err := b.postEventToDiscord(ev); err != nil {
						log.Printf("Error posting event to Discord: %v", err)
					}
					lastID = msg.ID
				}
			}
		}
	}
}

func parseStreamEvent(values map[string]interface{}) StreamEvent {
	var ev StreamEvent

	if t, ok := values["type"].(string); ok {
		ev.Type = t
	}
	if id, ok := values["proposal_id"].(string); ok {
		ev.ProposalID, _ = strconv.ParseUint(id, 10, 64)
	}
	if proposer, ok := values["proposer"].(string); ok {
		ev.Proposer = proposer
	}
	if title, ok := values["title"].(string); ok {
		ev.Title = title
	}
	if kind, ok := values["kind"].(string); ok {
		ev.Kind = kind
	}
	if voter, ok := values["voter"].(string); ok {
		ev.Voter = voter
	}
	if support, ok := values["support"].(string); ok {
		ev.Support = support
	}
	if power, ok := values["power"].(string); ok {
		ev.Power, _ = strconv.ParseUint(power, 10, 64)
	}
	if executor, ok := values["executor"].(string); ok {
		ev.Executor = executor
	}
	if success, ok := values["success"].(string); ok {
		ev.Success = success == "1" || success == "true"
	}
	if result, ok := values["result"].(string); ok {
		ev.Result = result
	}

	return ev
}

func (b *NotifierBot) postEventToDiscord(ev StreamEvent) error {
	if b.channelID == "" {
		return fmt.Errorf("no notification channel configured")
	}

	var embed *discordgo.MessageEmbed

	switch ev.Type {
	case "proposal_created":
		embed = &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("New Proposal #%d", ev.ProposalID),
			Description: ev.Title,
			Color:       0x0099ff,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Proposer", Value: formatAddress(ev.Proposer), Inline: true},
				{Name: "Type", Value: ev.Kind, Inline: true},
			},
			Footer: &discordgo.MessageEmbedFooter{
				Text: "Voting is now open",
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}

	case "vote_cast":
		title := b.proposalTitle(ev.ProposalID)
		embed = &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Vote on Proposal #%d", ev.ProposalID),
			Description: title,
			Color:       voteColor(ev.Support),
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Voter", Value: formatAddress(ev.Voter), Inline: true},
				{Name: "Vote", Value: ev.Support, Inline: true},
				{Name: "Power", Value: strconv.FormatUint(ev.Power, 10), Inline: true},
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}

	case "proposal_executed":
		status := "Executed"
		color := 0x00ff00
		if !ev.Success {
			status = "Execution failed"
			color = 0xff0000
		}
		embed = &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Proposal #%d: %s", ev.ProposalID, status),
			Description: ev.Result,
			Color:       color,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Executor", Value: formatAddress(ev.Executor), Inline: true},
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}

	default:
		log.Printf("Unknown event type on stream: %q", ev.Type)
		return nil
	}

	_, err := b.session.ChannelMessageSendEmbed(b.channelID, embed)
	return err
}

func (b *NotifierBot) proposalTitle(id uint64) string {
	var p types.Proposal
	if err := b.db.First(&p, id).Error; err != nil {
		return fmt.Sprintf("Proposal #%d", id)
	}
	return p.Title
}

func voteColor(support string) int {
	switch support {
	case types.VoteFor:
		return 0x00ff00
	case types.VoteAgainst:
		return 0xff0000
	default:
		return 0xaaaaaa
	}
}

func formatAddress(addr string) string {
	if len(addr) > 16 {
		return addr[:8] + "..." + addr[len(addr)-8:]
	}
	return addr
}

func main() {
	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "dao:dao@tcp(127.0.0.1:3306)/voicedao"
	}

	db := data.MustMySQL(mysqlDSN)
	cfg := config.Load(db)

	if cfg.DiscordToken == "" {
		log.Fatal("DISCORD_TOKEN not set in database or environment")
	}
	if cfg.DiscordChannel == "" {
		log.Fatal("DISCORD_CHANNEL_ID not set in database or environment")
	}

	rdb := data.MustRedis(cfg.RedisURL)

	bot, err := NewNotifierBot(cfg.DiscordToken, cfg.DiscordChannel, db, rdb)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	if err := bot.Start(); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}

	log.Println("Notifier bot is running. Press CTRL-C to exit.")

	ctx, cancel := context.WithCancel(context.Background())
	go bot.listenForEvents(ctx)

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	cancel()
	bot.Stop()
	log.Println("Notifier bot stopped gracefully")
}
