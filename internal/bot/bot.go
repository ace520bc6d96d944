package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/avdeeva/spendbot/internal/db"
	"github.com/avdeeva/spendbot/internal/flow"
	"github.com/avdeeva/spendbot/internal/i18n"
	"github.com/avdeeva/spendbot/internal/ledger"
)

// Bot adapts Discord to the transaction-entry flow: it maps inbound DMs and
// button presses to flow events and implements the flow's Prompter by
// rendering prompts as messages with button components.
type Bot struct {
	session *discordgo.Session
	db      *db.DB
	machine *flow.Machine
	i18n    *i18n.Bundle
	locale  string
	log     zerolog.Logger
}

func New(token string, database *db.DB, ledgerSvc *ledger.Service, store flow.SessionStore, bundle *i18n.Bundle, defaultLocale string, log zerolog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	bot := &Bot{
		session: session,
		db:      database,
		i18n:    bundle,
		locale:  defaultLocale,
		log:     log,
	}
	bot.machine = flow.NewMachine(store, ledgerSvc, bot, bundle, log)

	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onMessageCreate)
	session.AddHandler(bot.onInteractionCreate)

	session.Identify.Intents = discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	return bot, nil
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	b.log.Info().Msg("discord bot is running")
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

// Machine exposes the flow controller, used by tests.
func (b *Bot) Machine() *flow.Machine {
	return b.machine
}

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	b.log.Info().Str("user", event.User.Username).Msg("connected")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot {
		return
	}
	// The flow is a private conversation; guild channels are ignored.
	if m.GuildID != "" {
		return
	}

	ctx := context.Background()
	ev, err := b.eventFor(ctx, m.Author, m.ChannelID)
	if err != nil {
		b.log.Error().Err(err).Str("discord_id", m.Author.ID).Msg("failed to register user")
		return
	}

	content := strings.TrimSpace(m.Content)
	switch content {
	case "!start":
		err = b.machine.HandleStart(ctx, ev)
	case "!cancel":
		err = b.machine.HandleCancel(ctx, ev)
	case "!add":
		err = b.machine.HandleAdd(ctx, ev)
	default:
		ev.Text = content
		err = b.machine.HandleText(ctx, ev)
	}
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", ev.UserID).Msg("failed to handle message")
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	user := interactionUser(i)
	if user == nil || i.GuildID != "" {
		return
	}

	ctx := context.Background()
	ev, err := b.eventFor(ctx, user, i.ChannelID)
	if err != nil {
		b.log.Error().Err(err).Str("discord_id", user.ID).Msg("failed to register user")
		return
	}

	// Custom IDs carry semantic tags ("act:confirm", "cat:Groceries"), never
	// localized button labels.
	customID := i.MessageComponentData().CustomID
	prefix, payload, ok := strings.Cut(customID, ":")
	if !ok {
		return
	}
	switch prefix {
	case "act":
		ev.Action = flow.ActionFromTag(payload)
	case "cat":
		ev.Category = payload
	default:
		return
	}

	// Acknowledge the press; the next prompt arrives as a regular message.
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		b.log.Error().Err(err).Msg("failed to ack interaction")
	}

	if err := b.machine.HandleAction(ctx, ev); err != nil {
		b.log.Error().Err(err).Int64("user_id", ev.UserID).Msg("failed to handle action")
	}
}

// eventFor registers the Discord account on first contact and builds the flow
// event addressed to the local user id.
func (b *Bot) eventFor(ctx context.Context, user *discordgo.User, channelID string) (flow.Event, error) {
	u, err := b.db.GetOrCreateUser(ctx, user.ID, user.Username)
	if err != nil {
		return flow.Event{}, err
	}
	return flow.Event{
		UserID: u.UserID,
		ChatID: channelID,
		Locale: b.locale,
	}, nil
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.User != nil {
		return i.User
	}
	if i.Member != nil {
		return i.Member.User
	}
	return nil
}
