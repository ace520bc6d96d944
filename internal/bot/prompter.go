package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/avdeeva/spendbot/internal/flow"
)

// Button labels are localized here at the boundary; the custom IDs stay
// semantic so presses map back to action tags without text comparison.
var buttonLabelKeys = map[flow.Action]string{
	flow.ActionConfirm:     "button_confirm",
	flow.ActionCorrect:     "button_correct",
	flow.ActionCancel:      "button_cancel",
	flow.ActionNewCategory: "button_add_new_category",
	flow.ActionFixName:     "button_fix_name",
	flow.ActionFixCategory: "button_fix_category",
	flow.ActionFixCost:     "button_fix_cost",
	flow.ActionFixAmount:   "button_fix_amount",
	flow.ActionFixDate:     "button_fix_date",
	flow.ActionFixComment:  "button_fix_comment",
}

// SendPrompt implements flow.Prompter. Delivery failures are logged, not
// propagated: the flow treats sends as fire-and-forget.
func (b *Bot) SendPrompt(ctx context.Context, chatID string, p flow.Prompt) {
	msg := &discordgo.MessageSend{Content: p.Text}
	switch {
	case p.ShowAddNew:
		msg.Components = b.categoryComponents(p)
	case len(p.Choices) > 0:
		msg.Components = b.choiceComponents(p)
	}

	if _, err := b.session.ChannelMessageSendComplex(chatID, msg); err != nil {
		b.log.Error().Err(err).Str("chat_id", chatID).Msg("failed to send prompt")
	}
}

// categoryComponents renders one button per category, four per row, plus the
// fixed "add new category" button on its own row.
func (b *Bot) categoryComponents(p flow.Prompt) []discordgo.MessageComponent {
	var components []discordgo.MessageComponent
	var row []discordgo.MessageComponent
	for _, category := range p.Categories {
		row = append(row, discordgo.Button{
			Label:    category,
			Style:    discordgo.SecondaryButton,
			CustomID: "cat:" + category,
		})
		if len(row) == 4 {
			components = append(components, discordgo.ActionsRow{Components: row})
			row = nil
		}
	}
	if len(row) > 0 {
		components = append(components, discordgo.ActionsRow{Components: row})
	}
	components = append(components, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    b.i18n.Lookup(p.Locale, buttonLabelKeys[flow.ActionNewCategory]),
				Style:    discordgo.PrimaryButton,
				CustomID: "act:" + flow.ActionNewCategory.Tag(),
			},
		},
	})
	return components
}

func (b *Bot) choiceComponents(p flow.Prompt) []discordgo.MessageComponent {
	var components []discordgo.MessageComponent
	var row []discordgo.MessageComponent
	for _, action := range p.Choices {
		row = append(row, discordgo.Button{
			Label:    b.i18n.Lookup(p.Locale, buttonLabelKeys[action]),
			Style:    buttonStyle(action),
			CustomID: "act:" + action.Tag(),
		})
		if len(row) == 3 {
			components = append(components, discordgo.ActionsRow{Components: row})
			row = nil
		}
	}
	if len(row) > 0 {
		components = append(components, discordgo.ActionsRow{Components: row})
	}
	return components
}

func buttonStyle(action flow.Action) discordgo.ButtonStyle {
	switch action {
	case flow.ActionConfirm:
		return discordgo.SuccessButton
	case flow.ActionCancel:
		return discordgo.DangerButton
	default:
		return discordgo.SecondaryButton
	}
}
