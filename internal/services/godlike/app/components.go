package app

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/louisbranch/godlike/internal/services/godlike/character"
	"github.com/louisbranch/godlike/internal/services/godlike/sheet"
)

const customIDPrefix = "sheet"

// Sheet component actions, the last segment of a custom id.
const (
	actionSelect = "select"
	actionEdit   = "edit"
	actionClose  = "close"
	actionForm   = "form"
)

var categoryDescriptions = map[character.Category]string{
	character.CategoryStats:   "Character stats",
	character.CategorySkills:  "Character skills",
	character.CategoryTalents: "Character talents",
	character.CategoryHealth:  "Character wounds and will",
	character.CategoryInfo:    "Character info",
}

func customID(sessionID, action string) string {
	return customIDPrefix + ":" + sessionID + ":" + action
}

// parseCustomID splits "sheet:<session>:<action>".
func parseCustomID(value string) (sessionID, action string, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 || parts[0] != customIDPrefix || parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("unknown component id %q", value)
	}
	return parts[1], parts[2], nil
}

func viewComponents(view sheet.View) []discordgo.MessageComponent {
	minValues := 1
	options := make([]discordgo.SelectMenuOption, 0, len(character.Categories))
	for _, category := range character.Categories {
		options = append(options, discordgo.SelectMenuOption{
			Label:       category.String(),
			Value:       category.String(),
			Description: categoryDescriptions[category],
			Default:     category == view.Category,
		})
	}

	buttons := make([]discordgo.MessageComponent, 0, 2)
	if view.Editable {
		buttons = append(buttons, discordgo.Button{
			Label:    editLabel(view.Category),
			Style:    discordgo.PrimaryButton,
			CustomID: customID(view.SessionID, actionEdit),
		})
	}
	buttons = append(buttons, discordgo.Button{
		Label:    "Close",
		Style:    discordgo.SecondaryButton,
		CustomID: customID(view.SessionID, actionClose),
	})

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    customID(view.SessionID, actionSelect),
				Placeholder: "Choose a category...",
				MinValues:   &minValues,
				MaxValues:   1,
				Options:     options,
			},
		}},
		discordgo.ActionsRow{Components: buttons},
	}
}

func editLabel(category character.Category) string {
	if category == character.CategoryHealth {
		return "Edit Wounds"
	}
	return "Edit " + category.String()
}

func formModal(sessionID string, form sheet.Form) *discordgo.InteractionResponseData {
	rows := make([]discordgo.MessageComponent, 0, len(form.Fields))
	for _, field := range form.Fields {
		style := discordgo.TextInputShort
		if field.Multiline {
			style = discordgo.TextInputParagraph
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID: field.ID,
				Label:    field.Label,
				Style:    style,
				Value:    field.Value,
				Required: field.ID != sheet.FieldStatus,
			},
		}})
	}
	return &discordgo.InteractionResponseData{
		CustomID:   customID(sessionID, actionForm),
		Title:      form.Title,
		Components: rows,
	}
}

// modalValues collects submitted text inputs by custom id.
func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	var walk func(components []discordgo.MessageComponent)
	walk = func(components []discordgo.MessageComponent) {
		for _, component := range components {
			switch c := component.(type) {
			case *discordgo.ActionsRow:
				walk(c.Components)
			case discordgo.ActionsRow:
				walk(c.Components)
			case *discordgo.TextInput:
				values[c.CustomID] = c.Value
			case discordgo.TextInput:
				values[c.CustomID] = c.Value
			}
		}
	}
	walk(data.Components)
	return values
}
