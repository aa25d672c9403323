package app

import (
	"github.com/bwmarrin/discordgo"
)

// Slash command names.
const (
	CommandRoll          = "glroll"
	CommandCreate        = "create_talent"
	CommandShow          = "show_talent"
	CommandWoundTemplate = "wound_template"
	CommandUserID        = "user_id"
	CommandAddSkill      = "add_skill"
	CommandAddTalent     = "add_talent"
)

// Commands returns the slash commands the bot registers.
func Commands() []*discordgo.ApplicationCommand {
	nameOption := func(description string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "name",
			Description: description,
			Required:    true,
		}
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandRoll,
			Description: "Roll godlike dice.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "Format: RD HD WD Reason. E.g. /glroll 4 0 1 shooting my gun",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "gm",
					Description: "Secret roll?",
				},
			},
		},
		{
			Name:        CommandCreate,
			Description: "Create a new Talent.",
			Options:     []*discordgo.ApplicationCommandOption{nameOption("Talent's nickname.")},
		},
		{
			Name:        CommandShow,
			Description: "Show a Talent's character sheet.",
			Options:     []*discordgo.ApplicationCommandOption{nameOption("Enter the talent's nickname")},
		},
		{
			Name:        CommandWoundTemplate,
			Description: "Print out a blank wound template",
		},
		{
			Name:        CommandUserID,
			Description: "Get User ID",
		},
		{
			Name:        CommandAddSkill,
			Description: "Add a skill to a Talent.",
			Options: []*discordgo.ApplicationCommandOption{
				nameOption("Talent's nickname."),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "skill",
					Description: "Skill name",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "attribute",
					Description: "Stat the skill rolls with",
					Required:    true,
					Choices:     statChoices(),
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "rating",
					Description: "Skill dice",
					Required:    true,
				},
			},
		},
		{
			Name:        CommandAddTalent,
			Description: "Add a talent power to a Talent.",
			Options: []*discordgo.ApplicationCommandOption{
				nameOption("Talent's nickname."),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "talent",
					Description: "Power name",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "dice",
					Description: "Format: RD HD WD. E.g. 4 1 0",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "description",
					Description: "What the power does",
				},
			},
		},
	}
}

func statChoices() []*discordgo.ApplicationCommandOptionChoice {
	names := []string{"Brains", "Body", "Command", "Coordination", "Cool", "Sense"}
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(names))
	for _, name := range names {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}
	return choices
}

// commandOptions indexes the options of a slash command by name.
type commandOptions map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionsOf(data discordgo.ApplicationCommandInteractionData) commandOptions {
	out := make(commandOptions, len(data.Options))
	for _, option := range data.Options {
		out[option.Name] = option
	}
	return out
}

func (o commandOptions) String(name string) string {
	option, ok := o[name]
	if !ok || option.Type != discordgo.ApplicationCommandOptionString {
		return ""
	}
	return option.StringValue()
}

func (o commandOptions) Bool(name string) bool {
	option, ok := o[name]
	if !ok || option.Type != discordgo.ApplicationCommandOptionBoolean {
		return false
	}
	return option.BoolValue()
}

func (o commandOptions) Int(name string) (int, bool) {
	option, ok := o[name]
	if !ok || option.Type != discordgo.ApplicationCommandOptionInteger {
		return 0, false
	}
	return int(option.IntValue()), true
}
