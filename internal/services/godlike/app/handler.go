package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/louisbranch/godlike/internal/core/dice"
	apperrors "github.com/louisbranch/godlike/internal/platform/errors"
	"github.com/louisbranch/godlike/internal/platform/otel"
	"github.com/louisbranch/godlike/internal/platform/requestctx"
	"github.com/louisbranch/godlike/internal/platform/telemetry/metrics"
	"github.com/louisbranch/godlike/internal/platform/timeouts"
	"github.com/louisbranch/godlike/internal/services/godlike/character"
	"github.com/louisbranch/godlike/internal/services/godlike/roll"
	"github.com/louisbranch/godlike/internal/services/godlike/sheet"
	"github.com/louisbranch/godlike/internal/services/godlike/storage"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Responder sends interaction responses. *discordgo.Session implements it.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageDelete(interaction *discordgo.Interaction, messageID string, options ...discordgo.RequestOption) error
}

// Handler routes Discord interactions to the roll, character and sheet
// services.
type Handler struct {
	rolls      *roll.Service
	characters *character.Service
	sheets     *sheet.Hub
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	tracer     trace.Tracer

	noticeTTL time.Duration
	afterFunc func(time.Duration, func())
}

// NewHandler wires a Handler.
func NewHandler(rolls *roll.Service, characters *character.Service, sheets *sheet.Hub, m *metrics.Metrics, logger zerolog.Logger) *Handler {
	return &Handler{
		rolls:      rolls,
		characters: characters,
		sheets:     sheets,
		metrics:    m,
		logger:     logger,
		tracer:     otel.Tracer(),
		noticeTTL:  timeouts.TransientNotice,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// reply is the outcome of one interaction.
type reply struct {
	response *discordgo.InteractionResponse
	// notice is sent as an ephemeral followup and deleted after noticeTTL.
	notice string
}

// Handle answers one interaction. Every error is turned into a user-facing
// message; nothing is returned to the caller.
func (h *Handler) Handle(ctx context.Context, r Responder, i *discordgo.Interaction) {
	if i == nil || r == nil {
		return
	}
	name := interactionName(i)
	ctx = requestctx.WithInteraction(ctx, requestctx.Interaction{UserID: userID(i), Locale: string(i.Locale)})
	ctx, span := h.tracer.Start(ctx, "discord."+name, trace.WithAttributes(
		attribute.String("discord.interaction_id", i.ID),
		attribute.String("discord.user_id", userID(i)),
	))
	defer span.End()

	out, err := h.dispatch(ctx, i)
	outcome := metrics.OutcomeOK
	if err != nil {
		code := apperrors.GetCode(err)
		span.SetAttributes(attribute.String("godlike.error_code", string(code)))
		if code.IsUserError() {
			outcome = metrics.OutcomeRejected
		} else {
			outcome = metrics.OutcomeFailed
			span.RecordError(err)
			span.SetStatus(codes.Error, string(code))
			h.logger.Error().Err(err).Str("interaction", name).Str("user_id", userID(i)).Msg("interaction failed")
		}
		out = reply{response: errorResponse(err, string(i.Locale), ephemeralError(i, err))}
	}
	h.metrics.CommandHandled(name, outcome)

	if err := r.InteractionRespond(i, out.response); err != nil {
		span.RecordError(err)
		h.logger.Warn().Err(err).Str("interaction", name).Msg("respond to interaction")
		return
	}
	if out.notice != "" {
		h.sendNotice(r, i, out.notice)
	}
}

func (h *Handler) dispatch(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return h.handleCommand(ctx, i)
	case discordgo.InteractionMessageComponent:
		return h.handleComponent(ctx, i)
	case discordgo.InteractionModalSubmit:
		return h.handleModal(ctx, i)
	default:
		return reply{}, fmt.Errorf("unsupported interaction type %s", i.Type)
	}
}

func (h *Handler) handleCommand(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	data := i.ApplicationCommandData()
	opts := optionsOf(data)

	switch data.Name {
	case CommandRoll:
		secret := opts.Bool("gm")
		outcome, err := h.rolls.Roll(ctx, userID(i), opts.String("message"))
		if err != nil {
			return reply{}, err
		}
		return message(outcome.Summary(), secret), nil

	case CommandCreate:
		created, err := h.characters.CreateCharacter(ctx, opts.String("name"))
		if err != nil {
			return reply{}, err
		}
		return message(fmt.Sprintf("New character '%s' created successfully.", created.Nickname), true), nil

	case CommandShow:
		nickname := character.NormalizeNickname(opts.String("name"))
		id, err := h.characters.FindByNickname(ctx, nickname)
		if err != nil {
			return reply{}, err
		}
		session := h.sheets.Open(id, nickname)
		view := session.IdleView()
		return reply{response: &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content:    view.Content,
				Flags:      discordgo.MessageFlagsEphemeral,
				Components: viewComponents(view),
			},
		}}, nil

	case CommandWoundTemplate:
		return message("```\n"+character.WoundTemplate+"\n```", false), nil

	case CommandUserID:
		user := interactionUser(i)
		if user == nil {
			return reply{}, errors.New("interaction has no user")
		}
		return message(fmt.Sprintf("User %s id %s", user.Username, user.ID), true), nil

	case CommandAddSkill:
		rating, _ := opts.Int("rating")
		skill := storage.Skill{
			Name:      opts.String("skill"),
			Attribute: opts.String("attribute"),
			Rating:    rating,
		}
		if err := h.characters.AddSkill(ctx, opts.String("name"), skill); err != nil {
			return reply{}, err
		}
		return message(fmt.Sprintf("Skill %s added to %s.", strings.TrimSpace(skill.Name), character.NormalizeNickname(opts.String("name"))), true), nil

	case CommandAddTalent:
		pool, err := dice.ParsePool(opts.String("dice"))
		if err != nil {
			return reply{}, poolError(err)
		}
		talent := storage.Talent{
			Name:        opts.String("talent"),
			Description: opts.String("description"),
			RegularDice: pool.Regular,
			HardDice:    pool.Hard,
			WiggleDice:  pool.Wiggle,
		}
		if err := h.characters.AddTalent(ctx, opts.String("name"), talent); err != nil {
			return reply{}, err
		}
		return message(fmt.Sprintf("Talent %s (%s) added to %s.", strings.TrimSpace(talent.Name), pool, character.NormalizeNickname(opts.String("name"))), true), nil

	default:
		return reply{}, fmt.Errorf("unknown command %q", data.Name)
	}
}

func (h *Handler) handleComponent(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	data := i.MessageComponentData()
	sessionID, action, err := parseCustomID(data.CustomID)
	if err != nil {
		return reply{}, err
	}
	session, err := h.sheets.Get(sessionID)
	if err != nil {
		return reply{}, err
	}

	switch action {
	case actionSelect:
		if len(data.Values) == 0 {
			return reply{}, apperrors.New(apperrors.CodeCategoryNotSelected, "no category in selection")
		}
		category, ok := character.ParseCategory(data.Values[0])
		if !ok {
			return reply{}, apperrors.WithMetadata(apperrors.CodeMalformedRequest, "unknown category", map[string]string{"Usage": "Stats, Skills, Talents, Health or Info"})
		}
		// A dismissed modal sends no event, so a new selection abandons any open form.
		if session.State() == sheet.StateEditFormOpen {
			if _, err := session.Cancel(ctx); err != nil {
				return reply{}, err
			}
		}
		view, err := session.Select(ctx, category)
		if err != nil {
			return reply{}, err
		}
		return updateView(view), nil

	case actionEdit:
		form, err := session.Edit(ctx)
		if err != nil {
			return reply{}, err
		}
		return reply{response: &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: formModal(session.ID(), form),
		}}, nil

	case actionClose:
		session.Close()
		return reply{response: &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Content:    sheet.Title(session.Nickname()),
				Components: []discordgo.MessageComponent{},
			},
		}}, nil

	default:
		return reply{}, fmt.Errorf("unknown sheet action %q", action)
	}
}

func (h *Handler) handleModal(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	data := i.ModalSubmitData()
	sessionID, action, err := parseCustomID(data.CustomID)
	if err != nil {
		return reply{}, err
	}
	if action != actionForm {
		return reply{}, fmt.Errorf("unknown modal action %q", action)
	}
	session, err := h.sheets.Get(sessionID)
	if err != nil {
		return reply{}, err
	}

	view, err := session.Submit(ctx, modalValues(data))
	if err != nil {
		return reply{}, err
	}
	out := updateView(view)
	out.notice = view.Notice
	return out, nil
}

func (h *Handler) sendNotice(r Responder, i *discordgo.Interaction, notice string) {
	msg, err := r.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Content: notice,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		h.logger.Warn().Err(err).Msg("send notice")
		return
	}
	if msg == nil || h.afterFunc == nil {
		return
	}
	h.afterFunc(h.noticeTTL, func() {
		if err := r.FollowupMessageDelete(i, msg.ID); err != nil {
			h.logger.Debug().Err(err).Msg("delete notice")
		}
	})
}

func updateView(view sheet.View) reply {
	return reply{response: &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    view.Content,
			Components: viewComponents(view),
		},
	}}
}

func message(content string, ephemeral bool) reply {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return reply{response: &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}}
}

func errorResponse(err error, locale string, ephemeral bool) *discordgo.InteractionResponse {
	return message(apperrors.UserMessage(err, locale), ephemeral).response
}

// ephemeralError reports whether an error reply is private. An oversized
// pool on a public roll is answered publicly, like the roll would have been.
func ephemeralError(i *discordgo.Interaction, err error) bool {
	if i.Type != discordgo.InteractionApplicationCommand || !apperrors.HasCode(err, apperrors.CodeTooManyDice) {
		return true
	}
	data := i.ApplicationCommandData()
	if data.Name != CommandRoll {
		return true
	}
	return optionsOf(data).Bool("gm")
}

func poolError(err error) error {
	if errors.Is(err, dice.ErrTooManyDice) {
		return apperrors.WrapWithMetadata(apperrors.CodeTooManyDice, "talent pool too large", map[string]string{"Max": fmt.Sprint(dice.MaxPool)}, err)
	}
	return apperrors.WrapWithMetadata(apperrors.CodeMalformedRequest, "malformed talent pool", map[string]string{"Usage": "/add_talent name talent rd hd wd"}, err)
}

func interactionName(i *discordgo.Interaction) string {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent:
		if _, action, err := parseCustomID(i.MessageComponentData().CustomID); err == nil {
			return "sheet_" + action
		}
		return "sheet_unknown"
	case discordgo.InteractionModalSubmit:
		return "sheet_submit"
	default:
		return "unknown"
	}
}

func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func userID(i *discordgo.Interaction) string {
	if user := interactionUser(i); user != nil {
		return user.ID
	}
	return ""
}
