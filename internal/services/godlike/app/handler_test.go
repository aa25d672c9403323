package app

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/louisbranch/godlike/internal/platform/telemetry/metrics"
	"github.com/louisbranch/godlike/internal/random"
	"github.com/louisbranch/godlike/internal/services/godlike/character"
	"github.com/louisbranch/godlike/internal/services/godlike/roll"
	"github.com/louisbranch/godlike/internal/services/godlike/sheet"
	"github.com/louisbranch/godlike/internal/services/godlike/storage/sqlite"
	"github.com/rs/zerolog"
)

type fakeResponder struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	followups []*discordgo.WebhookParams
	deleted   []string
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeResponder) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	return &discordgo.Message{ID: "notice-1"}, nil
}

func (f *fakeResponder) FollowupMessageDelete(_ *discordgo.Interaction, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeResponder) last(t *testing.T) *discordgo.InteractionResponse {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		t.Fatal("no response sent")
	}
	return f.responses[len(f.responses)-1]
}

type testHandler struct {
	*Handler
	store     *sqlite.Store
	sheets    *sheet.Hub
	scheduled []func()
}

func newTestHandler(t *testing.T) *testHandler {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "godlike.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	m := metrics.New()
	characters := character.NewService(store, zerolog.Nop())
	rolls := roll.NewService(random.NewSeededSource(7), store, roll.WithMetrics(m))
	sheets := sheet.NewHub(characters, sheet.WithMetrics(m))
	t.Cleanup(func() {
		sheets.Close()
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})

	th := &testHandler{
		Handler: NewHandler(rolls, characters, sheets, m, zerolog.Nop()),
		store:   store,
		sheets:  sheets,
	}
	th.afterFunc = func(_ time.Duration, f func()) {
		th.scheduled = append(th.scheduled, f)
	}
	return th
}

func commandInteraction(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:     "interaction-1",
		Type:   discordgo.InteractionApplicationCommand,
		Locale: discordgo.EnglishUS,
		Member: &discordgo.Member{User: &discordgo.User{ID: "42", Username: "rex_player"}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: options,
		},
	}
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

func boolOption(name string, value bool) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionBoolean, Value: value}
}

func intOption(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(value)}
}

func componentInteraction(customID string, values ...string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:   "interaction-2",
		Type: discordgo.InteractionMessageComponent,
		User: &discordgo.User{ID: "42", Username: "rex_player"},
		Data: discordgo.MessageComponentInteractionData{
			CustomID: customID,
			Values:   values,
		},
	}
}

func modalInteraction(customID string, values map[string]string) *discordgo.Interaction {
	rows := make([]discordgo.MessageComponent, 0, len(values))
	for id, value := range values {
		rows = append(rows, &discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: id, Value: value},
		}})
	}
	return &discordgo.Interaction{
		ID:   "interaction-3",
		Type: discordgo.InteractionModalSubmit,
		User: &discordgo.User{ID: "42", Username: "rex_player"},
		Data: discordgo.ModalSubmitInteractionData{
			CustomID:   customID,
			Components: rows,
		},
	}
}

func isEphemeral(resp *discordgo.InteractionResponse) bool {
	return resp.Data != nil && resp.Data.Flags&discordgo.MessageFlagsEphemeral != 0
}

func TestRollCommand(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	r := &fakeResponder{}
	h.Handle(context.Background(), r, commandInteraction(CommandRoll, stringOption("message", "3 1 0 shooting my gun")))

	resp := r.last(t)
	if resp.Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Fatalf("response type = %v", resp.Type)
	}
	if !strings.HasPrefix(resp.Data.Content, "Rolling **3**-rd **1**-hd **0**-wg\n\nFor: *shooting my gun*\n\n*") {
		t.Fatalf("content = %q", resp.Data.Content)
	}
	if isEphemeral(resp) {
		t.Fatal("public roll should not be ephemeral")
	}
	records, err := h.store.ListRollsByUser(context.Background(), "42")
	if err != nil {
		t.Fatalf("list rolls: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("logged rolls = %d, want 3", len(records))
	}
}

func TestSecretRollIsEphemeral(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	r := &fakeResponder{}
	h.Handle(context.Background(), r, commandInteraction(CommandRoll, stringOption("message", "2"), boolOption("gm", true)))
	if !isEphemeral(r.last(t)) {
		t.Fatal("gm roll should be ephemeral")
	}
}

func TestRollErrors(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	r := &fakeResponder{}
	h.Handle(context.Background(), r, commandInteraction(CommandRoll, stringOption("message", "6 3 2")))
	resp := r.last(t)
	if resp.Data.Content != "Exceeded 10 dice maximum for this roll. Adjust your request" {
		t.Fatalf("content = %q", resp.Data.Content)
	}
	if isEphemeral(resp) {
		t.Fatal("too many dice on a public roll should be public")
	}

	r = &fakeResponder{}
	h.Handle(context.Background(), r, commandInteraction(CommandRoll, stringOption("message", "lots")))
	resp = r.last(t)
	if !strings.Contains(resp.Data.Content, "/glroll rd hd wd reason for rolling") {
		t.Fatalf("content = %q", resp.Data.Content)
	}
	if !isEphemeral(resp) {
		t.Fatal("malformed roll reply should be ephemeral")
	}

	records, err := h.store.ListRollsByUser(context.Background(), "42")
	if err != nil {
		t.Fatalf("list rolls: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("logged rolls = %d, want 0", len(records))
	}
}

func TestCreateAndShowSheetFlow(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	ctx := context.Background()

	r := &fakeResponder{}
	h.Handle(ctx, r, commandInteraction(CommandCreate, stringOption("name", "rex")))
	if got := r.last(t).Data.Content; got != "New character 'Rex' created successfully." {
		t.Fatalf("create content = %q", got)
	}

	h.Handle(ctx, r, commandInteraction(CommandCreate, stringOption("name", "REX")))
	if got := r.last(t).Data.Content; got != "Character Rex already exists." {
		t.Fatalf("duplicate content = %q", got)
	}

	h.Handle(ctx, r, commandInteraction(CommandShow, stringOption("name", "rex")))
	resp := r.last(t)
	if resp.Data.Content != "Rex Character Sheet" {
		t.Fatalf("show content = %q", resp.Data.Content)
	}
	if h.sheets.Len() != 1 {
		t.Fatalf("open sheets = %d, want 1", h.sheets.Len())
	}
	sessionID := sessionIDFrom(t, resp.Data.Components)

	h.Handle(ctx, r, componentInteraction(customID(sessionID, actionEdit)))
	if got := r.last(t).Data.Content; got != "Please select a category before editing." {
		t.Fatalf("edit before select content = %q", got)
	}

	h.Handle(ctx, r, componentInteraction(customID(sessionID, actionSelect), "Stats"))
	resp = r.last(t)
	if resp.Type != discordgo.InteractionResponseUpdateMessage {
		t.Fatalf("select response type = %v", resp.Type)
	}
	if !strings.Contains(resp.Data.Content, "Brains") {
		t.Fatalf("select content = %q", resp.Data.Content)
	}

	h.Handle(ctx, r, componentInteraction(customID(sessionID, actionEdit)))
	resp = r.last(t)
	if resp.Type != discordgo.InteractionResponseModal {
		t.Fatalf("edit response type = %v", resp.Type)
	}
	if resp.Data.CustomID != customID(sessionID, actionForm) {
		t.Fatalf("modal id = %q", resp.Data.CustomID)
	}

	h.Handle(ctx, r, modalInteraction(customID(sessionID, actionForm), map[string]string{"stats": "2,3,1,4,2,3,5"}))
	resp = r.last(t)
	if resp.Type != discordgo.InteractionResponseUpdateMessage {
		t.Fatalf("submit response type = %v", resp.Type)
	}
	if len(r.followups) != 1 || r.followups[0].Content != "Stats updated." {
		t.Fatalf("followups = %+v", r.followups)
	}
	if len(h.scheduled) != 1 {
		t.Fatalf("scheduled deletions = %d, want 1", len(h.scheduled))
	}
	h.scheduled[0]()
	if len(r.deleted) != 1 || r.deleted[0] != "notice-1" {
		t.Fatalf("deleted = %v", r.deleted)
	}

	h.Handle(ctx, r, componentInteraction(customID(sessionID, actionClose)))
	if h.sheets.Len() != 0 {
		t.Fatalf("open sheets = %d, want 0", h.sheets.Len())
	}
	h.Handle(ctx, r, componentInteraction(customID(sessionID, actionSelect), "Health"))
	if got := r.last(t).Data.Content; !strings.Contains(got, "expired") {
		t.Fatalf("expired content = %q", got)
	}
}

func TestShowMissingCharacter(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	r := &fakeResponder{}
	h.Handle(context.Background(), r, commandInteraction(CommandShow, stringOption("name", "ghost")))
	resp := r.last(t)
	if resp.Data.Content != "No character found for Ghost" {
		t.Fatalf("content = %q", resp.Data.Content)
	}
	if !isEphemeral(resp) {
		t.Fatal("not found reply should be ephemeral")
	}
}

func TestWoundTemplateAndUserID(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	r := &fakeResponder{}

	h.Handle(context.Background(), r, commandInteraction(CommandWoundTemplate))
	if got := r.last(t).Data.Content; got != "```\n"+character.WoundTemplate+"\n```" {
		t.Fatalf("template content = %q", got)
	}

	h.Handle(context.Background(), r, commandInteraction(CommandUserID))
	resp := r.last(t)
	if resp.Data.Content != "User rex_player id 42" {
		t.Fatalf("user id content = %q", resp.Data.Content)
	}
	if !isEphemeral(resp) {
		t.Fatal("user id reply should be ephemeral")
	}
}

func TestAddSkillAndTalentCommands(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	ctx := context.Background()
	r := &fakeResponder{}

	h.Handle(ctx, r, commandInteraction(CommandCreate, stringOption("name", "rex")))
	h.Handle(ctx, r, commandInteraction(CommandAddSkill,
		stringOption("name", "rex"),
		stringOption("skill", "Brawl"),
		stringOption("attribute", "Body"),
		intOption("rating", 2),
	))
	if got := r.last(t).Data.Content; got != "Skill Brawl added to Rex." {
		t.Fatalf("add skill content = %q", got)
	}

	h.Handle(ctx, r, commandInteraction(CommandAddTalent,
		stringOption("name", "rex"),
		stringOption("talent", "Flight"),
		stringOption("dice", "4 1 0"),
	))
	if got := r.last(t).Data.Content; got != "Talent Flight (4 1 0) added to Rex." {
		t.Fatalf("add talent content = %q", got)
	}

	h.Handle(ctx, r, commandInteraction(CommandAddTalent,
		stringOption("name", "rex"),
		stringOption("talent", "Huge"),
		stringOption("dice", "9 1 1"),
	))
	if got := r.last(t).Data.Content; got != "Exceeded 10 dice maximum for this roll. Adjust your request" {
		t.Fatalf("oversized talent content = %q", got)
	}
}

func TestUnknownComponent(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	r := &fakeResponder{}
	h.Handle(context.Background(), r, componentInteraction("bogus"))
	if got := r.last(t).Data.Content; got != "Something went wrong. Please try again." {
		t.Fatalf("content = %q", got)
	}
}

func TestParseCustomID(t *testing.T) {
	t.Parallel()

	session, action, err := parseCustomID(customID("abc", actionEdit))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if session != "abc" || action != actionEdit {
		t.Fatalf("parse = %q, %q", session, action)
	}
	for _, bad := range []string{"", "sheet:abc", "other:abc:edit", "sheet::edit"} {
		if _, _, err := parseCustomID(bad); err == nil {
			t.Fatalf("parseCustomID(%q) expected error", bad)
		}
	}
}

func sessionIDFrom(t *testing.T, components []discordgo.MessageComponent) string {
	t.Helper()

	for _, component := range components {
		row, ok := component.(discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if menu, ok := inner.(discordgo.SelectMenu); ok {
				id, _, err := parseCustomID(menu.CustomID)
				if err != nil {
					t.Fatalf("parse select id: %v", err)
				}
				return id
			}
		}
	}
	t.Fatal("no select menu in components")
	return ""
}
