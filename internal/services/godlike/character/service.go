// Package character manages Godlike characters and their sheet sections.
package character

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/louisbranch/godlike/internal/core/dice"
	apperrors "github.com/louisbranch/godlike/internal/platform/errors"
	"github.com/louisbranch/godlike/internal/platform/requestctx"
	"github.com/louisbranch/godlike/internal/services/godlike/storage"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// WoundTemplate is the blank wound block of a new character: one box per
// point of damage a hit location can take.
const WoundTemplate = "Head      oooo\n" +
	"Torso     oooooooooo\n" +
	"Left Arm  ooooo\n" +
	"Right Arm ooooo\n" +
	"Left Leg  ooooo\n" +
	"Right Leg ooooo\n"

// DefaultHealthStatus is the status of a new character.
const DefaultHealthStatus = "Alive"

// DefaultInfo returns the biography of a new character with the given
// nickname.
func DefaultInfo(nickname string) storage.CharacterInfo {
	return storage.CharacterInfo{
		Nickname:            nickname,
		FullName:            "John Doe",
		Sex:                 "Male",
		NationEthnicity:     "American",
		Height:              "172cm",
		Weight:              "70kg",
		Age:                 20,
		DateOfManifestation: "1944",
		Education:           "Highschool",
		Profession:          "Private",
		Description:         "Soldier",
	}
}

// DefaultHealth returns the health block of a new character.
func DefaultHealth() storage.Health {
	return storage.Health{
		WoundSlot:    WoundTemplate,
		HealthStatus: DefaultHealthStatus,
		CurrentWill:  storage.DefaultStats().BaseWill,
	}
}

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

// NormalizeNickname trims value and capitalizes it: first letter upper case,
// the rest lower case.
func NormalizeNickname(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(value)
	return upperCaser.String(value[:size]) + lowerCaser.String(value[size:])
}

// Service implements character creation, lookup and sheet edits.
type Service struct {
	store  storage.CharacterStore
	logger zerolog.Logger
	clock  func() time.Time
}

// NewService creates a character service backed by store.
func NewService(store storage.CharacterStore, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		clock:  time.Now,
	}
}

// CreateCharacter creates a character with default info, stats and health.
func (s *Service) CreateCharacter(ctx context.Context, nickname string) (storage.CharacterInfo, error) {
	if err := s.ready(); err != nil {
		return storage.CharacterInfo{}, err
	}
	nickname = NormalizeNickname(nickname)
	if nickname == "" {
		return storage.CharacterInfo{}, malformed("/create_talent name")
	}

	info := DefaultInfo(nickname)
	info.CreatedAt = s.now()
	created, err := s.store.CreateCharacter(ctx, info, storage.DefaultStats(), DefaultHealth())
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return storage.CharacterInfo{}, apperrors.WrapWithMetadata(
				apperrors.CodeAlreadyExists,
				"character already exists",
				map[string]string{"Nickname": nickname},
				err,
			)
		}
		return storage.CharacterInfo{}, s.persistenceFailure(ctx, err, "create character", "create the character", 0)
	}
	s.logger.Info().Int64("character_id", created.ID).Str("nickname", nickname).Msg("character created")
	return created, nil
}

// FindByNickname returns the id of the character with the given nickname.
func (s *Service) FindByNickname(ctx context.Context, nickname string) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	nickname = NormalizeNickname(nickname)
	if nickname == "" {
		return 0, malformed("/show_talent name")
	}
	id, err := s.store.GetCharacterIDByNickname(ctx, nickname)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, notFound(nickname, err)
		}
		return 0, s.persistenceFailure(ctx, err, "find character", "look up the character", 0)
	}
	return id, nil
}

// FetchCategory returns one sheet section of a character as a table.
//
// Skills and Talents return every row the character has; the other
// categories return exactly one row. An empty section yields NO_DATA.
func (s *Service) FetchCategory(ctx context.Context, characterID int64, category Category) (Table, error) {
	if err := s.ready(); err != nil {
		return Table{}, err
	}

	var (
		table Table
		err   error
	)
	switch category {
	case CategoryStats:
		var stats storage.Stats
		if stats, err = s.store.GetStats(ctx, characterID); err == nil {
			table = statsTable(stats)
		}
	case CategoryHealth:
		var health storage.Health
		if health, err = s.store.GetHealth(ctx, characterID); err == nil {
			table = healthTable(health)
		}
	case CategoryInfo:
		var info storage.CharacterInfo
		if info, err = s.store.GetCharacterInfo(ctx, characterID); err == nil {
			table = infoTable(info)
		}
	case CategorySkills:
		var skills []storage.Skill
		if skills, err = s.store.ListSkills(ctx, characterID); err == nil {
			table = skillsTable(skills)
		}
	case CategoryTalents:
		var talents []storage.Talent
		if talents, err = s.store.ListTalents(ctx, characterID); err == nil {
			table = talentsTable(talents)
		}
	default:
		return Table{}, apperrors.WithMetadata(
			apperrors.CodeMalformedRequest,
			"unknown category",
			map[string]string{"Usage": "Stats, Skills, Talents, Health or Info"},
		)
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Table{}, noData(category, err)
		}
		return Table{}, s.persistenceFailure(ctx, err, "fetch category", "load the character sheet", characterID)
	}
	if len(table.Rows) == 0 {
		return Table{}, noData(category, nil)
	}
	return table, nil
}

// ReplaceStats overwrites all seven stats of a character.
func (s *Service) ReplaceStats(ctx context.Context, characterID int64, stats storage.Stats) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.store.ReplaceStats(ctx, characterID, stats); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(strconv.FormatInt(characterID, 10), err)
		}
		return s.persistenceFailure(ctx, err, "replace stats", "update stats", characterID)
	}
	return nil
}

// ReplaceHealth overwrites the wounds, current will and status of a
// character.
func (s *Service) ReplaceHealth(ctx context.Context, characterID int64, health storage.Health) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.store.ReplaceHealth(ctx, characterID, health); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(strconv.FormatInt(characterID, 10), err)
		}
		return s.persistenceFailure(ctx, err, "replace health", "update health", characterID)
	}
	return nil
}

// AddSkill appends a skill to the character with the given nickname.
func (s *Service) AddSkill(ctx context.Context, nickname string, skill storage.Skill) error {
	const usage = "/add_skill name skill attribute rating"

	skill.Name = strings.TrimSpace(skill.Name)
	skill.Attribute = strings.TrimSpace(skill.Attribute)
	if skill.Name == "" || skill.Rating < 0 {
		return malformed(usage)
	}
	index, ok := statIndex(skill.Attribute)
	if !ok {
		return malformed(usage)
	}
	skill.Attribute = storage.StatNames[index]
	id, err := s.FindByNickname(ctx, nickname)
	if err != nil {
		return err
	}
	if err := s.store.AddSkill(ctx, id, skill); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(NormalizeNickname(nickname), err)
		}
		return s.persistenceFailure(ctx, err, "add skill", "add the skill", id)
	}
	return nil
}

// AddTalent appends a talent to the character with the given nickname. The
// talent dice pool is held to the same ceiling as a roll.
func (s *Service) AddTalent(ctx context.Context, nickname string, talent storage.Talent) error {
	const usage = "/add_talent name talent description rd hd wd"

	talent.Name = strings.TrimSpace(talent.Name)
	talent.Description = strings.TrimSpace(talent.Description)
	if talent.Name == "" {
		return malformed(usage)
	}
	pool := dice.Pool{Regular: talent.RegularDice, Hard: talent.HardDice, Wiggle: talent.WiggleDice}
	if err := pool.Validate(); err != nil {
		if errors.Is(err, dice.ErrTooManyDice) {
			return apperrors.WrapWithMetadata(
				apperrors.CodeTooManyDice,
				"talent pool too large",
				map[string]string{"Max": strconv.Itoa(dice.MaxPool)},
				err,
			)
		}
		return apperrors.WrapWithMetadata(apperrors.CodeMalformedRequest, "malformed talent pool", map[string]string{"Usage": usage}, err)
	}
	id, err := s.FindByNickname(ctx, nickname)
	if err != nil {
		return err
	}
	if err := s.store.AddTalent(ctx, id, talent); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(NormalizeNickname(nickname), err)
		}
		return s.persistenceFailure(ctx, err, "add talent", "add the talent", id)
	}
	return nil
}

func (s *Service) ready() error {
	if s == nil || s.store == nil {
		return apperrors.New(apperrors.CodePersistenceFailure, "character store is not configured")
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.clock != nil {
		return s.clock().UTC()
	}
	return time.Now().UTC()
}

// persistenceFailure logs the cause for operators and returns an error whose
// user message only names the failed action.
func (s *Service) persistenceFailure(ctx context.Context, err error, op, action string, characterID int64) error {
	event := s.logger.Error().Err(err).Str("op", op)
	if characterID != 0 {
		event = event.Int64("character_id", characterID)
	}
	if userID := requestctx.UserIDFromContext(ctx); userID != "" {
		event = event.Str("user_id", userID)
	}
	event.Msg("character storage failure")
	return apperrors.WrapWithMetadata(
		apperrors.CodePersistenceFailure,
		op,
		map[string]string{"Action": action},
		err,
	)
}

func malformed(usage string) error {
	return apperrors.WithMetadata(apperrors.CodeMalformedRequest, "malformed request", map[string]string{"Usage": usage})
}

func notFound(nickname string, cause error) error {
	return apperrors.WrapWithMetadata(
		apperrors.CodeNotFound,
		"character not found",
		map[string]string{"Nickname": nickname},
		cause,
	)
}

func noData(category Category, cause error) error {
	return apperrors.WrapWithMetadata(
		apperrors.CodeNoData,
		"no data for category",
		map[string]string{"Category": category.String()},
		cause,
	)
}

func statIndex(name string) (int, bool) {
	for i, stat := range storage.StatNames {
		if strings.EqualFold(stat, name) {
			return i, true
		}
	}
	return 0, false
}
