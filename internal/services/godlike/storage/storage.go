// Package storage defines persistence contracts for characters and rolls.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound indicates a requested character record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a character with the same nickname exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// StatNames lists the stat columns in their canonical order.
var StatNames = [7]string{"Brains", "Body", "Command", "Coordination", "Cool", "Sense", "BaseWill"}

// CharacterInfo is the biographical record that owns every other row.
type CharacterInfo struct {
	ID                  int64
	Nickname            string
	FullName            string
	Sex                 string
	NationEthnicity     string
	Height              string
	Weight              string
	Age                 int
	DateOfManifestation string
	Education           string
	Profession          string
	Description         string
	CreatedAt           time.Time
}

// Stats holds the seven character attributes.
type Stats struct {
	Brains       int
	Body         int
	Command      int
	Coordination int
	Cool         int
	Sense        int
	BaseWill     int
}

// DefaultStats returns the stat block of a new character.
func DefaultStats() Stats {
	return Stats{Brains: 1, Body: 1, Command: 1, Coordination: 1, Cool: 1, Sense: 1, BaseWill: 2}
}

// Values returns the stats in StatNames order.
func (s Stats) Values() [7]int {
	return [7]int{s.Brains, s.Body, s.Command, s.Coordination, s.Cool, s.Sense, s.BaseWill}
}

// StatsFromValues builds Stats from values in StatNames order.
func StatsFromValues(values []int) (Stats, error) {
	if len(values) != len(StatNames) {
		return Stats{}, fmt.Errorf("expected %d stat values, got %d", len(StatNames), len(values))
	}
	return Stats{
		Brains:       values[0],
		Body:         values[1],
		Command:      values[2],
		Coordination: values[3],
		Cool:         values[4],
		Sense:        values[5],
		BaseWill:     values[6],
	}, nil
}

// Health holds the mutable injury and willpower state.
type Health struct {
	WoundSlot    string
	HealthStatus string
	CurrentWill  int
}

// Skill is one trained skill.
type Skill struct {
	Name      string
	Attribute string
	Rating    int
}

// Talent is one talent with its dice pool.
type Talent struct {
	Name        string
	Description string
	RegularDice int
	HardDice    int
	WiggleDice  int
}

// CharacterStore persists characters and their sheet rows.
type CharacterStore interface {
	// CreateCharacter inserts info, stats and health in one transaction and
	// returns the info with its assigned ID. It returns ErrAlreadyExists when
	// the nickname is taken.
	CreateCharacter(ctx context.Context, info CharacterInfo, stats Stats, health Health) (CharacterInfo, error)
	GetCharacterIDByNickname(ctx context.Context, nickname string) (int64, error)
	GetCharacterInfo(ctx context.Context, characterID int64) (CharacterInfo, error)
	GetStats(ctx context.Context, characterID int64) (Stats, error)
	GetHealth(ctx context.Context, characterID int64) (Health, error)
	ListSkills(ctx context.Context, characterID int64) ([]Skill, error)
	ListTalents(ctx context.Context, characterID int64) ([]Talent, error)
	ReplaceStats(ctx context.Context, characterID int64, stats Stats) error
	ReplaceHealth(ctx context.Context, characterID int64, health Health) error
	AddSkill(ctx context.Context, characterID int64, skill Skill) error
	AddTalent(ctx context.Context, characterID int64, talent Talent) error
}

// RollLog appends individual die results.
type RollLog interface {
	AppendRolls(ctx context.Context, userID string, values []int, rolledAt time.Time) error
}
