package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/godlike/internal/services/godlike/storage"
)

// CreateCharacter inserts the info, stats and health rows of a new character
// in one transaction.
func (s *Store) CreateCharacter(ctx context.Context, info storage.CharacterInfo, stats storage.Stats, health storage.Health) (storage.CharacterInfo, error) {
	if err := s.ready(ctx); err != nil {
		return storage.CharacterInfo{}, err
	}
	info.Nickname = strings.TrimSpace(info.Nickname)
	if info.Nickname == "" {
		return storage.CharacterInfo{}, fmt.Errorf("nickname is required")
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now().UTC()
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var existing int64
		err := tx.QueryRowContext(
			ctx,
			`SELECT CharacterID FROM CharacterInfo WHERE Nickname = ? COLLATE NOCASE`,
			info.Nickname,
		).Scan(&existing)
		switch {
		case err == nil:
			return storage.ErrAlreadyExists
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("check nickname: %w", err)
		}

		result, err := tx.ExecContext(
			ctx,
			`INSERT INTO CharacterInfo (
				Nickname, FullName, Sex, NationEthnicity, Height, Weight, Age,
				DateOfManifestation, Education, Profession, Description, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			info.Nickname,
			info.FullName,
			info.Sex,
			info.NationEthnicity,
			info.Height,
			info.Weight,
			info.Age,
			info.DateOfManifestation,
			info.Education,
			info.Profession,
			info.Description,
			toMillis(info.CreatedAt),
		)
		if err != nil {
			if isNicknameUniqueViolation(err) {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("insert character info: %w", err)
		}
		info.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("read character id: %w", err)
		}

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO Stats (CharacterID, Brains, Body, Command, Coordination, Cool, Sense, BaseWill)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			info.ID,
			stats.Brains,
			stats.Body,
			stats.Command,
			stats.Coordination,
			stats.Cool,
			stats.Sense,
			stats.BaseWill,
		); err != nil {
			return fmt.Errorf("insert stats: %w", err)
		}

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO Health (CharacterID, WoundSlot, HealthStatus, CurrentWill) VALUES (?, ?, ?, ?)`,
			info.ID,
			health.WoundSlot,
			health.HealthStatus,
			health.CurrentWill,
		); err != nil {
			return fmt.Errorf("insert health: %w", err)
		}
		return nil
	})
	if err != nil {
		return storage.CharacterInfo{}, err
	}
	info.CreatedAt = fromMillis(toMillis(info.CreatedAt))
	return info, nil
}

// GetCharacterIDByNickname returns the id of the character with the given
// nickname, compared case-insensitively.
func (s *Store) GetCharacterIDByNickname(ctx context.Context, nickname string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return 0, storage.ErrNotFound
	}

	var id int64
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT CharacterID FROM CharacterInfo WHERE Nickname = ? COLLATE NOCASE`,
		nickname,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, storage.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get character id: %w", err)
	}
	return id, nil
}

// GetCharacterInfo returns the info row of a character.
func (s *Store) GetCharacterInfo(ctx context.Context, characterID int64) (storage.CharacterInfo, error) {
	if err := s.ready(ctx); err != nil {
		return storage.CharacterInfo{}, err
	}

	var info storage.CharacterInfo
	var createdAt int64
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT CharacterID, Nickname, FullName, Sex, NationEthnicity, Height, Weight, Age,
		        DateOfManifestation, Education, Profession, Description, created_at
		   FROM CharacterInfo
		  WHERE CharacterID = ?`,
		characterID,
	).Scan(
		&info.ID,
		&info.Nickname,
		&info.FullName,
		&info.Sex,
		&info.NationEthnicity,
		&info.Height,
		&info.Weight,
		&info.Age,
		&info.DateOfManifestation,
		&info.Education,
		&info.Profession,
		&info.Description,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.CharacterInfo{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.CharacterInfo{}, fmt.Errorf("get character info: %w", err)
	}
	info.CreatedAt = fromMillis(createdAt)
	return info, nil
}

// GetStats returns the stats row of a character.
func (s *Store) GetStats(ctx context.Context, characterID int64) (storage.Stats, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Stats{}, err
	}

	var stats storage.Stats
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT Brains, Body, Command, Coordination, Cool, Sense, BaseWill
		   FROM Stats
		  WHERE CharacterID = ?`,
		characterID,
	).Scan(
		&stats.Brains,
		&stats.Body,
		&stats.Command,
		&stats.Coordination,
		&stats.Cool,
		&stats.Sense,
		&stats.BaseWill,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Stats{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Stats{}, fmt.Errorf("get stats: %w", err)
	}
	return stats, nil
}

// GetHealth returns the health row of a character.
func (s *Store) GetHealth(ctx context.Context, characterID int64) (storage.Health, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Health{}, err
	}

	var health storage.Health
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT WoundSlot, HealthStatus, CurrentWill FROM Health WHERE CharacterID = ?`,
		characterID,
	).Scan(&health.WoundSlot, &health.HealthStatus, &health.CurrentWill)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Health{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Health{}, fmt.Errorf("get health: %w", err)
	}
	return health, nil
}

// ListSkills returns the skills of a character in insertion order.
func (s *Store) ListSkills(ctx context.Context, characterID int64) ([]storage.Skill, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT SkillName, Attribute, Rating FROM Skills WHERE CharacterID = ? ORDER BY SkillID ASC`,
		characterID,
	)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	var skills []storage.Skill
	for rows.Next() {
		var skill storage.Skill
		if err := rows.Scan(&skill.Name, &skill.Attribute, &skill.Rating); err != nil {
			return nil, fmt.Errorf("list skills: %w", err)
		}
		skills = append(skills, skill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return skills, nil
}

// ListTalents returns the talents of a character in insertion order.
func (s *Store) ListTalents(ctx context.Context, characterID int64) ([]storage.Talent, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT TalentName, TalentDescription, RegularDice, HardDice, WiggleDice
		   FROM Talents
		  WHERE CharacterID = ?
		  ORDER BY TalentID ASC`,
		characterID,
	)
	if err != nil {
		return nil, fmt.Errorf("list talents: %w", err)
	}
	defer rows.Close()

	var talents []storage.Talent
	for rows.Next() {
		var talent storage.Talent
		if err := rows.Scan(
			&talent.Name,
			&talent.Description,
			&talent.RegularDice,
			&talent.HardDice,
			&talent.WiggleDice,
		); err != nil {
			return nil, fmt.Errorf("list talents: %w", err)
		}
		talents = append(talents, talent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list talents: %w", err)
	}
	return talents, nil
}

// ReplaceStats overwrites all seven stat columns of a character.
func (s *Store) ReplaceStats(ctx context.Context, characterID int64, stats storage.Stats) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(
			ctx,
			`UPDATE Stats
			    SET Brains = ?, Body = ?, Command = ?, Coordination = ?, Cool = ?, Sense = ?, BaseWill = ?
			  WHERE CharacterID = ?`,
			stats.Brains,
			stats.Body,
			stats.Command,
			stats.Coordination,
			stats.Cool,
			stats.Sense,
			stats.BaseWill,
			characterID,
		)
		if err != nil {
			return fmt.Errorf("replace stats: %w", err)
		}
		return requireAffected(result, "replace stats")
	})
}

// ReplaceHealth overwrites the wounds, will and status of a character.
func (s *Store) ReplaceHealth(ctx context.Context, characterID int64, health storage.Health) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(
			ctx,
			`UPDATE Health SET WoundSlot = ?, HealthStatus = ?, CurrentWill = ? WHERE CharacterID = ?`,
			health.WoundSlot,
			health.HealthStatus,
			health.CurrentWill,
			characterID,
		)
		if err != nil {
			return fmt.Errorf("replace health: %w", err)
		}
		return requireAffected(result, "replace health")
	})
}

// AddSkill appends a skill to a character.
func (s *Store) AddSkill(ctx context.Context, characterID int64, skill storage.Skill) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := characterExists(ctx, tx, characterID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO Skills (CharacterID, SkillName, Attribute, Rating) VALUES (?, ?, ?, ?)`,
			characterID,
			skill.Name,
			skill.Attribute,
			skill.Rating,
		); err != nil {
			return fmt.Errorf("add skill: %w", err)
		}
		return nil
	})
}

// AddTalent appends a talent to a character.
func (s *Store) AddTalent(ctx context.Context, characterID int64, talent storage.Talent) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := characterExists(ctx, tx, characterID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO Talents (CharacterID, TalentName, TalentDescription, RegularDice, HardDice, WiggleDice)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			characterID,
			talent.Name,
			talent.Description,
			talent.RegularDice,
			talent.HardDice,
			talent.WiggleDice,
		); err != nil {
			return fmt.Errorf("add talent: %w", err)
		}
		return nil
	})
}

func characterExists(ctx context.Context, tx *sql.Tx, characterID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT CharacterID FROM CharacterInfo WHERE CharacterID = ?`, characterID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check character: %w", err)
	}
	return nil
}

func requireAffected(result sql.Result, action string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", action, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
