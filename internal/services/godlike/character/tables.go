package character

import (
	"strconv"

	"github.com/louisbranch/godlike/internal/services/godlike/storage"
)

func statsTable(stats storage.Stats) Table {
	values := stats.Values()
	row := make([]string, len(values))
	for i, value := range values {
		row[i] = strconv.Itoa(value)
	}
	return Table{
		Category: CategoryStats,
		Columns:  append([]string(nil), storage.StatNames[:]...),
		Rows:     [][]string{row},
	}
}

func healthTable(health storage.Health) Table {
	return Table{
		Category: CategoryHealth,
		Columns:  []string{"WoundSlot", "HealthStatus", "CurrentWill"},
		Rows: [][]string{{
			health.WoundSlot,
			health.HealthStatus,
			strconv.Itoa(health.CurrentWill),
		}},
	}
}

func infoTable(info storage.CharacterInfo) Table {
	return Table{
		Category: CategoryInfo,
		Columns: []string{
			"Nickname", "FullName", "Sex", "NationEthnicity", "Height", "Weight", "Age",
			"DateOfManifestation", "Education", "Profession", "Description",
		},
		Rows: [][]string{{
			info.Nickname,
			info.FullName,
			info.Sex,
			info.NationEthnicity,
			info.Height,
			info.Weight,
			strconv.Itoa(info.Age),
			info.DateOfManifestation,
			info.Education,
			info.Profession,
			info.Description,
		}},
	}
}

func skillsTable(skills []storage.Skill) Table {
	rows := make([][]string, 0, len(skills))
	for _, skill := range skills {
		rows = append(rows, []string{skill.Name, skill.Attribute, strconv.Itoa(skill.Rating)})
	}
	return Table{
		Category: CategorySkills,
		Columns:  []string{"SkillName", "Attribute", "Rating"},
		Rows:     rows,
	}
}

func talentsTable(talents []storage.Talent) Table {
	rows := make([][]string, 0, len(talents))
	for _, talent := range talents {
		rows = append(rows, []string{
			talent.Name,
			talent.Description,
			strconv.Itoa(talent.RegularDice),
			strconv.Itoa(talent.HardDice),
			strconv.Itoa(talent.WiggleDice),
		})
	}
	return Table{
		Category: CategoryTalents,
		Columns:  []string{"TalentName", "TalentDescription", "RegularDice", "HardDice", "WiggleDice"},
		Rows:     rows,
	}
}
