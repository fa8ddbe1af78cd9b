package models

// AllModels lists every persisted model in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&Type{},
		&Trait{},
		&Personality{},
		&Move{},
		&MonsterSpecies{},
		&Monster{},
		&LegacyMove{},
		&MagicItem{},
		&GameTerm{},
		&Talent{},
		&Team{},
		&UserMonster{},
		&TeamAnalysis{},
	}
}

// Tables lists table names in reverse dependency order, join tables first,
// for dropping.
var Tables = []string{
	"team_analyses",
	"user_monsters",
	"teams",
	"talents",
	"game_terms",
	"magic_items",
	"legacy_moves",
	"monster_moves",
	"monsters",
	"monster_species",
	"moves",
	"personalities",
	"traits",
	"type_effective_against",
	"type_weak_against",
	"type_vulnerable_to",
	"type_resistant_to",
	"types",
}
