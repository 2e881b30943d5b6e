package rules

// Cards banned in Commander, plus the handful of ante/offensive cards that are
// banned in every constructed format.
var defaultBannedCards = []string{
	"Ancestral Recall", "Balance", "Biorhythm", "Black Lotus",
	"Braids, Cabal Minion", "Chaos Orb", "Coalition Victory", "Channel",
	"Dockside Extortionist", "Emrakul, the Aeons Torn", "Erayo, Soratami Ascendant",
	"Falling Star", "Fastbond", "Flash", "Gifts Ungiven", "Golos, Tireless Pilgrim",
	"Griselbrand", "Hullbreacher", "Iona, Shield of Emeria", "Jeweled Lotus",
	"Karakas", "Leovold, Emissary of Trest", "Library of Alexandria",
	"Limited Resources", "Lutri, the Spellchaser", "Mana Crypt", "Mox Emerald",
	"Mox Jet", "Mox Pearl", "Mox Ruby", "Mox Sapphire", "Nadu, Winged Wisdom",
	"Panoptic Mirror", "Paradox Engine", "Primeval Titan", "Prophet of Kruphix",
	"Recurring Nightmare", "Rofellos, Llanowar Emissary", "Shahrazad",
	"Sundering Titan", "Sway of the Stars", "Sylvan Primordial", "Time Vault",
	"Time Walk", "Tinker", "Tolarian Academy", "Trade Secrets", "Upheaval",
	"Yawgmoth's Bargain",

	"Invoke Prejudice", "Cleanse", "Stone-Throwing Devils", "Pradesh Gypsies",
	"Jihad", "Imprison", "Crusade",
}

// Type-line fragments of cards that are not part of a Commander deck.
var defaultExcludedTypes = []string{
	"Plane —", "Conspiracy", "Vanguard", "Scheme", "Phenomenon",
	"Stickers", "Attraction", "Contraption",
}

// Promo and silver-border sets whose printings are not tournament legal.
var defaultNonLegalSets = []string{
	"PHTR", "PH17", "PH18", "PH19", "PH20", "PH21",
	"UGL", "UND", "UNH", "UST",
}

var defaultDesiredColumns = []string{
	"name", "faceName", "edhrecRank", "colorIdentity", "colors",
	"manaCost", "manaValue", "type", "layout", "text",
	"power", "toughness", "keywords", "side",
}

var defaultColumnOrder = []string{
	"name", "faceName", "edhrecRank", "colorIdentity", "colors",
	"manaCost", "manaValue", "type", "creatureTypes", "text",
	"power", "toughness", "keywords", "themeTags", "layout", "side",
}

var defaultRequiredColumns = []string{"name"}

var defaultSortKeys = []string{"name", "side"}

var defaultFilterRules = map[string]RuleSpec{
	"layout":        {Exclude: []string{"reversible_card"}},
	"availability":  {Require: []string{"paper"}},
	"promoTypes":    {Exclude: []string{"playtest"}},
	"securityStamp": {Exclude: []string{"Heart", "Acorn"}},
}

// Label → identity key (letters sorted alphabetically, ", " joined).
var defaultColorIdentities = map[string]string{
	"colorless": "",
	"white":     "W",
	"blue":      "U",
	"black":     "B",
	"red":       "R",
	"green":     "G",

	"azorius":  "U, W",
	"dimir":    "B, U",
	"rakdos":   "B, R",
	"gruul":    "G, R",
	"selesnya": "G, W",
	"orzhov":   "B, W",
	"izzet":    "R, U",
	"golgari":  "B, G",
	"boros":    "R, W",
	"simic":    "G, U",

	"bant":   "G, U, W",
	"esper":  "B, U, W",
	"grixis": "B, R, U",
	"jund":   "B, G, R",
	"naya":   "G, R, W",
	"abzan":  "B, G, W",
	"jeskai": "R, U, W",
	"sultai": "B, G, U",
	"mardu":  "B, R, W",
	"temur":  "G, R, U",

	"glint": "B, G, R, U",
	"dune":  "B, G, R, W",
	"ink":   "G, R, U, W",
	"witch": "B, G, U, W",
	"yore":  "B, R, U, W",

	"wubrg": "B, G, R, U, W",
}

// DefaultSpec returns a fresh copy of the built-in Commander tables.
func DefaultSpec() Spec {
	rulesCopy := make(map[string]RuleSpec, len(defaultFilterRules))
	for k, v := range defaultFilterRules {
		rulesCopy[k] = RuleSpec{
			Exclude: append([]string(nil), v.Exclude...),
			Require: append([]string(nil), v.Require...),
		}
	}
	labels := make(map[string]string, len(defaultColorIdentities))
	for k, v := range defaultColorIdentities {
		labels[k] = v
	}
	return Spec{
		BannedCards:       append([]string(nil), defaultBannedCards...),
		ExcludedTypes:     append([]string(nil), defaultExcludedTypes...),
		NonLegalSets:      append([]string(nil), defaultNonLegalSets...),
		DesiredColumns:    append([]string(nil), defaultDesiredColumns...),
		RequiredColumns:   append([]string(nil), defaultRequiredColumns...),
		ColumnOrder:       append([]string(nil), defaultColumnOrder...),
		SortKeys:          append([]string(nil), defaultSortKeys...),
		SortCaseSensitive: false,
		FilterRules:       rulesCopy,
		ColorIdentities:   labels,
	}
}

// Default returns the built-in Commander tables. The defaults are known to
// be valid, so construction cannot fail.
func Default() *Tables {
	t, err := New(DefaultSpec())
	if err != nil {
		panic("rules: invalid defaults: " + err.Error())
	}
	return t
}
