package rules

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"cardetl/internal/datasource/file"
)

// fileSpec mirrors Spec with pointer fields so an override file can replace
// individual tables while leaving the rest at their defaults.
type fileSpec struct {
	BannedCards       *[]string           `toml:"banned_cards"`
	ExtraBannedCards  []string            `toml:"extra_banned_cards"`
	BannedListFile    string              `toml:"banned_list_file"`
	ExcludedTypes     *[]string           `toml:"excluded_types"`
	NonLegalSets      *[]string           `toml:"non_legal_sets"`
	DesiredColumns    *[]string           `toml:"desired_columns"`
	RequiredColumns   *[]string           `toml:"required_columns"`
	ColumnOrder       *[]string           `toml:"column_order"`
	SortKeys          *[]string           `toml:"sort_keys"`
	SortCaseSensitive *bool               `toml:"sort_case_sensitive"`
	FilterRules       map[string]RuleSpec `toml:"filter_rules"`
	ColorIdentities   map[string]string   `toml:"color_identities"`
}

// Load reads a TOML override file on top of DefaultSpec and validates the
// result. An empty path returns the defaults.
//
// Example:
//
//	extra_banned_cards = ["Some House Ban"]
//	banned_list_file = "house_bans.txt" # one name per line, relative to this file
//	sort_case_sensitive = true
//
//	[filter_rules.promoTypes]
//	exclude = ["playtest", "thick"]
func Load(path string) (*Tables, error) {
	spec := DefaultSpec()
	if path == "" {
		return New(spec)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("rules file: %w", err)
	}

	var fs fileSpec
	md, err := toml.DecodeFile(path, &fs)
	if err != nil {
		return nil, fmt.Errorf("decode rules file %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("rules file %s: unknown keys %v", path, undec)
	}

	if fs.BannedListFile != "" {
		listPath := fs.BannedListFile
		if !filepath.IsAbs(listPath) {
			listPath = filepath.Join(filepath.Dir(path), listPath)
		}
		names, err := file.ReadNames(listPath)
		if err != nil {
			return nil, fmt.Errorf("rules file %s: banned_list_file: %w", path, err)
		}
		fs.ExtraBannedCards = append(fs.ExtraBannedCards, names...)
		log.Printf("rules: banned_list_file=%s names=%d", listPath, len(names))
	}

	fs.apply(&spec)
	log.Printf("rules: loaded overrides from %s", path)
	return New(spec)
}

func (fs fileSpec) apply(spec *Spec) {
	setList := func(dst *[]string, src *[]string) {
		if src != nil {
			*dst = append([]string(nil), (*src)...)
		}
	}
	setList(&spec.BannedCards, fs.BannedCards)
	spec.BannedCards = append(spec.BannedCards, fs.ExtraBannedCards...)
	setList(&spec.ExcludedTypes, fs.ExcludedTypes)
	setList(&spec.NonLegalSets, fs.NonLegalSets)
	setList(&spec.DesiredColumns, fs.DesiredColumns)
	setList(&spec.RequiredColumns, fs.RequiredColumns)
	setList(&spec.ColumnOrder, fs.ColumnOrder)
	setList(&spec.SortKeys, fs.SortKeys)
	if fs.SortCaseSensitive != nil {
		spec.SortCaseSensitive = *fs.SortCaseSensitive
	}
	for field, r := range fs.FilterRules {
		spec.FilterRules[field] = r
	}
	for label, ident := range fs.ColorIdentities {
		spec.ColorIdentities[label] = ident
	}
}
