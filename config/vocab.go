package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

// AliasGroup maps every spelling in Aliases to the Canonical booker name.
// Latin-script aliases are matched case-insensitively; everything else is
// matched exactly.
type AliasGroup struct {
	Canonical string   `yaml:"canonical"`
	Aliases   []string `yaml:"aliases"`
}

// Vocabulary carries the fixed word lists the matcher and the booker-name
// normalizer work from. The built-in defaults mirror the booking sheets in
// production; VOCAB_FILE points at a YAML file overriding them.
type Vocabulary struct {
	AliasGroups     []AliasGroup `yaml:"aliasGroups"`
	RoomKeywords    []string     `yaml:"roomKeywords"`
	TakeoutKeywords []string     `yaml:"takeoutKeywords"`
}

func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		AliasGroups: []AliasGroup{
			{Canonical: "平和", Aliases: []string{"平和", "平哥"}},
			{Canonical: "刘霞", Aliases: []string{"刘霞", "刘"}},
			{Canonical: "周思玗", Aliases: []string{"周", "周思玗"}},
			{Canonical: "SK", Aliases: []string{"sk"}},
		},
		RoomKeywords:    []string{"福禄", "喜乐", "大厅", "包厢", "雅间"},
		TakeoutKeywords: []string{"外卖", "takeout", "配送", "打包"},
	}
}

func LoadVocabulary(path string) (*Vocabulary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	vocab := &Vocabulary{}
	if err := yaml.Unmarshal(raw, vocab); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	if len(vocab.AliasGroups) == 0 && len(vocab.RoomKeywords) == 0 {
		return nil, fmt.Errorf("vocabulary %s is empty", path)
	}
	return vocab, nil
}

var vocab *Vocabulary

// GetVocabulary returns the process-wide vocabulary: VOCAB_FILE if set and
// readable, the built-in defaults otherwise.
func GetVocabulary() *Vocabulary {
	if vocab != nil {
		return vocab
	}
	if path := strings.TrimSpace(os.Getenv("VOCAB_FILE")); path != "" {
		loaded, err := LoadVocabulary(path)
		if err == nil {
			vocab = loaded
			return vocab
		}
		LogError(GetLogger(), "vocab.go", "GetVocabulary", "LoadVocabulary", path, err)
	}
	vocab = DefaultVocabulary()
	return vocab
}
