// Package threshold maps dataset sizes to filtering cutoffs and competitor
// counts to intensity classes. Every boundary comes from a table supplied by
// configuration.
package threshold

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/idea-research/internal/model"
)

// KeywordTable tiers the keyword-frequency cutoff by number of scraped items.
// Frequency filtering tuned for a large corpus drops real signal from a
// small one, so the cutoff scales down with the dataset.
type KeywordTable struct {
	SmallMaxItems  int `yaml:"small_max_items" mapstructure:"small_max_items"`
	MediumMaxItems int `yaml:"medium_max_items" mapstructure:"medium_max_items"`
	SmallCutoff    int `yaml:"small_cutoff" mapstructure:"small_cutoff"`
	MediumCutoff   int `yaml:"medium_cutoff" mapstructure:"medium_cutoff"`
	LargeCutoff    int `yaml:"large_cutoff" mapstructure:"large_cutoff"`
}

// DefaultKeywordTable returns the stock tiers: ≤10 items → 1, ≤30 → 2, else 3.
func DefaultKeywordTable() KeywordTable {
	return KeywordTable{
		SmallMaxItems:  10,
		MediumMaxItems: 30,
		SmallCutoff:    1,
		MediumCutoff:   2,
		LargeCutoff:    3,
	}
}

// Cutoff returns the minimum frequency a keyword must exceed when the corpus
// has numItems items.
func (t KeywordTable) Cutoff(numItems int) int {
	switch {
	case numItems <= t.SmallMaxItems:
		return t.SmallCutoff
	case numItems <= t.MediumMaxItems:
		return t.MediumCutoff
	default:
		return t.LargeCutoff
	}
}

// Validate checks that tiers are ordered and cutoffs never decrease.
func (t KeywordTable) Validate() error {
	if t.SmallMaxItems < 0 || t.SmallCutoff < 0 {
		return eris.New("threshold: keyword table values must be non-negative")
	}
	if t.SmallMaxItems >= t.MediumMaxItems {
		return eris.Errorf("threshold: small_max_items (%d) must be below medium_max_items (%d)",
			t.SmallMaxItems, t.MediumMaxItems)
	}
	if t.SmallCutoff > t.MediumCutoff || t.MediumCutoff > t.LargeCutoff {
		return eris.Errorf("threshold: keyword cutoffs must not decrease (%d, %d, %d)",
			t.SmallCutoff, t.MediumCutoff, t.LargeCutoff)
	}
	return nil
}

// IntensityTable holds the competitor-count boundaries for intensity classes.
type IntensityTable struct {
	LowMax    int `yaml:"low_max" mapstructure:"low_max"`
	MediumMax int `yaml:"medium_max" mapstructure:"medium_max"`
}

// DefaultIntensityTable returns the stock boundaries (5, 15).
func DefaultIntensityTable() IntensityTable {
	return IntensityTable{LowMax: 5, MediumMax: 15}
}

// Classify maps a competitor count to an intensity. LowMax itself is Medium
// and MediumMax itself is still Medium.
func (t IntensityTable) Classify(count int) model.Intensity {
	switch {
	case count < t.LowMax:
		return model.IntensityLow
	case count <= t.MediumMax:
		return model.IntensityMedium
	default:
		return model.IntensityHigh
	}
}

// Validate checks the boundaries are non-negative and ordered.
func (t IntensityTable) Validate() error {
	if t.LowMax < 0 {
		return eris.New("threshold: low_max must be non-negative")
	}
	if t.LowMax > t.MediumMax {
		return eris.Errorf("threshold: low_max (%d) must not exceed medium_max (%d)", t.LowMax, t.MediumMax)
	}
	return nil
}
