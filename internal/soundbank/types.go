package soundbank

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Category is a named volume group owning items
type Category struct {
	Name   string  `yaml:"name"`
	Volume float64 `yaml:"volume"`
	// Prefab overrides the voice prefab kind for every item in the category
	Prefab string  `yaml:"prefab,omitempty"`
	Items  []*Item `yaml:"items"`
}

// UnmarshalYAML applies defaults for omitted fields
func (c *Category) UnmarshalYAML(value *yaml.Node) error {
	type raw Category
	r := raw{Volume: 1}
	if err := value.Decode(&r); err != nil {
		return err
	}
	*c = Category(r)
	return nil
}

// Item is a playable sound made of one or more sub-items
type Item struct {
	Name   string        `yaml:"name"`
	Volume float64       `yaml:"volume"`
	Loop   bool          `yaml:"loop"`
	Delay  time.Duration `yaml:"delay"`
	// MinTimeBetween rejects triggers that arrive sooner after the last start
	MinTimeBetween time.Duration `yaml:"min_time_between_calls"`
	// MaxInstances caps concurrent voices, 0 = unlimited
	MaxInstances         int        `yaml:"max_instances"`
	PickMode             PickMode   `yaml:"pick_mode"`
	DestroyOnSceneChange bool       `yaml:"destroy_on_scene_change"`
	SubItems             []*SubItem `yaml:"sub_items"`

	// Category is set when the registry is built
	Category *Category `yaml:"-"`
}

// UnmarshalYAML applies defaults for omitted fields
func (i *Item) UnmarshalYAML(value *yaml.Node) error {
	type raw Item
	r := raw{Volume: 1, PickMode: PickRandom}
	if err := value.Decode(&r); err != nil {
		return err
	}
	*i = Item(r)
	return nil
}

// SubItem is either a clip reference or a redirect to another item
type SubItem struct {
	Clip     string `yaml:"clip,omitempty"`
	Redirect string `yaml:"item,omitempty"`

	Volume float64 `yaml:"volume"`
	// RandomVolume is the maximum jitter added to or removed from Volume
	RandomVolume float64 `yaml:"random_volume"`
	// RandomPitch is the maximum jitter in semitones
	RandomPitch float64       `yaml:"random_pitch"`
	PitchShift  float64       `yaml:"pitch_shift"` // semitones
	FadeIn      time.Duration `yaml:"fade_in"`
	FadeOut     time.Duration `yaml:"fade_out"`
	ClipStart   time.Duration `yaml:"clip_start"`
	// ClipStop ends playback at this offset from the clip start, 0 = natural end
	ClipStop time.Duration `yaml:"clip_stop"`
	Pan      float64       `yaml:"pan"` // -1 left .. 1 right
	Delay    time.Duration `yaml:"delay"`
	// Probability is a relative weight; redirects never take part in weighting
	Probability float64 `yaml:"probability"`

	// Weight is Probability normalised over the clip sub-items of the item
	Weight float64 `yaml:"-"`
	// Cumulative is the running sum of Weight up to and including this sub-item
	Cumulative float64 `yaml:"-"`
	// Target is the resolved redirect item
	Target *Item `yaml:"-"`
}

// UnmarshalYAML applies defaults for omitted fields
func (s *SubItem) UnmarshalYAML(value *yaml.Node) error {
	type raw SubItem
	r := raw{Volume: 1, Probability: 1}
	if err := value.Decode(&r); err != nil {
		return err
	}
	*s = SubItem(r)
	return nil
}

// IsRedirect reports whether the sub-item points at another item
func (s *SubItem) IsRedirect() bool {
	return s.Redirect != ""
}

// CategoryName returns the owning category name, or "" before linking
func (i *Item) CategoryName() string {
	if i.Category == nil {
		return ""
	}
	return i.Category.Name
}
