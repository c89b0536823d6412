package intake

import "fmt"

// Step identifies one screen of the wizard. StepComplete is the terminal confirmation.
type Step int

const (
	StepBusiness Step = iota + 1
	StepWebsite
	StepMarketing
	StepComplete
)

// Key is the record key and URL segment of a data-entry step.
func (s Step) Key() string {
	switch s {
	case StepBusiness:
		return "business"
	case StepWebsite:
		return "website"
	case StepMarketing:
		return "marketing"
	case StepComplete:
		return "complete"
	}
	return fmt.Sprintf("step-%d", int(s))
}

func (s Step) String() string {
	return s.Key()
}

// Title is the progress-bar label of the step.
func (s Step) Title() string {
	switch s {
	case StepBusiness:
		return "Business Details"
	case StepWebsite:
		return "Website Needs"
	case StepMarketing:
		return "Marketing"
	case StepComplete:
		return "Thank You!"
	}
	return ""
}

// IsDataEntry reports whether the step collects a payload.
func (s Step) IsDataEntry() bool {
	return s >= StepBusiness && s <= StepMarketing
}

// ParseStep resolves a step key such as "website".
func ParseStep(key string) (Step, bool) {
	for _, s := range []Step{StepBusiness, StepWebsite, StepMarketing} {
		if s.Key() == key {
			return s, true
		}
	}
	return 0, false
}

// Payload is the validated output of one step form.
type Payload interface {
	Step() Step
}

type BusinessDetails struct {
	BusinessName       string `json:"businessName"`
	BusinessDomain     string `json:"businessDomain"`
	PrimaryService     string `json:"primaryService"`
	Location           string `json:"location"`
	PrimaryLanguage    string `json:"primaryLanguage"`
	SecondaryLanguages string `json:"secondaryLanguages,omitempty"`
}

func (BusinessDetails) Step() Step { return StepBusiness }

type TargetAudience struct {
	Age       string `json:"age"`
	Location  string `json:"location"`
	Interests string `json:"interests"`
}

type ThemePreferences struct {
	ColorScheme string `json:"colorScheme"`
	Mood        string `json:"mood"`
}

type WebsitePreferences struct {
	TargetAudience   TargetAudience   `json:"targetAudience"`
	CurrentWebsite   string           `json:"currentWebsite,omitempty"`
	ThemePreferences ThemePreferences `json:"themePreferences"`
	FontPreference   string           `json:"fontPreference"`
	Logo             string           `json:"logo"`
	Features         []string         `json:"features"`
	OtherFeatures    string           `json:"otherFeatures,omitempty"`
}

func (WebsitePreferences) Step() Step { return StepWebsite }

type Blogging struct {
	Needed    bool   `json:"needed"`
	Frequency string `json:"frequency,omitempty"`
	Topics    string `json:"topics,omitempty"`
}

type Budget struct {
	Type   string `json:"type"`
	Amount string `json:"amount"`
}

type MarketingPreferences struct {
	SocialMedia            []string `json:"socialMedia"`
	PreferredMarketing     string   `json:"preferredMarketing"`
	TargetLocations        string   `json:"targetLocations"`
	ContentTone            string   `json:"contentTone"`
	Blogging               Blogging `json:"blogging"`
	Budget                 Budget   `json:"budget"`
	MarketingMaterials     []string `json:"marketingMaterials"`
	KPIs                   []string `json:"kpis"`
	MultilingualSupport    string   `json:"multilingualSupport,omitempty"`
	AdditionalRequirements string   `json:"additionalRequirements,omitempty"`
	MarketingChallenges    string   `json:"marketingChallenges,omitempty"`
	FinalNotes             string   `json:"finalNotes,omitempty"`
}

func (MarketingPreferences) Step() Step { return StepMarketing }

// Record is the answer set accumulated across completed steps.
// A nil section means the step has not been completed yet.
type Record struct {
	Business  *BusinessDetails      `json:"business,omitempty"`
	Website   *WebsitePreferences   `json:"website,omitempty"`
	Marketing *MarketingPreferences `json:"marketing,omitempty"`
}

// Merge returns a copy of r with p stored under its step key. r is not modified.
func (r Record) Merge(p Payload) Record {
	out := r
	switch v := p.(type) {
	case BusinessDetails:
		out.Business = &v
	case *BusinessDetails:
		c := *v
		out.Business = &c
	case WebsitePreferences:
		out.Website = &v
	case *WebsitePreferences:
		c := *v
		out.Website = &c
	case MarketingPreferences:
		out.Marketing = &v
	case *MarketingPreferences:
		c := *v
		out.Marketing = &c
	}
	return out
}

// Complete reports whether all three sections are present.
func (r Record) Complete() bool {
	return r.Business != nil && r.Website != nil && r.Marketing != nil
}

// Has reports whether the section for step s is present.
func (r Record) Has(s Step) bool {
	switch s {
	case StepBusiness:
		return r.Business != nil
	case StepWebsite:
		return r.Website != nil
	case StepMarketing:
		return r.Marketing != nil
	}
	return false
}
