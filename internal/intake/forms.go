package intake

// Input kinds of a field definition.
const (
	KindText          = "text"
	KindTextarea      = "textarea"
	KindSelect        = "select"
	KindRadio         = "radio"
	KindCheckboxGroup = "checkbox-group"
	KindCheckbox      = "checkbox"
)

// FieldDefinition describes how one field of a step form is rendered.
type FieldDefinition struct {
	Path        string      `json:"path"`
	Label       string      `json:"label"`
	Kind        string      `json:"kind"`
	Placeholder string      `json:"placeholder,omitempty"`
	Options     []Option    `json:"options,omitempty"`
	Required    bool        `json:"required"`
	RequiredIf  string      `json:"requiredIf,omitempty"`
	Default     interface{} `json:"default"`
}

// FormDefinition is the rendering contract of one data-entry step.
type FormDefinition struct {
	Step   Step              `json:"step"`
	Key    string            `json:"key"`
	Title  string            `json:"title"`
	Submit string            `json:"submitLabel"`
	Fields []FieldDefinition `json:"fields"`
}

func text(path, label, placeholder string, required bool) FieldDefinition {
	return FieldDefinition{Path: path, Label: label, Kind: KindText, Placeholder: placeholder, Required: required, Default: ""}
}

func textarea(path, label, placeholder string, required bool) FieldDefinition {
	return FieldDefinition{Path: path, Label: label, Kind: KindTextarea, Placeholder: placeholder, Required: required, Default: ""}
}

func choice(kind, path, label string, options []Option, def string) FieldDefinition {
	return FieldDefinition{Path: path, Label: label, Kind: kind, Options: options, Required: true, Default: def}
}

func checkboxes(path, label string, options []Option, required bool) FieldDefinition {
	return FieldDefinition{Path: path, Label: label, Kind: KindCheckboxGroup, Options: options, Required: required, Default: []string{}}
}

// Forms returns the three step forms in wizard order.
func Forms() []FormDefinition {
	return []FormDefinition{
		{
			Step: StepBusiness, Key: StepBusiness.Key(), Title: StepBusiness.Title(), Submit: "Continue",
			Fields: []FieldDefinition{
				text("businessName", "Business Name", "Your awesome business name", true),
				choice(KindSelect, "businessDomain", "Business Domain", BusinessDomains, ""),
				textarea("primaryService", "Primary Service", "What do you offer?", true),
				text("location", "Location", "Where are you based?", true),
				choice(KindSelect, "primaryLanguage", "Primary Language", Languages, ""),
				text("secondaryLanguages", "Secondary Languages", "e.g., Spanish, French", false),
			},
		},
		{
			Step: StepWebsite, Key: StepWebsite.Key(), Title: StepWebsite.Title(), Submit: "Continue",
			Fields: []FieldDefinition{
				text("targetAudience.age", "Age Range", "e.g., 25-45", true),
				text("targetAudience.location", "Geographic Location", "e.g., North America, Europe", true),
				text("targetAudience.interests", "Specific Interests", "e.g., Technology, Fashion", true),
				text("currentWebsite", "Current Website URL (if applicable)", "https://...", false),
				text("themePreferences.colorScheme", "Color Scheme", "e.g., Blue and white", true),
				choice(KindRadio, "themePreferences.mood", "Mood", Moods, ""),
				choice(KindRadio, "fontPreference", "Font Preference", Fonts, ""),
				choice(KindRadio, "logo", "Logo and Branding", LogoChoices, "existing"),
				checkboxes("features", "Website Features", WebsiteFeatures, true),
				textarea("otherFeatures", "Other Features", "Anything else your website needs?", false),
			},
		},
		{
			Step: StepMarketing, Key: StepMarketing.Key(), Title: StepMarketing.Title(), Submit: "Submit",
			Fields: []FieldDefinition{
				checkboxes("socialMedia", "Social Media Platforms", SocialPlatforms, true),
				choice(KindSelect, "preferredMarketing", "Preferred Marketing Platform", SocialPlatforms, ""),
				text("targetLocations", "Target Locations", "e.g., New York, London", true),
				choice(KindSelect, "contentTone", "Content Tone", ContentTones, ""),
				{Path: "blogging.needed", Label: "Blogging Needs", Kind: KindCheckbox, Required: true, Default: false},
				{
					Path: "blogging.frequency", Label: "Blogging Frequency", Kind: KindSelect,
					Options: BloggingFrequencies, RequiredIf: "blogging.needed", Default: "",
				},
				{Path: "blogging.topics", Label: "Blog Topics", Kind: KindTextarea, Default: ""},
				choice(KindRadio, "budget.type", "Budget Type", BudgetTypes, "monthly"),
				text("budget.amount", "Budget Amount", "Enter amount", true),
				checkboxes("marketingMaterials", "Marketing Materials Needed", MarketingMaterials, false),
				checkboxes("kpis", "Key Performance Indicators", KPIs, true),
				text("multilingualSupport", "Multilingual Support Needed", "List required languages", false),
				textarea("additionalRequirements", "Additional Requirements", "", false),
				textarea("marketingChallenges", "Previous Marketing Challenges", "", false),
				textarea("finalNotes", "Final Notes", "", false),
			},
		},
	}
}

// FormFor returns the definition of a data-entry step.
func FormFor(step Step) (FormDefinition, bool) {
	for _, f := range Forms() {
		if f.Step == step {
			return f, true
		}
	}
	return FormDefinition{}, false
}
