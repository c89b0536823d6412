package intake

import (
	v "lead-intake/internal/common/validation"
)

const (
	msgBloggingFrequency = "Select blogging frequency"
	msgBudgetType        = "Select a budget type"
	msgNotText           = "Must be text"
	msgNotList           = "Must be a list of options"
	msgBudgetNumeric     = "Budget amount must be a number"
	msgCurrentWebsite    = "Enter a valid website address"
)

// BusinessSchema validates step 1.
var BusinessSchema = v.Schema{
	{Path: "businessName", Rules: []v.Rule{
		v.Required("Business name must be at least 2 characters"),
		v.MinLength(2, "Business name must be at least 2 characters"),
	}},
	{Path: "businessDomain", Rules: []v.Rule{
		v.Required("Please select a business domain"),
		v.OneOf(IDs(BusinessDomains), "Please select a business domain"),
	}},
	{Path: "primaryService", Rules: []v.Rule{
		v.Required("Please describe your primary service"),
		v.MinLength(2, "Please describe your primary service"),
	}},
	{Path: "location", Rules: []v.Rule{
		v.Required("Location is required"),
		v.MinLength(2, "Location is required"),
	}},
	{Path: "primaryLanguage", Rules: []v.Rule{
		v.Required("Primary language is required"),
		v.OneOf(IDs(Languages), "Primary language is required"),
	}},
	{Path: "secondaryLanguages", Rules: []v.Rule{v.String(msgNotText)}},
}

// WebsiteSchema validates step 2.
var WebsiteSchema = v.Schema{
	{Path: "targetAudience.age", Rules: []v.Rule{v.Required("Age range is required"), v.String(msgNotText)}},
	{Path: "targetAudience.location", Rules: []v.Rule{v.Required("Geographic location is required"), v.String(msgNotText)}},
	{Path: "targetAudience.interests", Rules: []v.Rule{v.Required("Interests are required"), v.String(msgNotText)}},
	{Path: "currentWebsite", Rules: []v.Rule{v.String(msgNotText), v.URL(msgCurrentWebsite)}},
	{Path: "themePreferences.colorScheme", Rules: []v.Rule{v.Required("Color scheme is required"), v.String(msgNotText)}},
	{Path: "themePreferences.mood", Rules: []v.Rule{
		v.Required("Mood selection is required"),
		v.OneOf(IDs(Moods), "Mood selection is required"),
	}},
	{Path: "fontPreference", Rules: []v.Rule{
		v.Required("Font preference is required"),
		v.OneOf(IDs(Fonts), "Font preference is required"),
	}},
	{Path: "logo", Rules: []v.Rule{
		v.Required("Please select a logo option"),
		v.OneOf(IDs(LogoChoices), "Please select a logo option"),
	}},
	{Path: "features", Rules: []v.Rule{
		v.List(msgNotList),
		v.NonEmptyList("Select at least one feature"),
		v.EachOneOf(IDs(WebsiteFeatures), "Select at least one feature"),
	}},
	{Path: "otherFeatures", Rules: []v.Rule{v.String(msgNotText)}},
}

var bloggingNeeded = v.IsTrue("blogging.needed")

// MarketingSchema validates step 3. Blogging frequency is only required when blogging is needed.
var MarketingSchema = v.Schema{
	{Path: "socialMedia", Rules: []v.Rule{
		v.List(msgNotList),
		v.NonEmptyList("Select at least one platform"),
		v.EachOneOf(IDs(SocialPlatforms), "Select at least one platform"),
	}},
	{Path: "preferredMarketing", Rules: []v.Rule{
		v.Required("Select preferred marketing platform"),
		v.OneOf(IDs(SocialPlatforms), "Select preferred marketing platform"),
	}},
	{Path: "targetLocations", Rules: []v.Rule{v.Required("Target locations are required"), v.String(msgNotText)}},
	{Path: "contentTone", Rules: []v.Rule{
		v.Required("Select content tone"),
		v.OneOf(IDs(ContentTones), "Select content tone"),
	}},
	{Path: "blogging.needed", Rules: []v.Rule{v.Boolean("Blogging needs must be yes or no")}},
	{Path: "blogging.frequency", Rules: []v.Rule{
		v.Required(msgBloggingFrequency).OnlyWhen(bloggingNeeded),
		v.OneOf(IDs(BloggingFrequencies), msgBloggingFrequency).OnlyWhen(bloggingNeeded),
	}},
	{Path: "blogging.topics", Rules: []v.Rule{v.String(msgNotText)}},
	{Path: "budget.type", Rules: []v.Rule{
		v.Required(msgBudgetType),
		v.OneOf(IDs(BudgetTypes), msgBudgetType),
	}},
	{Path: "budget.amount", Rules: []v.Rule{
		v.Required("Budget amount is required"),
		v.Numeric(msgBudgetNumeric),
	}},
	{Path: "marketingMaterials", Rules: []v.Rule{
		v.List(msgNotList),
		v.EachOneOf(IDs(MarketingMaterials), "Unknown marketing material"),
	}},
	{Path: "kpis", Rules: []v.Rule{
		v.List(msgNotList),
		v.NonEmptyList("Select at least one KPI"),
		v.EachOneOf(IDs(KPIs), "Select at least one KPI"),
	}},
	{Path: "multilingualSupport", Rules: []v.Rule{v.String(msgNotText)}},
	{Path: "additionalRequirements", Rules: []v.Rule{v.String(msgNotText)}},
	{Path: "marketingChallenges", Rules: []v.Rule{v.String(msgNotText)}},
	{Path: "finalNotes", Rules: []v.Rule{v.String(msgNotText)}},
}

// SchemaFor returns the rule table of a data-entry step.
func SchemaFor(step Step) (v.Schema, bool) {
	switch step {
	case StepBusiness:
		return BusinessSchema, true
	case StepWebsite:
		return WebsiteSchema, true
	case StepMarketing:
		return MarketingSchema, true
	}
	return nil, false
}
