package intake

// Option is one selectable value of a select, radio group or checkbox group.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var (
	BusinessDomains = []Option{
		{ID: "retail", Label: "Retail"},
		{ID: "manufacturing", Label: "Manufacturing"},
		{ID: "services", Label: "Services"},
		{ID: "technology", Label: "Technology"},
		{ID: "other", Label: "Other"},
	}

	Languages = []Option{
		{ID: "english", Label: "English"},
		{ID: "spanish", Label: "Spanish"},
		{ID: "french", Label: "French"},
		{ID: "german", Label: "German"},
		{ID: "other", Label: "Other"},
	}

	Moods = []Option{
		{ID: "professional", Label: "Professional"},
		{ID: "warm", Label: "Warm"},
		{ID: "vibrant", Label: "Vibrant"},
	}

	Fonts = []Option{
		{ID: "modern", Label: "Modern"},
		{ID: "classic", Label: "Classic"},
		{ID: "minimalistic", Label: "Minimalistic"},
	}

	LogoChoices = []Option{
		{ID: "existing", Label: "I have an existing logo"},
		{ID: "new", Label: "I need a new logo"},
	}

	WebsiteFeatures = []Option{
		{ID: "store", Label: "Online Store"},
		{ID: "booking", Label: "Appointment Booking"},
		{ID: "contact", Label: "Contact Form"},
		{ID: "blog", Label: "Blog or News"},
		{ID: "testimonials", Label: "Testimonials"},
		{ID: "portfolio", Label: "Portfolio Gallery"},
		{ID: "reviews", Label: "Customer Reviews"},
	}

	SocialPlatforms = []Option{
		{ID: "instagram", Label: "Instagram"},
		{ID: "facebook", Label: "Facebook"},
		{ID: "linkedin", Label: "LinkedIn"},
		{ID: "twitter", Label: "Twitter"},
		{ID: "youtube", Label: "YouTube"},
	}

	ContentTones = []Option{
		{ID: "professional", Label: "Professional"},
		{ID: "friendly", Label: "Friendly"},
		{ID: "casual", Label: "Casual"},
		{ID: "formal", Label: "Formal"},
	}

	BloggingFrequencies = []Option{
		{ID: "weekly", Label: "Weekly"},
		{ID: "biweekly", Label: "Bi-weekly"},
		{ID: "monthly", Label: "Monthly"},
	}

	BudgetTypes = []Option{
		{ID: "monthly", Label: "Monthly"},
		{ID: "project", Label: "Project-based"},
	}

	MarketingMaterials = []Option{
		{ID: "posters", Label: "Posters"},
		{ID: "videoAds", Label: "Video Ads"},
		{ID: "socialPosts", Label: "Social Media Posts"},
	}

	KPIs = []Option{
		{ID: "sales", Label: "Sales Growth"},
		{ID: "traffic", Label: "Website Traffic"},
		{ID: "engagement", Label: "Social Media Engagement"},
		{ID: "retention", Label: "Customer Retention"},
	}
)

// IDs returns the option values in display order.
func IDs(options []Option) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.ID
	}
	return out
}
