package intake

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const validBusiness = `{
  "businessName": "Acme Co",
  "businessDomain": "retail",
  "primaryService": "Widgets",
  "location": "Austin",
  "primaryLanguage": "english"
}`

const validWebsite = `{
  "targetAudience": {"age": "25-45", "location": "North America", "interests": "Technology"},
  "themePreferences": {"colorScheme": "Blue and white", "mood": "professional"},
  "fontPreference": "modern",
  "logo": "existing",
  "features": ["store", "contact"]
}`

const validMarketing = `{
  "socialMedia": ["instagram", "linkedin"],
  "preferredMarketing": "instagram",
  "targetLocations": "New York, London",
  "contentTone": "friendly",
  "blogging": {"needed": false},
  "budget": {"type": "monthly", "amount": "1500"},
  "marketingMaterials": [],
  "kpis": ["sales"]
}`

// mutate decodes raw, applies fn and re-encodes it.
func mutate(t *testing.T, raw string, fn func(doc map[string]interface{})) []byte {
	t.Helper()
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	fn(doc)
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return out
}

func nested(doc map[string]interface{}, key string) map[string]interface{} {
	return doc[key].(map[string]interface{})
}
