package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggle(t *testing.T) {
	tests := []struct {
		name    string
		set     []string
		id      string
		checked bool
		want    []string
	}{
		{"add to empty", nil, "store", true, []string{"store"}},
		{"add new", []string{"store"}, "blog", true, []string{"store", "blog"}},
		{"add present is a no-op", []string{"store", "blog"}, "store", true, []string{"store", "blog"}},
		{"remove present", []string{"store", "blog"}, "store", false, []string{"blog"}},
		{"remove absent", []string{"blog"}, "store", false, []string{"blog"}},
		{"remove clears duplicates", []string{"store", "store"}, "store", false, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Toggle(tt.set, tt.id, tt.checked))
		})
	}
}

func TestToggle_IdempotentUnderReselection(t *testing.T) {
	for _, opt := range WebsiteFeatures {
		once := Toggle([]string{"contact"}, opt.ID, true)
		twice := Toggle(once, opt.ID, true)
		assert.Equal(t, once, twice, opt.ID)
	}
}

func TestToggle_DoesNotModifyInput(t *testing.T) {
	in := []string{"store", "blog"}
	_ = Toggle(in, "store", false)
	assert.Equal(t, []string{"store", "blog"}, in)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []string{}, Normalize(nil))
	assert.Equal(t, []string{"a", "b"}, Normalize([]string{"a", "b", "a"}))
}
