package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agro-ad/backend/internal/errs"
)

var base = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func at(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

func iv(startH, endH int) Interval { return Interval{Start: at(startH), End: at(endH)} }

func TestNewIntervalRejectsEmpty(t *testing.T) {
	_, err := NewInterval(at(5), at(5))
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	_, err = NewInterval(at(6), at(5))
	assert.True(t, errs.IsValidation(err))

	_, err = NewInterval(time.Time{}, at(5))
	assert.True(t, errs.IsValidation(err))

	got, err := NewInterval(at(1), at(2))
	require.NoError(t, err)
	assert.Equal(t, iv(1, 2), got)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", iv(0, 4), iv(0, 4), true},
		{"partial", iv(0, 4), iv(2, 6), true},
		{"inner", iv(0, 10), iv(3, 4), true},
		{"adjacent", iv(0, 4), iv(4, 8), false},
		{"disjoint", iv(0, 2), iv(5, 8), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			assert.Equal(t, Overlaps(tt.a, tt.b), Overlaps(tt.b, tt.a), "symmetry")
		})
	}
}

func TestOverlapsSelf(t *testing.T) {
	for h := 1; h < 48; h += 7 {
		a := iv(0, h)
		assert.True(t, Overlaps(a, a))
	}
}

func TestContains(t *testing.T) {
	assert.True(t, Contains(iv(0, 10), iv(0, 10)))
	assert.True(t, Contains(iv(0, 10), iv(2, 3)))
	assert.False(t, Contains(iv(0, 10), iv(2, 11)))
	assert.False(t, Contains(iv(1, 10), iv(0, 5)))
}

func TestClampTo(t *testing.T) {
	assert.Equal(t, iv(2, 8), ClampTo(iv(0, 8), iv(2, 10)))
	assert.Equal(t, iv(3, 4), ClampTo(iv(3, 4), iv(0, 10)))

	empty := ClampTo(iv(0, 2), iv(5, 10))
	assert.True(t, empty.IsEmpty())
}

func TestIncludesIsClosed(t *testing.T) {
	w := iv(10, 18)
	assert.True(t, w.Includes(at(10)))
	assert.True(t, w.Includes(at(18)))
	assert.True(t, w.Includes(at(12)))
	assert.False(t, w.Includes(at(19)))
}

func TestAdValidate(t *testing.T) {
	campaign := iv(0, 24)
	secs := 5
	zero := 0

	ok := AdMedia{Name: "x", Kind: MediaImage, MediaURL: "https://cdn/x.png", DisplaySeconds: &secs}
	require.NoError(t, ok.Validate(campaign))

	video := AdMedia{Name: "v", Kind: MediaVideo, MediaURL: "https://cdn/v.mp4"}
	require.NoError(t, video.Validate(campaign))

	cases := map[string]AdMedia{
		"missing duration": {Name: "x", Kind: MediaGIF, MediaURL: "u"},
		"zero duration":    {Name: "x", Kind: MediaImage, MediaURL: "u", DisplaySeconds: &zero},
		"bad kind":         {Name: "x", Kind: "audio", MediaURL: "u", DisplaySeconds: &secs},
		"no name":          {Kind: MediaVideo, MediaURL: "u"},
		"outside window":   {Name: "x", Kind: MediaVideo, MediaURL: "u", Window: &Interval{Start: at(20), End: at(30)}},
		"empty window":     {Name: "x", Kind: MediaVideo, MediaURL: "u", Window: &Interval{Start: at(3), End: at(3)}},
	}
	for name, ad := range cases {
		t.Run(name, func(t *testing.T) {
			err := ad.Validate(campaign)
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err))
		})
	}
}

func TestValidateNameCountsCharacters(t *testing.T) {
	assert.True(t, errs.IsValidation(ValidateName("éé")))
	assert.True(t, errs.IsValidation(ValidateName("  ab  ")))
	assert.NoError(t, ValidateName("ééé"))
	assert.NoError(t, ValidateName("Café"))
	assert.True(t, errs.IsValidation(ValidateCampaign("日本", iv(0, 1))))
}
