package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agro-ad/backend/internal/models"
)

func TestFindConflict(t *testing.T) {
	existing := []models.Campaign{
		{ID: "b", Name: "Beta", Window: window(day(5), day(8))},
		{ID: "a", Name: "Alpha", Window: window(day(0), day(7))},
	}

	tests := []struct {
		name string
		cand Candidate
		want string
	}{
		{"strictly before", Candidate{CampaignID: "x", Window: window(day(-3), day(-1))}, ""},
		{"strictly after", Candidate{CampaignID: "x", Window: window(day(9), day(12))}, ""},
		{"touching end", Candidate{CampaignID: "x", Window: window(day(8), day(10))}, ""},
		{"overlaps both picks lowest id", Candidate{CampaignID: "x", Window: window(day(6), day(9))}, "a"},
		{"overlaps second only", Candidate{CampaignID: "x", Window: window(day(7), day(9))}, "b"},
		{"self is ignored", Candidate{CampaignID: "a", Window: window(day(0), day(4))}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindConflict(existing, tt.cand)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestFindConflictDoesNotReorderInput(t *testing.T) {
	existing := []models.Campaign{{ID: "z"}, {ID: "a"}}
	FindConflict(existing, Candidate{})
	assert.Equal(t, "z", existing[0].ID)
}

func TestCheckerOnlyLooksAtTheGivenTV(t *testing.T) {
	st := newMemStore()
	st.addTV("tv1")
	st.addTV("tv2")
	st.addCampaign(models.Campaign{ID: "a", Name: "Alpha", Window: window(day(0), day(7))})
	st.link("a", "tv1")

	c := NewChecker(st)
	got, err := c.Check(context.Background(), "tv2", Candidate{CampaignID: "x", Window: window(day(3), day(10))})
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = c.Check(context.Background(), "tv1", Candidate{CampaignID: "x", Window: window(day(3), day(10))})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.ID)
}
