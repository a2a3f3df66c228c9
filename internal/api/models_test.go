package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_UnmarshalJSON(t *testing.T) {
	var post Post
	err := json.Unmarshal([]byte(`{
		"_id": "p1",
		"author": {"_id": "u1", "name": "Ada"},
		"likes": ["u2", {"_id": "u3", "name": "Bo"}, null],
		"comments": [{"_id": "c1", "text": "hi", "user": "u4"}],
		"createdAt": "2024-03-01T12:00:00.000Z"
	}`), &post)
	require.NoError(t, err)

	assert.Equal(t, Ref{ID: "u1", Name: "Ada"}, post.Author)
	assert.Equal(t, []Ref{{ID: "u2"}, {ID: "u3", Name: "Bo"}, {}}, post.Likes)
	assert.Equal(t, "u4", post.Comments[0].User.ID)
	assert.Equal(t, "User", post.Comments[0].User.DisplayName())
	assert.Equal(t, 2024, post.CreatedAt.Year())
	assert.True(t, post.LikedBy("u3"))
	assert.False(t, post.LikedBy(""))
}

func TestRef_UnmarshalJSON_Invalid(t *testing.T) {
	var r Ref
	assert.Error(t, json.Unmarshal([]byte(`42`), &r))
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"go", "cli"}, ParseTags(" go ,cli,,"))
	assert.Equal(t, []string{}, ParseTags(""))
}

func TestExcerpt(t *testing.T) {
	p := Post{Content: "  héllo world  "}
	assert.Equal(t, "héllo...", p.Excerpt(5))
	assert.Equal(t, "héllo world", p.Excerpt(50))
}

func TestComputeStats_NilUser(t *testing.T) {
	s := ComputeStats(nil, []Post{{Views: 3}, {Views: 4, Likes: []Ref{{ID: "a"}}}})
	assert.Equal(t, Stats{Posts: 2, Views: 7, Likes: 1}, s)
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "go", NormalizeQuery("  #go "))
	assert.Equal(t, "#go", NormalizeQuery("##go"))
	assert.Equal(t, "", NormalizeQuery(" # "))
}
