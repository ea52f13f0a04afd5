package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettboylen/reddit-insights/models"
)

func comment(id, author, body string, score int, replies ...models.Comment) models.Comment {
	return models.Comment{ID: id, Author: author, Body: body, Score: score, Replies: replies}
}

func TestAggregateComments(t *testing.T) {
	comments := []models.Comment{
		comment("a", "alice", "hi", 3),
		comment("b", "bob", "héllo", 5,
			comment("c", "carol", "nested", -2,
				comment("d", "alice", "deeper", 1),
			),
		),
		comment("e", "dave", "", 0),
	}

	metrics := AggregateComments(comments)

	assert.Equal(t, models.CommentMetrics{
		TotalCommentsCount: 5,
		TotalCommentScore:  7,
		TotalCommentLength: 2 + 5 + 6 + 6,
		MaxCommentDepth:    2,
		UniqueCommenters:   4,
	}, metrics)
	assert.Equal(t, 5, CountComments(comments))
}

func TestAggregateCommentsExcludesSentinelAuthors(t *testing.T) {
	comments := []models.Comment{
		comment("1", "alice", "", 0),
		comment("2", models.AuthorDeleted, "", 0),
		comment("3", "alice", "", 0),
		comment("4", models.AuthorRemoved, "", 0),
		comment("5", "bob", "", 0),
		comment("6", "", "", 0),
	}

	assert.Equal(t, 2, AggregateComments(comments).UniqueCommenters)
}

func TestAggregateCommentsEmpty(t *testing.T) {
	assert.Equal(t, models.CommentMetrics{}, AggregateComments(nil))
	assert.Equal(t, 0, CountComments([]models.Comment{}))
}

func TestBuildCommentTreeLayout(t *testing.T) {
	comments := []models.Comment{
		comment("a", "x", "", 0,
			comment("a1", "x", "", 0),
			comment("a2", "x", "", 0),
		),
		comment("b", "x", "", 0,
			comment("b1", "x", "", 0),
		),
	}

	tree := BuildCommentTree(comments)
	require.Equal(t, 5, tree.Len())
	assert.Equal(t, 2, tree.Roots)

	ids := make([]string, tree.Len())
	for i, node := range tree.Nodes {
		ids[i] = node.Comment.ID
	}
	assert.Equal(t, []string{"a", "b", "a1", "a2", "b1"}, ids)

	assert.Equal(t, []int{2, 3}, tree.Children(0))
	assert.Equal(t, []int{4}, tree.Children(1))
	assert.Empty(t, tree.Children(2))
	assert.Equal(t, 0, tree.Nodes[3].Parent)
	assert.Equal(t, -1, tree.Nodes[1].Parent)
}

func TestWalkVisitsInDisplayOrder(t *testing.T) {
	comments := []models.Comment{
		comment("a", "x", "", 0,
			comment("a1", "x", "", 0,
				comment("a1x", "x", "", 0),
			),
			comment("a2", "x", "", 0),
		),
		comment("b", "x", "", 0),
	}

	var events []string
	BuildCommentTree(comments).Walk(
		func(_ int, node CommentNode) { events = append(events, "+"+node.Comment.ID) },
		func(_ int, node CommentNode) { events = append(events, "-"+node.Comment.ID) },
	)

	assert.Equal(t, []string{
		"+a", "+a1", "+a1x", "-a1x", "-a1", "+a2", "-a2", "-a", "+b", "-b",
	}, events)
}

func TestDeepReplyChain(t *testing.T) {
	const depth = 100000

	// build the chain from the bottom up so no recursion is needed here either
	chain := comment("leaf", "u", "x", 1)
	for i := 0; i < depth; i++ {
		chain = comment("n", "u", "x", 1, chain)
	}

	metrics := AggregateComments([]models.Comment{chain})
	assert.Equal(t, depth+1, metrics.TotalCommentsCount)
	assert.Equal(t, depth, metrics.MaxCommentDepth)
	assert.Equal(t, 1, metrics.UniqueCommenters)

	visited := 0
	BuildCommentTree([]models.Comment{chain}).Walk(func(int, CommentNode) { visited++ }, nil)
	assert.Equal(t, depth+1, visited)
}
