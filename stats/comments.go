package stats

import (
	"unicode/utf8"

	"github.com/brettboylen/reddit-insights/models"
)

// CommentNode is one comment in a flattened CommentTree.
// Children of a node occupy Nodes[FirstChild : FirstChild+ChildCount].
type CommentNode struct {
	Comment    *models.Comment
	Depth      int
	Parent     int // -1 for top-level comments
	FirstChild int
	ChildCount int
}

// CommentTree is a comment forest flattened breadth-first into a slice.
// The first Roots nodes are the top-level comments in their original order.
type CommentTree struct {
	Nodes []CommentNode
	Roots int
}

// BuildCommentTree flattens a comment forest without recursion, so reply chains of
// any depth only cost heap space. The input is not modified.
func BuildCommentTree(comments []models.Comment) *CommentTree {
	tree := &CommentTree{
		Nodes: make([]CommentNode, 0, len(comments)),
		Roots: len(comments),
	}

	for i := range comments {
		tree.Nodes = append(tree.Nodes, CommentNode{
			Comment: &comments[i],
			Parent:  -1,
		})
	}

	// each node's replies are appended in one run, which keeps sibling indices contiguous
	for i := 0; i < len(tree.Nodes); i++ {
		replies := tree.Nodes[i].Comment.Replies
		tree.Nodes[i].FirstChild = len(tree.Nodes)
		tree.Nodes[i].ChildCount = len(replies)

		depth := tree.Nodes[i].Depth + 1
		for j := range replies {
			tree.Nodes = append(tree.Nodes, CommentNode{
				Comment: &replies[j],
				Depth:   depth,
				Parent:  i,
			})
		}
	}

	return tree
}

// Len returns the number of comments in the tree, replies included
func (t *CommentTree) Len() int {
	return len(t.Nodes)
}

// Children returns the indices of the direct replies of node i
func (t *CommentTree) Children(i int) []int {
	node := t.Nodes[i]
	children := make([]int, node.ChildCount)
	for k := range children {
		children[k] = node.FirstChild + k
	}
	return children
}

// Walk visits every node depth-first in display order: a comment, then its replies
// in order, then its next sibling. enter is called when a node is reached and leave
// after all of its replies have been visited. Either may be nil.
func (t *CommentTree) Walk(enter, leave func(i int, node CommentNode)) {
	type frame struct {
		index   int
		leaving bool
	}

	stack := make([]frame, 0, t.Roots*2)
	for i := t.Roots - 1; i >= 0; i-- {
		stack = append(stack, frame{index: i, leaving: true}, frame{index: i})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := t.Nodes[top.index]

		if top.leaving {
			if leave != nil {
				leave(top.index, node)
			}
			continue
		}

		if enter != nil {
			enter(top.index, node)
		}
		for c := node.FirstChild + node.ChildCount - 1; c >= node.FirstChild; c-- {
			stack = append(stack, frame{index: c, leaving: true}, frame{index: c})
		}
	}
}

// Metrics aggregates the whole tree in a single pass over the flattened nodes
func (t *CommentTree) Metrics() models.CommentMetrics {
	var metrics models.CommentMetrics
	authors := make(map[string]struct{})

	for _, node := range t.Nodes {
		comment := node.Comment

		metrics.TotalCommentsCount++
		metrics.TotalCommentScore += comment.Score
		metrics.TotalCommentLength += utf8.RuneCountInString(comment.Body)

		if comment.Author != "" && !models.IsSentinelAuthor(comment.Author) {
			authors[comment.Author] = struct{}{}
		}

		if node.Depth > metrics.MaxCommentDepth {
			metrics.MaxCommentDepth = node.Depth
		}
	}

	metrics.UniqueCommenters = len(authors)
	return metrics
}

// AggregateComments computes CommentMetrics for a comment forest
func AggregateComments(comments []models.Comment) models.CommentMetrics {
	return BuildCommentTree(comments).Metrics()
}

// CountComments counts every comment in the forest, nested replies included
func CountComments(comments []models.Comment) int {
	return BuildCommentTree(comments).Len()
}
