package render

import (
	"fmt"
	"math"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/brettboylen/reddit-insights/models"
	"github.com/brettboylen/reddit-insights/stats"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	noContent       = "[No content]"
	unknownTime     = "Unknown time"
	invalidTime     = "Invalid timestamp"
	indentUnit      = "    "
	rootBullet      = "• "
	replyArrow      = "└─> "
	opMarker        = " **[OP]** 🎯"

	// time.Time formats years 1 through 9999 as four digits
	minTimestamp = -62135596800
	maxTimestamp = 253402300799
)

var (
	extraBlankLines = regexp.MustCompile(`\n\s*\n\s*\n+`)
	horizontalSpace = regexp.MustCompile(`[ \t]+`)

	imageExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
	}

	numberPrinter = message.NewPrinter(language.English)
)

// Renderer turns a post and its comment tree into a markdown document
type Renderer struct {
	// Location is the time zone timestamps are shown in
	Location *time.Location
}

// NewRenderer creates a renderer that prints timestamps in local time
func NewRenderer() *Renderer {
	return &Renderer{Location: time.Local}
}

// Markdown renders with local timestamps. See Renderer.Render.
func Markdown(post models.Post, comments []models.Comment, analysis *models.AttractivenessResult) string {
	return NewRenderer().Render(post, comments, analysis)
}

// Render builds the markdown document for a post, its full comment tree and,
// when analysis is not nil, its attractiveness breakdown. Output depends only
// on the arguments and the renderer's location. Missing or malformed values
// are replaced with placeholders; rendering never fails.
func (r *Renderer) Render(post models.Post, comments []models.Comment, analysis *models.AttractivenessResult) string {
	var doc document

	doc.line("# 📝 Reddit Post Analysis")
	doc.line(strings.Repeat("=", 50))
	doc.line("")

	r.writeDetails(&doc, post)
	writeContent(&doc, post)
	if analysis != nil {
		writeAnalysis(&doc, analysis)
	}
	r.writeComments(&doc, post, comments)

	doc.line("")
	return doc.String()
}

func (r *Renderer) writeDetails(doc *document, post models.Post) {
	doc.line("## 📋 Post Details")
	doc.line("")
	doc.line("**Title:** " + orDefault(post.Title, "No Title"))
	doc.line("")
	doc.line("**Author:** u/" + orDefault(post.Author, models.AuthorDeleted))
	doc.line("**Subreddit:** r/" + orDefault(post.Subreddit, "unknown"))
	doc.line("**Posted:** " + r.formatTimestamp(post.CreatedUTC))
	doc.line("")

	ratio := 0.0
	if post.UpvoteRatio != nil {
		ratio = *post.UpvoteRatio
	}

	doc.line("### 📊 Engagement Metrics")
	doc.line(fmt.Sprintf("- **Score:** %+d points", post.Score))
	doc.line(fmt.Sprintf("- **Upvote Ratio:** %.1f%%", ratio*100))
	doc.line("- **Comments:** " + formatNumber(post.NumComments))
	if post.TotalAwardsReceived != 0 {
		doc.line("- **Awards:** " + formatNumber(post.TotalAwardsReceived))
	}
	doc.line("")
}

func writeContent(doc *document, post models.Post) {
	doc.line("## 📄 Post Content")
	doc.line("")

	if post.SelfText != "" {
		doc.line("### Text Content")
		doc.line("```")
		doc.line(CleanText(post.SelfText))
		doc.line("```")
		doc.line("")
	}

	if media := MediaURLs(post); len(media) > 0 {
		doc.line("### 🖼️ Media Content")
		for i, u := range media {
			doc.line(fmt.Sprintf("%d. %s", i+1, u))
		}
		doc.line("")
	}

	if post.URL != "" && !isImageURL(post.URL) {
		doc.line("**Link:** " + post.URL)
		doc.line("")
	}
}

func writeAnalysis(doc *document, analysis *models.AttractivenessResult) {
	doc.line("## 🎯 Attractiveness Analysis")
	doc.line("")
	doc.line(fmt.Sprintf("**Attractiveness Score:** %.2f", analysis.AttractivenessScore))

	breakdown := analysis.ScoreBreakdown
	doc.line("")
	doc.line("### Score Breakdown")
	doc.line("- **Comments Contribution:** " + strconv.Itoa(breakdown.CommentsContribution))
	doc.line("- **Votes Contribution:** " + strconv.Itoa(breakdown.VotesContribution))
	doc.line("- **Awards Contribution:** " + strconv.Itoa(breakdown.AwardsContribution))
	doc.line("- **Comment Upvotes Contribution:** " + strconv.Itoa(breakdown.CommentUpvotesContribution))
	doc.line("- **Length Bonus:** " + formatFloat(breakdown.LengthBonus))
	doc.line("- **Time Velocity Bonus:** " + formatFloat(breakdown.TimeVelocityBonus))
	doc.line("")
}

// formatFloat prints the shortest exact form, keeping ".0" on whole values
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsNaN(v) || math.IsInf(v, 0) || strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}

func (r *Renderer) writeComments(doc *document, post models.Post, comments []models.Comment) {
	doc.line("## 💬 Comments Thread")
	doc.line("")

	if len(comments) == 0 {
		doc.line("*No comments available*")
		return
	}

	tree := stats.BuildCommentTree(comments)
	doc.line(fmt.Sprintf("**Total Comments:** %s (including all replies)", formatNumber(tree.Len())))
	doc.line(fmt.Sprintf("**Top-level Comments:** %d", tree.Roots))
	doc.line("")

	threads := r.renderThreads(tree, post.Author)
	for i, thread := range threads {
		doc.line(fmt.Sprintf("### Comment #%d", i+1))
		doc.line("")
		doc.line(thread)

		if i < len(threads)-1 {
			doc.line("---")
			doc.line("")
		}
	}
}

// renderThreads renders each top-level comment with all of its replies
func (r *Renderer) renderThreads(tree *stats.CommentTree, postAuthor string) []string {
	threads := make([]string, tree.Roots)
	var current strings.Builder

	enter := func(_ int, node stats.CommentNode) {
		r.writeComment(&current, node, postAuthor)
		if node.ChildCount > 0 {
			current.WriteString("\n")
		}
	}
	leave := func(i int, node stats.CommentNode) {
		if node.Parent < 0 {
			threads[i] = current.String()
			current.Reset()
			return
		}
		current.WriteString("\n")
	}

	tree.Walk(enter, leave)
	return threads
}

func (r *Renderer) writeComment(b *strings.Builder, node stats.CommentNode, postAuthor string) {
	comment := node.Comment
	indent := strings.Repeat(indentUnit, node.Depth)

	prefix := rootBullet
	if node.Depth > 0 {
		prefix = replyArrow
	}

	author := orDefault(comment.Author, models.AuthorDeleted)
	marker := ""
	if postAuthor != "" && !models.IsSentinelAuthor(author) && author == postAuthor {
		marker = opMarker
	}

	fmt.Fprintf(b, "%s%s**%s**%s (%+d points) • %s\n",
		indent, prefix, author, marker, comment.Score, r.formatTimestamp(comment.CreatedUTC))

	bodyIndent := indent + "  "
	for _, line := range strings.Split(CleanText(comment.Body), "\n") {
		// blank lines stay empty so no line ends in whitespace
		if line != "" {
			b.WriteString(bodyIndent + line)
		}
		b.WriteString("\n")
	}
}

// CleanText decodes HTML entities and normalizes whitespace: runs of three or more
// line breaks become one blank line and runs of spaces or tabs become one space.
// Text is never truncated. Empty text becomes "[No content]".
func CleanText(text string) string {
	if text == "" {
		return noContent
	}

	text = html.UnescapeString(text)
	text = extraBlankLines.ReplaceAllString(text, "\n\n")
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if text == "" {
		return noContent
	}
	return text
}

// MediaURLs lists the media attached to a post: a direct image link, a reddit
// video fallback and preview image sources, in that order
func MediaURLs(post models.Post) []string {
	var urls []string

	if post.URL != "" && isImageURL(post.URL) {
		urls = append(urls, post.URL)
	}

	if post.Media != nil && post.Media.RedditVideo != nil && post.Media.RedditVideo.FallbackURL != "" {
		urls = append(urls, post.Media.RedditVideo.FallbackURL)
	}

	if post.Preview != nil {
		for _, image := range post.Preview.Images {
			if image.Source.URL != "" {
				urls = append(urls, image.Source.URL)
			}
		}
	}

	return urls
}

// isImageURL checks the extension of the URL path, ignoring any query string
func isImageURL(raw string) bool {
	parsed, err := url.Parse(strings.ToLower(raw))
	if err != nil {
		return false
	}
	return imageExtensions[path.Ext(parsed.Path)]
}

func (r *Renderer) formatTimestamp(ts float64) string {
	if ts == 0 {
		return unknownTime
	}
	if math.IsNaN(ts) || ts < minTimestamp || ts > maxTimestamp {
		return invalidTime
	}

	sec, frac := math.Modf(ts)
	t := time.Unix(int64(sec), int64(frac*float64(time.Second)))

	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(timestampLayout)
}

func formatNumber(n int) string {
	return numberPrinter.Sprintf("%d", n)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// document accumulates markdown lines joined by newlines
type document struct {
	lines []string
}

func (d *document) line(s string) {
	d.lines = append(d.lines, s)
}

func (d *document) String() string {
	return strings.Join(d.lines, "\n")
}
