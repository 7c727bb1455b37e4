package game

import (
	"strconv"
	"strings"

	"github.com/myrjola/616degrees/internal/models"
)

const playURL = "https://tinyurl.com/616degrees"

var pathEmojis = []string{"🦸", "📚", "🦹", "📖", "🎭", "📕", "⚡"} //nolint:gochecknoglobals // constant

func comicLabel(comic *models.Comic) string {
	if comic == nil {
		return ""
	}
	title := comic.Title
	if comic.IssueNumber != nil && *comic.IssueNumber != 0 {
		issue := "#" + strconv.Itoa(*comic.IssueNumber)
		if !strings.Contains(title, issue) {
			title += " " + issue
		}
	}
	return title
}

// ShareText renders a finished game for sharing.
func ShareText(s Snapshot) string {
	var b strings.Builder
	b.WriteString("I played Marvel's 616 Degrees of Separation today.\n\n")
	b.WriteString("Game " + strconv.Itoa(s.Challenge.Day) + ":\n")
	b.WriteString("I connected " + s.Start.Name + " to " + s.End.Name + " in " + strconv.Itoa(s.Steps) + " " +
		pluralize(s.Steps, "step") + ":\n\n")
	b.WriteString(pathEmojis[0] + " " + s.Start.Name + "\n")
	for i, segment := range s.Path[min(1, len(s.Path)):] {
		b.WriteString(pathEmojis[(i*2+1)%len(pathEmojis)] + " " + comicLabel(segment.ComicConnectingToPrevious) + "\n")
		b.WriteString(pathEmojis[(i*2+2)%len(pathEmojis)] + " " + segment.Character.Name + "\n")
	}
	b.WriteString("\nPlay 616 Degrees today: " + playURL)
	return b.String()
}

// JourneyText renders the path so far, finished or not.
func JourneyText(path []models.PathSegment) string {
	if len(path) <= 1 {
		return "No journey to share yet!"
	}
	var b strings.Builder
	b.WriteString("My Marvel 616 Degrees Journey:\n\n")
	b.WriteString("🦸 " + path[0].Character.Name + "\n")
	for _, segment := range path[1:] {
		b.WriteString("📚 " + comicLabel(segment.ComicConnectingToPrevious) + "\n")
		b.WriteString("🦸 " + segment.Character.Name + "\n")
	}
	b.WriteString("\nSteps: " + strconv.Itoa(len(path)-1) + "\n")
	b.WriteString("Play at: " + playURL)
	return b.String()
}
