package effects

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
)

// Loading is the transient overlay shown during page transitions.
type Loading struct {
	bar progress.Model
}

// NewLoading creates the overlay with a bar in the given color.
func NewLoading(color string) Loading {
	return Loading{
		bar: progress.New(
			progress.WithSolidFill(color),
			progress.WithoutPercentage(),
			progress.WithWidth(defaultLoadingBars),
		),
	}
}

// View renders the overlay elapsed after it was shown.
func (l Loading) View(elapsed time.Duration) string {
	return loadingLabel + "\n\n" + l.bar.ViewAs(LoadingProgress(elapsed))
}
