package workflow

// Step is a wizard position.
type Step int

const (
	StepUpload Step = iota
	StepReviewPlaceholders
	StepFillData
	StepReviewEntries
	StepGenerated
	StepNoPlaceholders
)

func (s Step) String() string {
	switch s {
	case StepUpload:
		return "upload"
	case StepReviewPlaceholders:
		return "review-placeholders"
	case StepFillData:
		return "fill-data"
	case StepReviewEntries:
		return "review-entries"
	case StepGenerated:
		return "generated"
	case StepNoPlaceholders:
		return "no-placeholders"
	default:
		return "unknown"
	}
}

// Title is the label shown in the step indicator.
func (s Step) Title() string {
	switch s {
	case StepUpload:
		return "Upload"
	case StepReviewPlaceholders:
		return "Placeholders"
	case StepFillData:
		return "Fill Data"
	case StepReviewEntries:
		return "Review"
	case StepGenerated:
		return "Done"
	case StepNoPlaceholders:
		return "No Placeholders"
	default:
		return "?"
	}
}

// Terminal reports whether the wizard has finished.
func (s Step) Terminal() bool {
	return s == StepGenerated || s == StepNoPlaceholders
}

// Path is the logical location used by the navigation guard.
func (s Step) Path() string {
	switch s {
	case StepUpload, StepReviewPlaceholders:
		return "/upload"
	case StepFillData:
		return "/fill"
	case StepReviewEntries:
		return "/review"
	case StepGenerated:
		return "/download"
	default:
		return "/"
	}
}

// Steps lists the linear wizard steps for progress display.
var Steps = []Step{StepUpload, StepReviewPlaceholders, StepFillData, StepReviewEntries}
