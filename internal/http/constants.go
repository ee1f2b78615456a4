package httpx

// CurrentPage constants identify pages in templates and navigation.
const (
	PageHome         = "home"
	PageLogin        = "login"
	PageEvents       = "events"
	PageEventDetail  = "event-detail"
	PageExamCell     = "exam-cell"
	PagePostEvent    = "post-event"
	PagePostExamFile = "post-exam-file"
	PageNotFound     = "not-found"
)

// Paths the handlers redirect between.
const (
	PathHome         = "/"
	PathLogin        = "/login"
	PathEvents       = "/events"
	PathExamCell     = "/exam-cell"
	PathPostEvent    = "/post-event"
	PathPostExamFile = "/post-exam-file"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"
	TemplatePathFromTest = "../../frontend/templates" // from internal/http test files
)

// maxFormBytes caps POST bodies. Uploaded file bodies are discarded after their
// name and size are read.
const maxFormBytes = 20 << 20

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageHome:         "home-content",
	PageLogin:        "login-content",
	PageEvents:       "events-content",
	PageEventDetail:  "event-detail-content",
	PageExamCell:     "exam-cell-content",
	PagePostEvent:    "post-event-content",
	PagePostExamFile: "post-exam-file-content",
	PageNotFound:     "not-found-content",
}

// ContentTemplateMap returns the mapping from CurrentPage to template name.
func ContentTemplateMap() map[string]string { return contentTemplates }

// ContentTemplateFor returns the content template for the given CurrentPage.
// Unknown pages fall back to the not-found content.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "not-found-content"
}
