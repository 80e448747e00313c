package usecase

// Export internal functions for testing
var (
	BuildEmailBody = buildEmailBody
	RenderExport   = renderExport
)
