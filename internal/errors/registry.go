package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Build Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryBuild,
		Message:  "Malformed descriptor",
		Detail:   "A value in descriptor position is not a recognized shape. Descriptor positions accept node descriptors, primitives, or nothing; bare maps, bare sequences, and function values must be wrapped in a descriptor.",
		DocURL:   "https://frond-ui.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryBuild,
		Message:  "Unknown component kind",
		Detail:   "The component registry has no renderable registered for this descriptor's kind.",
		DocURL:   "https://frond-ui.dev/docs/errors/E002",
	},
	"E003": {
		Category: CategoryRemote,
		Message:  "Remote fetch failed",
		Detail:   "The remote data source returned an error. The failure is recorded at the directive's target state path; it is never raised through the build path.",
		DocURL:   "https://frond-ui.dev/docs/errors/E003",
	},
	"E004": {
		Category: CategoryRemote,
		Message:  "Invalid remote directive",
		Detail:   "A $remote binding could not be parsed. Directives take the form $remote.<source>.<args> -> <targetPath>.",
		DocURL:   "https://frond-ui.dev/docs/errors/E004",
	},
	"E005": {
		Category: CategoryRemote,
		Message:  "Unknown remote source",
		Detail:   "No remote data source is registered under this name.",
		DocURL:   "https://frond-ui.dev/docs/errors/E005",
	},

	// ============================================
	// Structural Errors (E010-E019)
	// ============================================

	"E010": {
		Category: CategoryBuild,
		Message:  "Duplicate path identity",
		Detail:   "Two sibling descriptors computed the same path identity. Sibling keys must be unique; duplicates would make rebuild matching ambiguous.",
		DocURL:   "https://frond-ui.dev/docs/errors/E010",
	},
	"E011": {
		Category: CategoryBuild,
		Message:  "Store closed",
		Detail:   "The state store backing this session has been torn down.",
		DocURL:   "https://frond-ui.dev/docs/errors/E011",
	},

	// ============================================
	// Configuration Errors (E020-E029)
	// ============================================

	"E020": {
		Category: CategoryConfig,
		Message:  "Could not parse configuration",
		Detail:   "The descriptor configuration file could not be decoded.",
		DocURL:   "https://frond-ui.dev/docs/errors/E020",
	},
	"E021": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		DocURL:   "https://frond-ui.dev/docs/errors/E021",
	},
	"E022": {
		Category: CategoryConfig,
		Message:  "Invalid project configuration",
		Detail:   "frond.json (or frond.yaml) contains invalid values.",
		DocURL:   "https://frond-ui.dev/docs/errors/E022",
	},

	// ============================================
	// Serve Errors (E030-E039)
	// ============================================

	"E030": {
		Category: CategoryServe,
		Message:  "Preview server failed",
		DocURL:   "https://frond-ui.dev/docs/errors/E030",
	},
	"E031": {
		Category: CategoryServe,
		Message:  "WebSocket upgrade failed",
		DocURL:   "https://frond-ui.dev/docs/errors/E031",
	},
}

// Register adds an error template at runtime. Later registrations win.
// Intended for hosts that extend the renderer with their own error codes.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
