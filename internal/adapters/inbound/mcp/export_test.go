package mcp

// Handlers exposed to the external test package.
var (
	HandleSections = handleSections
	HandleFilter   = handleFilter
	HandleFix      = handleFix
)
