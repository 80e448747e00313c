package analysis

// Export internal functions for testing
var ParseResult = parseResult
