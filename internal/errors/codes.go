// Package errors provides structured error handling for crucible.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Tool and file lookup errors
//   - 4XX: Environment/target validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryTool indicates missing-program and file lookup errors.
	CategoryTool Category = "TOOL"
	// CategoryValidation indicates environment or target validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigSchema   = "ERR_103_CONFIG_SCHEMA"

	// Tool and file lookup errors (200-299)
	ErrCodeToolNotFound = "ERR_201_TOOL_NOT_FOUND"
	ErrCodeFileNotFound = "ERR_202_FILE_NOT_FOUND"
	ErrCodeLockHeld     = "ERR_203_LOCK_HELD"

	// Environment/target validation errors (400-499)
	ErrCodeBadSearchPath     = "ERR_401_BAD_SEARCH_PATH"
	ErrCodeTargetUnbuildable = "ERR_402_TARGET_UNBUILDABLE"
	ErrCodeNoStdConflict     = "ERR_403_NO_STD_CONFLICT"
	ErrCodeMuslRoot          = "ERR_404_MUSL_ROOT"
	ErrCodeCMakeGenerator    = "ERR_405_CMAKE_GENERATOR"
	ErrCodeStage0Provenance  = "ERR_406_STAGE0_PROVENANCE"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode derives the category from the numeric band of a code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryTool
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}
