package tools

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/pathclear/pkg/linkerr"
)

// APIError is a tool failure with information to help callers recover.
type APIError struct {
	Service     string // Component that failed (e.g. "Validation", "Engine")
	Kind        string // Error taxonomy name, if any
	Message     string // Error message
	Recoverable bool   // Whether retrying with different input can succeed
	Guidance    string // Guidance for users on how to recover
}

// Error implements the error interface and provides a formatted error message.
func (e *APIError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s error: %s. %s", e.Service, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s error: %s", e.Service, e.Message)
}

// Common error guidance messages
const (
	GuidanceValidation   = "Check coordinates are within range, heights and distances are finite, and try again."
	GuidanceFrequency    = "Provide the link frequency in GHz as a positive number, e.g. 11 or 18."
	GuidanceInsufficient = "Provide the missing elevation data, or build an elevation profile covering the path and pass its profile_id."
	GuidanceDegenerate   = "The two sites are at the same location. Check the site coordinates."
	GuidanceProfile      = "The profile has expired or was never built. Call build_elevation_profile again."
	GuidanceRateLimit    = "Too many requests. Please try again in a few seconds."
	GuidanceBatchSize    = "Split the obstruction list into smaller batches."
	GuidanceGeneral      = "Please try again later or modify your request parameters."
)

// NewAPIError classifies err and attaches recovery guidance.
func NewAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	e := &APIError{Service: "Engine", Message: err.Error(), Recoverable: true}
	switch {
	case errors.Is(err, linkerr.ErrInvalidFrequency):
		e.Service, e.Guidance = "Validation", GuidanceFrequency
	case errors.Is(err, linkerr.ErrInputValidation):
		e.Service, e.Guidance = "Validation", GuidanceValidation
	case errors.Is(err, linkerr.ErrInsufficientData):
		e.Guidance = GuidanceInsufficient
	case errors.Is(err, linkerr.ErrGeometryDegenerate):
		e.Guidance = GuidanceDegenerate
	default:
		e.Recoverable = false
		e.Guidance = GuidanceGeneral
	}
	if k := linkerr.KindOf(err); k != 0 {
		e.Kind = k.String()
	}
	return e
}

// ValidationError creates an error for an invalid tool argument.
func ValidationError(field, format string, args ...any) *APIError {
	return &APIError{
		Service:     "Validation",
		Kind:        linkerr.InputValidation.String(),
		Message:     fmt.Sprintf("%s: %s", field, fmt.Sprintf(format, args...)),
		Recoverable: true,
		Guidance:    "Please correct the parameters and try again.",
	}
}

// ErrorWithGuidance returns a properly formatted error response with user guidance.
func ErrorWithGuidance(err *APIError) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s\n\nGuidance: %s", err.Message, err.Guidance)
	return mcp.NewToolResultError(errorText)
}

// ErrorResponse converts any error into a tool error result.
func ErrorResponse(err error) *mcp.CallToolResult {
	return ErrorWithGuidance(NewAPIError(err))
}
