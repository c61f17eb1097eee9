package errors

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// DisplayErrorSummary provides a brief summary of the error for logs
func DisplayErrorSummary(err error) string {
	if dipErr, ok := AsDIPError(err); ok {
		return fmt.Sprintf("%s: %s", dipErr.Code, dipErr.Message)
	}

	errStr, ok := safeMessage(err)
	if !ok || isNilValue(err) {
		return unknownType(err)
	}
	if len(errStr) > 100 {
		return errStr[:97] + "..."
	}
	return errStr
}

// FormatForCLI formats an error for command-line display with proper spacing
func FormatForCLI(err error) string {
	dipErr, ok := AsDIPError(err)
	if !ok {
		return fmt.Sprintf("\nError: %v\n", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\nError [%s]\n", dipErr.Code))
	sb.WriteString(fmt.Sprintf("  %s\n", dipErr.Message))

	if len(dipErr.Context) > 0 {
		keys := make([]string, 0, len(dipErr.Context))
		for key := range dipErr.Context {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		sb.WriteString("\nDetails:\n")
		for _, key := range keys {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", key, dipErr.Context[key]))
		}
	}

	if dipErr.OriginalError != nil {
		sb.WriteString(fmt.Sprintf("\nTechnical details: %v\n", dipErr.OriginalError))
	}

	return sb.String()
}

// HTTPStatus maps an error to the status code the HTTP adapter answers with.
func HTTPStatus(err error) int {
	dipErr, ok := AsDIPError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch dipErr.Code {
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeUnknownError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// IsUserError determines if an error is due to caller input
func IsUserError(err error) bool {
	switch CodeOf(err) {
	case CodeBadRequest, CodeInvalidPayload, CodeEventNotFound, CodeTaskNotFound:
		return true
	}
	return false
}
