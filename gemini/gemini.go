// Package gemini implements locrag services on top of the Gemini API and
// its File Search stores.
package gemini

import (
	"errors"
	"fmt"

	"github.com/fwojciec/locrag"
	"google.golang.org/genai"
)

// Default model names.
const (
	DefaultModel      = "gemini-2.5-flash"
	DefaultImageModel = "imagen-3.0-generate-002"
)

// remoteError wraps an SDK error as EREMOTE, surfacing the HTTP status and
// server message of API errors.
func remoteError(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &locrag.Error{
			Code:    locrag.EREMOTE,
			Op:      op,
			Message: apiErrorMessage(apiErr),
			Err:     err,
		}
	}
	return locrag.RemoteError(op, err)
}

func apiErrorMessage(e genai.APIError) string {
	switch {
	case e.Status != "" && e.Message != "":
		return fmt.Sprintf("%d %s: %s", e.Code, e.Status, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%d: %s", e.Code, e.Message)
	case e.Status != "":
		return fmt.Sprintf("%d %s", e.Code, e.Status)
	default:
		return fmt.Sprintf("HTTP %d", e.Code)
	}
}

func systemInstruction(text string) *genai.Content {
	return &genai.Content{Parts: []*genai.Part{{Text: text}}}
}
