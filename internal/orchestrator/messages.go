package orchestrator

import (
	"errors"
	"fmt"

	"adflow/internal/domain"
)

func generatedTitle(artifact string, refine bool) string {
	if refine {
		return artifact + " regenerated"
	}
	return artifact + " generated"
}

func preconditionTitle(err error) string {
	switch {
	case errors.Is(err, ErrEmptyURL):
		return "Enter a product URL first!"
	case errors.Is(err, ErrNoProduct):
		return "Fetch product details first!"
	case errors.Is(err, ErrMissingAccountID):
		return "Account ID required"
	case errors.Is(err, ErrUnknownPlatform):
		return "Unsupported platform"
	default:
		return "Request rejected"
	}
}

func failureTitle(stage domain.Stage, kind domain.ErrorKind) string {
	noResult := kind == domain.ErrorKindNoResult
	switch stage {
	case domain.StageFetch:
		if noResult {
			return "No product details returned."
		}
		return "Failed to fetch product details."
	case domain.StageGenerateText:
		if noResult {
			return "No ad text returned."
		}
		return "Failed to generate ad text."
	case domain.StageGenerateImage:
		if noResult {
			return "No image URL returned."
		}
		return "Failed to generate ad image."
	case domain.StagePublish:
		if noResult {
			return "No publish confirmation returned."
		}
		return "Failed to publish ad."
	}
	return fmt.Sprintf("%s failed", stage)
}

func confirmationDetail(c domain.PublishConfirmation) string {
	switch {
	case c.Message != "" && c.ID != "":
		return fmt.Sprintf("%s (reference %s)", c.Message, c.ID)
	case c.Message != "":
		return c.Message
	case c.ID != "":
		return "Reference " + c.ID
	case c.Status != "":
		return "Status " + c.Status
	}
	return ""
}
