package classifier

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/email-classifier/internal/domain"
)

// Classification service request/response structures

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Category          *string     `json:"category"`
	Confidence        *flexNumber `json:"confidence"`
	SuggestedResponse *string     `json:"suggested_response"`
	ProcessingTime    flexString  `json:"processing_time"`
	ModelUsed         *string     `json:"model_used"`
	TokensProcessed   *int        `json:"tokens_processed"`
	DetectedTopics    []string    `json:"detected_topics"`
}

type uploadResponse struct {
	Text string `json:"text"`
}

// errorResponse covers the error shapes the service returns. FastAPI
// validation errors carry a list in detail, so both fields stay raw.
type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
	Error  json.RawMessage `json:"error"`
}

// message returns the first string-valued field among detail and error.
func (e errorResponse) message() string {
	for _, raw := range []json.RawMessage{e.Detail, e.Error} {
		var s string
		if len(raw) > 0 && json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexNumber accepts a JSON number or a numeric string.
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return err
		}
		*f = flexNumber(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexNumber(v)
	return nil
}

// toResult maps a service response onto a display result, substituting
// defaults for absent optional fields.
func (r *classifyResponse) toResult() *domain.ClassificationResult {
	result := &domain.ClassificationResult{
		Category:          domain.CategoryUnproductive,
		SuggestedResponse: domain.PlaceholderReply,
		ProcessingTime:    domain.DefaultProcessingTime,
		ModelUsed:         domain.DefaultModel,
		TokensProcessed:   r.TokensProcessed,
		DetectedTopics:    r.DetectedTopics,
		ReceivedAt:        time.Now(),
	}

	if r.Category != nil {
		result.Category = domain.ParseCategory(*r.Category)
	}
	if r.Confidence != nil {
		result.Confidence = clampConfidence(float64(*r.Confidence))
	}
	if r.SuggestedResponse != nil && strings.TrimSpace(*r.SuggestedResponse) != "" {
		result.SuggestedResponse = *r.SuggestedResponse
	}
	if s := strings.TrimSpace(string(r.ProcessingTime)); s != "" {
		result.ProcessingTime = s
	}
	if r.ModelUsed != nil && strings.TrimSpace(*r.ModelUsed) != "" {
		result.ModelUsed = *r.ModelUsed
	}

	return result
}

func clampConfidence(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
