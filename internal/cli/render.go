package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/email-classifier/internal/domain"
	"github.com/email-classifier/internal/endpoint"
	"gopkg.in/yaml.v3"
)

// renderResult prints a classification result.
func renderResult(out io.Writer, result *domain.ClassificationResult) {
	fmt.Fprintf(out, "Category:   %s\n", result.Category)
	fmt.Fprintf(out, "Confidence: %d%%\n", result.ConfidencePercent())
	fmt.Fprintf(out, "Time:       %ss\n", result.ProcessingTime)
	fmt.Fprintf(out, "Model:      %s\n", result.ModelUsed)
	if result.TokensProcessed != nil {
		fmt.Fprintf(out, "Tokens:     %d\n", *result.TokensProcessed)
	}
	if len(result.DetectedTopics) > 0 {
		fmt.Fprintf(out, "Topics:     %s\n", strings.Join(result.DetectedTopics, ", "))
	}
	if result.Degraded {
		fmt.Fprintln(out, "Note:       PDF text could not be extracted; raw content was classified")
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Suggested response:")
	fmt.Fprintln(out, result.SuggestedResponse)
}

// renderJSON prints v as indented JSON.
func renderJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// renderNotification prints a notification with a level prefix.
func renderNotification(out io.Writer, n domain.Notification) {
	fmt.Fprintf(out, "[%s] %s\n", n.Level, n.Message)
}

// endpointsDocument is the YAML shape printed by `endpoints --yaml`.
type endpointsDocument struct {
	Environment endpoint.Environment `yaml:"environment"`
	Endpoints   map[string]string    `yaml:"endpoints"`
}

// renderEndpoints prints the environment and its resolved endpoint set.
func renderEndpoints(out io.Writer, env endpoint.Environment, set endpoint.Set, asYAML bool) error {
	if asYAML {
		doc := endpointsDocument{Environment: env, Endpoints: make(map[string]string, len(set))}
		for op, u := range set {
			doc.Endpoints[string(op)] = u
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintf(out, "Environment: %s\n", env)
	for _, op := range endpoint.Operations {
		fmt.Fprintf(out, "  %-9s %s\n", op+":", set.URL(op))
	}
	return nil
}
