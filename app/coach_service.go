// Package app calls the Gemini coaching model and validates its replies.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/marvinrgb/argue-well-api/app/config"
	"github.com/marvinrgb/argue-well-api/app/models"

	"google.golang.org/genai"
)

// errUpstreamFormat marks a reply that could not be decoded as the exact
// JSON shape the prompt demands. Handlers map it to 502.
var errUpstreamFormat = errors.New("invalid upstream response")

// generate submits one prompt to the coaching model and returns its raw
// text reply. Tests swap this out to avoid network calls.
var generate func(ctx context.Context, prompt string) (string, error)

// MustInitCoach builds the Gemini client and installs the live generate
// function. It logs fatally on error.
func MustInitCoach() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config for coach: %v", err)
	}
	if cfg.Gemini.APIKey == "" {
		log.Fatalf("GEMINI_API_KEY must be set")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		log.Fatalf("failed to create Gemini client: %v", err)
	}

	model := cfg.Gemini.Model
	generate = func(ctx context.Context, prompt string) (string, error) {
		contents := []*genai.Content{
			genai.NewContentFromText(prompt, genai.RoleUser),
		}
		resp, err := client.Models.GenerateContent(ctx, model, contents, nil)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
}

func analysisPrompt(argumentText string) string {
	return fmt.Sprintf(`Act as a world-class debate and logic coach. Analyze the following argument.
Your response MUST be in a valid JSON format. Do not include any text outside of the JSON object.
The JSON object must have these exact keys: "fallacies", "clarityScore", "evidenceFeedback", "concisenessFeedback".
- "fallacies": An array of objects. Each object should have a "name" and "explanation" key for any logical fallacies found. If none, return an empty array.
- "clarityScore": An integer between 0 and 100 representing how clear and easy to understand the argument is.
- "evidenceFeedback": A short string providing feedback on the strength and specificity of the evidence.
- "concisenessFeedback": A short string with suggestions for making the argument more concise.

Here is the argument to analyze:
---
%s
---`, argumentText)
}

func counterArgumentsPrompt(claimText string) string {
	return fmt.Sprintf(`Act as a devil's advocate. Generate three distinct and strong counter-arguments to the following claim.
Your response MUST be a valid JSON object with a single key "counterArguments" which is an array of strings.
Do not include any text outside of the JSON object.

Claim to challenge:
---
%s
---`, claimText)
}

// decodeAnalysis parses a model reply into an Analysis. The reply must be a
// single JSON object with exactly the four expected keys and an in-range
// integer clarityScore; anything else is an upstream format error.
func decodeAnalysis(raw string) (models.Analysis, error) {
	var payload struct {
		Fallacies           *[]models.Fallacy `json:"fallacies"`
		ClarityScore        *int              `json:"clarityScore"`
		EvidenceFeedback    *string           `json:"evidenceFeedback"`
		ConcisenessFeedback *string           `json:"concisenessFeedback"`
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return models.Analysis{}, fmt.Errorf("%w: %v", errUpstreamFormat, err)
	}
	if dec.More() {
		return models.Analysis{}, fmt.Errorf("%w: trailing data after JSON object", errUpstreamFormat)
	}
	if payload.Fallacies == nil || payload.ClarityScore == nil ||
		payload.EvidenceFeedback == nil || payload.ConcisenessFeedback == nil {
		return models.Analysis{}, fmt.Errorf("%w: missing required key", errUpstreamFormat)
	}
	if *payload.ClarityScore < 0 || *payload.ClarityScore > 100 {
		return models.Analysis{}, fmt.Errorf("%w: clarityScore %d out of range", errUpstreamFormat, *payload.ClarityScore)
	}

	return models.Analysis{
		Fallacies:           *payload.Fallacies,
		ClarityScore:        *payload.ClarityScore,
		EvidenceFeedback:    *payload.EvidenceFeedback,
		ConcisenessFeedback: *payload.ConcisenessFeedback,
	}, nil
}

// decodeCounterArguments parses a devil's-advocate reply: a single JSON
// object with the one key "counterArguments" holding an array of strings.
func decodeCounterArguments(raw string) ([]string, error) {
	var payload struct {
		CounterArguments *[]string `json:"counterArguments"`
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", errUpstreamFormat, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON object", errUpstreamFormat)
	}
	if payload.CounterArguments == nil {
		return nil, fmt.Errorf("%w: missing counterArguments key", errUpstreamFormat)
	}

	return *payload.CounterArguments, nil
}
