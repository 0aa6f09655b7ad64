package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/theimaginaryfoundation/reflex-o-bot/scenario"
)

const (
	DefaultModel = "gpt-4o-mini"

	generatorInstructions = "You are a reflexivity reasoning helper. Return concise, structured content."
	generatorTemperature  = 0.2
	generatorMaxTokens    = 400
)

// ErrMissingAPIKey is returned by NewOpenAIGenerator when no API key is supplied.
var ErrMissingAPIKey = errors.New("missing OPENAI_API_KEY (or pass --api-key)")

// Options configure an OpenAIGenerator.
type Options struct {
	// Schema, when set, requests strict JSON output matching it.
	Schema     map[string]any
	SchemaName string

	Retry RetryPolicy
}

// OpenAIGenerator is a scenario.Generator backed by the OpenAI Responses API.
type OpenAIGenerator struct {
	client     *openai.Client
	model      string
	schema     map[string]any
	schemaName string
	retry      RetryPolicy
}

func NewOpenAIGenerator(apiKey, model string, opts Options) (*OpenAIGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if opts.SchemaName == "" {
		opts.SchemaName = "SignalReport"
	}
	if opts.Retry.Attempts == 0 {
		opts.Retry = DefaultRetryPolicy()
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIGenerator{
		client:     &client,
		model:      model,
		schema:     opts.Schema,
		schemaName: opts.SchemaName,
		retry:      opts.Retry,
	}, nil
}

// Generate sends prompt as a single user message and returns the output text.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	params := g.params(prompt)
	resp, err := CallWithRetry(ctx, g.client, params, g.retry)
	if err != nil {
		return "", fmt.Errorf("OpenAIGenerator.Generate: %w", err)
	}
	return resp.OutputText(), nil
}

// Mode reports scenario.ModeLive.
func (*OpenAIGenerator) Mode() string { return scenario.ModeLive }

func (g *OpenAIGenerator) params(prompt string) responses.ResponseNewParams {
	input := []responses.ResponseInputItemUnionParam{
		responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
	}
	params := responses.ResponseNewParams{
		Model:           g.model,
		MaxOutputTokens: openai.Int(generatorMaxTokens),
		Temperature:     openai.Float(generatorTemperature),
		Instructions:    openai.String(generatorInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: input,
		},
	}
	if g.schema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        g.schemaName,
					Schema:      g.schema,
					Strict:      openai.Bool(true),
					Description: openai.String("Stance signal report JSON"),
					Type:        "json_schema",
				},
			},
		}
	}
	return params
}

// RetryPolicy holds the waits between attempts, indexed by attempt number.
type RetryPolicy struct {
	Attempts         int
	RateLimitWaits   []time.Duration
	ServerErrorWaits []time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:         3,
		RateLimitWaits:   []time.Duration{65 * time.Second, 100 * time.Second, 135 * time.Second},
		ServerErrorWaits: []time.Duration{5 * time.Second, 30 * time.Second, 60 * time.Second},
	}
}

func CallWithRetry(ctx context.Context, client *openai.Client, params responses.ResponseNewParams, policy RetryPolicy) (*responses.Response, error) {
	return retry(ctx, policy, func(ctx context.Context) (*responses.Response, error) {
		return client.Responses.New(ctx, params)
	})
}

// retry calls fn until it succeeds, fails with a non-retryable error, runs out of attempts,
// or ctx is done.
func retry[T any](ctx context.Context, policy RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := policy.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if attempt == attempts-1 {
			return zero, err
		}

		var waits []time.Duration
		switch {
		case isRateLimitError(err):
			waits = policy.RateLimitWaits
		case isServerError(err):
			waits = policy.ServerErrorWaits
		default:
			return zero, err
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(waitFor(waits, attempt)):
		}
	}
	return zero, fmt.Errorf("failed after %d attempts due to OpenAI API issues", attempts)
}

func waitFor(waits []time.Duration, attempt int) time.Duration {
	if len(waits) == 0 {
		return 0
	}
	if attempt >= len(waits) {
		return waits[len(waits)-1]
	}
	return waits[attempt]
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}

// GenerateSchema reflects T into a JSON schema that satisfies OpenAI strict mode.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schemaObj, err := schemaToMap(reflector.Reflect(v))
	if err != nil {
		panic(err)
	}
	ensureOpenAICompliance(schemaObj)
	return schemaObj
}

func schemaToMap(schema *jsonschema.Schema) (map[string]any, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

const (
	propertiesKey           = "properties"
	additionalPropertiesKey = "additionalProperties"
	typeKey                 = "type"
	requiredKey             = "required"
	itemsKey                = "items"
)

// ensureOpenAICompliance closes every object and marks all of its properties required.
func ensureOpenAICompliance(schema map[string]any) {
	if schemaType, ok := schema[typeKey].(string); ok && schemaType == "object" {
		schema[additionalPropertiesKey] = false

		if properties, ok := schema[propertiesKey].(map[string]any); ok {
			requiredFields := make([]string, 0, len(properties))
			for propName := range properties {
				requiredFields = append(requiredFields, propName)
			}
			if len(requiredFields) > 0 {
				schema[requiredKey] = requiredFields
			}
		}
	}

	if properties, ok := schema[propertiesKey].(map[string]any); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]any); ok {
				ensureOpenAICompliance(propMap)
			}
		}
	}

	if items, ok := schema[itemsKey].(map[string]any); ok {
		ensureOpenAICompliance(items)
	}

	if additionalProps, ok := schema[additionalPropertiesKey].(map[string]any); ok {
		ensureOpenAICompliance(additionalProps)
	}
}
