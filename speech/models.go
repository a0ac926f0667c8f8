package speech

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	langalpha "cloud.google.com/go/ai/generativelanguage/apiv1alpha"
	langalphapb "cloud.google.com/go/ai/generativelanguage/apiv1alpha/generativelanguagepb"
	langbeta "cloud.google.com/go/ai/generativelanguage/apiv1beta"
	langbetapb "cloud.google.com/go/ai/generativelanguage/apiv1beta/generativelanguagepb"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// APIVersion represents different versions of the Gemini API
type APIVersion string

const (
	APIVersionAlpha APIVersion = "alpha"
	APIVersionBeta  APIVersion = "beta"
)

// ModelInfo contains information about a model
type ModelInfo struct {
	Name        string     // Full model name including prefix
	DisplayName string     // Display name
	Description string     // Model description
	Version     APIVersion // API version this model works with
}

// ListModelsOptions provides options for model listing
type ListModelsOptions struct {
	Filter      string       // Filter string to limit results
	APIVersions []APIVersion // Specific API versions to query (empty means all)
}

// DefaultListModelsOptions returns the default options for listing models
func DefaultListModelsOptions() ListModelsOptions {
	return ListModelsOptions{
		Filter:      "",
		APIVersions: []APIVersion{APIVersionBeta},
	}
}

// ListModels returns a list of available models, optionally filtered by substring
func (c *Client) ListModels(filter string) ([]string, error) {
	options := DefaultListModelsOptions()
	options.Filter = filter
	return c.ListModelsWithOptions(options)
}

// ListModelsWithOptions returns a list of models with advanced options
func (c *Client) ListModelsWithOptions(options ListModelsOptions) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := c.InitClient(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize client: %w", err)
	}

	log.Println("[SPEECH] Getting list of supported models from the API")

	var clientOpts []option.ClientOption
	if c.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(c.APIKey))
	}

	var models []string
	var apiErrors []string

	if len(options.APIVersions) == 0 {
		options.APIVersions = []APIVersion{APIVersionBeta, APIVersionAlpha}
	}

	for _, version := range options.APIVersions {
		var versionModels []string
		var err error

		switch version {
		case APIVersionBeta:
			versionModels, _, err = c.listModelsV1Beta(ctx, clientOpts)
		case APIVersionAlpha:
			versionModels, _, err = c.listModelsV1Alpha(ctx, clientOpts)
		}

		if err != nil {
			apiErrors = append(apiErrors, fmt.Sprintf("%s: %v", version, err))
			continue
		}
		models = append(models, versionModels...)
	}

	// If we didn't get any models from any API, fall back to our hardcoded list
	if len(models) == 0 {
		log.Println("[SPEECH] No models returned from APIs, falling back to hardcoded list")
		if len(apiErrors) > 0 {
			log.Printf("[SPEECH] API errors: %s", strings.Join(apiErrors, "; "))
		}
		return c.getStandardModels(options.Filter)
	}

	if options.Filter != "" {
		var filteredModels []string
		for _, model := range models {
			if strings.Contains(strings.ToLower(model), strings.ToLower(options.Filter)) {
				filteredModels = append(filteredModels, model)
			}
		}
		return filteredModels, nil
	}
	return models, nil
}

// listModelsV1Beta lists models using the v1beta API
func (c *Client) listModelsV1Beta(ctx context.Context, clientOpts []option.ClientOption) ([]string, []ModelInfo, error) {
	modelClient, err := langbeta.NewModelClient(ctx, clientOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create v1beta model client: %w", err)
	}
	defer modelClient.Close()

	it := modelClient.ListModels(ctx, &langbetapb.ListModelsRequest{})

	var models []string
	var modelInfos []ModelInfo
	for {
		model, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("error iterating v1beta models: %w", err)
		}

		// Store both with and without 'models/' prefix for compatibility
		modelName := model.GetName()
		models = append(models, modelName)
		modelInfos = append(modelInfos, ModelInfo{
			Name:        modelName,
			DisplayName: model.GetDisplayName(),
			Description: model.GetDescription(),
			Version:     APIVersionBeta,
		})
		if strings.HasPrefix(modelName, "models/") {
			models = append(models, strings.TrimPrefix(modelName, "models/"))
		}
	}
	return models, modelInfos, nil
}

// listModelsV1Alpha lists models using the v1alpha API
func (c *Client) listModelsV1Alpha(ctx context.Context, clientOpts []option.ClientOption) ([]string, []ModelInfo, error) {
	modelClient, err := langalpha.NewModelClient(ctx, clientOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create v1alpha model client: %w", err)
	}
	defer modelClient.Close()

	it := modelClient.ListModels(ctx, &langalphapb.ListModelsRequest{})

	var models []string
	var modelInfos []ModelInfo
	for {
		model, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("error iterating v1alpha models: %w", err)
		}

		// Store both with and without 'models/' prefix for compatibility
		modelName := model.GetName()
		models = append(models, modelName)
		modelInfos = append(modelInfos, ModelInfo{
			Name:        modelName,
			DisplayName: model.GetDisplayName(),
			Description: model.GetDescription(),
			Version:     APIVersionAlpha,
		})
		if strings.HasPrefix(modelName, "models/") {
			models = append(models, strings.TrimPrefix(modelName, "models/"))
		}
	}
	return models, modelInfos, nil
}

// getStandardModels returns the locally defined list of speech-capable
// models, used when no API surface can be reached.
func (c *Client) getStandardModels(filter string) ([]string, error) {
	log.Println("[SPEECH] Using locally defined model list")
	standardModels := []string{
		"gemini-2.5-flash-preview-tts",
		"gemini-2.5-pro-preview-tts",
		"gemini-2.0-flash-live-001",
		"gemini-2.5-flash-preview-native-audio-dialog",
		"models/gemini-2.5-flash-preview-tts",
		"models/gemini-2.5-pro-preview-tts",
		"models/gemini-2.0-flash-live-001",
		"models/gemini-2.5-flash-preview-native-audio-dialog",
	}

	if filter != "" {
		var filteredModels []string
		for _, model := range standardModels {
			if strings.Contains(strings.ToLower(model), strings.ToLower(filter)) {
				filteredModels = append(filteredModels, model)
			}
		}
		return filteredModels, nil
	}
	return standardModels, nil
}

// ValidateModel checks if a model name is in the list of supported models
func (c *Client) ValidateModel(modelName string) (bool, error) {
	// Accept the whole 2.x generation without a round trip, preview names
	// churn faster than any local list.
	if strings.Contains(modelName, "gemini-2.0") || strings.Contains(modelName, "gemini-2.5") {
		return true, nil
	}

	validModels, err := c.ListModels("")
	if err != nil {
		return false, err
	}
	for _, model := range validModels {
		if model == modelName {
			return true, nil
		}
	}
	return false, nil
}
