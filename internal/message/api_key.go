package message

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	pathutils "github.com/temirov/commitmsg/internal/utils/path"
)

const (
	apiKeySourceSeparatorConstant              = ":"
	environmentAPIKeySourceTypeValueConstant   = "env"
	fileAPIKeySourceTypeValueConstant          = "file"
	apiKeySourceMissingErrorMessageConstant    = "api key source must be provided"
	environmentNameMissingErrorMessageConstant = "environment variable name must be provided"
	filePathMissingErrorMessageConstant        = "api key file path must be provided"
	apiKeyUnavailableErrorMessageConstant      = "api key unavailable"
	environmentAPIKeyMissingTemplateConstant   = "%w: environment variable %s is not set"
	fileReadErrorTemplateConstant              = "%w: unable to read api key file %s: %v"
	fileAPIKeyEmptyTemplateConstant            = "%w: api key file %s is empty"
	unsupportedAPIKeySourceTemplateConstant    = "unsupported api key source type %q"
)

// ErrAPIKeyUnavailable indicates the configured api key source yielded no key.
var ErrAPIKeyUnavailable = errors.New(apiKeyUnavailableErrorMessageConstant)

// APIKeySourceType enumerates the supported api key retrieval mechanisms.
type APIKeySourceType string

// API key source type enumerations.
const (
	APIKeySourceTypeEnvironment APIKeySourceType = APIKeySourceType(environmentAPIKeySourceTypeValueConstant)
	APIKeySourceTypeFile        APIKeySourceType = APIKeySourceType(fileAPIKeySourceTypeValueConstant)
)

// APIKeySource specifies where the chat completion api key is read from.
type APIKeySource struct {
	Type      APIKeySourceType
	Reference string
}

// APIKeyResolver retrieves api keys from configured sources.
type APIKeyResolver interface {
	ResolveAPIKey(resolutionContext context.Context, source APIKeySource) (string, error)
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// NewAPIKeyResolver creates an api key resolver with optional dependency overrides.
func NewAPIKeyResolver(environmentLookup EnvironmentLookup, fileReader FileReader) APIKeyResolver {
	resolvedEnvironmentLookup := environmentLookup
	if resolvedEnvironmentLookup == nil {
		resolvedEnvironmentLookup = os.LookupEnv
	}

	resolvedFileReader := fileReader
	if resolvedFileReader == nil {
		resolvedFileReader = os.ReadFile
	}

	return &apiKeyResolver{
		environmentLookup: resolvedEnvironmentLookup,
		fileReader:        resolvedFileReader,
	}
}

// ParseAPIKeySource interprets "env:NAME", "file:PATH", or a bare environment variable name.
// A leading "~" in a file path is expanded to the user's home directory.
func ParseAPIKeySource(sourceValue string) (APIKeySource, error) {
	trimmedValue := strings.TrimSpace(sourceValue)
	if len(trimmedValue) == 0 {
		return APIKeySource{}, errors.New(apiKeySourceMissingErrorMessageConstant)
	}

	components := strings.SplitN(trimmedValue, apiKeySourceSeparatorConstant, 2)
	if len(components) == 1 {
		return APIKeySource{Type: APIKeySourceTypeEnvironment, Reference: trimmedValue}, nil
	}

	sourceType := strings.ToLower(strings.TrimSpace(components[0]))
	reference := strings.TrimSpace(components[1])

	switch sourceType {
	case environmentAPIKeySourceTypeValueConstant:
		if len(reference) == 0 {
			return APIKeySource{}, errors.New(environmentNameMissingErrorMessageConstant)
		}
		return APIKeySource{Type: APIKeySourceTypeEnvironment, Reference: reference}, nil
	case fileAPIKeySourceTypeValueConstant:
		if len(reference) == 0 {
			return APIKeySource{}, errors.New(filePathMissingErrorMessageConstant)
		}
		return APIKeySource{Type: APIKeySourceTypeFile, Reference: pathutils.NewHomeExpander().Expand(reference)}, nil
	default:
		return APIKeySource{}, fmt.Errorf(unsupportedAPIKeySourceTemplateConstant, sourceType)
	}
}

type apiKeyResolver struct {
	environmentLookup EnvironmentLookup
	fileReader        FileReader
}

func (resolver *apiKeyResolver) ResolveAPIKey(resolutionContext context.Context, source APIKeySource) (string, error) {
	_ = resolutionContext
	switch source.Type {
	case APIKeySourceTypeEnvironment:
		value, found := resolver.environmentLookup(source.Reference)
		trimmedValue := strings.TrimSpace(value)
		if !found || len(trimmedValue) == 0 {
			return "", fmt.Errorf(environmentAPIKeyMissingTemplateConstant, ErrAPIKeyUnavailable, source.Reference)
		}
		return trimmedValue, nil
	case APIKeySourceTypeFile:
		contents, readError := resolver.fileReader(source.Reference)
		if readError != nil {
			return "", fmt.Errorf(fileReadErrorTemplateConstant, ErrAPIKeyUnavailable, source.Reference, readError)
		}
		trimmedValue := strings.TrimSpace(string(contents))
		if len(trimmedValue) == 0 {
			return "", fmt.Errorf(fileAPIKeyEmptyTemplateConstant, ErrAPIKeyUnavailable, source.Reference)
		}
		return trimmedValue, nil
	default:
		return "", fmt.Errorf(unsupportedAPIKeySourceTemplateConstant, source.Type)
	}
}
