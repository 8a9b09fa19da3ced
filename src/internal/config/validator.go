package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ipfeeds/listgen/src/internal/cidr"
	"github.com/ipfeeds/listgen/src/internal/feeds"
	"github.com/ipfeeds/listgen/src/internal/parser"
)

var (
	listNameRegexp    = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)
	placeholderRegexp = regexp.MustCompile(`\{\{[^}]*\}\}`)
)

// ValidationError represents a single validation error with context
type ValidationError struct {
	ItemName  string // The list the error belongs to (e.g., "drop", "list[2]")
	FieldPath string // Dot-notation field path (e.g., "settings.fetch_retries", "sources.0.url")
	Message   string // Human-readable error message
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		if err.ItemName != "" {
			sb.WriteString(fmt.Sprintf("  %d. [%s] %s: %s\n", i+1, err.ItemName, err.FieldPath, err.Message))
		} else {
			sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
		}
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("list_name", validateListName); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("feed_format", validateFeedFormat); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("compression", validateCompression); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("cidr_or_ip", validateCIDROrIP); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("feed_url", validateFeedURLTag); err != nil {
		panic(err)
	}

	// Field names in errors follow the config file keys
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// getValidationMessage returns a human-readable message for a validation error
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must have at least %s item(s)", e.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "list_name":
		return "must start with a letter or digit and contain only letters, digits, '_' and '-'"
	case "feed_format":
		formats := make([]string, 0)
		for _, f := range parser.Formats() {
			formats = append(formats, string(f))
		}
		return fmt.Sprintf("unknown format %q (supported: %s)", e.Value(), strings.Join(formats, ", "))
	case "compression":
		return fmt.Sprintf("must be one of: %s %s", feeds.CompressionNone, feeds.CompressionGzip)
	case "cidr_or_ip":
		return fmt.Sprintf("%q is not a valid IP address or CIDR", e.Value())
	case "feed_url":
		return "must be an http://, https:// or file:// URL"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

func validateListName(fl validator.FieldLevel) bool {
	return listNameRegexp.MatchString(fl.Field().String())
}

func validateFeedFormat(fl validator.FieldLevel) bool {
	return parser.IsKnown(parser.Format(fl.Field().String()))
}

func validateCompression(fl validator.FieldLevel) bool {
	switch feeds.Compression(fl.Field().String()) {
	case feeds.CompressionNone, feeds.CompressionGzip:
		return true
	}
	return false
}

func validateCIDROrIP(fl validator.FieldLevel) bool {
	_, _, err := cidr.ParseRange(fl.Field().String())
	return err == nil
}

func validateFeedURLTag(fl validator.FieldLevel) bool {
	return validateFeedURL(fl.Field().String()) == nil
}

// validateFeedURL checks the URL shape with placeholders substituted by a
// dummy value, so templated URLs validate before expansion.
func validateFeedURL(rawURL string) error {
	u, err := url.Parse(placeholderRegexp.ReplaceAllString(rawURL, "x"))
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("missing host")
		}
	case "file":
		if u.Host+u.Path == "" {
			return fmt.Errorf("missing path")
		}
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return nil
}

// ValidateConfig validates the entire configuration and returns all validation errors
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	if c.Settings != nil {
		if err := validate.Struct(c.Settings); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "settings", "")...)
		}
	}

	if len(c.Lists) == 0 {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "lists",
			Message:   "configuration must contain at least one list",
		})
	} else {
		validationErrors = append(validationErrors, c.validateLists()...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}

func (c *Config) validateLists() ValidationErrors {
	var validationErrors ValidationErrors
	seenNames := make(map[string]bool)

	for i, list := range c.Lists {
		if list == nil {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: fmt.Sprintf("lists.%d", i),
				Message:   "list definition is empty",
			})
			continue
		}

		itemName := list.Name
		if itemName == "" {
			itemName = fmt.Sprintf("list[%d]", i)
		}

		if err := validate.Struct(list); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "", itemName)...)
		}

		lowered := strings.ToLower(list.Name)
		if list.Name != "" && seenNames[lowered] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "name",
				Message:   fmt.Sprintf("duplicate list name: %s", list.Name),
			})
		}
		seenNames[lowered] = true

		for j, src := range list.Sources {
			if src == nil {
				continue
			}
			if parser.RequiresCountry(src.Format) && strings.TrimSpace(src.FormatOptions[parser.OptionCountry]) == "" {
				validationErrors = append(validationErrors, ValidationError{
					ItemName:  itemName,
					FieldPath: fmt.Sprintf("sources.%d.format_options.%s", j, parser.OptionCountry),
					Message:   fmt.Sprintf("format %s requires a country code", src.Format),
				})
			}
			if _, err := src.ExpandedURL(); err != nil {
				validationErrors = append(validationErrors, ValidationError{
					ItemName:  itemName,
					FieldPath: fmt.Sprintf("sources.%d.url", j),
					Message:   err.Error(),
				})
			}
		}
	}

	return validationErrors
}

// convertValidatorErrors converts go-playground/validator errors to our ValidationError format
func convertValidatorErrors(err error, fieldPrefix string, itemName string) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			fieldPath := fieldPathOf(e.Namespace())
			if fieldPrefix != "" {
				fieldPath = fieldPrefix + "." + fieldPath
			}

			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: fieldPath,
				Message:   getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

// fieldPathOf turns a validator namespace such as "ListSpec.sources[0].url"
// into "sources.0.url".
func fieldPathOf(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	namespace = strings.ReplaceAll(namespace, "[", ".")
	return strings.ReplaceAll(namespace, "]", "")
}
