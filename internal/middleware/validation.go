// middleware/validation.go
package middleware

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"swipevault/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator instance
type CustomValidator struct {
	validator *validator.Validate
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// ValidationErrorResponse represents the validation error response
type ValidationErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors"`
}

var customValidator *CustomValidator

// InitValidator initializes the custom validator with custom rules
func InitValidator() {
	customValidator = &CustomValidator{
		validator: validator.New(),
	}

	registerCustomValidations()

	customValidator.validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// GetValidator returns the validator instance
func GetValidator() *validator.Validate {
	if customValidator == nil {
		InitValidator()
	}
	return customValidator.validator
}

// ValidateStruct validates a struct and returns formatted errors
func ValidateStruct(s interface{}) []ValidationError {
	validate := GetValidator()
	err := validate.Struct(s)

	if err == nil {
		return nil
	}

	var validationErrors []ValidationError

	if ve, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range ve {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fieldError.Field(),
				Tag:     fieldError.Tag(),
				Value:   fmt.Sprintf("%v", fieldError.Value()),
				Message: getValidationMessage(fieldError),
			})
		}
	} else {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "general",
			Tag:     "error",
			Message: err.Error(),
		})
	}

	return validationErrors
}

// ValidateJSON binds and validates a request body against model's type.
func ValidateJSON(model interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		modelType := reflect.TypeOf(model)
		if modelType.Kind() == reflect.Ptr {
			modelType = modelType.Elem()
		}

		newModel := reflect.New(modelType).Interface()

		if err := c.ShouldBindJSON(newModel); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid JSON format", err.Error())
			c.Abort()
			return
		}

		if validationErrors := ValidateStruct(newModel); validationErrors != nil {
			c.JSON(http.StatusBadRequest, ValidationErrorResponse{
				Success: false,
				Message: "validation failed",
				Errors:  validationErrors,
			})
			c.Abort()
			return
		}

		c.Set("validated_data", newModel)
		c.Next()
	}
}

// ValidatePagination validates page/limit query parameters.
func ValidatePagination() gin.HandlerFunc {
	return func(c *gin.Context) {
		var errors []ValidationError

		if pageStr := c.Query("page"); pageStr != "" {
			if page, err := strconv.Atoi(pageStr); err != nil || page < 1 {
				errors = append(errors, ValidationError{
					Field: "page", Tag: "min", Value: pageStr,
					Message: "page must be a positive integer",
				})
			}
		}

		if limitStr := c.Query("limit"); limitStr != "" {
			if limit, err := strconv.Atoi(limitStr); err != nil || limit < utils.MinPageSize || limit > utils.MaxPageSize {
				errors = append(errors, ValidationError{
					Field: "limit", Tag: "range", Value: limitStr,
					Message: fmt.Sprintf("limit must be between %d and %d", utils.MinPageSize, utils.MaxPageSize),
				})
			}
		}

		if len(errors) > 0 {
			c.JSON(http.StatusBadRequest, ValidationErrorResponse{
				Success: false,
				Message: "pagination validation failed",
				Errors:  errors,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ValidateEntryID rejects requests whose :id path parameter isn't a
// well-formed opaque entry/user id.
func ValidateEntryID(paramNames ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var errors []ValidationError

		for _, paramName := range paramNames {
			value := c.Param(paramName)
			if value == "" {
				continue
			}
			if !utils.IsValidID(value) {
				errors = append(errors, ValidationError{
					Field: paramName, Tag: "id", Value: value,
					Message: fmt.Sprintf("%s must be a valid identifier", paramName),
				})
			}
		}

		if len(errors) > 0 {
			c.JSON(http.StatusBadRequest, ValidationErrorResponse{
				Success: false,
				Message: "invalid identifier",
				Errors:  errors,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ValidateFileUpload validates an uploaded multipart file's size and type.
func ValidateFileUpload(maxSize int64, allowedTypes []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "no file uploaded", "")
			c.Abort()
			return
		}
		defer file.Close()

		var errors []ValidationError

		if header.Size > maxSize {
			errors = append(errors, ValidationError{
				Field: "file", Tag: "max_size", Value: fmt.Sprintf("%d", header.Size),
				Message: fmt.Sprintf("file size must be less than %d bytes", maxSize),
			})
		}

		if len(allowedTypes) > 0 {
			contentType := header.Header.Get("Content-Type")
			allowed := false
			for _, allowedType := range allowedTypes {
				if strings.HasPrefix(contentType, allowedType) {
					allowed = true
					break
				}
			}
			if !allowed {
				errors = append(errors, ValidationError{
					Field: "file", Tag: "file_type", Value: contentType,
					Message: fmt.Sprintf("file type must be one of: %s", strings.Join(allowedTypes, ", ")),
				})
			}
		}

		if len(errors) > 0 {
			c.JSON(http.StatusBadRequest, ValidationErrorResponse{
				Success: false,
				Message: "file validation failed",
				Errors:  errors,
			})
			c.Abort()
			return
		}

		c.Set("uploaded_file", file)
		c.Set("file_header", header)
		c.Next()
	}
}

func registerCustomValidations() {
	v := GetValidator()
	v.RegisterValidation("entryid", validateEntryIDTag)
	v.RegisterValidation("content_type", validateContentTypeTag)
}

func validateEntryIDTag(fl validator.FieldLevel) bool {
	return utils.IsValidID(fl.Field().String())
}

func validateContentTypeTag(fl validator.FieldLevel) bool {
	ct := fl.Field().String()
	validTypes := []string{"youtube", "tweet", "article", "instagram", "image", "text", "generic"}
	for _, t := range validTypes {
		if ct == t {
			return true
		}
	}
	return false
}

func getValidationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "entryid":
		return fmt.Sprintf("%s must be a valid identifier", fe.Field())
	case "content_type":
		return fmt.Sprintf("%s must be one of: youtube, tweet, article, instagram, image, text, generic", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
