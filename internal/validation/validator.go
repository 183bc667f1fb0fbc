package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mindmap-server/internal/models"
)

const (
	maxUsernameLen    = 64
	maxPasswordBytes  = 72 // bcrypt input limit
	maxDisplayNameLen = 100
	maxTitleLen       = 500
	maxFolderNameLen  = 200
	maxIDLen          = 128
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._@-]+$`)
	idRegex       = regexp.MustCompile(`^[a-zA-Z0-9._:-]+$`)
)

// FieldError describes one invalid field of a request
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validator checks request payloads before they reach storage
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLogin validates a login payload
func (v *Validator) ValidateLogin(req *models.LoginRequest) []FieldError {
	var errors []FieldError
	if strings.TrimSpace(req.Username) == "" {
		errors = append(errors, FieldError{Field: "username", Message: "username is required"})
	}
	if req.Password == "" {
		errors = append(errors, FieldError{Field: "password", Message: "password is required"})
	}
	return errors
}

// ValidateCreateUser validates a new account
func (v *Validator) ValidateCreateUser(req *models.CreateUserRequest) []FieldError {
	var errors []FieldError

	username := strings.TrimSpace(req.Username)
	if username == "" {
		errors = append(errors, FieldError{Field: "username", Message: "username is required"})
	} else if utf8.RuneCountInString(username) > maxUsernameLen {
		errors = append(errors, FieldError{
			Field:   "username",
			Message: fmt.Sprintf("username must be at most %d characters", maxUsernameLen),
		})
	} else if !usernameRegex.MatchString(username) {
		errors = append(errors, FieldError{
			Field:   "username",
			Message: "username may only contain letters, digits, '.', '_', '@' and '-'",
			Value:   username,
		})
	}

	errors = append(errors, validatePassword(req.Password)...)
	errors = append(errors, validateDisplayName(req.DisplayName)...)
	return errors
}

// ValidateUpdateUser validates a partial account update
func (v *Validator) ValidateUpdateUser(req *models.UpdateUserRequest) []FieldError {
	var errors []FieldError
	if req.DisplayName == nil && req.Password == nil {
		errors = append(errors, FieldError{Field: "body", Message: "nothing to update"})
	}
	if req.Password != nil {
		errors = append(errors, validatePassword(*req.Password)...)
	}
	if req.DisplayName != nil {
		errors = append(errors, validateDisplayName(*req.DisplayName)...)
	}
	return errors
}

// ValidateSaveMap validates an upsert payload
func (v *Validator) ValidateSaveMap(req *models.SaveMapRequest) []FieldError {
	var errors []FieldError

	// an empty id asks for a generated one
	if req.ID != nil && *req.ID != "" {
		errors = append(errors, v.ValidateID("id", *req.ID)...)
	}
	if req.Title != nil && utf8.RuneCountInString(*req.Title) > maxTitleLen {
		errors = append(errors, FieldError{
			Field:   "title",
			Message: fmt.Sprintf("title must be at most %d characters", maxTitleLen),
		})
	}
	if len(req.Map) > 0 && !json.Valid(req.Map) {
		errors = append(errors, FieldError{Field: "map", Message: "map must be valid JSON"})
	}
	return errors
}

// ValidateFolderName validates a folder name for create and rename
func (v *Validator) ValidateFolderName(name string) []FieldError {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return []FieldError{{Field: "name", Message: "name is required"}}
	}
	if utf8.RuneCountInString(trimmed) > maxFolderNameLen {
		return []FieldError{{
			Field:   "name",
			Message: fmt.Sprintf("name must be at most %d characters", maxFolderNameLen),
		}}
	}
	return nil
}

// ValidateID validates a caller-supplied resource id
func (v *Validator) ValidateID(field, id string) []FieldError {
	if id == "" {
		return []FieldError{{Field: field, Message: field + " must not be empty"}}
	}
	if len(id) > maxIDLen || !idRegex.MatchString(id) {
		return []FieldError{{Field: field, Message: "invalid id format", Value: id}}
	}
	return nil
}

func validatePassword(password string) []FieldError {
	if password == "" {
		return []FieldError{{Field: "password", Message: "password is required"}}
	}
	if len(password) > maxPasswordBytes {
		return []FieldError{{
			Field:   "password",
			Message: fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes),
		}}
	}
	return nil
}

func validateDisplayName(name string) []FieldError {
	if utf8.RuneCountInString(name) > maxDisplayNameLen {
		return []FieldError{{
			Field:   "displayName",
			Message: fmt.Sprintf("displayName must be at most %d characters", maxDisplayNameLen),
		}}
	}
	return nil
}
