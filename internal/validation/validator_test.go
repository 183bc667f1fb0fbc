package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mindmap-server/internal/models"
)

func strPtr(s string) *string { return &s }

func hasField(errors []FieldError, field string) bool {
	for _, err := range errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

func TestValidateCreateUser(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name       string
		req        *models.CreateUserRequest
		wantErrors int
		wantFields []string
	}{
		{
			name:       "valid user",
			req:        &models.CreateUserRequest{Username: "alice", Password: "pw", DisplayName: "Alice"},
			wantErrors: 0,
		},
		{
			name:       "email style username",
			req:        &models.CreateUserRequest{Username: "alice.b@example.com", Password: "pw"},
			wantErrors: 0,
		},
		{
			name:       "missing username",
			req:        &models.CreateUserRequest{Username: "   ", Password: "pw"},
			wantErrors: 1,
			wantFields: []string{"username"},
		},
		{
			name:       "username with spaces",
			req:        &models.CreateUserRequest{Username: "alice smith", Password: "pw"},
			wantErrors: 1,
			wantFields: []string{"username"},
		},
		{
			name:       "username too long",
			req:        &models.CreateUserRequest{Username: strings.Repeat("a", 65), Password: "pw"},
			wantErrors: 1,
			wantFields: []string{"username"},
		},
		{
			name:       "missing password",
			req:        &models.CreateUserRequest{Username: "alice"},
			wantErrors: 1,
			wantFields: []string{"password"},
		},
		{
			name:       "password over bcrypt limit",
			req:        &models.CreateUserRequest{Username: "alice", Password: strings.Repeat("p", 73)},
			wantErrors: 1,
			wantFields: []string{"password"},
		},
		{
			name:       "password at bcrypt limit",
			req:        &models.CreateUserRequest{Username: "alice", Password: strings.Repeat("p", 72)},
			wantErrors: 0,
		},
		{
			name:       "display name too long",
			req:        &models.CreateUserRequest{Username: "alice", Password: "pw", DisplayName: strings.Repeat("d", 101)},
			wantErrors: 1,
			wantFields: []string{"displayName"},
		},
		{
			name:       "multiple errors",
			req:        &models.CreateUserRequest{},
			wantErrors: 2,
			wantFields: []string{"username", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := validator.ValidateCreateUser(tt.req)
			if len(errors) != tt.wantErrors {
				t.Errorf("ValidateCreateUser() got %d errors, want %d. Errors: %v", len(errors), tt.wantErrors, errors)
			}
			for _, field := range tt.wantFields {
				if !hasField(errors, field) {
					t.Errorf("Expected error for field '%s' but not found", field)
				}
			}
		})
	}
}

func TestValidateUpdateUser(t *testing.T) {
	validator := NewValidator()

	if errs := validator.ValidateUpdateUser(&models.UpdateUserRequest{}); !hasField(errs, "body") {
		t.Errorf("Expected empty update to be rejected, got %v", errs)
	}
	if errs := validator.ValidateUpdateUser(&models.UpdateUserRequest{DisplayName: strPtr("New")}); len(errs) != 0 {
		t.Errorf("Expected display name update to pass, got %v", errs)
	}
	if errs := validator.ValidateUpdateUser(&models.UpdateUserRequest{Password: strPtr("")}); !hasField(errs, "password") {
		t.Errorf("Expected empty password to be rejected, got %v", errs)
	}
}

func TestValidateLogin(t *testing.T) {
	validator := NewValidator()

	if errs := validator.ValidateLogin(&models.LoginRequest{Username: "a", Password: "b"}); len(errs) != 0 {
		t.Errorf("Expected valid login, got %v", errs)
	}
	errs := validator.ValidateLogin(&models.LoginRequest{})
	if !hasField(errs, "username") || !hasField(errs, "password") {
		t.Errorf("Expected username and password errors, got %v", errs)
	}
}

func TestValidateSaveMap(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name      string
		req       *models.SaveMapRequest
		wantField string
	}{
		{name: "new map without id", req: &models.SaveMapRequest{Map: json.RawMessage(`{"a":1}`)}},
		{name: "generated id", req: &models.SaveMapRequest{ID: strPtr("map-0123456789ab")}},
		{name: "no body at all", req: &models.SaveMapRequest{}},
		{name: "empty id means new map", req: &models.SaveMapRequest{ID: strPtr("")}},
		{name: "id with slash", req: &models.SaveMapRequest{ID: strPtr("../etc")}, wantField: "id"},
		{name: "title too long", req: &models.SaveMapRequest{Title: strPtr(strings.Repeat("t", 501))}, wantField: "title"},
		{name: "invalid json", req: &models.SaveMapRequest{Map: json.RawMessage(`{nope`)}, wantField: "map"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validator.ValidateSaveMap(tt.req)
			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Errorf("Expected no errors, got %v", errs)
				}
				return
			}
			if !hasField(errs, tt.wantField) {
				t.Errorf("Expected error for field '%s', got %v", tt.wantField, errs)
			}
		})
	}
}

func TestValidateFolderName(t *testing.T) {
	validator := NewValidator()

	if errs := validator.ValidateFolderName("Work"); len(errs) != 0 {
		t.Errorf("Expected valid name, got %v", errs)
	}
	if errs := validator.ValidateFolderName("  "); !hasField(errs, "name") {
		t.Errorf("Expected blank name to be rejected")
	}
	if errs := validator.ValidateFolderName(strings.Repeat("n", 201)); !hasField(errs, "name") {
		t.Errorf("Expected long name to be rejected")
	}
}

func TestFieldError_Error(t *testing.T) {
	err := FieldError{Field: "name", Message: "name is required"}
	if err.Error() != "name: name is required" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func BenchmarkValidateCreateUser(b *testing.B) {
	validator := NewValidator()
	req := &models.CreateUserRequest{Username: "alice", Password: "pw", DisplayName: "Alice"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		validator.ValidateCreateUser(req)
	}
}
