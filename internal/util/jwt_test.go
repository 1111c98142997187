package util

import (
	"testing"
	"time"

	"fellowship_backend/internal/model"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{
		BaseModel: model.BaseModel{ID: 42},
		Email:     "ada@example.com",
		Role:      model.Fellow,
		CohortID:  7,
	}

	token, err := GenerateJWT(user, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims, err := ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseJWT failed: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "ada@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Role != model.Fellow {
		t.Fatalf("role = %q, want fellow", claims.Role)
	}
	if claims.CohortID != 7 {
		t.Fatalf("cohortId = %d, want 7", claims.CohortID)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	user := &model.User{BaseModel: model.BaseModel{ID: 1}, Role: model.Fellow}
	token, err := GenerateJWT(user, "right-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	if _, err := ParseJWT(token, "wrong-secret"); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}
