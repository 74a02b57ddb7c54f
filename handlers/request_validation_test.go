package handlers

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func TestRequestValidationTags(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name    string
		req     interface{}
		wantErr bool
	}{
		{"create order missing plan", CreateOrderRequest{}, true},
		{"create order with plan", CreateOrderRequest{PlanID: "starter"}, false},
		{"verify order missing id", VerifyOrderRequest{}, true},
		{"verify order with id", VerifyOrderRequest{OrderID: "cs_test_123"}, false},
		{"add video missing id", AddVideoToProjectRequest{}, true},
		{"add video with id", AddVideoToProjectRequest{VideoID: uuid.New()}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Struct(%+v) err = %v, wantErr %v", tt.req, err, tt.wantErr)
			}
		})
	}
}
