package validation

import "testing"

func TestValidateRecurrenceType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		wantErr bool
	}{
		{value: "none", wantErr: false},
		{value: "daily", wantErr: false},
		{value: "weekly", wantErr: false},
		{value: "custom", wantErr: false},
		{value: "fortnightly", wantErr: true},
		{value: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()

			err := ValidateRecurrenceType(tt.value)
			if tt.wantErr && err == nil {
				t.Errorf("Expected error for %q", tt.value)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error for %q, got %v", tt.value, err)
			}
		})
	}
}

func TestPayloadEnumRules(t *testing.T) {
	t.Parallel()

	v := New()

	type payload struct {
		RecurrenceType string `validate:"recurrence_type"`
		Priority       string `validate:"priority"`
	}

	if err := v.Struct(payload{RecurrenceType: "daily", Priority: "high"}); err != nil {
		t.Errorf("Expected valid payload, got %v", err)
	}
	if err := v.Struct(payload{RecurrenceType: "hourly", Priority: "high"}); err == nil {
		t.Error("Expected error for invalid recurrence type")
	}
	if err := v.Struct(payload{RecurrenceType: "daily", Priority: "urgent"}); err == nil {
		t.Error("Expected error for invalid priority")
	}
}
