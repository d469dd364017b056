package dto

import (
	"encoding/json"
	"testing"
)

func TestNumericString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw  string
		want NumericString
	}{
		{`{"salary": 90000}`, "90000"},
		{`{"salary": "90000"}`, "90000"},
		{`{"salary": -5}`, "-5"},
		{`{"salary": 1e3}`, "1e3"},
		{`{"salary": "abc"}`, "abc"},
		{`{"salary": null}`, ""},
		{`{}`, ""},
	}
	for _, tt := range tests {
		var req EmployeeRequest
		if err := json.Unmarshal([]byte(tt.raw), &req); err != nil {
			t.Fatalf("%s 解析失败: %v", tt.raw, err)
		}
		if req.Salary != tt.want {
			t.Errorf("%s: 期望 %q，实际 %q", tt.raw, tt.want, req.Salary)
		}
	}
}
