package core

import (
	"encoding/json"
	"testing"
)

func TestRef_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Ref
		wantErr bool
	}{
		{name: "string", data: `"abc"`, want: "abc"},
		{name: "padded string", data: `"  abc "`, want: "abc"},
		{name: "null", data: `null`, want: ""},
		{name: "object with id", data: `{"id": "abc", "name": "Ada"}`, want: "abc"},
		{name: "object with _id", data: `{"_id": "abc"}`, want: "abc"},
		{name: "id wins over _id", data: `{"id": "abc", "_id": "def"}`, want: "abc"},
		{name: "object without id", data: `{"name": "Ada"}`, wantErr: true},
		{name: "number", data: `42`, wantErr: true},
		{name: "array", data: `["abc"]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload struct {
				Mentor Ref `json:"mentor"`
			}
			err := json.Unmarshal([]byte(`{"mentor": `+tt.data+`}`), &payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("json.Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if payload.Mentor != tt.want {
				t.Errorf("Ref = %q; want %q", payload.Mentor, tt.want)
			}
		})
	}
}
