package document

import (
	"strings"
	"testing"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantN   int
		wantMsg string
	}{
		{
			name: "well formed with orphan",
			doc: &Document{
				Version: Version,
				Pages:   []Page{{ID: "p1", Children: []string{"a"}}},
				Nodes: map[string]Node{
					"a":      {Type: "Container", Children: []string{"b"}},
					"b":      {Type: "Text"},
					"orphan": {Type: "Text"},
				},
			},
		},
		{
			name:    "bad version",
			doc:     &Document{Version: 3},
			wantN:   1,
			wantMsg: "version 3",
		},
		{
			name: "dangling child",
			doc: &Document{
				Version: Version,
				Pages:   []Page{{ID: "p1", Children: []string{"missing"}}},
			},
			wantN:   1,
			wantMsg: `missing node "missing"`,
		},
		{
			name: "cycle",
			doc: &Document{
				Version: Version,
				Pages:   []Page{{ID: "p1", Children: []string{"a"}}},
				Nodes: map[string]Node{
					"a": {Type: "Container", Children: []string{"b"}},
					"b": {Type: "Container", Children: []string{"a"}},
				},
			},
			wantN:   1,
			wantMsg: "own ancestor",
		},
		{
			name: "shared child across pages",
			doc: &Document{
				Version: Version,
				Pages: []Page{
					{ID: "p1", Children: []string{"a"}},
					{ID: "p2", Children: []string{"a"}},
				},
				Nodes: map[string]Node{"a": {Type: "Text"}},
			},
			wantN:   1,
			wantMsg: "two parents",
		},
		{
			name: "many problems",
			doc: &Document{
				Version: Version,
				Pages:   []Page{{ID: ""}, {ID: "x"}, {ID: "x"}},
				Nodes:   map[string]Node{"a": {}},
			},
			wantN: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.doc)
			problems := Problems(err)
			if len(problems) != tt.wantN {
				t.Fatalf("Validate() = %v (%d problems), want %d", err, len(problems), tt.wantN)
			}
			if tt.wantN == 0 {
				return
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() = %v, want message containing %q", err, tt.wantMsg)
			}
			for _, p := range problems {
				code := errors.GetCode(p)
				if code != errors.ErrCodeInvalidDocument && code != errors.ErrCodeUnsupportedVersion {
					t.Errorf("problem %v has code %q", p, code)
				}
			}
		})
	}
}

func TestValidateNil(t *testing.T) {
	if err := Validate(nil); !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("Validate(nil) = %v", err)
	}
}
